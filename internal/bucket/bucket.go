// Package bucket provides access to the shared object-storage area that
// resumes are dropped into. The pipeline only reads from the source bucket;
// Delete exists for working copies and is never called on source objects.
package bucket

import (
	"context"
	"path/filepath"
	"strings"
	"time"
)

// Object describes one stored document.
type Object struct {
	Name      string    `json:"name"`
	Size      int64     `json:"size"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the object-storage surface the pipeline consumes.
type Store interface {
	// List returns the supported documents under prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// Get downloads one object's bytes.
	Get(ctx context.Context, name string) ([]byte, error)

	// Delete removes one object.
	Delete(ctx context.Context, name string) error
}

// supportedExtensions are the document kinds the extraction service accepts.
var supportedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

// SupportedDocument reports whether the object name has a resume extension.
func SupportedDocument(name string) bool {
	return supportedExtensions[strings.ToLower(filepath.Ext(name))]
}
