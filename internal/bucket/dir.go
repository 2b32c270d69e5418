package bucket

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/resumeforge/reconcile/internal/types"
)

// DirStore serves a local directory as an object store. Used for local
// development and tests; the directory is flat, no nesting.
type DirStore struct {
	root string
}

var _ Store = (*DirStore)(nil)

// NewDirStore creates a store rooted at dir, creating it if needed.
func NewDirStore(dir string) (*DirStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("%w: creating %s: %v", types.ErrStorage, dir, err)
	}
	return &DirStore{root: dir}, nil
}

// List returns supported documents under prefix.
func (d *DirStore) List(ctx context.Context, prefix string) ([]Object, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("%w: listing %s: %v", types.ErrStorage, d.root, err)
	}

	var objects []Object
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), prefix) || !SupportedDocument(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		objects = append(objects, Object{
			Name:      e.Name(),
			Size:      info.Size(),
			CreatedAt: info.ModTime(),
		})
	}
	return objects, nil
}

// Get reads one object's bytes.
func (d *DirStore) Get(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: object %s", types.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", types.ErrStorage, name, err)
	}
	return data, nil
}

// Delete removes one object.
func (d *DirStore) Delete(ctx context.Context, name string) error {
	err := os.Remove(filepath.Join(d.root, filepath.Base(name)))
	if os.IsNotExist(err) {
		return fmt.Errorf("%w: object %s", types.ErrNotFound, name)
	}
	if err != nil {
		return fmt.Errorf("%w: deleting %s: %v", types.ErrStorage, name, err)
	}
	return nil
}
