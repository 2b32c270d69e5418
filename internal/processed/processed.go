// Package processed tracks which source files have already been ingested.
//
// The tracker is the pipeline's permanent memory: once a source identifier
// is marked, it is never removed, so a file is processed at most once even
// across restarts and even if its content later changes. Entries are never
// expired; stale ids are intentional.
package processed

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// Store is the durable processed-set consumed by the ingestion pipeline.
// Implementations must be safe for concurrent readers with a single writer.
type Store interface {
	// IsProcessed reports whether the source id has already been handled.
	IsProcessed(sourceID string) bool

	// MarkProcessed durably records the source id. Re-marking an already
	// present id is a no-op and never an error.
	MarkProcessed(sourceID string, at time.Time) error

	// All returns every recorded source id, sorted.
	All() []string
}

// fileState is the on-disk JSON shape. Mirrors the processed-files log the
// pipeline has always written, so existing logs load unchanged.
type fileState struct {
	ProcessedFiles []string  `json:"processed_files"`
	LastUpdated    time.Time `json:"last_updated"`
}

// FileStore persists the processed set as a JSON file, rewritten atomically
// on every mark via temp-file-and-rename.
type FileStore struct {
	mu   sync.RWMutex
	path string
	ids  map[string]bool
}

var _ Store = (*FileStore)(nil)

// OpenFileStore loads (or creates) the processed-set file at path. A
// missing file starts an empty set; a corrupt file also starts empty rather
// than blocking ingestion, since the worst outcome is reprocessing.
func OpenFileStore(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory for processed set: %w", err)
	}

	s := &FileStore{path: path, ids: make(map[string]bool)}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read processed set: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		// Corrupt log: start fresh. Reprocessing is safe; losing the
		// ability to ingest is not.
		return s, nil
	}
	for _, id := range state.ProcessedFiles {
		s.ids[id] = true
	}
	return s, nil
}

// IsProcessed reports whether the source id has already been handled.
func (s *FileStore) IsProcessed(sourceID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ids[sourceID]
}

// MarkProcessed records the source id and persists the full set.
func (s *FileStore) MarkProcessed(sourceID string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ids[sourceID] {
		return nil
	}
	s.ids[sourceID] = true

	if err := s.save(at); err != nil {
		// Roll back the in-memory add so a later retry re-persists.
		delete(s.ids, sourceID)
		return err
	}
	return nil
}

// All returns every recorded source id, sorted.
func (s *FileStore) All() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// save writes the set atomically. Caller holds the write lock.
func (s *FileStore) save(at time.Time) error {
	state := fileState{
		ProcessedFiles: make([]string, 0, len(s.ids)),
		LastUpdated:    at.UTC(),
	}
	for id := range s.ids {
		state.ProcessedFiles = append(state.ProcessedFiles, id)
	}
	sort.Strings(state.ProcessedFiles)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode processed set: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".processed-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write processed set: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace processed set: %w", err)
	}
	return nil
}
