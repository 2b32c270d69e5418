package processed

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreMarkAndCheck(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)

	assert.False(t, s.IsProcessed("resume-a.pdf"))

	require.NoError(t, s.MarkProcessed("resume-a.pdf", time.Now()))
	assert.True(t, s.IsProcessed("resume-a.pdf"))

	// Re-marking is a no-op.
	require.NoError(t, s.MarkProcessed("resume-a.pdf", time.Now()))
	assert.Equal(t, []string{"resume-a.pdf"}, s.All())
}

func TestFileStoreDurableAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	require.NoError(t, s.MarkProcessed("b.docx", time.Now()))
	require.NoError(t, s.MarkProcessed("a.pdf", time.Now()))

	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.True(t, reopened.IsProcessed("a.pdf"))
	assert.True(t, reopened.IsProcessed("b.docx"))
	assert.Equal(t, []string{"a.pdf", "b.docx"}, reopened.All())
}

func TestFileStoreCorruptLogStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.All())

	// The store recovers and persists normally afterwards.
	require.NoError(t, s.MarkProcessed("c.pdf", time.Now()))
	reopened, err := OpenFileStore(path)
	require.NoError(t, err)
	assert.True(t, reopened.IsProcessed("c.pdf"))
}

func TestFileStoreOnDiskShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, s.MarkProcessed("a.pdf", at))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var state struct {
		ProcessedFiles []string  `json:"processed_files"`
		LastUpdated    time.Time `json:"last_updated"`
	}
	require.NoError(t, json.Unmarshal(data, &state))
	assert.Equal(t, []string{"a.pdf"}, state.ProcessedFiles)
	assert.Equal(t, at, state.LastUpdated)
}

func TestFileStoreConcurrentReaders(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed.json")
	s, err := OpenFileStore(path)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			s.IsProcessed("x.pdf")
			s.All()
		}
	}()
	for i := 0; i < 20; i++ {
		require.NoError(t, s.MarkProcessed("x.pdf", time.Now()))
	}
	<-done
}
