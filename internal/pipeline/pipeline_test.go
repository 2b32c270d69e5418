package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/resumeforge/reconcile/internal/bucket"
	"github.com/resumeforge/reconcile/internal/extract"
	"github.com/resumeforge/reconcile/internal/processed"
	"github.com/resumeforge/reconcile/internal/storage/sqlite"
	"github.com/resumeforge/reconcile/internal/types"
)

type fakeBucket struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeBucket(names ...string) *fakeBucket {
	fb := &fakeBucket{objects: make(map[string][]byte)}
	for _, n := range names {
		fb.objects[n] = []byte("%PDF-1.4 stub")
	}
	return fb
}

func (f *fakeBucket) List(ctx context.Context, prefix string) ([]bucket.Object, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []bucket.Object
	for name, data := range f.objects {
		out = append(out, bucket.Object{Name: name, Size: int64(len(data))})
	}
	return out, nil
}

func (f *fakeBucket) Get(ctx context.Context, name string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrNotFound, name)
	}
	return data, nil
}

func (f *fakeBucket) Delete(ctx context.Context, name string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, name)
	f.deleted = append(f.deleted, name)
	return nil
}

type fakeExtractor struct {
	mu    sync.Mutex
	calls map[string]int
	fn    func(filename string, attempt int) (*types.CandidateRecord, error)
}

func (f *fakeExtractor) Extract(ctx context.Context, data []byte, filename string) (*types.CandidateRecord, error) {
	f.mu.Lock()
	if f.calls == nil {
		f.calls = make(map[string]int)
	}
	f.calls[filename]++
	attempt := f.calls[filename]
	f.mu.Unlock()
	return f.fn(filename, attempt)
}

func (f *fakeExtractor) callCount(filename string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[filename]
}

func goodRecord(name string) *types.CandidateRecord {
	return &types.CandidateRecord{
		Name:                name,
		RoleInContract:      "Engineer",
		FirmNameAndLocation: "Acme - Denver, CO",
		Projects: []types.CandidateProject{
			{TitleAndLocation: "Bridge Replacement"},
		},
	}
}

func newTestPipeline(t *testing.T, fb *fakeBucket, fe *fakeExtractor, cfg Config) (*Pipeline, *sqlite.SQLiteStorage) {
	t.Helper()
	dir := t.TempDir()

	store, err := sqlite.New(filepath.Join(dir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	seen, err := processed.OpenFileStore(filepath.Join(dir, "processed.json"))
	require.NoError(t, err)

	p, err := New(fb, fe, store, seen, cfg, zerolog.Nop())
	require.NoError(t, err)
	return p, store
}

func TestPollIngestsAndIsIdempotent(t *testing.T) {
	fb := newFakeBucket("smith.pdf", "jones.pdf")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		if filename == "smith.pdf" {
			return goodRecord("John Smith"), nil
		}
		return goodRecord("Mary Jones"), nil
	}}
	p, store := newTestPipeline(t, fb, fe, DefaultConfig())
	ctx := context.Background()

	stats, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Listed)
	assert.Equal(t, 2, stats.Processed)
	assert.Equal(t, 0, stats.Failed)

	dbStats, err := store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dbStats.Employees)

	// Nothing new: the second poll touches nothing.
	stats, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.AlreadyProcessed)
	assert.Equal(t, 0, stats.Processed)
	assert.Equal(t, 1, fe.callCount("smith.pdf"))
}

func TestPollUnsupportedMarkedWithoutRetry(t *testing.T) {
	fb := newFakeBucket("legacy.doc")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		return nil, &extract.Error{Kind: extract.UnsupportedFormat, Filename: filename}
	}}
	p, _ := newTestPipeline(t, fb, fe, DefaultConfig())
	ctx := context.Background()

	stats, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Unsupported)
	assert.Equal(t, 1, fe.callCount("legacy.doc"), "permanent failures are not retried")

	stats, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AlreadyProcessed, "unsupported files stay marked")
}

func TestPollEmptyResultMarkedProcessed(t *testing.T) {
	fb := newFakeBucket("scan.pdf")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		return nil, &extract.Error{Kind: extract.EmptyResult, Filename: filename}
	}}
	p, store := newTestPipeline(t, fb, fe, DefaultConfig())
	ctx := context.Background()

	stats, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Empty)

	dbStats, err := store.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, dbStats.Employees, "empty extraction writes no rows")

	stats, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.AlreadyProcessed)
}

func TestPollTransientFailureRetriesThenRecovers(t *testing.T) {
	fb := newFakeBucket("flaky.pdf")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		if attempt <= 2 {
			return nil, &extract.Error{Kind: extract.ServiceError, Filename: filename}
		}
		return goodRecord("Flaky Person"), nil
	}}
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryBackoff = time.Millisecond
	p, _ := newTestPipeline(t, fb, fe, cfg)
	ctx := context.Background()

	// First poll: initial attempt plus one retry, both fail; the file
	// stays unmarked.
	stats, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 2, fe.callCount("flaky.pdf"))

	// Second poll picks it up again and succeeds.
	stats, err = p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 0, stats.AlreadyProcessed)
}

func TestPollNeverDeletesSourceObjects(t *testing.T) {
	fb := newFakeBucket("smith.pdf", "legacy.doc")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		if filename == "legacy.doc" {
			return nil, &extract.Error{Kind: extract.UnsupportedFormat, Filename: filename}
		}
		return goodRecord("John Smith"), nil
	}}
	p, _ := newTestPipeline(t, fb, fe, DefaultConfig())

	stats, err := p.Poll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)
	assert.Equal(t, 1, stats.Unsupported)

	// Ingested or not, the source bucket keeps everything.
	assert.Empty(t, fb.deleted)
	objects, err := fb.List(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, objects, 2)
}

func TestSpoolOverwritesAndClearsOnSuccess(t *testing.T) {
	fb := newFakeBucket("flaky.pdf")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		if attempt <= 4 {
			return nil, &extract.Error{Kind: extract.ServiceError, Filename: filename}
		}
		return goodRecord("Flaky Person"), nil
	}}
	cfg := DefaultConfig()
	cfg.MaxRetries = 1
	cfg.RetryBackoff = time.Millisecond
	cfg.TempDir = t.TempDir()
	p, _ := newTestPipeline(t, fb, fe, cfg)
	ctx := context.Background()

	// Two failing polls leave exactly one working copy, not one per
	// failure.
	for i := 0; i < 2; i++ {
		stats, err := p.Poll(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, stats.Failed)
	}
	entries, err := os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	// A successful ingest removes it.
	stats, err := p.Poll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Processed)

	entries, err = os.ReadDir(cfg.TempDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPollSingleFlight(t *testing.T) {
	block := make(chan struct{})
	fb := newFakeBucket("slow.pdf")
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		<-block
		return goodRecord("Slow Person"), nil
	}}
	p, _ := newTestPipeline(t, fb, fe, DefaultConfig())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := p.Poll(context.Background())
		assert.NoError(t, err)
	}()

	// Wait until the first poll is inside the extractor.
	require.Eventually(t, func() bool {
		return fe.callCount("slow.pdf") == 1
	}, time.Second, time.Millisecond)

	_, err := p.Poll(context.Background())
	assert.ErrorIs(t, err, ErrPollInProgress)

	close(block)
	<-done
}

func TestWatchStopsOnCancel(t *testing.T) {
	fb := newFakeBucket()
	fe := &fakeExtractor{fn: func(filename string, attempt int) (*types.CandidateRecord, error) {
		return goodRecord("Nobody"), nil
	}}
	cfg := DefaultConfig()
	cfg.PollInterval = 10 * time.Millisecond
	p, _ := newTestPipeline(t, fb, fe, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- p.Watch(ctx) }()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop on cancel")
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	bad := cfg
	bad.MaxConcurrent = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.PollInterval = 0
	assert.Error(t, bad.Validate())
}
