// Package pipeline drives resume ingestion: it polls an object store for
// new documents, extracts structured candidate records from them, and
// writes the records to the reconciliation store. A processed-set keeps
// polls idempotent. The source bucket is read-only to the pipeline;
// ingested objects stay where they are.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/resumeforge/reconcile/internal/bucket"
	"github.com/resumeforge/reconcile/internal/extract"
	"github.com/resumeforge/reconcile/internal/processed"
	"github.com/resumeforge/reconcile/internal/storage"
	"github.com/resumeforge/reconcile/internal/types"
)

// ErrPollInProgress is returned when a poll is requested while another is
// still running. Polls never overlap.
var ErrPollInProgress = errors.New("poll already in progress")

// PollStats summarizes one poll cycle.
type PollStats struct {
	Listed           int           `json:"listed"`
	AlreadyProcessed int           `json:"already_processed"`
	Processed        int           `json:"processed"`
	Unsupported      int           `json:"unsupported"`
	Empty            int           `json:"empty"`
	Failed           int           `json:"failed"`
	Elapsed          time.Duration `json:"elapsed"`
}

// Pipeline polls a document bucket and ingests what it finds.
type Pipeline struct {
	bucket    bucket.Store
	extractor extract.Extractor
	store     storage.Storage
	seen      processed.Store
	cfg       Config
	log       zerolog.Logger

	polling atomic.Bool
	trigger chan struct{}
}

// New creates a pipeline over the given backends.
func New(b bucket.Store, e extract.Extractor, s storage.Storage, seen processed.Store, cfg Config, log zerolog.Logger) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid pipeline config: %w", err)
	}
	return &Pipeline{
		bucket:    b,
		extractor: e,
		store:     s,
		seen:      seen,
		cfg:       cfg,
		log:       log,
		trigger:   make(chan struct{}, 1),
	}, nil
}

// Poll runs one ingestion cycle: list the bucket, skip what the
// processed-set already covers, and ingest the rest with bounded
// concurrency. Only one poll runs at a time.
func (p *Pipeline) Poll(ctx context.Context) (*PollStats, error) {
	if !p.polling.CompareAndSwap(false, true) {
		return nil, ErrPollInProgress
	}
	defer p.polling.Store(false)

	ctx, cancel := context.WithTimeout(ctx, p.cfg.PollTimeout)
	defer cancel()

	start := time.Now()
	objects, err := p.bucket.List(ctx, p.cfg.Prefix)
	if err != nil {
		return nil, fmt.Errorf("failed to list bucket: %w", err)
	}

	stats := &PollStats{Listed: len(objects)}
	var pending []bucket.Object
	for _, obj := range objects {
		if p.seen.IsProcessed(obj.Name) {
			stats.AlreadyProcessed++
			continue
		}
		pending = append(pending, obj)
	}

	p.log.Info().
		Int("listed", stats.Listed).
		Int("pending", len(pending)).
		Msg("poll started")

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		sem = semaphore.NewWeighted(int64(p.cfg.MaxConcurrent))
	)
	for _, obj := range pending {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(obj bucket.Object) {
			defer wg.Done()
			defer sem.Release(1)

			outcome := p.ingestOne(ctx, obj)
			mu.Lock()
			switch outcome {
			case outcomeProcessed:
				stats.Processed++
			case outcomeUnsupported:
				stats.Unsupported++
			case outcomeEmpty:
				stats.Empty++
			case outcomeFailed:
				stats.Failed++
			}
			mu.Unlock()
		}(obj)
	}
	wg.Wait()

	stats.Elapsed = time.Since(start)
	p.log.Info().
		Int("processed", stats.Processed).
		Int("unsupported", stats.Unsupported).
		Int("empty", stats.Empty).
		Int("failed", stats.Failed).
		Dur("elapsed", stats.Elapsed).
		Msg("poll finished")
	return stats, nil
}

type outcome int

const (
	outcomeProcessed outcome = iota
	outcomeUnsupported
	outcomeEmpty
	outcomeFailed
)

// ingestOne downloads, extracts and stores a single document. Permanent
// failures are marked processed so they stop being retried on every poll;
// transient ones stay unmarked for the next cycle.
func (p *Pipeline) ingestOne(ctx context.Context, obj bucket.Object) outcome {
	log := p.log.With().Str("file", obj.Name).Logger()

	data, err := p.bucket.Get(ctx, obj.Name)
	if err != nil {
		log.Error().Err(err).Msg("download failed")
		return outcomeFailed
	}

	rec, err := p.extractWithRetry(ctx, data, obj.Name)
	if err != nil {
		switch extract.KindOf(err) {
		case extract.UnsupportedFormat:
			log.Warn().Err(err).Msg("unsupported document, marking processed")
			p.mark(obj.Name, log)
			return outcomeUnsupported
		case extract.EmptyResult:
			// Nothing extractable. Mark it so scanned-image resumes
			// don't clog every poll.
			log.Warn().Err(err).Msg("no extractable content, marking processed")
			p.mark(obj.Name, log)
			return outcomeEmpty
		default:
			p.spoolFailure(obj.Name, data, log)
			log.Error().Err(err).Msg("extraction failed")
			return outcomeFailed
		}
	}

	employeeID, err := p.store.WriteCandidate(ctx, rec, obj.Name)
	if err != nil {
		log.Error().Err(err).Msg("store write failed")
		return outcomeFailed
	}

	p.mark(obj.Name, log)
	p.clearSpool(obj.Name)

	log.Info().
		Str("employee_id", employeeID).
		Str("name", rec.Name).
		Int("projects", len(rec.Projects)).
		Msg("ingested")
	return outcomeProcessed
}

// extractWithRetry retries transient extraction failures with exponential
// backoff. Permanent failures short-circuit.
func (p *Pipeline) extractWithRetry(ctx context.Context, data []byte, filename string) (*types.CandidateRecord, error) {
	var rec *types.CandidateRecord
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = p.cfg.RetryBackoff
	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(p.cfg.MaxRetries)), ctx)

	op := func() error {
		r, err := p.extractor.Extract(ctx, data, filename)
		if err != nil {
			var xerr *extract.Error
			if errors.As(err, &xerr) && xerr.Permanent() {
				return backoff.Permanent(err)
			}
			return err
		}
		rec = r
		return nil
	}
	if err := backoff.Retry(op, policy); err != nil {
		return nil, err
	}
	return rec, nil
}

// spoolPath is the working-copy location for one source object. One
// path per object, so repeated failures overwrite instead of piling up.
func (p *Pipeline) spoolPath(name string) string {
	return filepath.Join(p.cfg.TempDir, "reconcile-spool_"+filepath.Base(name))
}

// spoolFailure keeps a working copy of a document that failed extraction
// so it can be inspected by hand. Best effort.
func (p *Pipeline) spoolFailure(name string, data []byte, log zerolog.Logger) {
	if p.cfg.TempDir == "" {
		return
	}
	path := p.spoolPath(name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		log.Warn().Err(err).Msg("failed to spool document copy")
		return
	}
	log.Info().Str("path", path).Msg("spooled failed document")
}

// clearSpool drops the working copy once the document no longer needs
// inspection.
func (p *Pipeline) clearSpool(name string) {
	if p.cfg.TempDir == "" {
		return
	}
	os.Remove(p.spoolPath(name))
}

func (p *Pipeline) mark(name string, log zerolog.Logger) {
	if err := p.seen.MarkProcessed(name, time.Now().UTC()); err != nil {
		log.Error().Err(err).Msg("failed to record processed file")
	}
}

// Watch polls on a ticker until ctx is cancelled. TriggerNow forces an
// immediate extra cycle.
func (p *Pipeline) Watch(ctx context.Context) error {
	ticker := time.NewTicker(p.cfg.PollInterval)
	defer ticker.Stop()

	p.log.Info().Dur("interval", p.cfg.PollInterval).Msg("watching bucket")

	for {
		if _, err := p.Poll(ctx); err != nil && !errors.Is(err, ErrPollInProgress) {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			p.log.Error().Err(err).Msg("poll failed")
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		case <-p.trigger:
		}
	}
}

// TriggerNow requests an immediate poll from a running Watch loop.
// Non-blocking; a pending trigger coalesces with this one.
func (p *Pipeline) TriggerNow() {
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}
