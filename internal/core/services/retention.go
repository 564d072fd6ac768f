package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/chatstore/internal/core/domain"
	"github.com/custodia-labs/chatstore/internal/core/ports/driven"
	"github.com/custodia-labs/chatstore/internal/core/ports/driving"
	"github.com/custodia-labs/chatstore/internal/logger"
)

// Ensure Retention implements the interface.
var _ driving.RetentionService = (*Retention)(nil)

// BlobRateConfig bounds how fast purged file content is removed.
type BlobRateConfig struct {
	// DeletesPerSecond is the sustained rate.
	DeletesPerSecond float64
	// BurstSize is the maximum burst size.
	BurstSize int
}

// DefaultBlobRate keeps a large purge from saturating the content volume.
var DefaultBlobRate = BlobRateConfig{DeletesPerSecond: 50, BurstSize: 10}

// PurgeStore is the subset of driven.Storage the retention service needs.
type PurgeStore interface {
	DeleteOldMessages(ctx context.Context, maxDate time.Time) (int64, error)
	DeleteOldConfirmedSteps(ctx context.Context, maxDate time.Time) (int64, error)
	DeleteOldFiles(ctx context.Context, maxDate time.Time) ([]string, error)
}

// Retention purges records older than their configured maximum age and
// removes the content of purged files.
type Retention struct {
	config  domain.RetentionSettings
	store   PurgeStore
	blobs   driven.BlobStore
	limiter *rate.Limiter
	now     func() time.Time

	// runMu serialises purge runs between the loop and manual calls.
	runMu sync.Mutex

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewRetention creates a retention service. blobs may be nil when file
// content is not kept locally.
func NewRetention(config domain.RetentionSettings, store PurgeStore, blobs driven.BlobStore) *Retention {
	return &Retention{
		config:  config,
		store:   store,
		blobs:   blobs,
		limiter: rate.NewLimiter(rate.Limit(DefaultBlobRate.DeletesPerSecond), DefaultBlobRate.BurstSize),
		now:     time.Now,
	}
}

// RunOnce purges each entity kind older than its configured maximum age.
// Kinds with a zero maximum age are skipped.
func (s *Retention) RunOnce(ctx context.Context) (*domain.PurgeReport, error) {
	now := s.now()
	return s.purge(ctx, cutoffs{
		messages: cutoffFor(now, s.config.MessagesMaxAge),
		steps:    cutoffFor(now, s.config.StepsMaxAge),
		files:    cutoffFor(now, s.config.FilesMaxAge),
	})
}

// PurgeBefore purges every entity kind created strictly before cutoff.
func (s *Retention) PurgeBefore(ctx context.Context, cutoff time.Time) (*domain.PurgeReport, error) {
	if cutoff.IsZero() {
		return nil, fmt.Errorf("%w: zero cutoff", domain.ErrInvalidInput)
	}
	return s.purge(ctx, cutoffs{messages: cutoff, steps: cutoff, files: cutoff})
}

// Start begins the retention loop. This method blocks until Stop is called
// or ctx is cancelled. It returns immediately when nothing is configured.
func (s *Retention) Start(ctx context.Context) error {
	if s.config.Interval <= 0 || !s.config.IsEnabled() {
		logger.Debug("retention: disabled, not starting")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	stopCh, doneCh := s.stopCh, s.doneCh
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.doneCh == doneCh {
			s.running = false
		}
		s.mu.Unlock()
		close(doneCh)
	}()

	return s.run(ctx, stopCh)
}

// Stop ends the retention loop and waits for an in-flight run to finish.
func (s *Retention) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	doneCh := s.doneCh
	s.mu.Unlock()

	<-doneCh
	return nil
}

// run is the main retention loop.
func (s *Retention) run(ctx context.Context, stopCh <-chan struct{}) error {
	// Purge immediately on startup
	s.runScheduled(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-stopCh:
			return nil
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *Retention) runScheduled(ctx context.Context) {
	report, err := s.RunOnce(ctx)
	if err != nil {
		logger.Warn("retention: run failed: %v", err)
	}
	if report != nil && report.Total() > 0 {
		logger.Info("retention: purged %d messages, %d steps, %d files in %s",
			report.MessagesDeleted, report.StepsDeleted, len(report.FileIDs),
			report.EndedAt.Sub(report.StartedAt))
	}
}

// cutoffs holds one cutoff per entity kind. A zero time skips the kind.
type cutoffs struct {
	messages time.Time
	steps    time.Time
	files    time.Time
}

func cutoffFor(now time.Time, maxAge time.Duration) time.Time {
	if maxAge <= 0 {
		return time.Time{}
	}
	return now.Add(-maxAge)
}

// purge deletes each kind independently. A failure in one kind does not
// stop the others; all failures are returned joined.
func (s *Retention) purge(ctx context.Context, c cutoffs) (*domain.PurgeReport, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()

	report := &domain.PurgeReport{
		StartedAt: s.now(),
		FileIDs:   []string{},
	}
	var errs []error

	if !c.messages.IsZero() {
		n, err := s.store.DeleteOldMessages(ctx, c.messages)
		if err != nil {
			errs = append(errs, fmt.Errorf("purging messages: %w", err))
		}
		report.MessagesDeleted = n
	}

	if !c.steps.IsZero() {
		n, err := s.store.DeleteOldConfirmedSteps(ctx, c.steps)
		if err != nil {
			errs = append(errs, fmt.Errorf("purging confirmed steps: %w", err))
		}
		report.StepsDeleted = n
	}

	if !c.files.IsZero() {
		ids, err := s.store.DeleteOldFiles(ctx, c.files)
		if err != nil {
			errs = append(errs, fmt.Errorf("purging files: %w", err))
		}
		if ids != nil {
			report.FileIDs = ids
		}
		report.BlobErrors = s.deleteBlobs(ctx, ids)
	}

	report.EndedAt = s.now()
	logger.Debug("retention: purge finished, %d records", report.Total())
	return report, errors.Join(errs...)
}

// deleteBlobs removes content for purged files and returns the failure count.
// Once ctx is done the remaining files are counted as failures.
func (s *Retention) deleteBlobs(ctx context.Context, ids []string) int {
	if s.blobs == nil {
		return 0
	}
	failed := 0
	for i, id := range ids {
		if err := s.limiter.Wait(ctx); err != nil {
			logger.Warn("retention: stopped removing file content: %v", err)
			return failed + len(ids) - i
		}
		if err := s.blobs.Delete(ctx, id); err != nil {
			logger.Warn("retention: removing content of file %s: %v", id, err)
			failed++
		}
	}
	return failed
}
