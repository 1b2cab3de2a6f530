package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	installmentapp "github.com/goldshop/backend/internal/application/installment"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultScanner runs one pass over active contracts, moving those whose
// grace window has been exhausted into the defaulted state.
type DefaultScanner interface {
	ScanForDefaults(ctx context.Context) (*installmentapp.ScanResult, error)
}

// DefaultScanSchedulerConfig holds configuration for the nightly default scan
type DefaultScanSchedulerConfig struct {
	// CronSchedule is a standard 5-field cron expression
	CronSchedule string
	// JobTimeout is the maximum time a single scan may run
	JobTimeout time.Duration
}

// DefaultScanSchedulerDefaults returns the default scan schedule: 3 AM daily
func DefaultScanSchedulerDefaults() DefaultScanSchedulerConfig {
	return DefaultScanSchedulerConfig{
		CronSchedule: "0 3 * * *",
		JobTimeout:   10 * time.Minute,
	}
}

// DefaultScanScheduler triggers the contract default scan on a cron schedule
type DefaultScanScheduler struct {
	cfg     DefaultScanSchedulerConfig
	scanner DefaultScanner
	logger  *zap.Logger

	cron    *cron.Cron
	entryID cron.EntryID

	mu         sync.Mutex
	running    bool
	lastRunAt  *time.Time
	lastResult *installmentapp.ScanResult
	lastErr    error
}

// NewDefaultScanScheduler creates a new scheduler for the default scan
func NewDefaultScanScheduler(cfg DefaultScanSchedulerConfig, scanner DefaultScanner, logger *zap.Logger) *DefaultScanScheduler {
	if cfg.CronSchedule == "" {
		cfg.CronSchedule = DefaultScanSchedulerDefaults().CronSchedule
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = DefaultScanSchedulerDefaults().JobTimeout
	}
	return &DefaultScanScheduler{
		cfg:     cfg,
		scanner: scanner,
		logger:  logger.Named("default-scan"),
	}
}

// Start registers the scan job and starts the cron loop
func (s *DefaultScanScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrSchedulerAlreadyRunning
	}

	c := cron.New()
	entryID, err := c.AddFunc(s.cfg.CronSchedule, s.runOnce)
	if err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	s.cron = c
	s.entryID = entryID
	s.running = true
	c.Start()

	s.logger.Info("default scan scheduler started",
		zap.String("schedule", s.cfg.CronSchedule),
		zap.Duration("job_timeout", s.cfg.JobTimeout),
	)
	return nil
}

// Stop stops the cron loop and waits for an in-flight scan to finish,
// or for ctx to expire, whichever comes first
func (s *DefaultScanScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	s.running = false
	c := s.cron
	s.mu.Unlock()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
		s.logger.Info("default scan scheduler stopped")
		return nil
	case <-ctx.Done():
		s.logger.Warn("default scan scheduler stop timed out with scan in flight")
		return ctx.Err()
	}
}

// TriggerNow runs one scan immediately, outside the cron schedule
func (s *DefaultScanScheduler) TriggerNow() {
	s.runOnce()
}

// LastRun reports the outcome of the most recent scan
func (s *DefaultScanScheduler) LastRun() (at *time.Time, result *installmentapp.ScanResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRunAt, s.lastResult, s.lastErr
}

// runOnce executes one scan pass with the configured timeout
func (s *DefaultScanScheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.JobTimeout)
	defer cancel()

	started := time.Now()
	result, err := s.scanner.ScanForDefaults(ctx)

	s.mu.Lock()
	s.lastRunAt = &started
	s.lastResult = result
	s.lastErr = err
	s.mu.Unlock()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.Join(ErrScanTimeout, err)
		}
		s.logger.Error("default scan failed",
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("default scan finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("scanned", result.Scanned),
		zap.Int("defaulted", result.Defaulted),
		zap.Int("in_grace", result.InGrace),
		zap.Int("conflicts", result.Conflicts),
	)
}
