// Package scheduler runs background maintenance jobs on a fixed interval.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"go.uber.org/zap"
)

// LedgerReconciler compares every component's on-hand quantity with its ledger
type LedgerReconciler interface {
	ReconcileAll(ctx context.Context) (*inventoryapp.ReconcileSummary, error)
}

// ReconcileSchedulerConfig holds configuration for the reconciliation job
type ReconcileSchedulerConfig struct {
	Enabled bool
	// Interval between runs
	Interval time.Duration
	// RunTimeout bounds a single run
	RunTimeout time.Duration
}

// DefaultReconcileSchedulerConfig returns default reconciliation settings
func DefaultReconcileSchedulerConfig() ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{
		Enabled:    true,
		Interval:   time.Hour,
		RunTimeout: 5 * time.Minute,
	}
}

// Validate checks the configuration
func (c ReconcileSchedulerConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive", ErrInvalidConfig)
	}
	if c.RunTimeout <= 0 {
		return fmt.Errorf("%w: run timeout must be positive", ErrInvalidConfig)
	}
	return nil
}

// ReconcileStatus describes the scheduler and its last run
type ReconcileStatus struct {
	Running       bool       `json:"running"`
	Interval      string     `json:"interval"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	LastChecked   int        `json:"last_checked"`
	LastDrifted   int        `json:"last_drifted"`
	LastError     string     `json:"last_error,omitempty"`
	TotalRuns     int        `json:"total_runs"`
	TotalFailures int        `json:"total_failures"`
}

// ReconcileScheduler periodically reconciles the stock ledger and logs drift
type ReconcileScheduler struct {
	config     ReconcileSchedulerConfig
	reconciler LedgerReconciler
	logger     *zap.Logger
	now        func() time.Time

	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	running bool
	runMu   sync.Mutex
	status  ReconcileStatus
}

// NewReconcileScheduler creates a new reconciliation scheduler
func NewReconcileScheduler(
	config ReconcileSchedulerConfig,
	reconciler LedgerReconciler,
	logger *zap.Logger,
) (*ReconcileScheduler, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if reconciler == nil {
		return nil, fmt.Errorf("%w: reconciler is required", ErrInvalidConfig)
	}
	return &ReconcileScheduler{
		config:     config,
		reconciler: reconciler,
		logger:     logger,
		now:        time.Now,
		status:     ReconcileStatus{Interval: config.Interval.String()},
	}, nil
}

// Start starts the periodic loop. It is a no-op when disabled or already running.
func (s *ReconcileScheduler) Start(ctx context.Context) error {
	if !s.config.Enabled {
		s.logger.Info("Ledger reconciliation scheduler disabled")
		return nil
	}

	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = true
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go s.runLoop(ctx)

	s.logger.Info("Ledger reconciliation scheduler started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the loop and waits for an in-flight run to finish
func (s *ReconcileScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	cancel := s.cancel
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Ledger reconciliation scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// IsRunning reports whether the loop is active
func (s *ReconcileScheduler) IsRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// RunNow performs one reconciliation outside the schedule
func (s *ReconcileScheduler) RunNow(ctx context.Context) (*inventoryapp.ReconcileSummary, error) {
	if !s.IsRunning() {
		return nil, ErrSchedulerNotRunning
	}
	return s.run(ctx)
}

// Status returns a snapshot of the scheduler state
func (s *ReconcileScheduler) Status() ReconcileStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	status := s.status
	status.Running = s.running
	return status
}

func (s *ReconcileScheduler) runLoop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.run(ctx); err != nil && ctx.Err() == nil {
				s.logger.Error("Ledger reconciliation failed", zap.Error(err))
			}
		}
	}
}

func (s *ReconcileScheduler) run(ctx context.Context) (*inventoryapp.ReconcileSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrRunInProgress
	}
	defer s.runMu.Unlock()

	runCtx, cancel := context.WithTimeout(ctx, s.config.RunTimeout)
	defer cancel()

	started := s.now()
	summary, err := s.reconciler.ReconcileAll(runCtx)

	s.mu.Lock()
	s.status.LastRunAt = &started
	s.status.TotalRuns++
	if err != nil {
		s.status.TotalFailures++
		s.status.LastError = err.Error()
	} else {
		s.status.LastError = ""
		s.status.LastChecked = summary.Checked
		s.status.LastDrifted = len(summary.Drifted)
	}
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}

	for _, d := range summary.Drifted {
		s.logger.Warn("Component on-hand quantity drifted from ledger",
			zap.String("component_id", d.ComponentID.String()),
			zap.Int64("quantity_on_hand", d.QuantityOnHand),
			zap.Int64("ledger_total", d.LedgerTotal),
			zap.Int64("difference", d.Difference),
		)
	}
	s.logger.Info("Ledger reconciliation finished",
		zap.Int("checked", summary.Checked),
		zap.Int("drifted", len(summary.Drifted)),
		zap.Duration("duration", s.now().Sub(started)),
	)
	return summary, nil
}
