package scheduler

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	inventoryapp "github.com/erp/manufacturing/internal/application/inventory"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeReconciler struct {
	calls   atomic.Int32
	mu      sync.Mutex
	summary *inventoryapp.ReconcileSummary
	err     error
	block   chan struct{}
}

func (f *fakeReconciler) ReconcileAll(ctx context.Context) (*inventoryapp.ReconcileSummary, error) {
	f.calls.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if f.summary != nil {
		return f.summary, nil
	}
	return &inventoryapp.ReconcileSummary{Drifted: []inventoryapp.ReconcileResponse{}}, nil
}

func testConfig(interval time.Duration) ReconcileSchedulerConfig {
	return ReconcileSchedulerConfig{Enabled: true, Interval: interval, RunTimeout: time.Second}
}

func TestDefaultReconcileSchedulerConfig(t *testing.T) {
	cfg := DefaultReconcileSchedulerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, time.Hour, cfg.Interval)
	assert.Equal(t, 5*time.Minute, cfg.RunTimeout)
	assert.NoError(t, cfg.Validate())
}

func TestReconcileSchedulerConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ReconcileSchedulerConfig
		wantErr bool
	}{
		{"valid", testConfig(time.Minute), false},
		{"zero interval", ReconcileSchedulerConfig{Enabled: true, RunTimeout: time.Second}, true},
		{"zero timeout", ReconcileSchedulerConfig{Enabled: true, Interval: time.Minute}, true},
		{"disabled ignores values", ReconcileSchedulerConfig{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewReconcileScheduler_RequiresReconciler(t *testing.T) {
	_, err := NewReconcileScheduler(testConfig(time.Minute), nil, zap.NewNop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestReconcileScheduler_RunsOnInterval(t *testing.T) {
	reconciler := &fakeReconciler{}
	s, err := NewReconcileScheduler(testConfig(10*time.Millisecond), reconciler, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.IsRunning())

	assert.Eventually(t, func() bool {
		return reconciler.calls.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())

	calls := reconciler.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, reconciler.calls.Load())

	status := s.Status()
	assert.False(t, status.Running)
	assert.GreaterOrEqual(t, status.TotalRuns, 2)
	assert.NotNil(t, status.LastRunAt)
}

func TestReconcileScheduler_Disabled(t *testing.T) {
	reconciler := &fakeReconciler{}
	s, err := NewReconcileScheduler(ReconcileSchedulerConfig{}, reconciler, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	assert.False(t, s.IsRunning())

	_, err = s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrSchedulerNotRunning)
	assert.Zero(t, reconciler.calls.Load())
}

func TestReconcileScheduler_RunNow(t *testing.T) {
	drifted := inventoryapp.ReconcileResponse{
		ComponentID:    uuid.New(),
		QuantityOnHand: 13,
		LedgerTotal:    10,
		Difference:     3,
	}
	reconciler := &fakeReconciler{summary: &inventoryapp.ReconcileSummary{
		Checked: 4,
		Drifted: []inventoryapp.ReconcileResponse{drifted},
	}}
	core, logs := observer.New(zap.InfoLevel)
	s, err := NewReconcileScheduler(testConfig(time.Hour), reconciler, zap.New(core))
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	summary, err := s.RunNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.Checked)

	status := s.Status()
	assert.Equal(t, 4, status.LastChecked)
	assert.Equal(t, 1, status.LastDrifted)
	assert.Equal(t, 1, status.TotalRuns)
	assert.Empty(t, status.LastError)

	warnings := logs.FilterMessage("Component on-hand quantity drifted from ledger").All()
	require.Len(t, warnings, 1)
	assert.Equal(t, drifted.ComponentID.String(), warnings[0].ContextMap()["component_id"])
}

func TestReconcileScheduler_RecordsFailure(t *testing.T) {
	reconciler := &fakeReconciler{err: errors.New("connection refused")}
	s, err := NewReconcileScheduler(testConfig(time.Hour), reconciler, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	_, err = s.RunNow(context.Background())
	assert.Error(t, err)

	status := s.Status()
	assert.Equal(t, 1, status.TotalFailures)
	assert.Equal(t, "connection refused", status.LastError)
}

func TestReconcileScheduler_RejectsOverlappingRuns(t *testing.T) {
	reconciler := &fakeReconciler{block: make(chan struct{})}
	s, err := NewReconcileScheduler(testConfig(time.Hour), reconciler, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := s.RunNow(context.Background())
		done <- err
	}()

	require.Eventually(t, func() bool {
		return reconciler.calls.Load() == 1
	}, time.Second, time.Millisecond)

	_, err = s.RunNow(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)

	close(reconciler.block)
	assert.NoError(t, <-done)
}
