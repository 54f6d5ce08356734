package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubCompanySource struct {
	ids []uuid.UUID
	err error
}

func (s *stubCompanySource) ActiveCompanyIDs(context.Context) ([]uuid.UUID, error) {
	return s.ids, s.err
}

type stubSweepRunner struct {
	mu      sync.Mutex
	swept   []uuid.UUID
	failFor map[uuid.UUID]error
}

func (s *stubSweepRunner) SweepCompany(_ context.Context, companyID uuid.UUID) (*apptrace.SweepResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.swept = append(s.swept, companyID)
	if err, ok := s.failFor[companyID]; ok {
		return nil, err
	}
	return &apptrace.SweepResult{LotsChecked: 3, AnomaliesOpened: 1}, nil
}

func (s *stubSweepRunner) sweptCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.swept)
}

func TestReconciliationSweeperRunOnce(t *testing.T) {
	t.Run("sweeps every active company", func(t *testing.T) {
		companies := &stubCompanySource{ids: []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}}
		runner := &stubSweepRunner{}
		sweeper := NewReconciliationSweeper(DefaultSweeperConfig(), companies, runner, zap.NewNop())

		sweeper.RunOnce(context.Background())

		assert.Equal(t, 3, runner.sweptCount())
	})

	t.Run("continues past a failing company", func(t *testing.T) {
		bad := uuid.New()
		good := uuid.New()
		companies := &stubCompanySource{ids: []uuid.UUID{bad, good}}
		runner := &stubSweepRunner{failFor: map[uuid.UUID]error{bad: errors.New("boom")}}
		sweeper := NewReconciliationSweeper(DefaultSweeperConfig(), companies, runner, zap.NewNop())

		sweeper.RunOnce(context.Background())

		assert.Equal(t, 2, runner.sweptCount())
	})

	t.Run("stops when company listing fails", func(t *testing.T) {
		companies := &stubCompanySource{err: errors.New("db down")}
		runner := &stubSweepRunner{}
		sweeper := NewReconciliationSweeper(DefaultSweeperConfig(), companies, runner, zap.NewNop())

		sweeper.RunOnce(context.Background())

		assert.Zero(t, runner.sweptCount())
	})
}

func TestReconciliationSweeperLifecycle(t *testing.T) {
	t.Run("start and stop", func(t *testing.T) {
		cfg := DefaultSweeperConfig()
		cfg.Interval = 10 * time.Millisecond
		companies := &stubCompanySource{ids: []uuid.UUID{uuid.New()}}
		runner := &stubSweepRunner{}
		sweeper := NewReconciliationSweeper(cfg, companies, runner, zap.NewNop())

		require.NoError(t, sweeper.Start(context.Background()))

		// Let at least one tick fire
		time.Sleep(50 * time.Millisecond)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sweeper.Stop(ctx))

		assert.Greater(t, runner.sweptCount(), 0)
	})

	t.Run("double start returns error", func(t *testing.T) {
		cfg := DefaultSweeperConfig()
		cfg.Interval = time.Hour
		sweeper := NewReconciliationSweeper(cfg, &stubCompanySource{}, &stubSweepRunner{}, zap.NewNop())

		require.NoError(t, sweeper.Start(context.Background()))
		assert.ErrorIs(t, sweeper.Start(context.Background()), ErrAlreadyRunning)

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		require.NoError(t, sweeper.Stop(ctx))
	})

	t.Run("disabled sweeper never runs", func(t *testing.T) {
		cfg := DefaultSweeperConfig()
		cfg.Enabled = false
		runner := &stubSweepRunner{}
		sweeper := NewReconciliationSweeper(cfg, &stubCompanySource{ids: []uuid.UUID{uuid.New()}}, runner, zap.NewNop())

		require.NoError(t, sweeper.Start(context.Background()))
		require.NoError(t, sweeper.Stop(context.Background()))

		assert.Zero(t, runner.sweptCount())
	})
}
