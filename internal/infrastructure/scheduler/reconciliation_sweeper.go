package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	apptrace "github.com/foodtrace/backend/internal/application/traceability"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrAlreadyRunning is returned when Start is called on a running sweeper
var ErrAlreadyRunning = errors.New("sweeper already running")

// CompanySource lists the companies the sweeper should reconcile
type CompanySource interface {
	ActiveCompanyIDs(ctx context.Context) ([]uuid.UUID, error)
}

// SweepRunner runs one reconciliation pass over a company's active lots
type SweepRunner interface {
	SweepCompany(ctx context.Context, companyID uuid.UUID) (*apptrace.SweepResult, error)
}

// SweeperConfig holds configuration for the reconciliation sweeper
type SweeperConfig struct {
	// Enabled indicates if the background sweep is enabled
	Enabled bool
	// Interval is the time between sweep passes
	Interval time.Duration
	// SweepTimeout bounds one full pass across all companies
	SweepTimeout time.Duration
}

// DefaultSweeperConfig returns default sweeper configuration
func DefaultSweeperConfig() SweeperConfig {
	return SweeperConfig{
		Enabled:      true,
		Interval:     1 * time.Hour,
		SweepTimeout: 10 * time.Minute,
	}
}

// ReconciliationSweeper periodically reconciles every active lot of every
// company. Each pass is best effort; a company that fails is logged and the
// pass continues with the next one.
type ReconciliationSweeper struct {
	config    SweeperConfig
	companies CompanySource
	runner    SweepRunner
	logger    *zap.Logger

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewReconciliationSweeper creates a new ReconciliationSweeper
func NewReconciliationSweeper(config SweeperConfig, companies CompanySource, runner SweepRunner, logger *zap.Logger) *ReconciliationSweeper {
	return &ReconciliationSweeper{
		config:    config,
		companies: companies,
		runner:    runner,
		logger:    logger,
	}
}

// Start begins the periodic sweep loop
func (s *ReconciliationSweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return ErrAlreadyRunning
	}
	if !s.config.Enabled {
		s.logger.Info("Reconciliation sweeper disabled")
		return nil
	}

	s.running = true
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})

	go s.loop()

	s.logger.Info("Reconciliation sweeper started",
		zap.Duration("interval", s.config.Interval),
	)
	return nil
}

// Stop stops the sweep loop, waiting for an in-flight pass to finish
func (s *ReconciliationSweeper) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.doneCh
	s.mu.Unlock()

	select {
	case <-done:
		s.logger.Info("Reconciliation sweeper stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *ReconciliationSweeper) loop() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.RunOnce(context.Background())
		}
	}
}

// RunOnce executes a single sweep pass over every active company
func (s *ReconciliationSweeper) RunOnce(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.config.SweepTimeout)
	defer cancel()

	start := time.Now()

	companyIDs, err := s.companies.ActiveCompanyIDs(ctx)
	if err != nil {
		s.logger.Error("Sweep pass could not list companies", zap.Error(err))
		return
	}

	var lotsChecked, anomaliesOpened, failures int
	for i, companyID := range companyIDs {
		if ctx.Err() != nil {
			s.logger.Warn("Sweep pass timed out",
				zap.Int("companies_remaining", len(companyIDs)-i),
			)
			return
		}

		result, err := s.runner.SweepCompany(ctx, companyID)
		if err != nil {
			failures++
			s.logger.Error("Company sweep failed",
				zap.String("company_id", companyID.String()),
				zap.Error(err),
			)
			continue
		}
		lotsChecked += result.LotsChecked
		anomaliesOpened += result.AnomaliesOpened
	}

	s.logger.Info("Sweep pass completed",
		zap.Int("companies", len(companyIDs)),
		zap.Int("lots_checked", lotsChecked),
		zap.Int("anomalies_opened", anomaliesOpened),
		zap.Int("failed_companies", failures),
		zap.Duration("elapsed", time.Since(start)),
	)
}
