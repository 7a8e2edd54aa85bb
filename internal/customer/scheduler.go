package customer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler runs the reconciler on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	reconciler *Reconciler
	logger     *zap.Logger

	// Serializes runs triggered by the schedule and by RunNow.
	mu sync.Mutex
}

// NewScheduler creates a scheduler that runs reconciler on spec, which
// accepts standard cron expressions and descriptors such as "@daily". An
// empty spec schedules nothing; RunNow still works.
func NewScheduler(reconciler *Reconciler, spec string, logger *zap.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:       cron.New(),
		reconciler: reconciler,
		logger:     logger.Named("reconcile-scheduler"),
	}

	if spec == "" {
		return s, nil
	}
	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("scheduling reconciler with %q: %w", spec, err)
	}
	return s, nil
}

// Start begins running scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("customer reconcile scheduler started")
}

// Stop waits for a running job to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("customer reconcile scheduler stopped")
}

// RunNow runs the reconciler immediately, waiting for any scheduled run.
func (s *Scheduler) RunNow(ctx context.Context) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reconciler.Run(ctx)
}

func (s *Scheduler) run() {
	if _, err := s.RunNow(context.Background()); err != nil {
		s.logger.Error("scheduled reconcile failed", zap.Error(err))
	}
}

// NextRun returns when the reconciler runs next, or the zero time if the
// scheduler is not started.
func (s *Scheduler) NextRun() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}
