package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Sweeper is the periodic job run by the Scheduler.
type Sweeper interface {
	Sweep(ctx context.Context) error
}

// Scheduler periodically runs the cam liveness sweep.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sweeper   Sweeper
	interval  time.Duration
	logger    *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a new Scheduler.
func New(sweeper Sweeper, interval time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sweeper:   sweeper,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start schedules the sweep every interval, running it once right away, and
// starts the underlying scheduler.
func (s *Scheduler) Start() error {
	if s.interval <= 0 {
		s.interval = 2 * time.Hour
	}

	_, err := s.scheduler.Every(s.interval).SingletonMode().Do(s.run)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

func (s *Scheduler) run() {
	// A sweep must finish before the next one is due.
	ctx, cancel := context.WithTimeout(s.ctx, s.interval)
	defer cancel()

	s.logger.Info("running cam liveness sweep")
	start := time.Now()
	if err := s.sweeper.Sweep(ctx); err != nil {
		s.logger.Error("cam liveness sweep failed", "error", err)
		return
	}
	s.logger.Info("completed cam liveness sweep", "took", time.Since(start))
}

// Stop cancels a running sweep and any future ones.
func (s *Scheduler) Stop() {
	s.cancel()
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
