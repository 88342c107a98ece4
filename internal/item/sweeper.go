package item

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const sweeperLockKey = "wizardgo:item-sweeper"

// Locker hands out a lease so that only one replica sweeps per interval.
type Locker interface {
	TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Sweeper runs Cleanup on a fixed interval.
type Sweeper struct {
	service   *Service
	interval  time.Duration
	locker    Locker
	scheduler gocron.Scheduler
	logger    *slog.Logger
}

// NewSweeper builds a stopped sweeper. locker may be nil on single-replica deployments.
func NewSweeper(service *Service, interval time.Duration, locker Locker, logger *slog.Logger) (*Sweeper, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	s := &Sweeper{
		service:   service,
		interval:  interval,
		locker:    locker,
		scheduler: scheduler,
		logger:    logger.With("component", "item_sweeper"),
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), interval)
			defer cancel()
			if _, err := s.Sweep(ctx); err != nil {
				s.logger.Error("Expired item sweep failed", "error", err)
			}
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule sweep job: %w", err)
	}

	return s, nil
}

func (s *Sweeper) Start() {
	s.logger.Info("Starting expired item sweeper", "interval", s.interval)
	s.scheduler.Start()
}

func (s *Sweeper) Stop() error {
	s.logger.Info("Stopping expired item sweeper")
	return s.scheduler.Shutdown()
}

// Sweep runs one cleanup pass if this replica holds the lease.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	if s.locker != nil {
		acquired, err := s.locker.TryLock(ctx, sweeperLockKey, s.interval*9/10)
		if err != nil {
			return 0, err
		}
		if !acquired {
			s.logger.Debug("Another replica holds the sweep lease, skipping")
			return 0, nil
		}
	}

	return s.service.Cleanup(ctx)
}
