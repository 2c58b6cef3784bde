package application

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// WeeklyRewardWorker fires the weekly distribution on a fixed interval. Each
// run is still gated by the epoch cooldown, so firing more often than weekly
// only produces skipped runs.
type WeeklyRewardWorker struct {
	rewardHandler RewardHandler
	scheduler     gocron.Scheduler
}

// NewWeeklyRewardWorker creates a new weekly reward worker
func NewWeeklyRewardWorker(rewardHandler RewardHandler) (*WeeklyRewardWorker, error) {
	scheduler, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &WeeklyRewardWorker{
		rewardHandler: rewardHandler,
		scheduler:     scheduler,
	}, nil
}

// Start schedules the trigger and returns a stop function
func (w *WeeklyRewardWorker) Start(ctx context.Context, interval time.Duration) (func(), error) {
	_, err := w.scheduler.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() { w.runOnce(ctx) }),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule weekly distribution: %w", err)
	}

	w.scheduler.Start()
	log.Infof("Weekly reward worker started, checking every %v", interval)

	return func() {
		if err := w.scheduler.Shutdown(); err != nil {
			log.Errorf("Error stopping weekly reward worker: %v", err)
			return
		}
		log.Info("Weekly reward worker stopped")
	}, nil
}

func (w *WeeklyRewardWorker) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := w.rewardHandler.RunWeeklyDistribution(ctx, nil)
	if err != nil {
		log.Errorf("Error running weekly distribution: %v", err)
		return
	}

	log.WithFields(log.Fields{
		"distributed":    result.Distributed,
		"nextEligibleAt": result.NextEligibleAt,
		"recipients":     result.Recipients,
		"dust":           result.Dust.String(),
	}).Info("Weekly distribution check finished")
}
