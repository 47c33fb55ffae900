package workspace

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tuutta/wayfinder/pkg/observability"
)

// Sweeper is a store backend that can delete expired sessions.
type Sweeper interface {
	SweepExpired(ctx context.Context, maxAge time.Duration) (int, error)
}

// Janitor periodically sweeps expired persisted sessions from a store.
type Janitor struct {
	cron   *cron.Cron
	store  Sweeper
	maxAge time.Duration
	logger *observability.Logger
}

// NewJanitor schedules a sweep on the given cron spec (e.g. "@hourly").
func NewJanitor(store Sweeper, schedule string, maxAge time.Duration, logger *observability.Logger) (*Janitor, error) {
	j := &Janitor{
		cron:   cron.New(),
		store:  store,
		maxAge: maxAge,
		logger: logger,
	}
	if _, err := j.cron.AddFunc(schedule, j.sweep); err != nil {
		return nil, err
	}
	return j, nil
}

// Start begins the schedule.
func (j *Janitor) Start() { j.cron.Start() }

// Stop halts the schedule and waits for a running sweep to finish.
func (j *Janitor) Stop() {
	<-j.cron.Stop().Done()
}

func (j *Janitor) sweep() {
	defer observability.RecoverPanic(j.logger, "workspace state sweep")

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	removed, err := j.store.SweepExpired(ctx, j.maxAge)
	if err != nil {
		j.logger.WithError(err).Warn("Workspace state sweep failed")
		return
	}
	if removed > 0 {
		j.logger.WithField("removed", removed).Info("Swept expired workspace state")
	}
}
