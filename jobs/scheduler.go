// Package jobs runs background maintenance on a cron schedule.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

const (
	purgeSchedule   = "15 0 * * *"
	cleanupSchedule = "@every 1m"
	visitorMaxIdle  = 3 * time.Minute
)

type TokenPurger interface {
	PurgeExpired(ctx context.Context) (int64, error)
}

type VisitorCleaner interface {
	Cleanup(maxIdle time.Duration) int
}

type Scheduler struct {
	cron     *cron.Cron
	tokens   TokenPurger
	visitors VisitorCleaner
}

// NewScheduler builds a scheduler whose cron expressions are evaluated in loc.
func NewScheduler(loc *time.Location, tokens TokenPurger, visitors VisitorCleaner) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		cron:     cron.New(cron.WithLocation(loc)),
		tokens:   tokens,
		visitors: visitors,
	}
}

// Start registers the jobs and starts the cron loop. Jobs run with ctx.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(purgeSchedule, func() { s.PurgeTokens(ctx) }); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(cleanupSchedule, s.CleanupVisitors); err != nil {
		return err
	}

	s.cron.Start()
	log.WithField("location", s.cron.Location().String()).Info("Job scheduler started")
	return nil
}

// Stop waits for running jobs to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info("Job scheduler stopped")
}

func (s *Scheduler) PurgeTokens(ctx context.Context) {
	if s.tokens == nil {
		return
	}
	n, err := s.tokens.PurgeExpired(ctx)
	if err != nil {
		log.WithError(err).Error("[CRON] Token purge failed")
		return
	}
	log.WithField("purged", n).Debug("[CRON] Token purge finished")
}

func (s *Scheduler) CleanupVisitors() {
	if s.visitors == nil {
		return
	}
	if n := s.visitors.Cleanup(visitorMaxIdle); n > 0 {
		log.WithField("dropped", n).Debug("[CRON] Rate limiter visitors cleaned up")
	}
}
