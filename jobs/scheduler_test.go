package jobs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePurger struct {
	calls int
	err   error
}

func (p *fakePurger) PurgeExpired(context.Context) (int64, error) {
	p.calls++
	return 2, p.err
}

type fakeCleaner struct {
	maxIdle time.Duration
}

func (c *fakeCleaner) Cleanup(maxIdle time.Duration) int {
	c.maxIdle = maxIdle
	return 1
}

func TestJobsDelegate(t *testing.T) {
	purger := &fakePurger{}
	cleaner := &fakeCleaner{}
	s := NewScheduler(nil, purger, cleaner)

	s.PurgeTokens(context.Background())
	purger.err = errors.New("db down")
	s.PurgeTokens(context.Background())
	assert.Equal(t, 2, purger.calls)

	s.CleanupVisitors()
	assert.Equal(t, visitorMaxIdle, cleaner.maxIdle)
}

func TestSchedulerStartStop(t *testing.T) {
	lagos, err := time.LoadLocation("Africa/Lagos")
	require.NoError(t, err)

	s := NewScheduler(lagos, &fakePurger{}, &fakeCleaner{})
	require.NoError(t, s.Start(context.Background()))
	assert.Len(t, s.cron.Entries(), 2)
	assert.Equal(t, lagos, s.cron.Location())
	s.Stop()
}

func TestNilDependenciesAreSkipped(t *testing.T) {
	s := NewScheduler(time.UTC, nil, nil)
	assert.NotPanics(t, func() {
		s.PurgeTokens(context.Background())
		s.CleanupVisitors()
	})
}
