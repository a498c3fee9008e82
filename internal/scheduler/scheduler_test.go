package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeSweeper struct {
	calls   int32
	expired int
	err     error
}

func (f *fakeSweeper) ExpireStaleSessions(ctx context.Context) (int, error) {
	atomic.AddInt32(&f.calls, 1)
	if _, ok := ctx.Deadline(); !ok {
		return 0, errors.New("sweep without deadline")
	}
	return f.expired, f.err
}

func TestSweep(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sweeper := &fakeSweeper{expired: 3}
	s := New(sweeper, time.Second, zap.New(core))

	assert.Equal(t, 3, s.Sweep())
	assert.Equal(t, int32(1), atomic.LoadInt32(&sweeper.calls))
	require.Equal(t, 1, logs.FilterMessage("session sweep").Len())
	assert.Equal(t, int64(3), logs.FilterMessage("session sweep").All()[0].ContextMap()["expired"])
}

func TestSweepError(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	sweeper := &fakeSweeper{expired: 1, err: errors.New("database is locked")}
	s := New(sweeper, time.Second, zap.New(core))

	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, logs.FilterMessage("session sweep failed").Len())
}

func TestStartRunsSweep(t *testing.T) {
	sweeper := &fakeSweeper{}
	s := New(sweeper, 50*time.Millisecond, nil)
	require.NoError(t, s.Start())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&sweeper.calls) >= 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestDefaultInterval(t *testing.T) {
	s := New(&fakeSweeper{}, 0, nil)
	assert.Equal(t, DefaultSweepInterval, s.interval)
}
