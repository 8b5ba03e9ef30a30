package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context) error {
	r.calls.Add(1)
	return r.err
}

func TestRefreshTask_InvalidSpec(t *testing.T) {
	task := NewRefreshTask(&countingRefresher{}, "not a spec", time.Second, nil)

	err := task.Start(context.Background())

	assert.Error(t, err)
}

func TestRefreshTask_RunsImmediatelyAndPeriodically(t *testing.T) {
	r := &countingRefresher{}
	task := NewRefreshTask(r, "@every 1s", time.Second, nil)

	require.NoError(t, task.Start(context.Background()))
	defer task.Stop()

	require.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 500*time.Millisecond, 10*time.Millisecond)
	require.Eventually(t, func() bool { return r.calls.Load() >= 2 }, 3*time.Second, 50*time.Millisecond)
}

func TestRefreshTask_ReportsResult(t *testing.T) {
	boom := errors.New("boom")
	task := NewRefreshTask(&countingRefresher{err: boom}, "", time.Second, nil)

	var got error
	task.OnResult(func(err error) { got = err })
	task.RunOnce(context.Background())

	assert.ErrorIs(t, got, boom)
}

func TestRefreshTask_SkipsCancelledContext(t *testing.T) {
	r := &countingRefresher{}
	task := NewRefreshTask(r, "", time.Second, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	task.RunOnce(ctx)

	assert.Equal(t, int32(0), r.calls.Load())
}

func TestRefreshTask_StopWithoutStart(t *testing.T) {
	task := NewRefreshTask(&countingRefresher{}, "", time.Second, nil)
	task.Stop()
}
