package fanout

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestRunBoundsConcurrency(t *testing.T) {
	var (
		running atomic.Int32
		peak    atomic.Int32
		done    atomic.Int32
	)
	tasks := make([]Task, 12)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			done.Add(1)
			return nil
		}
	}

	require.NoError(t, Run(context.Background(), 3, tasks...))
	assert.Equal(t, int32(12), done.Load())
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestRunDefaultLimit(t *testing.T) {
	var peak, running atomic.Int32
	var mu sync.Mutex
	tasks := make([]Task, 10)
	for i := range tasks {
		tasks[i] = func(ctx context.Context) error {
			n := running.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil
		}
	}
	require.NoError(t, Run(context.Background(), 0, tasks...))
	assert.LessOrEqual(t, peak.Load(), int32(DefaultLimit))
}

func TestRunReturnsFirstErrorAndReleasesSlots(t *testing.T) {
	boom := errors.New("boom")
	var cancelled atomic.Bool
	err := Run(context.Background(), 1,
		func(ctx context.Context) error { return boom },
		func(ctx context.Context) error {
			cancelled.Store(true)
			return nil
		},
	)
	require.ErrorIs(t, err, boom)
	// With a single slot the second task starts after the failure and sees a cancelled context.
	assert.False(t, cancelled.Load())
}

func TestRunSkipsNilTasks(t *testing.T) {
	var ran atomic.Int32
	err := Run(context.Background(), 2, nil, func(context.Context) error {
		ran.Add(1)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, int32(1), ran.Load())
}

func TestRunHonorsParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Run(ctx, 2, func(context.Context) error { return nil })
	assert.ErrorIs(t, err, context.Canceled)
}
