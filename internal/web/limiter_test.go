package web

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	l := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	require.NoError(t, l.Acquire(ctx), "first Acquire")
	require.NoError(t, l.Acquire(ctx), "second Acquire")

	got := l.Status()
	assert.Equal(t, 2, got.Active)
	assert.Equal(t, 0, got.Available)
	assert.Equal(t, 2, got.MaxConcurrent)

	l.Release()
	l.Release()

	assert.Zero(t, l.Active(), "active after release")
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewImportLimiter(1, 50*time.Millisecond)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	start := time.Now()
	err := l.Acquire(context.Background())
	require.ErrorIs(t, err, ErrTooManyImports)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond, "expected to wait for a slot")
}

func TestImportLimiter_ContextCancelled(t *testing.T) {
	l := NewImportLimiter(1, time.Minute)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, l.Acquire(ctx), context.Canceled)
}

func TestImportLimiter_BoundsConcurrency(t *testing.T) {
	l := NewImportLimiter(3, time.Second)

	var inFlight, peak int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if !assert.NoError(t, l.Acquire(context.Background())) {
				return
			}
			defer l.Release()

			n := atomic.AddInt32(&inFlight, 1)
			for {
				p := atomic.LoadInt32(&peak)
				if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inFlight, -1)
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, peak, int32(3), "peak concurrency")
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	l := NewImportLimiter(1, time.Second)
	require.NoError(t, l.Acquire(context.Background()))

	go func() {
		time.Sleep(30 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, l.WaitForDrain(ctx))
}

func TestImportLimiter_WaitForDrainTimeout(t *testing.T) {
	l := NewImportLimiter(1, time.Second)
	require.NoError(t, l.Acquire(context.Background()))
	defer l.Release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, l.WaitForDrain(ctx), context.DeadlineExceeded)
}

func TestNewImportLimiter_Defaults(t *testing.T) {
	l := NewImportLimiter(0, 0)
	assert.Equal(t, defaultMaxConcurrent, l.Status().MaxConcurrent)
	assert.Equal(t, defaultMaxWait, l.maxWait)
}
