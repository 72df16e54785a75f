package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func TestQueue_RunsJob(t *testing.T) {
	q := NewQueue(1, 4, 1, time.Millisecond, testLogger())
	q.Start()

	done := make(chan struct{})
	ok := q.Enqueue(Job{
		Kind: "test",
		Run: func(ctx context.Context) error {
			close(done)
			return nil
		},
	})
	require.True(t, ok)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job did not run")
	}

	q.Stop()
}

func TestQueue_RetriesUntilSuccess(t *testing.T) {
	q := NewQueue(1, 4, 3, time.Millisecond, testLogger())
	q.Start()

	var attempts int32
	done := make(chan struct{})
	q.Enqueue(Job{
		Kind: "flaky",
		Run: func(ctx context.Context) error {
			n := atomic.AddInt32(&attempts, 1)
			if n < 3 {
				return errors.New("transient")
			}
			close(done)
			return nil
		},
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("job never succeeded")
	}

	q.Stop()
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestQueue_DropsAfterMaxAttempts(t *testing.T) {
	q := NewQueue(1, 4, 2, time.Millisecond, testLogger())
	q.Start()

	var attempts int32
	q.Enqueue(Job{
		Kind: "broken",
		Run: func(ctx context.Context) error {
			atomic.AddInt32(&attempts, 1)
			return errors.New("permanent")
		},
	})

	q.Stop()
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestQueue_EnqueueAfterStop(t *testing.T) {
	q := NewQueue(1, 4, 1, time.Millisecond, testLogger())
	q.Start()
	q.Stop()

	ok := q.Enqueue(Job{Kind: "late", Run: func(ctx context.Context) error { return nil }})
	assert.False(t, ok)
}

func TestQueue_FullQueueDropsJob(t *testing.T) {
	q := NewQueue(1, 1, 1, time.Millisecond, testLogger())
	// Not started: nothing consumes, so the buffer fills up.

	block := func(ctx context.Context) error { return nil }
	assert.True(t, q.Enqueue(Job{Kind: "first", Run: block}))
	assert.False(t, q.Enqueue(Job{Kind: "second", Run: block}))
}

func TestQueue_EnqueueRacingStopDoesNotPanic(t *testing.T) {
	for i := 0; i < 200; i++ {
		q := NewQueue(2, 8, 1, time.Millisecond, testLogger())
		q.Start()

		var accepted, ran int32
		var wg sync.WaitGroup
		for g := 0; g < 4; g++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if q.Enqueue(Job{
						Kind: "race",
						Run: func(ctx context.Context) error {
							atomic.AddInt32(&ran, 1)
							return nil
						},
					}) {
						atomic.AddInt32(&accepted, 1)
					}
				}
			}()
		}

		q.Stop()
		wg.Wait()

		// Every accepted job was drained before Stop returned; the rest
		// were refused, never sent on a closed channel.
		assert.Equal(t, atomic.LoadInt32(&accepted), atomic.LoadInt32(&ran))
	}
}

func TestQueue_StopDrainsQueued(t *testing.T) {
	q := NewQueue(2, 8, 1, time.Millisecond, testLogger())
	q.Start()

	var mu sync.Mutex
	ran := 0
	for i := 0; i < 5; i++ {
		q.Enqueue(Job{
			Kind: "drain",
			Run: func(ctx context.Context) error {
				mu.Lock()
				ran++
				mu.Unlock()
				return nil
			},
		})
	}

	q.Stop()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 5, ran)
}
