package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerManager_ProcessesJobs(t *testing.T) {
	w := NewWorkerManager(10, 3, nil)

	var processed atomic.Int64
	done := make(chan struct{}, 5)
	w.SetWorker(func(_ int, job interface{}) {
		processed.Add(int64(job.(int)))
		done <- struct{}{}
	})

	stopped := make(chan error, 1)
	go func() { stopped <- w.Start(context.Background()) }()

	for i := 1; i <= 5; i++ {
		require.NoError(t, w.Enqueue(context.Background(), i))
	}
	for i := 0; i < 5; i++ {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for jobs")
		}
	}
	assert.Equal(t, int64(15), processed.Load())

	w.Exit()
	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, ErrWorkersTerminated)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}

	assert.ErrorIs(t, w.Enqueue(context.Background(), 1), ErrWorkersTerminated)
}

func TestWorkerManager_StopsOnContext(t *testing.T) {
	w := NewWorkerManager(1, 2, nil)
	w.SetWorker(func(int, interface{}) {})

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan error, 1)
	go func() { stopped <- w.Start(ctx) }()
	cancel()

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, ErrWorkersTerminated)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestWorkerManager_StartWithoutHandler(t *testing.T) {
	w := NewWorkerManager(1, 1, nil)
	assert.Error(t, w.Start(context.Background()))
}
