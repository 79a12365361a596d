package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/pura-ai/call-tracker/pkg/logger"
)

type WorkerHandler = func(workerIndex int, job interface{})

var ErrWorkersTerminated = errors.New("workers terminated")

type WorkerManager struct {
	numberOfWorker int
	jobChannel     chan interface{}
	quit           chan struct{}
	quitOnce       sync.Once
	do             WorkerHandler
	waiter         *sync.WaitGroup
}

// NewWorkerManager is a job manager based on go routines. Jobs published with
// Enqueue are distributed among numberOfWorkers goroutines until Start's context
// is cancelled or Exit is called. An externally passed jobChannel is never closed.
func NewWorkerManager(bufferSize, numberOfWorkers int, jobChannel chan interface{}) *WorkerManager {
	if jobChannel == nil {
		jobChannel = make(chan interface{}, bufferSize)
	}
	if numberOfWorkers < 1 {
		numberOfWorkers = 1
	}

	return &WorkerManager{
		numberOfWorker: numberOfWorkers,
		jobChannel:     jobChannel,
		quit:           make(chan struct{}),
		waiter:         &sync.WaitGroup{},
	}
}

func (w *WorkerManager) GetUnreadCount() int64 {
	return int64(len(w.jobChannel))
}

func (w *WorkerManager) SetWorker(worker WorkerHandler) {
	w.do = worker
}

// Enqueue publishes a job; it blocks while the buffer is full unless ctx ends first.
func (w *WorkerManager) Enqueue(ctx context.Context, val interface{}) error {
	select {
	case <-w.quit:
		return ErrWorkersTerminated
	default:
	}
	select {
	case w.jobChannel <- val:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.quit:
		return ErrWorkersTerminated
	}
}

// Start runs the workers and blocks until they all stopped.
func (w *WorkerManager) Start(ctx context.Context) error {
	if w.do == nil {
		return errors.New("worker handler is not set")
	}
	w.waiter.Add(w.numberOfWorker)
	for i := 0; i < w.numberOfWorker; i++ {
		go func(index int) {
			defer w.waiter.Done()
			for {
				select {
				case job := <-w.jobChannel:
					w.do(index, job)
				case <-ctx.Done():
					return
				case <-w.quit:
					return
				}
			}
		}(i)
	}
	w.waiter.Wait()

	return ErrWorkersTerminated
}

// Exit stops every worker after its current job.
func (w *WorkerManager) Exit() {
	w.quitOnce.Do(func() {
		logger.Info("worker manager is shutting down", "workers", w.numberOfWorker)
		close(w.quit)
	})
}
