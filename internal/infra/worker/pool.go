// File: internal/infra/worker/pool.go
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/rs/zerolog"
)

// ErrQueueFull is returned when the pool cannot accept another task without blocking.
var ErrQueueFull = errors.New("worker queue full")

var errStopped = errors.New("worker pool stopped")

type Task func(ctx context.Context) error

// Pool is a small fixed-size worker pool with a bounded queue.
type Pool struct {
	wg      sync.WaitGroup
	jobs    chan Task
	quit    chan struct{}
	stopped chan struct{}
	stop    sync.Once
	closed  sync.Once
	n       int
	log     zerolog.Logger
}

// NewPool sizes the pool. workers <= 0 means runtime.NumCPU(); depth <= 0 means workers*4.
func NewPool(workers, depth int, log zerolog.Logger) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if depth <= 0 {
		depth = workers * 4
	}
	return &Pool{
		jobs:    make(chan Task, depth),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
		n:       workers,
		log:     log.With().Str("component", "worker_pool").Logger(),
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.n; i++ {
		p.wg.Add(1)
		go func(id int) {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case <-p.quit:
					return
				case task := <-p.jobs:
					if task == nil {
						continue
					}
					if err := p.run(ctx, task); err != nil {
						p.log.Debug().Int("worker", id).Err(err).Msg("task error")
					}
				}
			}
		}(i)
	}
}

func (p *Pool) run(ctx context.Context, task Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error().Interface("panic", r).Msg("task panicked")
			err = fmt.Errorf("task panicked: %v", r)
		}
	}()
	return task(ctx)
}

// Stop signals the workers and waits for in-flight tasks. Safe to call twice.
func (p *Pool) Stop() {
	p.stop.Do(func() { close(p.quit) })
	p.wg.Wait()
	p.closed.Do(func() { close(p.stopped) })
}

func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	select {
	case <-p.quit:
		return errStopped
	default:
	}
	select {
	case p.jobs <- task:
		return nil
	default:
		// drop when saturated; callers report "busy"
		return ErrQueueFull
	}
}

// Do submits task and blocks until it has run, returning its error.
// It returns ErrQueueFull when the queue is saturated, or ctx.Err() if ctx ends first.
func (p *Pool) Do(ctx context.Context, task Task) error {
	if task == nil {
		return errors.New("nil task")
	}
	done := make(chan error, 1)
	err := p.Submit(func(workerCtx context.Context) (err error) {
		// the caller's ctx carries request-scoped values; the worker ctx carries shutdown
		runCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		stop := context.AfterFunc(workerCtx, cancel)
		defer stop()

		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("task panicked: %v", r)
			}
			done <- err
		}()
		return task(runCtx)
	})
	if err != nil {
		return err
	}
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		// workers have exited; the task either finished or was never picked up
		select {
		case err := <-done:
			return err
		default:
			return errStopped
		}
	}
}
