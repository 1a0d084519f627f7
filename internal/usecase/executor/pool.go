// Package executor provides a fixed-size worker pool that fans tasks across
// goroutines while isolating the pool from panicking tasks.
package executor

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/Aditya-k24/book-order-simulator/pkg/logger"
)

// ErrPoolStopped is returned by Submit after the pool has been stopped.
var ErrPoolStopped = errors.New("executor: pool is stopped")

// Task is a unit of work scheduled onto the pool.
type Task func()

// Pool schedules tasks across a fixed number of worker goroutines.
//
// A panicking task is recovered and logged and the worker keeps processing
// subsequent tasks. Stop drains the queue and waits for the workers to exit;
// submissions after Stop are rejected with ErrPoolStopped.
type Pool struct {
	tasks   chan Task
	workers int
	logger  *logger.Logger

	mu      sync.RWMutex
	stopped bool
	once    sync.Once
	wg      sync.WaitGroup

	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
}

// NewPool starts a pool with the given number of workers and queue capacity.
func NewPool(workers, queueSize int, log *logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = workers
	}

	p := &Pool{
		tasks:   make(chan Task, queueSize),
		workers: workers,
		logger:  log,
	}

	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker(i)
	}

	return p
}

// Submit schedules a task. It blocks while the queue is full and returns
// ErrPoolStopped once the pool has been stopped.
func (p *Pool) Submit(task Task) error {
	if task == nil {
		return errors.New("executor: nil task")
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return ErrPoolStopped
	}

	p.tasks <- task
	p.submitted.Add(1)
	return nil
}

// Stop rejects further submissions, drains queued tasks and waits for all
// workers to exit. Safe to call more than once.
func (p *Pool) Stop() {
	p.once.Do(func() {
		p.mu.Lock()
		p.stopped = true
		close(p.tasks)
		p.mu.Unlock()

		p.wg.Wait()
	})
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Submitted returns the number of tasks accepted so far.
func (p *Pool) Submitted() uint64 {
	return p.submitted.Load()
}

// Completed returns the number of tasks that ran to completion.
func (p *Pool) Completed() uint64 {
	return p.completed.Load()
}

// Failed returns the number of tasks that panicked.
func (p *Pool) Failed() uint64 {
	return p.failed.Load()
}

// Pending returns the number of accepted tasks not yet finished.
func (p *Pool) Pending() uint64 {
	return p.submitted.Load() - p.completed.Load() - p.failed.Load()
}

// Stats renders a one-line pool summary.
func (p *Pool) Stats() string {
	return fmt.Sprintf("ThreadPool: workers=%d submitted=%d completed=%d failed=%d pending=%d",
		p.workers, p.Submitted(), p.Completed(), p.Failed(), p.Pending())
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		p.run(id, task)
	}
}

func (p *Pool) run(id int, task Task) {
	defer func() {
		if r := recover(); r != nil {
			p.failed.Add(1)
			p.logger.Error(fmt.Errorf("executor: task panic: %v", r),
				logger.Field{Key: "worker", Value: id},
			)
		}
	}()

	task()
	p.completed.Add(1)
}
