package worker

import (
	"context"
	"sync"
)

// Job represents a unit of work to be executed
type Job interface {
	Execute(ctx context.Context) Result
}

// Result represents the result of a job execution. Jobs that fan out over an
// ordered input carry their dispatch index so callers can gather results back
// into the original order.
type Result interface {
	GetError() error
	GetIndex() int
}

// Pool manages a bounded set of workers that execute jobs concurrently.
// Completed results are drained into an internal buffer as they arrive, so a
// caller may submit any number of jobs before calling Wait without the
// channel buffers filling up. Completion order is unspecified; use
// Result.GetIndex to reassemble.
type Pool struct {
	workers     int
	jobQueue    chan Job
	results     chan Result
	wg          sync.WaitGroup
	collected   []Result
	collectDone chan struct{}
	ctx         context.Context
	cancelFunc  context.CancelFunc
	closeOnce   sync.Once
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		workers:     workers,
		jobQueue:    make(chan Job, workers*2), // Buffered to prevent blocking
		results:     make(chan Result, workers*2),
		collectDone: make(chan struct{}),
		ctx:         ctx,
		cancelFunc:  cancel,
	}
}

// Start starts the workers and the result collector
func (p *Pool) Start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	go p.collect()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobQueue:
			if !ok {
				return
			}
			result := job.Execute(p.ctx)
			select {
			case p.results <- result:
			case <-p.ctx.Done():
				return
			}
		}
	}
}

// collect drains results as workers produce them, keeping the results
// channel from backing up into the workers.
func (p *Pool) collect() {
	for result := range p.results {
		p.collected = append(p.collected, result)
	}
	close(p.collectDone)
}

// Submit submits a job to the pool for execution
func (p *Pool) Submit(job Job) {
	select {
	case <-p.ctx.Done():
		return
	case p.jobQueue <- job:
	}
}

// Wait waits for all submitted jobs to complete and returns their results in
// completion order.
func (p *Pool) Wait() []Result {
	close(p.jobQueue)

	p.wg.Wait()
	p.closeResults()
	<-p.collectDone

	return p.collected
}

// Shutdown shuts down the worker pool immediately. Results collected before
// the shutdown are discarded.
func (p *Pool) Shutdown() {
	p.cancelFunc()
	p.wg.Wait()
	p.closeResults()
	<-p.collectDone
}

func (p *Pool) closeResults() {
	p.closeOnce.Do(func() {
		close(p.results)
	})
}
