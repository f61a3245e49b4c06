package pool

import (
	"runtime"
	"sync"
)

// WorkerPool fans tasks out over a fixed set of goroutines.
type WorkerPool struct {
	tasks chan func()
	wg    sync.WaitGroup
}

// New creates a worker pool. A non-positive worker count falls back to the
// number of CPUs.
func New(numWorkers int, taskQueueSize int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	p := &WorkerPool{
		tasks: make(chan func(), taskQueueSize),
	}

	p.wg.Add(numWorkers)
	for i := 0; i < numWorkers; i++ {
		go p.worker()
	}

	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit adds a task to the pool. Blocks when the queue is full.
func (p *WorkerPool) Submit(task func()) {
	p.tasks <- task
}

// Stop closes the queue and waits for every submitted task to finish.
func (p *WorkerPool) Stop() {
	close(p.tasks)
	p.wg.Wait()
}
