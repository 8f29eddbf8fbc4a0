package usecase

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/Leooooooow/tiktok-comment-fetcher/pkg/config"
)

// Pool is a fixed-size worker pool shared by every batch, so at most size
// collections run at once across the whole process.
type Pool struct {
	size      int
	logger    *zap.Logger
	taskQueue chan func()
	wg        sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

// NewPool creates a pool of size workers. Call Start before Submit.
func NewPool(size int, logger *zap.Logger) *Pool {
	if size <= 0 {
		size = config.DefaultMaxConcurrentFetches
	}
	return &Pool{
		size:      size,
		logger:    logger,
		taskQueue: make(chan func(), size*2),
	}
}

// Size returns the number of workers.
func (p *Pool) Size() int { return p.size }

func (p *Pool) Start() {
	p.startOnce.Do(func() {
		for i := 0; i < p.size; i++ {
			p.wg.Add(1)
			go p.worker(i)
		}
		p.logger.Info("worker pool started", zap.Int("workers", p.size))
	})
}

// Stop drains queued tasks and waits for the workers to exit.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		close(p.taskQueue)
		p.wg.Wait()
		p.logger.Info("worker pool stopped")
	})
}

// Submit blocks while the queue is full. Submitting after Stop panics.
func (p *Pool) Submit(task func()) {
	p.taskQueue <- task
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	for task := range p.taskQueue {
		p.run(id, task)
	}
}

// run keeps a panicking task from taking its worker down.
func (p *Pool) run(id int, task func()) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("worker task panicked",
				zap.Int("worker", id),
				zap.String("panic", fmt.Sprint(r)),
			)
		}
	}()
	task()
}
