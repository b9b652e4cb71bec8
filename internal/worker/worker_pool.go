package worker

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Task func()

// Pool runs dispatch tasks on a bounded set of goroutines so a burst of
// submissions cannot fan out into unbounded outbound calls to the analysis
// worker.
type Pool struct {
	tasks      chan Task
	wg         sync.WaitGroup
	maxWorkers int
	logger     zerolog.Logger
}

func NewPool(maxWorkers int, logger zerolog.Logger) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		tasks:      make(chan Task, maxWorkers*10),
		maxWorkers: maxWorkers,
		logger:     logger,
	}
}

func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.logger.Info().Int("workers", p.maxWorkers).Msg("Worker pool started")
}

func (p *Pool) Stop() {
	close(p.tasks)
	p.wg.Wait()
	p.logger.Info().Msg("Worker pool stopped")
}

func (p *Pool) Submit(task Task) {
	select {
	case p.tasks <- task:
	default:
		p.logger.Warn().Msg("Worker pool task queue is full")
		select {
		case p.tasks <- task:
		case <-time.After(1 * time.Second):
			p.logger.Error().Msg("Failed to submit task to worker pool (timeout)")
		}
	}
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for task := range p.tasks {
		func() {
			defer func() {
				if r := recover(); r != nil {
					p.logger.Error().
						Int("worker_id", id).
						Interface("panic", r).
						Msg("Worker recovered from panic")
				}
			}()

			task()
		}()
	}
}
