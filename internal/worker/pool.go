package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task is one input together with its outcome. Skipped is set when the
// context was cancelled before the input was processed.
type Task[T any, R any] struct {
	Input   T
	Result  R
	Err     error
	Skipped bool
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
	onDone  func(done, total int)
}

// NewPool creates a new worker pool.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// OnProgress registers a callback run after each finished task. Calls are
// serialized.
func (p *Pool[T, R]) OnProgress(fn func(done, total int)) *Pool[T, R] {
	p.onDone = fn
	return p
}

// Execute runs all inputs through the worker pool and returns one task per
// input, in input order. Inputs not started before ctx is done are marked
// Skipped.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))
	for i := range inputs {
		results[i] = Task[T, R]{Input: inputs[i], Skipped: true}
	}
	inputCh := make(chan int)

	var (
		wg       sync.WaitGroup
		progress sync.Mutex
		done     int
	)

	// Start workers.
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for idx := range inputCh {
				result, err := p.process(ctx, inputs[idx])
				results[idx] = Task[T, R]{
					Input:  inputs[idx],
					Result: result,
					Err:    err,
				}
				if err != nil {
					log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
				}
				if p.onDone != nil {
					progress.Lock()
					done++
					p.onDone(done, len(inputs))
					progress.Unlock()
				}
			}
		}(w)
	}

	// Send inputs.
send:
	for i := range inputs {
		select {
		case <-ctx.Done():
			log.Warn().Int("remaining", len(inputs)-i).Msg("Cancelled, skipping remaining tasks")
			break send
		case inputCh <- i:
		}
	}
	close(inputCh)

	// Wait for all workers to finish.
	wg.Wait()
	return results
}
