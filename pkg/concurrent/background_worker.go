package concurrent

import "sync"

type JobI any

type JobFunc[T JobI, G any] func(job T) G

// WorkerPool runs jobFunc on a fixed number of goroutines and publishes every return value on the
// results channel. The results channel is closed once Close has been called and all jobs finished.
type WorkerPool[T JobI, G any] struct {
	workers   int
	jobQueue  chan T
	results   chan G
	waitGroup sync.WaitGroup
	jobFunc   JobFunc[T, G]
}

func NewWorkerPool[T JobI, G any](workers, buffer int, jobFunc JobFunc[T, G]) *WorkerPool[T, G] {
	if workers < 1 {
		workers = 1
	}
	return &WorkerPool[T, G]{
		workers:  workers,
		jobQueue: make(chan T, buffer),
		results:  make(chan G, buffer),
		jobFunc:  jobFunc,
	}
}

func (wp *WorkerPool[T, G]) Start() {
	wp.waitGroup.Add(wp.workers)
	for i := 0; i < wp.workers; i++ {
		go func() {
			defer wp.waitGroup.Done()
			for job := range wp.jobQueue {
				wp.results <- wp.jobFunc(job)
			}
		}()
	}

	go func() {
		wp.waitGroup.Wait()
		close(wp.results)
	}()
}

func (wp *WorkerPool[T, G]) AddJob(job T) {
	wp.jobQueue <- job
}

// Close stops accepting jobs. Jobs already queued still run.
func (wp *WorkerPool[T, G]) Close() {
	close(wp.jobQueue)
}

func (wp *WorkerPool[T, G]) CollectResults() <-chan G {
	return wp.results
}

// Run feeds every job to a pool of workers goroutines and returns the results in completion order.
func Run[T JobI, G any](workers int, jobs []T, jobFunc JobFunc[T, G]) []G {
	wp := NewWorkerPool(workers, len(jobs), jobFunc)
	wp.Start()
	go func() {
		for _, job := range jobs {
			wp.AddJob(job)
		}
		wp.Close()
	}()

	results := make([]G, 0, len(jobs))
	for res := range wp.CollectResults() {
		results = append(results, res)
	}
	return results
}
