package scraper

import (
	"context"
	"sync"

	"jobhunter/internal/domain/job"
)

type fetchTask struct {
	seq int
	run func(ctx context.Context) ([]job.Posting, error)
}

type fetchResult struct {
	seq      int
	postings []job.Posting
	err      error
}

// workerPool fans search fetches out across a bounded set of workers.
// Results carry their submission sequence so the caller can restore a
// deterministic order regardless of completion timing.
type workerPool struct {
	workers int
	tasks   chan fetchTask
	wg      sync.WaitGroup
}

func newWorkerPool(workers, buffer int) *workerPool {
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &workerPool{
		workers: workers,
		tasks:   make(chan fetchTask, buffer),
	}
}

func (p *workerPool) submit(t fetchTask) {
	p.tasks <- t
}

func (p *workerPool) close() {
	close(p.tasks)
}

func (p *workerPool) run(ctx context.Context) <-chan fetchResult {
	out := make(chan fetchResult, p.workers*16)

	p.wg.Add(p.workers)
	for i := 0; i < p.workers; i++ {
		go func() {
			defer p.wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case t, ok := <-p.tasks:
					if !ok {
						return
					}
					postings, err := t.run(ctx)
					select {
					case <-ctx.Done():
						return
					case out <- fetchResult{seq: t.seq, postings: postings, err: err}:
					}
				}
			}
		}()
	}

	go func() {
		p.wg.Wait()
		close(out)
	}()

	return out
}
