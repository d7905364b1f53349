package sweep

import (
	"context"
	"sync"

	"github.com/lumenlight/oidsweep/internal/probe"
)

// workerPool is the fallback strategy: a fixed set of workers draining a
// bounded job channel. Backpressure comes from the blocking receive, so the
// cap holds structurally without any polling loop.
type workerPool struct {
	workers int
}

func (p *workerPool) name() string { return "worker-pool" }

func (p *workerPool) run(ctx context.Context, targets []probe.Target, prober probe.Prober, outcomes []probe.Outcome) {
	jobs := make(chan int, p.workers)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				outcomes[i] = prober.Probe(ctx, targets[i])
			}
		}()
	}

	for i := range targets {
		select {
		case jobs <- i:
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return
		}
	}
	close(jobs)
	wg.Wait()
}
