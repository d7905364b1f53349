package sweep

import (
	"context"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/lumenlight/oidsweep/internal/probe"
)

// antsPool schedules probes on a shared ants goroutine pool. The pool's
// capacity is the in-flight cap: Submit blocks once the pool is saturated,
// so the cap can never be exceeded, not even transiently.
type antsPool struct {
	pool *ants.Pool
}

func (p *antsPool) name() string { return "ants" }

func (p *antsPool) run(ctx context.Context, targets []probe.Target, prober probe.Prober, outcomes []probe.Outcome) {
	var wg sync.WaitGroup
	for i := range targets {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			// Each task owns exactly one slot of the outcomes slice.
			outcomes[i] = prober.Probe(ctx, targets[i])
		})
		if err != nil {
			wg.Done()
			outcomes[i] = probe.NoResponse(targets[i].Addr)
		}
	}
	wg.Wait()
}
