// Package sweep fans a list of probe targets out to a prober under a hard
// maximum-in-flight cap. Two scheduling strategies exist behind one
// interface: an ants goroutine pool, and a plain bounded-channel worker
// pool used when the pool cannot be constructed. The strategy is picked
// once per sweep, never per host.
package sweep

import (
	"context"
	"errors"
	"fmt"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/lumenlight/oidsweep/internal/probe"
)

// DefaultMaxInFlight caps concurrent probes when no value is configured.
const DefaultMaxInFlight = 100

// ErrNoStrategy is returned when no scheduling strategy can honor the
// requested cap.
var ErrNoStrategy = errors.New("no usable sweep strategy")

// strategy runs every target exactly once and fills outcomes[i] for
// targets[i]. Implementations enforce the in-flight cap themselves.
type strategy interface {
	run(ctx context.Context, targets []probe.Target, prober probe.Prober, outcomes []probe.Outcome)
	name() string
}

// Sweeper dispatches probes under a fixed concurrency cap.
type Sweeper struct {
	cap      int
	strategy strategy
	logger   *zap.Logger
}

// New selects a scheduling strategy for the given cap. The ants pool is
// preferred; if it cannot be built the channel-based worker pool takes over
// with the same cap guarantee.
func New(maxInFlight int, logger *zap.Logger) (*Sweeper, error) {
	if maxInFlight < 1 {
		return nil, fmt.Errorf("%w: max in-flight must be at least 1, got %d", ErrNoStrategy, maxInFlight)
	}

	s := &Sweeper{cap: maxInFlight, logger: logger}
	pool, err := ants.NewPool(maxInFlight)
	if err != nil {
		logger.Warn("ants pool unavailable, using worker pool fallback", zap.Error(err))
		s.strategy = &workerPool{workers: maxInFlight}
		return s, nil
	}
	s.strategy = &antsPool{pool: pool}
	return s, nil
}

// Sweep probes every target exactly once, at most cap concurrently, and
// returns one outcome per target tagged with its address. Outcomes retain
// the input order; completion order during the sweep is unspecified.
func (s *Sweeper) Sweep(ctx context.Context, targets []probe.Target, prober probe.Prober) []probe.Outcome {
	outcomes := make([]probe.Outcome, len(targets))
	if len(targets) == 0 {
		return outcomes
	}

	s.logger.Debug("sweep starting",
		zap.Int("targets", len(targets)),
		zap.Int("max_in_flight", s.cap),
		zap.String("strategy", s.strategy.name()),
	)
	s.strategy.run(ctx, targets, prober, outcomes)

	// Every slot must be accounted for, even targets that never ran
	// because the context was cancelled first.
	for i, out := range outcomes {
		if out.Addr == "" {
			outcomes[i] = probe.NoResponse(targets[i].Addr)
		}
	}
	return outcomes
}

// Strategy reports which scheduling strategy was selected.
func (s *Sweeper) Strategy() string {
	return s.strategy.name()
}

// Close releases strategy resources. Safe to call after every sweep.
func (s *Sweeper) Close() {
	if p, ok := s.strategy.(*antsPool); ok {
		p.pool.Release()
	}
}
