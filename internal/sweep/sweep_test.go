package sweep

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lumenlight/oidsweep/internal/probe"
	"github.com/lumenlight/oidsweep/internal/testutil"
)

func sweepTargets(n int) []probe.Target {
	targets := make([]probe.Target, 0, n)
	for i := 1; i <= n; i++ {
		targets = append(targets, probe.Target{
			Addr:      fmt.Sprintf("10.30.6.%d", i),
			OID:       "1.3.6.1.4.1.4515.1.3.6.1.1.1.2.0",
			Community: "admin",
			Timeout:   time.Second,
			Retries:   1,
		})
	}
	return targets
}

// inflightProber records the peak number of concurrently running probes.
type inflightProber struct {
	inflight atomic.Int64
	peak     atomic.Int64
	calls    atomic.Int64
	delay    time.Duration
}

func (p *inflightProber) Probe(ctx context.Context, target probe.Target) probe.Outcome {
	cur := p.inflight.Add(1)
	defer p.inflight.Add(-1)
	for {
		prev := p.peak.Load()
		if cur <= prev || p.peak.CompareAndSwap(prev, cur) {
			break
		}
	}
	p.calls.Add(1)
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	return probe.Value(target.Addr, "up")
}

func checkOutcomes(t *testing.T, targets []probe.Target, outcomes []probe.Outcome) {
	t.Helper()
	if len(outcomes) != len(targets) {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), len(targets))
	}
	seen := make(map[string]bool, len(outcomes))
	for i, out := range outcomes {
		if out.Addr != targets[i].Addr {
			t.Errorf("outcomes[%d].Addr = %q, want %q", i, out.Addr, targets[i].Addr)
		}
		if seen[out.Addr] {
			t.Errorf("duplicate outcome for %q", out.Addr)
		}
		seen[out.Addr] = true
	}
}

func TestSweepCapAndCompleteness(t *testing.T) {
	s, err := New(100, testutil.Logger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	targets := sweepTargets(254)
	prober := &inflightProber{delay: time.Millisecond}
	outcomes := s.Sweep(context.Background(), targets, prober)

	checkOutcomes(t, targets, outcomes)
	if calls := prober.calls.Load(); calls != 254 {
		t.Errorf("prober invoked %d times, want 254", calls)
	}
	if peak := prober.peak.Load(); peak > 100 {
		t.Errorf("observed %d probes in flight, cap is 100", peak)
	}
}

func TestWorkerPoolCapAndCompleteness(t *testing.T) {
	s := &Sweeper{cap: 10, strategy: &workerPool{workers: 10}, logger: testutil.Logger()}

	targets := sweepTargets(254)
	prober := &inflightProber{delay: time.Millisecond}
	outcomes := s.Sweep(context.Background(), targets, prober)

	checkOutcomes(t, targets, outcomes)
	if peak := prober.peak.Load(); peak > 10 {
		t.Errorf("observed %d probes in flight, cap is 10", peak)
	}
}

func TestSweepTinyCap(t *testing.T) {
	s, err := New(1, testutil.Logger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	targets := sweepTargets(20)
	prober := &inflightProber{}
	outcomes := s.Sweep(context.Background(), targets, prober)

	checkOutcomes(t, targets, outcomes)
	if peak := prober.peak.Load(); peak > 1 {
		t.Errorf("observed %d probes in flight, cap is 1", peak)
	}
}

func TestSweepEmptyTargets(t *testing.T) {
	s, err := New(100, testutil.Logger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	outcomes := s.Sweep(context.Background(), nil, &inflightProber{})
	if len(outcomes) != 0 {
		t.Errorf("got %d outcomes for empty target list", len(outcomes))
	}
}

func TestSweepCancelledContextAccountsEveryTarget(t *testing.T) {
	s, err := New(4, testutil.Logger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	targets := sweepTargets(50)
	outcomes := s.Sweep(ctx, targets, &inflightProber{})

	// Targets skipped by cancellation must still appear, as no-response.
	checkOutcomes(t, targets, outcomes)
}

func TestNewRejectsInvalidCap(t *testing.T) {
	for _, cap := range []int{0, -1} {
		if _, err := New(cap, testutil.Logger()); err == nil {
			t.Errorf("New(%d) succeeded, want error", cap)
		}
	}
}

func TestStrategySelectedOncePerSweep(t *testing.T) {
	s, err := New(8, testutil.Logger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer s.Close()

	if got := s.Strategy(); got != "ants" {
		t.Errorf("Strategy() = %q, want %q", got, "ants")
	}
	before := s.Strategy()
	s.Sweep(context.Background(), sweepTargets(10), &inflightProber{})
	if s.Strategy() != before {
		t.Error("strategy changed during sweep")
	}
}
