package probe

import (
	"context"
	"runtime"
	"time"

	probing "github.com/prometheus-community/pro-bing"
	"go.uber.org/zap"
)

// PingFilter wraps a Prober and skips the SNMP query for hosts that do not
// answer a single ICMP echo first. On sparse networks this avoids burning a
// full protocol timeout on every dead address. Hosts that drop ICMP will be
// missed; the filter is opt-in for that reason.
type PingFilter struct {
	next    Prober
	timeout time.Duration
	logger  *zap.Logger
	alive   func(ctx context.Context, addr string) bool
}

// NewPingFilter returns a prober that pings before delegating to next.
func NewPingFilter(next Prober, timeout time.Duration, logger *zap.Logger) *PingFilter {
	f := &PingFilter{next: next, timeout: timeout, logger: logger}
	f.alive = f.icmpAlive
	return f
}

func (f *PingFilter) Probe(ctx context.Context, target Target) Outcome {
	if !f.alive(ctx, target.Addr) {
		return NoResponse(target.Addr)
	}
	return f.next.Probe(ctx, target)
}

func (f *PingFilter) icmpAlive(ctx context.Context, addr string) bool {
	pinger, err := probing.NewPinger(addr)
	if err != nil {
		f.logger.Debug("create pinger", zap.String("addr", addr), zap.Error(err))
		return true // fail open: let the SNMP probe decide
	}
	pinger.Count = 1
	pinger.Timeout = f.timeout
	pinger.SetPrivileged(runtime.GOOS == "windows")

	done := make(chan error, 1)
	go func() {
		done <- pinger.Run()
	}()

	select {
	case err := <-done:
		if err != nil {
			return true // socket errors fail open, same as above
		}
		return pinger.Statistics().PacketsRecv > 0
	case <-ctx.Done():
		pinger.Stop()
		return false
	}
}
