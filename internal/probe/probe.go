// Package probe executes a single SNMP value query against one host and
// classifies the response. Two prober implementations are provided: one
// shelling out to an external snmpget-style tool and one speaking SNMP
// natively via gosnmp. Both absorb every per-host failure mode into a
// no-response outcome; nothing a single host does can abort a sweep.
package probe

import (
	"context"
	"time"
)

// Target is one concrete probe: an address plus the query parameters shared
// across the whole sweep. Targets are created at dispatch time and owned
// exclusively by the task probing them.
type Target struct {
	Addr      string
	OID       string
	Community string
	Timeout   time.Duration
	Retries   int
}

// Outcome is the result of one probe. It is either a value or nothing:
// Responded=false never carries a value, and a value is never partial.
type Outcome struct {
	Addr      string
	Responded bool
	Value     string
}

// NoResponse returns the outcome for a host that produced no usable answer.
func NoResponse(addr string) Outcome {
	return Outcome{Addr: addr}
}

// Value returns the outcome for a host that answered with an extractable value.
func Value(addr, v string) Outcome {
	return Outcome{Addr: addr, Responded: true, Value: v}
}

// Prober runs one query against one host. Implementations never return an
// error: process failures, timeouts, and negative answers all come back as
// a no-response outcome for the target's address.
type Prober interface {
	Probe(ctx context.Context, target Target) Outcome
}

// ProberFunc adapts a function to the Prober interface.
type ProberFunc func(ctx context.Context, target Target) Outcome

func (f ProberFunc) Probe(ctx context.Context, target Target) Outcome {
	return f(ctx, target)
}
