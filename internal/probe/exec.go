package probe

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// DefaultTool is the snmpget-style executable resolved on PATH when no
// explicit path is configured.
const DefaultTool = "snmpget"

// ErrToolNotFound is returned by NewExecProber when the query tool cannot be
// resolved. The sweep must not start in that case.
var ErrToolNotFound = errors.New("query tool not found")

// runnerFunc executes the tool and returns its standard output. Stderr is
// not captured; tool diagnostics are never fatal to a sweep.
type runnerFunc func(ctx context.Context, name string, args []string) ([]byte, error)

func runCommand(ctx context.Context, name string, args []string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// ExecProber queries hosts by invoking an external snmpget-style tool as an
// isolated child process. Arguments are passed as a discrete vector, never
// assembled into a shell command line.
type ExecProber struct {
	tool   string
	logger *zap.Logger
	run    runnerFunc
}

// NewExecProber resolves the tool against the search path and returns a
// prober bound to it. Resolution happens once, up front, so a missing tool
// fails the whole run before any probe is attempted.
func NewExecProber(tool string, logger *zap.Logger) (*ExecProber, error) {
	if tool == "" {
		tool = DefaultTool
	}
	path, err := exec.LookPath(tool)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is not on PATH (install net-snmp or set snmp.tool to an explicit path)", ErrToolNotFound, tool)
	}
	return &ExecProber{tool: path, logger: logger, run: runCommand}, nil
}

// Probe runs one query against target. Every failure mode -- launch error,
// non-zero exit, timeout, empty or negative output -- is absorbed into a
// no-response outcome. A single host can never abort its siblings.
func (p *ExecProber) Probe(ctx context.Context, target Target) Outcome {
	// Watchdog beyond the protocol-level timeout: a hung child process must
	// not pin a concurrency slot for the rest of the sweep.
	deadline := target.Timeout*time.Duration(target.Retries+1) + 2*time.Second
	ctx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	out, err := p.run(ctx, p.tool, buildArgs(target))
	if err != nil {
		p.logger.Debug("probe failed", zap.String("addr", target.Addr), zap.Error(err))
		return NoResponse(target.Addr)
	}

	raw := string(out)
	if IsNegative(raw) {
		return NoResponse(target.Addr)
	}
	return Value(target.Addr, Extract(raw))
}

// buildArgs produces the fixed tool argument shape:
// version, credential, timeout, retries, target address, OID.
// The tool's -t flag takes whole seconds, so sub-second timeouts are
// floored to 1s here; the native prober honors them exactly.
func buildArgs(target Target) []string {
	timeoutSec := int(target.Timeout / time.Second)
	if timeoutSec < 1 {
		timeoutSec = 1
	}
	return []string{
		"-v2c",
		"-c", target.Community,
		"-t", strconv.Itoa(timeoutSec),
		"-r", strconv.Itoa(target.Retries),
		target.Addr,
		target.OID,
	}
}
