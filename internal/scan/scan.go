// Package scan orchestrates a sweep: resolve the network spec, fan the host
// range out to the prober under the concurrency cap, aggregate the outcomes,
// and optionally record the run in the history store.
package scan

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlight/oidsweep/internal/config"
	"github.com/lumenlight/oidsweep/internal/netrange"
	"github.com/lumenlight/oidsweep/internal/probe"
	"github.com/lumenlight/oidsweep/internal/report"
	"github.com/lumenlight/oidsweep/internal/sweep"
)

// Service runs sweeps with a fixed prober and scheduling strategy.
type Service struct {
	settings config.Settings
	prober   probe.Prober
	sweeper  *sweep.Sweeper
	history  *HistoryRepository // nil disables persistence
	logger   *zap.Logger
}

// New assembles a sweep service. history may be nil.
func New(settings config.Settings, prober probe.Prober, sweeper *sweep.Sweeper, history *HistoryRepository, logger *zap.Logger) *Service {
	return &Service{
		settings: settings,
		prober:   prober,
		sweeper:  sweeper,
		history:  history,
		logger:   logger,
	}
}

// Run sweeps the network described by spec and returns the aggregated
// report. A malformed spec fails here, before any probe is dispatched.
// Per-host failures never surface as errors; they are simply absent from
// the report.
func (s *Service) Run(ctx context.Context, spec string) (report.Report, error) {
	prefix, err := netrange.ParsePrefix(spec)
	if err != nil {
		return report.Report{}, err
	}

	hosts := prefix.Hosts()
	targets := make([]probe.Target, len(hosts))
	for i, addr := range hosts {
		targets[i] = probe.Target{
			Addr:      addr,
			OID:       s.settings.OID,
			Community: s.settings.SNMP.Community,
			Timeout:   s.settings.Timeout,
			Retries:   s.settings.Retries,
		}
	}

	started := time.Now()
	s.logger.Info("sweep starting",
		zap.String("network", spec),
		zap.String("prefix", prefix.String()),
		zap.Int("targets", len(targets)),
		zap.Int("max_in_flight", s.settings.MaxInFlight),
	)

	var rec *SweepRecord
	if s.history != nil {
		rec, err = s.history.Begin(ctx, spec, len(targets))
		if err != nil {
			return report.Report{}, fmt.Errorf("record sweep start: %w", err)
		}
	}

	outcomes := s.sweeper.Sweep(ctx, targets, s.prober)
	rep := report.Aggregate(outcomes)

	s.logger.Info("sweep finished",
		zap.String("network", spec),
		zap.Int("responded", len(rep.Records)),
		zap.Duration("elapsed", time.Since(started)),
	)

	if s.history != nil {
		// The sweep itself succeeded; a bookkeeping failure must not
		// discard the devices found.
		if err := s.history.Finish(ctx, rec.ID, rep); err != nil {
			s.logger.Error("record sweep result", zap.Error(err))
		}
	}

	return rep, nil
}
