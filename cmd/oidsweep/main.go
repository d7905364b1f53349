// Command oidsweep probes every host of a /24-style range with a single
// SNMP GET and reports which devices answered with a value.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/lumenlight/oidsweep/internal/config"
	"github.com/lumenlight/oidsweep/internal/netrange"
	"github.com/lumenlight/oidsweep/internal/probe"
	"github.com/lumenlight/oidsweep/internal/report"
	"github.com/lumenlight/oidsweep/internal/scan"
	"github.com/lumenlight/oidsweep/internal/store"
	"github.com/lumenlight/oidsweep/internal/sweep"
	"github.com/lumenlight/oidsweep/internal/version"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		configPath  = flag.String("config", "", "path to configuration file")
		network     = flag.String("network", "", `network to sweep, e.g. "10.30.6.0" or "10.30.6.0/24"`)
		oid         = flag.String("oid", "", "OID to query (overrides config)")
		community   = flag.String("community", "", "SNMP v2c community (overrides config)")
		timeout     = flag.Duration("timeout", 0, "per-probe timeout (overrides config)")
		retries     = flag.Int("retries", -1, "retries per probe (overrides config)")
		maxInFlight = flag.Int("max-in-flight", 0, "max concurrent probes (overrides config)")
		mode        = flag.String("mode", "", `prober mode: "exec" or "native" (overrides config)`)
		tool        = flag.String("tool", "", "snmpget tool name or path for exec mode (overrides config)")
		pingFirst   = flag.Bool("ping", false, "skip hosts that do not answer an ICMP echo first")
		history     = flag.Bool("history", false, "record this sweep in the history database")
		debug       = flag.Bool("debug", false, "verbose logging")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Info())
		return 0
	}
	if *network == "" {
		fmt.Fprintln(os.Stderr, "oidsweep: -network is required")
		flag.Usage()
		return 2
	}

	logger, err := newLogger(*debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "oidsweep: %v\n", err)
		return 1
	}
	defer logger.Sync()

	settings, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", zap.Error(err))
		return 1
	}
	applyOverrides(&settings, *oid, *community, *timeout, *retries, *maxInFlight, *mode, *tool, *pingFirst, *history)
	if err := settings.Validate(); err != nil {
		logger.Error("invalid configuration", zap.Error(err))
		return 2
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rep, err := runSweep(ctx, settings, *network, logger)
	switch {
	case errors.Is(err, netrange.ErrInvalidSpec):
		fmt.Fprintf(os.Stderr, "oidsweep: %v\n", err)
		return 2
	case err != nil:
		logger.Error("sweep failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "oidsweep: %v\n", err)
		return 1
	}

	if err := rep.Render(os.Stdout); err != nil {
		logger.Error("render report", zap.Error(err))
		return 1
	}
	return 0
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// applyOverrides copies explicitly supplied flag values over the loaded
// settings. Zero/empty flag values mean "keep the config value".
func applyOverrides(s *config.Settings, oid, community string, timeout time.Duration, retries, maxInFlight int, mode, tool string, ping, history bool) {
	if oid != "" {
		s.OID = oid
	}
	if community != "" {
		s.SNMP.Community = community
	}
	if timeout > 0 {
		s.Timeout = timeout
	}
	if retries >= 0 {
		s.Retries = retries
	}
	if maxInFlight > 0 {
		s.MaxInFlight = maxInFlight
	}
	if mode != "" {
		s.SNMP.Mode = mode
	}
	if tool != "" {
		s.SNMP.Tool = tool
	}
	if ping {
		s.Ping.Enabled = true
	}
	if history {
		s.History.Enabled = true
	}
}

func runSweep(ctx context.Context, settings config.Settings, network string, logger *zap.Logger) (rep report.Report, err error) {
	prober, err := buildProber(settings, logger)
	if err != nil {
		return rep, err
	}

	sweeper, err := sweep.New(settings.MaxInFlight, logger)
	if err != nil {
		return rep, err
	}
	defer sweeper.Close()

	var repo *scan.HistoryRepository
	if settings.History.Enabled {
		st, err := store.New(settings.History.Path)
		if err != nil {
			return rep, err
		}
		defer st.Close()
		repo, err = scan.NewHistoryRepository(ctx, st)
		if err != nil {
			return rep, err
		}
	}

	return scan.New(settings, prober, sweeper, repo, logger).Run(ctx, network)
}

func buildProber(settings config.Settings, logger *zap.Logger) (probe.Prober, error) {
	var prober probe.Prober
	switch settings.SNMP.Mode {
	case "native":
		sec := probe.Security{
			Version:   settings.SNMP.Version,
			User:      settings.SNMP.User,
			SecLevel:  settings.SNMP.SecLevel,
			AuthProto: settings.SNMP.AuthProto,
			AuthKey:   settings.SNMP.AuthKey,
			PrivProto: settings.SNMP.PrivProto,
			PrivKey:   settings.SNMP.PrivKey,
		}
		p, err := probe.NewSNMPProber(sec, logger)
		if err != nil {
			return nil, err
		}
		prober = p
	default:
		p, err := probe.NewExecProber(settings.SNMP.Tool, logger)
		if err != nil {
			return nil, err
		}
		prober = p
	}

	if settings.Ping.Enabled {
		prober = probe.NewPingFilter(prober, settings.Ping.Timeout, logger)
	}
	return prober, nil
}
