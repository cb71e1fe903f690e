package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	config "github.com/NordCoder/Netprobe/internal/config/netprobe"
	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/obs"
	"github.com/NordCoder/Netprobe/internal/obs/retry"
	"github.com/NordCoder/Netprobe/internal/platform"
	"github.com/NordCoder/Netprobe/internal/repository/csvlog"
	"github.com/NordCoder/Netprobe/internal/services/analyzer"
	"github.com/NordCoder/Netprobe/internal/services/monitor"
	"github.com/NordCoder/Netprobe/internal/services/prober"
)

var version = "dev"

const usage = `Internet connectivity monitor for ISP reporting.

Usage:
  netprobe monitor [flags]              Run one probe pass and log it
  netprobe analyze [--days N] [flags]   Analyze recent logs (0 days = all)

Examples:
  netprobe monitor
  netprobe analyze
  netprobe analyze --days 1

Flags:
`

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func main() {
	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(root, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func newFlagSet(stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet("netprobe", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.String("config", "", "path to a YAML config file")
	fs.String("log-dir", "logs", "directory for log files")
	fs.Bool("debug", false, "enable debug logging to <log-dir>/"+config.DebugLogFile)
	fs.Int("days", 7, "number of days to analyze (0 for all)")
	fs.String("source", config.SourceCSV, "report source: csv or postgres")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	return fs
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet(stderr)
	if len(args) == 0 {
		fs.Usage()
		return 2
	}
	cmd, rest := args[0], args[1:]
	if err := fs.Parse(rest); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if cmd != "monitor" && cmd != "analyze" {
		fmt.Fprintf(stderr, "unknown command %q\n\n", cmd)
		fs.Usage()
		return 2
	}

	path, _ := fs.GetString("config")
	cfg, err := config.Load(path, fs)
	if err != nil {
		fmt.Fprintf(stderr, "config error: %v\n", err)
		return 1
	}

	l, err := initLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "logger init: %v\n", err)
		return 1
	}
	defer func() { _ = l.Sync() }()

	shutdownOTel, err := initOTel(ctx, cfg, l)
	if err != nil {
		l.Error("otel init", zap.Error(err))
		shutdownOTel = func(context.Context) error { return nil }
	}
	defer func() {
		shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = shutdownOTel(shCtx)
	}()

	store, err := csvlog.New(afero.NewOsFs(), cfg.LogDir, l)
	if err != nil {
		if cmd == "monitor" {
			fmt.Fprintf(stderr, "Monitor error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "Analysis error: %v\n", err)
		}
		return 1
	}

	if cmd == "monitor" {
		return runMonitor(ctx, cfg, store, l, stdout, stderr)
	}
	return runAnalyze(ctx, cfg, store, l, stdout, stderr)
}

func runMonitor(ctx context.Context, cfg *config.Config, store *csvlog.Store, l *zap.Logger, stdout, stderr io.Writer) int {
	sinks, closeSinks := initSinks(ctx, cfg, l)
	defer closeSinks()

	svc := wire(cfg, store, sinks, l)
	snap, err := svc.MonitorOnce(ctx)
	if err != nil {
		fmt.Fprintf(stderr, "Monitor error: %v\n", err)
		return 1
	}
	score := snap.Summary.OverallScore
	fmt.Fprintf(stdout, "Status: %s (Score: %s%%)\n", snap.Summary.Status, record.FormatFloat(&score))
	return 0
}

func runAnalyze(ctx context.Context, cfg *config.Config, store *csvlog.Store, l *zap.Logger, stdout, stderr io.Writer) int {
	var reader record.Reader = store
	if cfg.Analyze.Source == config.SourcePostgres {
		repo, closeDB, err := initRecordRepo(ctx, cfg, l)
		if err != nil {
			fmt.Fprintf(stderr, "Analysis error: %v\n", err)
			return 1
		}
		defer closeDB()
		reader = repo
	}

	svc := &analyzer.Service{Reader: reader, Clock: systemClock{}, Log: l}
	rep, err := svc.Analyze(ctx, cfg.Analyze.Days)
	if err != nil {
		fmt.Fprintf(stderr, "Analysis error: %v\n", err)
		return 1
	}
	if err := analyzer.Render(stdout, rep); err != nil {
		fmt.Fprintf(stderr, "Analysis error: %v\n", err)
		return 1
	}
	return 0
}

func wire(cfg *config.Config, store record.Store, sinks []record.Sink, l *zap.Logger) *monitor.Service {
	httpc := prober.NewHTTPClient(prober.HTTPConfig{
		Timeout:      cfg.Probe.HTTPTimeout,
		UserAgent:    cfg.Probe.UserAgent,
		MaxRedirects: cfg.Probe.MaxRedirects,
		VerifyTLS:    cfg.Probe.VerifyTLS,
	})
	pinger := prober.NewPinger(platform.ExecRunner{}, prober.StrategiesFor(runtime.GOOS, prober.DefaultPingPaths), l)
	p := prober.New(pinger, prober.DNSProber{}, httpc, cfg.Probe.UserAgent, l)

	runner := &monitor.Runner{
		Prober:   p,
		Network:  platform.NewDetector(l),
		Gateway:  platform.NewDetector(l),
		Identity: platform.Identity{},
		Clock:    systemClock{},
		Settings: monitor.Settings{
			Targets: monitor.Targets{
				Ping:  cfg.Targets.Ping,
				HTTP:  cfg.Targets.HTTP,
				HTTPS: cfg.Targets.HTTPS,
				DNS:   cfg.Targets.DNS,
			},
			PingTimeout: cfg.Probe.PingTimeout,
			DNSTimeout:  cfg.Probe.DNSTimeout,
			HTTPTimeout: cfg.Probe.HTTPTimeout,
			MaxWorkers:  cfg.Probe.MaxWorkers,
		},
		Log: l,
	}

	svc := &monitor.Service{
		Runner:        runner,
		Store:         store,
		Sinks:         sinks,
		Log:           l,
		RetryAttempts: cfg.Export.RetryAttempts,
	}
	if cfg.Metrics.Textfile != "" {
		svc.Metrics = obs.NewMetrics()
		if err := svc.Metrics.Register(retry.Collectors()...); err != nil {
			l.Debug("register retry metrics", zap.Error(err))
		}
		svc.MetricsFile = cfg.Metrics.Textfile
	}
	return svc
}
