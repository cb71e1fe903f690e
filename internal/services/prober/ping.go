package prober

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/platform"
)

// DefaultPingPaths are the candidate ping binaries, tried in order.
var DefaultPingPaths = []string{"/sbin/ping", "/bin/ping", "ping"}

// PingStrategy is one way of sending a single echo request.
type PingStrategy struct {
	Path    string
	Windows bool
}

func (s PingStrategy) args(host string, timeout time.Duration) []string {
	if s.Windows {
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	}
	secs := int(timeout.Seconds())
	if secs < 1 {
		secs = 1
	}
	return []string{"-c", "1", "-W", strconv.Itoa(secs), host}
}

// Available checks the strategy against loopback. Exit codes 0, 1 and 2 all
// mean the binary works (reply, no reply, resolution failure).
func (s PingStrategy) Available(ctx context.Context, run platform.CmdRunner) bool {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	res, err := run.Run(ctx, s.Path, s.args("127.0.0.1", time.Second)...)
	if err != nil {
		return false
	}
	return res.ExitCode >= 0 && res.ExitCode <= 2
}

// Pinger is the reachability primitive. The working strategy is discovered
// on first use and cached for the lifetime of the Pinger.
type Pinger struct {
	run        platform.CmdRunner
	candidates []PingStrategy
	log        *zap.Logger

	once     sync.Once
	strategy *PingStrategy
}

func NewPinger(run platform.CmdRunner, candidates []PingStrategy, log *zap.Logger) *Pinger {
	if run == nil {
		run = platform.ExecRunner{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Pinger{run: run, candidates: candidates, log: log}
}

// StrategiesFor builds the candidate list for an OS.
func StrategiesFor(goos string, paths []string) []PingStrategy {
	out := make([]PingStrategy, 0, len(paths))
	for _, p := range paths {
		out = append(out, PingStrategy{Path: p, Windows: goos == "windows"})
	}
	return out
}

func (p *Pinger) discover(ctx context.Context) *PingStrategy {
	p.once.Do(func() {
		for i := range p.candidates {
			c := p.candidates[i]
			if c.Available(ctx, p.run) {
				p.log.Debug("ping strategy selected", zap.String("path", c.Path))
				p.strategy = &c
				return
			}
			p.log.Debug("ping strategy unavailable", zap.String("path", c.Path))
		}
	})
	return p.strategy
}

// Ping sends one echo request to host.
func (p *Pinger) Ping(ctx context.Context, host string, timeout time.Duration) probe.Outcome {
	s := p.discover(ctx)
	if s == nil {
		return probe.Failed(probe.ClassToolUnavailable, "Ping command not found in system PATH or standard locations")
	}

	ctx, cancel := context.WithTimeout(ctx, timeout+time.Second)
	defer cancel()

	start := time.Now()
	res, err := p.run.Run(ctx, s.Path, s.args(host, timeout)...)
	elapsed := time.Since(start)

	if err != nil {
		return pingRunError(err, s.Path, timeout)
	}
	if res.ExitCode != 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = "Ping failed"
		}
		return probe.Failed(classifyPingOutput(msg), msg)
	}

	latency, ok := ParsePingLatency(res.Stdout)
	if !ok {
		latency = float64(elapsed.Microseconds()) / 1000
	}
	latency = roundTo(latency, 2)
	return probe.Outcome{Success: true, LatencyMs: &latency}
}

func pingRunError(err error, path string, timeout time.Duration) probe.Outcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return probe.Failed(probe.ClassTimeout, fmt.Sprintf("Ping timeout after %s", timeout))
	case errors.Is(err, exec.ErrNotFound), errors.Is(err, fs.ErrNotExist):
		return probe.Failed(probe.ClassToolUnavailable, fmt.Sprintf("Ping command not found: %s", path))
	case errors.Is(err, os.ErrPermission), errors.Is(err, syscall.EACCES):
		return probe.Failed(probe.ClassPermission, "Permission denied - check cron permissions for network commands")
	default:
		return probe.Failed(probe.ClassOther, fmt.Sprintf("Ping error: %v", err))
	}
}

func classifyPingOutput(msg string) probe.ErrorClass {
	m := strings.ToLower(msg)
	switch {
	case strings.Contains(m, "unknown host"), strings.Contains(m, "name or service not known"),
		strings.Contains(m, "cannot resolve"), strings.Contains(m, "could not find host"):
		return probe.ClassDNS
	case strings.Contains(m, "permission denied"), strings.Contains(m, "operation not permitted"):
		return probe.ClassPermission
	default:
		return probe.ClassTimeout
	}
}

// ParsePingLatency extracts the round-trip time from ping output
// ("time=12.3 ms", "time=12ms", "time<1ms").
func ParsePingLatency(out string) (float64, bool) {
	out = strings.ToLower(out)
	idx := strings.Index(out, "time=")
	if idx < 0 {
		idx = strings.Index(out, "time<")
	}
	if idx < 0 {
		return 0, false
	}
	fields := strings.Fields(out[idx+len("time="):])
	if len(fields) == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(fields[0], "ms"), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
