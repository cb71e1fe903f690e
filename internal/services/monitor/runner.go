package monitor

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
	"github.com/NordCoder/Netprobe/internal/scoring"
)

const (
	DefaultMaxWorkers = 10
	collaboratorLimit = 15 * time.Second
)

// Targets is the fixed probe configuration of a run.
type Targets struct {
	Ping  []string
	HTTP  []string
	HTTPS []string
	DNS   []string
}

type Settings struct {
	Targets     Targets
	PingTimeout time.Duration
	DNSTimeout  time.Duration
	HTTPTimeout time.Duration
	MaxWorkers  int
}

// Runner fans a probe set out over a bounded pool and assembles a snapshot.
type Runner struct {
	Prober   probe.Prober
	Network  snapshot.NetworkDetector
	Gateway  snapshot.GatewayDetector
	Identity snapshot.IdentityProvider
	Clock    snapshot.Clock
	Settings Settings
	Log      *zap.Logger
}

// BuildTargets expands the configuration into probe targets. A discovered
// gateway joins the ping set unless it is already there.
func (r *Runner) BuildTargets(gateway string) []probe.Target {
	st := r.Settings
	out := make([]probe.Target, 0, len(st.Targets.Ping)+len(st.Targets.HTTP)+len(st.Targets.HTTPS)+len(st.Targets.DNS)+1)
	seen := make(map[probe.Kind]map[string]struct{})
	add := func(kind probe.Kind, addr string, timeout time.Duration) {
		if addr == "" {
			return
		}
		if seen[kind] == nil {
			seen[kind] = make(map[string]struct{})
		}
		if _, dup := seen[kind][addr]; dup {
			return
		}
		seen[kind][addr] = struct{}{}
		out = append(out, probe.Target{Kind: kind, Address: addr, Timeout: timeout})
	}

	for _, h := range st.Targets.Ping {
		add(probe.KindPing, h, st.PingTimeout)
	}
	add(probe.KindPing, gateway, st.PingTimeout)
	for _, u := range st.Targets.HTTP {
		add(probe.KindHTTP, u, st.HTTPTimeout)
	}
	for _, u := range st.Targets.HTTPS {
		add(probe.KindHTTPS, u, st.HTTPTimeout)
	}
	for _, h := range st.Targets.DNS {
		add(probe.KindDNS, h, st.DNSTimeout)
	}
	return out
}

// Collect runs every target and waits for all of them. A failing or
// panicking probe never prevents the others from being collected.
func (r *Runner) Collect(ctx context.Context, targets []probe.Target) snapshot.Results {
	workers := r.Settings.MaxWorkers
	if workers <= 0 {
		workers = DefaultMaxWorkers
	}

	// one slot per target, each written by exactly one goroutine
	outcomes := make([]probe.Outcome, len(targets))

	var g errgroup.Group
	g.SetLimit(workers)
	for i := range targets {
		g.Go(func() error {
			outcomes[i] = r.safeProbe(ctx, targets[i])
			return nil
		})
	}
	_ = g.Wait()

	res := snapshot.Results{}
	for _, k := range probe.Kinds {
		res[k] = map[string]probe.Outcome{}
	}
	for i, t := range targets {
		if res[t.Kind] == nil {
			res[t.Kind] = map[string]probe.Outcome{}
		}
		res[t.Kind][t.Key()] = outcomes[i]
	}
	return res
}

func (r *Runner) safeProbe(ctx context.Context, t probe.Target) (out probe.Outcome) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Error("probe worker panicked",
				zap.String("kind", string(t.Kind)),
				zap.String("target", t.Address),
				zap.Any("panic", rec),
			)
			out = probe.Failed(probe.ClassInternal, fmt.Sprintf("probe worker failed: %v", rec))
		}
	}()
	return r.Prober.Probe(ctx, t)
}

// Run performs one complete monitoring pass.
func (r *Runner) Run(ctx context.Context) snapshot.Snapshot {
	ctx, span := otel.Tracer("netprobe/monitor").Start(ctx, "monitor.run")
	defer span.End()

	now := time.Now()
	if r.Clock != nil {
		now = r.Clock.Now()
	}
	snap := snapshot.Snapshot{
		Timestamp:      now.UTC(),
		LocalTimestamp: now.Local().Format(snapshot.LocalLayout),
		Identity:       r.identity(),
		Network:        r.network(ctx),
	}

	gw := r.gateway(ctx)
	snap.Network.GatewayIP = gw

	targets := r.BuildTargets(gw)
	span.SetAttributes(attribute.Int("probe.count", len(targets)))
	snap.Tests = r.Collect(ctx, targets)
	snap.Summary = scoring.Summarize(snap.Tests)

	span.SetAttributes(
		attribute.Float64("summary.score", snap.Summary.OverallScore),
		attribute.String("summary.status", string(snap.Summary.Status)),
	)
	span.AddEvent("summarized", trace.WithAttributes(attribute.Int("issues", len(snap.Summary.Issues))))
	return snap
}

func (r *Runner) identity() (id snapshot.Identity) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Debug("identity lookup panicked", zap.Any("panic", rec))
			id = snapshot.Identity{Hostname: "unknown", Username: "unknown", UserHost: "unknown@unknown"}
		}
	}()
	if r.Identity == nil {
		return snapshot.Identity{Hostname: "unknown", Username: "unknown", UserHost: "unknown@unknown"}
	}
	return r.Identity.CurrentIdentity()
}

func (r *Runner) network(ctx context.Context) (info snapshot.NetworkInfo) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Debug("network detection panicked", zap.Any("panic", rec))
			info = snapshot.NetworkInfo{ConnectionType: snapshot.ConnError, Error: fmt.Sprint(rec)}
		}
	}()
	if r.Network == nil {
		return snapshot.NetworkInfo{ConnectionType: snapshot.ConnUnknown}
	}
	ctx, cancel := context.WithTimeout(ctx, collaboratorLimit)
	defer cancel()
	info = r.Network.DetectNetwork(ctx)
	if info.ConnectionType == "" {
		info.ConnectionType = snapshot.ConnUnknown
	}
	if info.Error != "" {
		r.logger().Debug("network detection degraded", zap.String("error", info.Error))
	}
	return info
}

func (r *Runner) gateway(ctx context.Context) (gw string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger().Debug("gateway detection panicked", zap.Any("panic", rec))
			gw = ""
		}
	}()
	if r.Gateway == nil {
		return ""
	}
	ctx, cancel := context.WithTimeout(ctx, collaboratorLimit)
	defer cancel()
	gw = r.Gateway.DetectGateway(ctx)
	if gw == "" {
		r.logger().Debug("default gateway not found")
	}
	return gw
}

func (r *Runner) logger() *zap.Logger {
	if r.Log == nil {
		return zap.NewNop()
	}
	return r.Log
}
