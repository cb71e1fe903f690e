package prober

import (
	"context"
	"math"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/obs"
)

var _ probe.Prober = (*Prober)(nil)

// Prober dispatches a target to the primitive for its kind.
type Prober struct {
	Ping *Pinger
	DNS  DNSProber
	HTTP HTTPProber
	Log  *zap.Logger

	tracer trace.Tracer
}

func New(ping *Pinger, dns DNSProber, httpc *http.Client, userAgent string, log *zap.Logger) *Prober {
	if log == nil {
		log = zap.NewNop()
	}
	return &Prober{
		Ping:   ping,
		DNS:    dns,
		HTTP:   HTTPProber{Client: httpc, UserAgent: userAgent},
		Log:    log,
		tracer: otel.Tracer("netprobe/prober"),
	}
}

func (p *Prober) Probe(ctx context.Context, t probe.Target) probe.Outcome {
	tracer := p.tracer
	if tracer == nil {
		tracer = otel.Tracer("netprobe/prober")
	}
	ctx, span := tracer.Start(ctx, "probe."+string(t.Kind), trace.WithAttributes(
		attribute.String("probe.kind", string(t.Kind)),
		attribute.String("probe.target", t.Address),
	))
	defer span.End()

	var out probe.Outcome
	switch t.Kind {
	case probe.KindPing:
		if p.Ping == nil {
			out = probe.Failed(probe.ClassToolUnavailable, "Ping command not found in system PATH or standard locations")
			break
		}
		out = p.Ping.Ping(ctx, t.Address, t.Timeout)
	case probe.KindDNS:
		out = p.DNS.Resolve(ctx, t.Address, t.Timeout)
	case probe.KindHTTP, probe.KindHTTPS:
		out = p.HTTP.Get(ctx, t.Address, t.Timeout)
	default:
		out = probe.Failed(probe.ClassInternal, "unknown probe kind "+string(t.Kind))
	}

	span.SetAttributes(attribute.Bool("probe.success", out.Success))
	if !out.Success {
		span.SetStatus(codes.Error, out.Error)
		if unexpected(out.ErrorClass) {
			obs.WithTrace(ctx, p.Log).Error("probe failed",
				zap.String("kind", string(t.Kind)),
				zap.String("target", t.Address),
				zap.String("class", string(out.ErrorClass)),
				zap.String("error", out.Error),
			)
		}
	}
	return out
}

func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
