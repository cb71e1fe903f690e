package monitor

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
	"github.com/NordCoder/Netprobe/internal/obs"
	"github.com/NordCoder/Netprobe/internal/obs/retry"
)

// Service is the probe-and-log use case.
type Service struct {
	Runner *Runner
	Store  record.Store
	Sinks  []record.Sink
	Log    *zap.Logger

	Metrics       *obs.Metrics
	MetricsFile   string
	RetryAttempts int
}

// MonitorOnce probes, scores, persists and exports one snapshot. Persistence
// and export failures are logged and do not fail the run.
func (s *Service) MonitorOnce(ctx context.Context) (snapshot.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return snapshot.Snapshot{}, err
	}
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	start := time.Now()
	snap := s.Runner.Run(ctx)
	elapsed := time.Since(start)

	log.Debug("run complete",
		zap.Float64("score", snap.Summary.OverallScore),
		zap.String("status", string(snap.Summary.Status)),
		zap.Strings("issues", snap.Summary.Issues),
		zap.Duration("took", elapsed),
	)

	rec := record.FromSnapshot(snap)
	if s.Store != nil {
		if err := s.Store.Prepend(ctx, rec); err != nil {
			log.Error("persist record", zap.Error(err))
		}
	}

	for _, sink := range s.Sinks {
		p := retry.ExportPolicy(sink.Name(), s.RetryAttempts, log)
		if err := retry.Do(ctx, func() error { return sink.Write(ctx, rec) }, p); err != nil {
			log.Warn("export record", zap.String("sink", sink.Name()), zap.Error(err))
		}
	}

	if s.Metrics != nil {
		s.Metrics.ObserveSnapshot(snap, elapsed.Seconds())
		if s.MetricsFile != "" {
			if err := s.Metrics.WriteTextfile(s.MetricsFile); err != nil {
				log.Warn("write metrics textfile", zap.String("path", s.MetricsFile), zap.Error(err))
			}
		}
	}
	return snap, nil
}
