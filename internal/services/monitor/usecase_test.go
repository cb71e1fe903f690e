package monitor

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/obs"
	"github.com/NordCoder/Netprobe/internal/obs/retry"
)

type memStore struct {
	records []record.LogRecord
	err     error
}

func (m *memStore) Prepend(_ context.Context, r record.LogRecord) error {
	if m.err != nil {
		return m.err
	}
	m.records = append([]record.LogRecord{r}, m.records...)
	return nil
}

type flakySink struct {
	name     string
	failures int
	calls    int
	got      []record.LogRecord
}

func (s *flakySink) Name() string { return s.name }

func (s *flakySink) Write(_ context.Context, r record.LogRecord) error {
	s.calls++
	if s.calls <= s.failures {
		return errors.New("broker unavailable")
	}
	s.got = append(s.got, r)
	return nil
}

func newService(store record.Store, sinks ...record.Sink) *Service {
	return &Service{
		Runner: &Runner{
			Prober:   probe.ProberFunc(func(context.Context, probe.Target) probe.Outcome { return okOutcome() }),
			Identity: fakeIdentity{UserHost: "alice@box", System: "Linux"},
			Settings: testSettings(),
		},
		Store:         store,
		Sinks:         sinks,
		RetryAttempts: 2,
	}
}

func TestMonitorOnce_PersistsAndExports(t *testing.T) {
	store := &memStore{}
	recovering := &flakySink{name: "kafka", failures: 1}
	broken := &flakySink{name: "postgres", failures: 5}

	snap, err := newService(store, recovering, broken).MonitorOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, store.records, 1)
	assert.Equal(t, "alice@box", store.records[0].UserHost)
	assert.Equal(t, snap.Summary.OverallScore, *store.records[0].OverallScore)

	assert.Equal(t, 2, recovering.calls)
	require.Len(t, recovering.got, 1)
	assert.Equal(t, 2, broken.calls)
	assert.Empty(t, broken.got)
}

func TestMonitorOnce_StoreFailureIsNotFatal(t *testing.T) {
	snap, err := newService(&memStore{err: errors.New("disk full")}).MonitorOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 100.0, snap.Summary.OverallScore)
}

func TestMonitorOnce_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService(&memStore{}).MonitorOnce(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestMonitorOnce_WritesMetricsTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netprobe.prom")
	svc := newService(&memStore{})
	svc.Metrics = obs.NewMetrics()
	svc.MetricsFile = path

	_, err := svc.MonitorOnce(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "netprobe_overall_score 100")
	assert.Contains(t, string(raw), `netprobe_probe_up{kind="ping",target="8.8.8.8"} 1`)
}

func TestMonitorOnce_MetricsTextfileWithSinkRetries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "netprobe.prom")
	sink := &flakySink{name: "kafka-textfile", failures: 1}
	svc := newService(&memStore{}, sink)
	svc.Metrics = obs.NewMetrics()
	require.NoError(t, svc.Metrics.Register(retry.Collectors()...))
	svc.MetricsFile = path

	_, err := svc.MonitorOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, sink.calls)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "netprobe_overall_score 100")
	assert.Contains(t, string(raw), `netprobe_export_attempts_total{sink="kafka-textfile"} 2`)
	assert.NotContains(t, string(raw), "go_goroutines")
}
