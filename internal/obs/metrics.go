package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

// Metrics holds the gauges describing the latest run. A one-shot process
// cannot be scraped, so they are written to a textfile for node_exporter.
type Metrics struct {
	reg *prometheus.Registry

	score    prometheus.Gauge
	rate     *prometheus.GaugeVec
	up       *prometheus.GaugeVec
	latency  *prometheus.GaugeVec
	issue    *prometheus.GaugeVec
	lastRun  prometheus.Gauge
	duration prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		score: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netprobe_overall_score", Help: "Overall connectivity score of the last run (0-100)",
		}),
		rate: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netprobe_success_rate", Help: "Per-category success rate of the last run (0-100)",
		}, []string{"category"}),
		up: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netprobe_probe_up", Help: "1 if the probe succeeded in the last run",
		}, []string{"kind", "target"}),
		latency: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netprobe_probe_latency_ms", Help: "Probe latency of the last run in milliseconds",
		}, []string{"kind", "target"}),
		issue: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "netprobe_issue", Help: "1 for every issue detected in the last run",
		}, []string{"issue"}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netprobe_last_run_timestamp_seconds", Help: "Unix time of the last run",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "netprobe_run_duration_seconds", Help: "Wall time of the last probe fan-out",
		}),
	}
	m.reg.MustRegister(m.score, m.rate, m.up, m.latency, m.issue, m.lastRun, m.duration)
	return m
}

// Register adds collectors owned by other packages, such as the export
// retry counters, to the textfile output.
func (m *Metrics) Register(cs ...prometheus.Collector) error {
	for _, c := range cs {
		if err := m.reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

func (m *Metrics) ObserveSnapshot(s snapshot.Snapshot, seconds float64) {
	sum := s.Summary
	m.score.Set(sum.OverallScore)
	m.rate.WithLabelValues(string(probe.KindPing)).Set(sum.PingSuccessRate)
	m.rate.WithLabelValues(string(probe.KindHTTP)).Set(sum.HTTPSuccessRate)
	m.rate.WithLabelValues(string(probe.KindHTTPS)).Set(sum.HTTPSSuccessRate)
	m.rate.WithLabelValues(string(probe.KindDNS)).Set(sum.DNSSuccessRate)

	for kind, outcomes := range s.Tests {
		for target, o := range outcomes {
			v := 0.0
			if o.Success {
				v = 1
			}
			m.up.WithLabelValues(string(kind), target).Set(v)
			if o.LatencyMs != nil {
				m.latency.WithLabelValues(string(kind), target).Set(*o.LatencyMs)
			}
		}
	}
	for _, is := range sum.Issues {
		m.issue.WithLabelValues(is).Set(1)
	}
	m.lastRun.Set(float64(s.Timestamp.Unix()))
	m.duration.Set(seconds)
}

// WriteTextfile writes everything in the private registry, run gauges and
// any Register'd collectors, in text exposition format.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.reg)
}
