// Package analyzer aggregates the connectivity log into an ISP report.
package analyzer

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/domain/report"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
	"github.com/NordCoder/Netprobe/internal/obs"
	"github.com/NordCoder/Netprobe/internal/scoring"
)

var (
	ErrNoLogData   = errors.New("no log data found")
	ErrEmptyWindow = errors.New("no log data to analyze")
)

const (
	outageThreshold = scoring.PoorThreshold
	issueThreshold  = scoring.GoodThreshold
	uptimeTarget    = 95.0
)

const (
	RecUptime     = "Internet connectivity is below acceptable standards (95% uptime)"
	RecPoorScore  = "Overall connection quality is poor - contact ISP for service review"
	RecPacketLoss = "High packet loss indicates network infrastructure problems"
	RecDNS        = "DNS problems detected - may need DNS server configuration review"
	RecLatency    = "Consistent high latency suggests routing or congestion issues"
	RecAcceptable = "Connection quality appears acceptable"
)

type Service struct {
	Reader record.Reader
	Clock  snapshot.Clock
	// Location used to parse stored local timestamps; nil means time.Local.
	Location *time.Location
	Log      *zap.Logger
}

// Analyze loads the log and reports on the last days days; days <= 0
// analyses everything.
func (s *Service) Analyze(ctx context.Context, days int) (report.Report, error) {
	ctx, span := otel.Tracer("netprobe/analyzer").Start(ctx, "analyzer.analyze")
	defer span.End()
	span.SetAttributes(attribute.Int("analyze.days", days))
	log := obs.WithTrace(ctx, s.Log)

	records, err := s.Reader.Load(ctx)
	if errors.Is(err, fs.ErrNotExist) {
		return report.Report{}, ErrNoLogData
	}
	if err != nil {
		span.RecordError(err)
		return report.Report{}, fmt.Errorf("failed to analyze logs: %w", err)
	}
	if len(records) == 0 {
		return report.Report{}, ErrNoLogData
	}

	now := time.Now()
	if s.Clock != nil {
		now = s.Clock.Now()
	}
	window := Window(records, days, now, s.Location)
	log.Debug("analyzing log window",
		zap.Int("records", len(records)),
		zap.Int("in_window", len(window)),
		zap.Int("days", days),
	)
	return Build(window)
}

// Window keeps records not older than days before now. Records whose
// timestamp cannot be parsed are kept.
func Window(records []record.LogRecord, days int, now time.Time, loc *time.Location) []record.LogRecord {
	if days <= 0 {
		return records
	}
	if loc == nil {
		loc = now.Location()
	}
	cutoff := now.AddDate(0, 0, -days)
	out := make([]record.LogRecord, 0, len(records))
	for _, r := range records {
		ts, err := r.Time(loc)
		if err != nil || !ts.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

// Build computes the report over records in stored (newest-first) order.
// A record without a score counts as neither an issue nor an outage.
func Build(records []record.LogRecord) (report.Report, error) {
	if len(records) == 0 {
		return report.Report{}, ErrEmptyWindow
	}
	total := len(records)

	var scores, pingRates, latencies []float64
	issues := 0
	for _, r := range records {
		if r.OverallScore != nil {
			scores = append(scores, *r.OverallScore)
			if *r.OverallScore < issueThreshold {
				issues++
			}
		}
		if r.PingSuccessRate != nil {
			pingRates = append(pingRates, *r.PingSuccessRate)
		}
		if r.AvgPingLatency != nil {
			latencies = append(latencies, *r.AvgPingLatency)
		}
	}

	avgScore := mean(scores)
	uptime := 100 * float64(total-issues) / float64(total)
	outages := Outages(records)
	tally := Tally(records)

	rep := report.Report{
		Period: report.Period{
			From:       records[0].Timestamp,
			To:         records[total-1].Timestamp,
			TotalTests: total,
		},
		Connectivity: report.ConnectivitySummary{
			AverageScore:       scoring.Round(avgScore, 1),
			UptimePercentage:   scoring.Round(uptime, 2),
			ConnectivityIssues: issues,
			TotalOutages:       len(outages),
		},
		Performance: report.PerformanceMetrics{
			AveragePingSuccessRate: scoring.Round(mean(pingRates), 1),
		},
		Outages:         outages,
		CommonIssues:    tally,
		Recommendations: Recommend(avgScore, uptime, tally),
	}
	if len(latencies) > 0 {
		avg := scoring.Round(mean(latencies), 2)
		peak := scoring.Round(slices.Max(latencies), 2)
		rep.Performance.AverageLatencyMs = &avg
		rep.Performance.MaxLatencyMs = &peak
	}
	return rep, nil
}

// Outages groups maximal runs of consecutive records scoring below the
// outage threshold.
func Outages(records []record.LogRecord) []report.Outage {
	var out []report.Outage
	start := -1
	flush := func(end int) {
		out = append(out, report.Outage{
			Start:           records[start].Timestamp,
			End:             records[end].Timestamp,
			StartIndex:      start,
			EndIndex:        end,
			DurationRecords: end - start + 1,
		})
		start = -1
	}
	for i, r := range records {
		down := r.OverallScore != nil && *r.OverallScore < outageThreshold
		switch {
		case down && start < 0:
			start = i
		case !down && start >= 0:
			flush(i - 1)
		}
	}
	if start >= 0 {
		flush(len(records) - 1)
	}
	return out
}

// Tally counts issue tags, most frequent first, ties by name.
func Tally(records []record.LogRecord) []report.IssueCount {
	counts := make(map[string]int)
	for _, r := range records {
		for _, issue := range r.Issues {
			counts[issue]++
		}
	}
	out := make([]report.IssueCount, 0, len(counts))
	for issue, n := range counts {
		out = append(out, report.IssueCount{Issue: issue, Count: n})
	}
	slices.SortFunc(out, func(a, b report.IssueCount) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(a.Issue, b.Issue)
	})
	return out
}

// Recommend evaluates the fixed rules in order. It always returns at least
// one entry.
func Recommend(avgScore, uptime float64, tally []report.IssueCount) []string {
	seen := make(map[string]bool, len(tally))
	for _, ic := range tally {
		seen[ic.Issue] = true
	}

	var recs []string
	if uptime < uptimeTarget {
		recs = append(recs, RecUptime)
	}
	if avgScore < issueThreshold {
		recs = append(recs, RecPoorScore)
	}
	if seen[snapshot.IssuePacketLoss] {
		recs = append(recs, RecPacketLoss)
	}
	if seen[snapshot.IssueDNS] {
		recs = append(recs, RecDNS)
	}
	if seen[snapshot.IssueLatency] {
		recs = append(recs, RecLatency)
	}
	if len(recs) == 0 {
		recs = append(recs, RecAcceptable)
	}
	return recs
}

func mean(vs []float64) float64 {
	if len(vs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
