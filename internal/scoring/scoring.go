// Package scoring turns raw probe outcomes into a connectivity verdict.
package scoring

import (
	"math"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

const (
	ExcellentThreshold = 90.0
	GoodThreshold      = 75.0
	PoorThreshold      = 50.0

	packetLossThreshold = 50.0
	dnsThreshold        = 75.0
	httpThreshold       = 75.0
	highLatencyMs       = 500.0
)

// Summarize derives the summary of one run. It is pure.
func Summarize(tests snapshot.Results) snapshot.Summary {
	ping := tests[probe.KindPing]
	http := tests[probe.KindHTTP]

	s := snapshot.Summary{
		PingSuccessRate:  SuccessRate(ping),
		HTTPSuccessRate:  SuccessRate(http),
		HTTPSSuccessRate: SuccessRate(tests[probe.KindHTTPS]),
		DNSSuccessRate:   SuccessRate(tests[probe.KindDNS]),
		AvgPingLatency:   AverageLatency(ping),
		AvgHTTPResponse:  AverageLatency(http),
	}

	mean := (s.PingSuccessRate + s.HTTPSuccessRate + s.HTTPSSuccessRate + s.DNSSuccessRate) / 4
	s.OverallScore = Round(mean, 1)
	s.Status = Classify(s.OverallScore)
	s.Issues = detectIssues(s, ping)
	return s
}

// Classify maps a score to its status band. Lower bounds are inclusive.
func Classify(score float64) snapshot.Status {
	switch {
	case score >= ExcellentThreshold:
		return snapshot.StatusExcellent
	case score >= GoodThreshold:
		return snapshot.StatusGood
	case score >= PoorThreshold:
		return snapshot.StatusPoor
	default:
		return snapshot.StatusFailed
	}
}

// SuccessRate is 100 * successes / total, or 0 for an empty category.
func SuccessRate(outcomes map[string]probe.Outcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	ok := 0
	for _, o := range outcomes {
		if o.Success {
			ok++
		}
	}
	return float64(ok) / float64(len(outcomes)) * 100
}

// AverageLatency averages successful outcomes that carry a latency. Nil when
// there are none.
func AverageLatency(outcomes map[string]probe.Outcome) *float64 {
	var (
		sum float64
		n   int
	)
	for _, o := range outcomes {
		if o.Success && o.LatencyMs != nil {
			sum += *o.LatencyMs
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := Round(sum/float64(n), 2)
	return &avg
}

func detectIssues(s snapshot.Summary, ping map[string]probe.Outcome) []string {
	issues := make([]string, 0, 4)
	if s.PingSuccessRate < packetLossThreshold {
		if allToolUnavailable(ping) {
			issues = append(issues, snapshot.IssuePingUnavailable)
		} else {
			issues = append(issues, snapshot.IssuePacketLoss)
		}
	}
	if s.DNSSuccessRate < dnsThreshold {
		issues = append(issues, snapshot.IssueDNS)
	}
	if s.HTTPSuccessRate < httpThreshold {
		issues = append(issues, snapshot.IssueHTTP)
	}
	if s.AvgPingLatency != nil && *s.AvgPingLatency > highLatencyMs {
		issues = append(issues, snapshot.IssueLatency)
	}
	return issues
}

// An empty ping set counts as unavailable: nothing could measure loss.
func allToolUnavailable(ping map[string]probe.Outcome) bool {
	for _, o := range ping {
		if !o.ToolUnavailable() {
			return false
		}
	}
	return true
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
