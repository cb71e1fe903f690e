package analyzer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/domain/report"
	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

func f(v float64) *float64 { return &v }

func scored(scores ...float64) []record.LogRecord {
	out := make([]record.LogRecord, len(scores))
	for i, s := range scores {
		out[i] = record.LogRecord{
			Timestamp:       fmt.Sprintf("2024-05-01 10:%02d:00", len(scores)-i),
			OverallScore:    f(s),
			PingSuccessRate: f(100),
		}
	}
	return out
}

type stubReader struct {
	records []record.LogRecord
	err     error
}

func (r stubReader) Load(context.Context) ([]record.LogRecord, error) { return r.records, r.err }

type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

func TestOutages_GroupsConsecutiveRuns(t *testing.T) {
	recs := scored(80, 40, 30, 90, 20)

	got := Outages(recs)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].StartIndex)
	assert.Equal(t, 2, got[0].EndIndex)
	assert.Equal(t, 2, got[0].DurationRecords)
	assert.Equal(t, recs[1].Timestamp, got[0].Start)
	assert.Equal(t, recs[2].Timestamp, got[0].End)

	assert.Equal(t, 4, got[1].StartIndex)
	assert.Equal(t, 4, got[1].EndIndex)
	assert.Equal(t, 1, got[1].DurationRecords)
}

func TestOutages_BoundaryAndMissingScores(t *testing.T) {
	recs := scored(50, 49.9, 49.9)
	recs = append(recs, record.LogRecord{Timestamp: "x"})

	got := Outages(recs)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].StartIndex)
	assert.Equal(t, 2, got[0].EndIndex)
}

func TestBuild_Uptime(t *testing.T) {
	rep, err := Build(scored(100, 90, 80, 80, 76, 75, 75, 74.9, 60, 10))
	require.NoError(t, err)

	assert.Equal(t, 10, rep.Period.TotalTests)
	assert.Equal(t, 3, rep.Connectivity.ConnectivityIssues)
	assert.Equal(t, 70.0, rep.Connectivity.UptimePercentage)
	assert.Equal(t, 1, rep.Connectivity.TotalOutages)
	assert.Equal(t, 100.0, rep.Performance.AveragePingSuccessRate)
}

func TestBuild_Aggregates(t *testing.T) {
	recs := []record.LogRecord{
		{Timestamp: "2024-05-02 10:00:00", OverallScore: f(95), PingSuccessRate: f(100), AvgPingLatency: f(12.5)},
		{Timestamp: "2024-05-02 09:00:00", OverallScore: f(60), PingSuccessRate: f(66.7), AvgPingLatency: f(601.004),
			Issues: []string{snapshot.IssueLatency, snapshot.IssueDNS}},
		{Timestamp: "2024-05-02 08:00:00", OverallScore: f(80), PingSuccessRate: f(33.3),
			Issues: []string{snapshot.IssueDNS}},
	}

	rep, err := Build(recs)
	require.NoError(t, err)

	assert.Equal(t, "2024-05-02 10:00:00", rep.Period.From)
	assert.Equal(t, "2024-05-02 08:00:00", rep.Period.To)
	assert.Equal(t, 78.3, rep.Connectivity.AverageScore)
	assert.Equal(t, 66.67, rep.Connectivity.UptimePercentage)
	assert.Equal(t, 66.7, rep.Performance.AveragePingSuccessRate)
	require.NotNil(t, rep.Performance.AverageLatencyMs)
	assert.Equal(t, 306.75, *rep.Performance.AverageLatencyMs)
	assert.Equal(t, 601.0, *rep.Performance.MaxLatencyMs)
	assert.Empty(t, rep.Outages)
	assert.Equal(t, []report.IssueCount{
		{Issue: snapshot.IssueDNS, Count: 2},
		{Issue: snapshot.IssueLatency, Count: 1},
	}, rep.CommonIssues)
	assert.Equal(t, []string{RecUptime, RecDNS, RecLatency}, rep.Recommendations)
}

func TestBuild_EmptyWindow(t *testing.T) {
	_, err := Build(nil)
	require.ErrorIs(t, err, ErrEmptyWindow)
}

func TestRecommend(t *testing.T) {
	cases := []struct {
		name   string
		score  float64
		uptime float64
		issues []string
		want   []string
	}{
		{"healthy", 98, 100, nil, []string{RecAcceptable}},
		{"low uptime", 90, 94.99, nil, []string{RecUptime}},
		{"poor score", 74, 95, nil, []string{RecPoorScore}},
		{"all", 20, 10,
			[]string{snapshot.IssueLatency, snapshot.IssuePacketLoss, snapshot.IssueDNS, snapshot.IssueHTTP},
			[]string{RecUptime, RecPoorScore, RecPacketLoss, RecDNS, RecLatency}},
		{"ping tool missing only", 80, 99, []string{snapshot.IssuePingUnavailable}, []string{RecAcceptable}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tally := make([]report.IssueCount, 0, len(tc.issues))
			for _, i := range tc.issues {
				tally = append(tally, report.IssueCount{Issue: i, Count: 1})
			}
			first := Recommend(tc.score, tc.uptime, tally)
			assert.Equal(t, tc.want, first)
			assert.Equal(t, first, Recommend(tc.score, tc.uptime, tally))
		})
	}
}

func TestWindow(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	recs := []record.LogRecord{
		{Timestamp: "2024-05-10 11:00:00"},
		{Timestamp: "garbage"},
		{Timestamp: "2024-05-03 12:00:00"},
		{Timestamp: "2024-05-01 00:00:00"},
	}

	got := Window(recs, 7, now, time.UTC)
	require.Len(t, got, 3)
	assert.Equal(t, "garbage", got[1].Timestamp)
	assert.Equal(t, "2024-05-03 12:00:00", got[2].Timestamp)

	assert.Len(t, Window(recs, 0, now, time.UTC), 4)
}

func TestService_Analyze(t *testing.T) {
	clock := fixedClock(time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC))

	t.Run("missing log", func(t *testing.T) {
		s := &Service{Reader: stubReader{err: fmt.Errorf("wrapped: %w", os.ErrNotExist)}, Clock: clock}
		_, err := s.Analyze(context.Background(), 7)
		require.ErrorIs(t, err, ErrNoLogData)
	})

	t.Run("empty log", func(t *testing.T) {
		s := &Service{Reader: stubReader{}, Clock: clock}
		_, err := s.Analyze(context.Background(), 0)
		require.ErrorIs(t, err, ErrNoLogData)
	})

	t.Run("unreadable log", func(t *testing.T) {
		boom := errors.New("parse log: bare quote")
		s := &Service{Reader: stubReader{err: boom}, Clock: clock}
		_, err := s.Analyze(context.Background(), 0)
		require.ErrorIs(t, err, boom)
		assert.NotErrorIs(t, err, ErrNoLogData)
	})

	t.Run("window excludes everything", func(t *testing.T) {
		old := []record.LogRecord{{Timestamp: "2023-01-01 00:00:00", OverallScore: f(90)}}
		s := &Service{Reader: stubReader{records: old}, Clock: clock, Location: time.UTC}
		_, err := s.Analyze(context.Background(), 1)
		require.ErrorIs(t, err, ErrEmptyWindow)
	})

	t.Run("idempotent", func(t *testing.T) {
		s := &Service{Reader: stubReader{records: scored(80, 40, 30, 90, 20)}, Clock: clock}
		a, err := s.Analyze(context.Background(), 0)
		require.NoError(t, err)
		b, err := s.Analyze(context.Background(), 0)
		require.NoError(t, err)
		assert.Equal(t, a, b)
	})
}

func TestRender(t *testing.T) {
	rep, err := Build(scored(80, 40, 30, 90, 20))
	require.NoError(t, err)
	rep.CommonIssues = []report.IssueCount{{Issue: snapshot.IssueDNS, Count: 3}}

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, rep))
	out := buf.String()

	assert.Contains(t, out, "INTERNET CONNECTIVITY ANALYSIS REPORT")
	assert.Contains(t, out, "Analysis Period: 2024-05-01 10:05:00 to 2024-05-01 10:01:00")
	assert.Contains(t, out, "Total Tests: 5\n")
	assert.Contains(t, out, "  Average Score: 52.0%\n")
	assert.Contains(t, out, "  Uptime: 40.0%\n")
	assert.Contains(t, out, "  Total Outages: 2\n")
	assert.Contains(t, out, "  1. 2024-05-01 10:04:00 to 2024-05-01 10:03:00 (~2 minutes)\n")
	assert.Contains(t, out, "  2. 2024-05-01 10:01:00 to 2024-05-01 10:01:00 (~1 minutes)\n")
	assert.Contains(t, out, "  DNS resolution issues: 3 occurrences\n")
	assert.Contains(t, out, "  • "+RecUptime+"\n")
	assert.NotContains(t, out, "Average Latency")
	assert.Contains(t, out, "This report can be provided to your ISP as evidence of connectivity issues.\n")
}
