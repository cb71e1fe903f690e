package report

// Period describes the analysed window in stored order, like outage
// intervals: From is the first (newest) record, To the last (oldest).
type Period struct {
	From       string `json:"from"`
	To         string `json:"to"`
	TotalTests int    `json:"total_tests"`
}

type ConnectivitySummary struct {
	AverageScore       float64 `json:"average_score"`
	UptimePercentage   float64 `json:"uptime_percentage"`
	ConnectivityIssues int     `json:"connectivity_issues"`
	TotalOutages       int     `json:"total_outages"`
}

type PerformanceMetrics struct {
	AveragePingSuccessRate float64  `json:"average_ping_success_rate"`
	AverageLatencyMs       *float64 `json:"average_latency_ms,omitempty"`
	MaxLatencyMs           *float64 `json:"max_latency_ms,omitempty"`
}

// Outage is a maximal run of consecutive records scoring below the outage
// threshold. Start and End are the run's first and last record in stored
// (newest-first) order. DurationRecords counts the records in the run and
// is only a proxy for elapsed time: it equals minutes only if probes ran
// exactly once a minute.
type Outage struct {
	Start           string `json:"start"`
	End             string `json:"end"`
	StartIndex      int    `json:"start_index"`
	EndIndex        int    `json:"end_index"`
	DurationRecords int    `json:"duration_records"`
}

type IssueCount struct {
	Issue string `json:"issue"`
	Count int    `json:"count"`
}

// Report is computed on demand and never persisted.
type Report struct {
	Period          Period              `json:"analysis_period"`
	Connectivity    ConnectivitySummary `json:"connectivity_summary"`
	Performance     PerformanceMetrics  `json:"performance_metrics"`
	Outages         []Outage            `json:"outage_details"`
	CommonIssues    []IssueCount        `json:"common_issues"`
	Recommendations []string            `json:"recommendations"`
}
