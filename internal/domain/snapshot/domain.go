package snapshot

import (
	"time"

	"github.com/NordCoder/Netprobe/internal/domain/probe"
)

// LocalLayout is the local timestamp format used in the persisted log.
const LocalLayout = "2006-01-02 15:04:05"

// ConnectionType is the kind of link the host is using.
type ConnectionType string

const (
	ConnWiFi     ConnectionType = "WiFi"
	ConnEthernet ConnectionType = "Ethernet"
	ConnOther    ConnectionType = "Other"
	ConnUnknown  ConnectionType = "Unknown"
	ConnError    ConnectionType = "Error"
)

type NetworkInfo struct {
	ConnectionType ConnectionType `json:"connection_type"`
	SSID           string         `json:"ssid,omitempty"`
	GatewayIP      string         `json:"gateway_ip,omitempty"`
	Error          string         `json:"error,omitempty"`
}

type Identity struct {
	Hostname string `json:"hostname"`
	Username string `json:"username"`
	UserHost string `json:"user_host"`
	System   string `json:"system"`
}

// Status is the categorical connectivity verdict.
type Status string

const (
	StatusExcellent Status = "Excellent"
	StatusGood      Status = "Good"
	StatusPoor      Status = "Poor"
	StatusFailed    Status = "Failed"
)

// Issue tags. The texts are part of the persisted log format.
const (
	IssuePingUnavailable = "Ping command unavailable - unable to test packet loss"
	IssuePacketLoss      = "High packet loss detected"
	IssueDNS             = "DNS resolution issues"
	IssueHTTP            = "HTTP connectivity problems"
	IssueLatency         = "High latency detected"
)

// Results maps target key to outcome, per category.
type Results map[probe.Kind]map[string]probe.Outcome

// Size returns the total number of outcomes across categories.
func (r Results) Size() int {
	n := 0
	for _, m := range r {
		n += len(m)
	}
	return n
}

type Summary struct {
	OverallScore     float64  `json:"overall_score"`
	Status           Status   `json:"connectivity_status"`
	PingSuccessRate  float64  `json:"ping_success_rate"`
	HTTPSuccessRate  float64  `json:"http_success_rate"`
	HTTPSSuccessRate float64  `json:"https_success_rate"`
	DNSSuccessRate   float64  `json:"dns_success_rate"`
	AvgPingLatency   *float64 `json:"average_ping_latency,omitempty"`
	AvgHTTPResponse  *float64 `json:"average_http_response_time,omitempty"`
	Issues           []string `json:"issues_detected"`
}

// Snapshot is everything observed in a single monitoring run.
type Snapshot struct {
	Timestamp      time.Time   `json:"timestamp"`
	LocalTimestamp string      `json:"local_timestamp"`
	Identity       Identity    `json:"system_info"`
	Network        NetworkInfo `json:"network_info"`
	Tests          Results     `json:"tests"`
	Summary        Summary     `json:"summary"`
}
