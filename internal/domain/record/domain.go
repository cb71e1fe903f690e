package record

import (
	"strconv"
	"strings"
	"time"

	"github.com/NordCoder/Netprobe/internal/domain/snapshot"
)

// Columns is the persisted column order. Do not reorder: existing logs and
// reports depend on it.
var Columns = []string{
	"timestamp",
	"user_host",
	"connection_type",
	"ssid",
	"overall_score",
	"connectivity_status",
	"ping_success_rate",
	"avg_ping_latency",
	"http_success_rate",
	"https_success_rate",
	"dns_success_rate",
	"issues",
	"system",
}

// IssueSeparator joins issue tags inside the issues column.
const IssueSeparator = "; "

// LogRecord is the flattened, persisted projection of one snapshot.
// Numeric fields are nil when the stored value is empty or unparsable.
type LogRecord struct {
	Timestamp        string   `json:"timestamp"`
	UserHost         string   `json:"user_host"`
	ConnectionType   string   `json:"connection_type"`
	SSID             string   `json:"ssid"`
	OverallScore     *float64 `json:"overall_score"`
	Status           string   `json:"connectivity_status"`
	PingSuccessRate  *float64 `json:"ping_success_rate"`
	AvgPingLatency   *float64 `json:"avg_ping_latency"`
	HTTPSuccessRate  *float64 `json:"http_success_rate"`
	HTTPSSuccessRate *float64 `json:"https_success_rate"`
	DNSSuccessRate   *float64 `json:"dns_success_rate"`
	Issues           []string `json:"issues"`
	System           string   `json:"system"`
}

// FromSnapshot projects a snapshot into its log record.
func FromSnapshot(s snapshot.Snapshot) LogRecord {
	conn := string(s.Network.ConnectionType)
	if conn == "" {
		conn = string(snapshot.ConnUnknown)
	}
	sum := s.Summary
	issues := make([]string, len(sum.Issues))
	copy(issues, sum.Issues)
	return LogRecord{
		Timestamp:        s.LocalTimestamp,
		UserHost:         s.Identity.UserHost,
		ConnectionType:   conn,
		SSID:             s.Network.SSID,
		OverallScore:     ptr(sum.OverallScore),
		Status:           string(sum.Status),
		PingSuccessRate:  ptr(sum.PingSuccessRate),
		AvgPingLatency:   copyPtr(sum.AvgPingLatency),
		HTTPSuccessRate:  ptr(sum.HTTPSuccessRate),
		HTTPSSuccessRate: ptr(sum.HTTPSSuccessRate),
		DNSSuccessRate:   ptr(sum.DNSSuccessRate),
		Issues:           issues,
		System:           s.Identity.System,
	}
}

// Time parses the local timestamp.
func (r LogRecord) Time(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	return time.ParseInLocation(snapshot.LocalLayout, strings.TrimSpace(r.Timestamp), loc)
}

// Row renders the record in Columns order.
func (r LogRecord) Row() []string {
	return []string{
		r.Timestamp,
		r.UserHost,
		r.ConnectionType,
		r.SSID,
		FormatFloat(r.OverallScore),
		r.Status,
		FormatFloat(r.PingSuccessRate),
		FormatFloat(r.AvgPingLatency),
		FormatFloat(r.HTTPSuccessRate),
		FormatFloat(r.HTTPSSuccessRate),
		FormatFloat(r.DNSSuccessRate),
		strings.Join(r.Issues, IssueSeparator),
		r.System,
	}
}

// FromFields builds a record from a column-name keyed row. Missing columns
// are left empty.
func FromFields(fields map[string]string) LogRecord {
	return LogRecord{
		Timestamp:        fields["timestamp"],
		UserHost:         fields["user_host"],
		ConnectionType:   fields["connection_type"],
		SSID:             fields["ssid"],
		OverallScore:     ParseFloat(fields["overall_score"]),
		Status:           fields["connectivity_status"],
		PingSuccessRate:  ParseFloat(fields["ping_success_rate"]),
		AvgPingLatency:   ParseFloat(fields["avg_ping_latency"]),
		HTTPSuccessRate:  ParseFloat(fields["http_success_rate"]),
		HTTPSSuccessRate: ParseFloat(fields["https_success_rate"]),
		DNSSuccessRate:   ParseFloat(fields["dns_success_rate"]),
		Issues:           SplitIssues(fields["issues"]),
		System:           fields["system"],
	}
}

// SplitIssues splits the issues column, dropping blanks.
func SplitIssues(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ";")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// FormatFloat renders v the way the log has always stored numbers: empty
// for nil, and integral values keep a trailing ".0".
func FormatFloat(v *float64) string {
	if v == nil {
		return ""
	}
	s := strconv.FormatFloat(*v, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func ParseFloat(s string) *float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &f
}

func ptr(v float64) *float64 { return &v }

func copyPtr(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
