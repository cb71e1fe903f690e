package probe

import "time"

// Kind is the protocol a target is probed with.
type Kind string

const (
	KindPing  Kind = "ping"
	KindDNS   Kind = "dns"
	KindHTTP  Kind = "http"
	KindHTTPS Kind = "https"
)

// Kinds lists every category in scoring order.
var Kinds = []Kind{KindPing, KindHTTP, KindHTTPS, KindDNS}

// Target identifies one probe: a host or URL tested with one protocol.
type Target struct {
	Kind    Kind          `json:"kind"`
	Address string        `json:"address"`
	Timeout time.Duration `json:"timeout"`
}

// Key is the identity the orchestrator indexes outcomes by.
func (t Target) Key() string { return t.Address }

// ErrorClass is a coarse classification of a failed probe.
type ErrorClass string

const (
	ClassNone            ErrorClass = ""
	ClassTimeout         ErrorClass = "timeout"
	ClassRefused         ErrorClass = "refused"
	ClassDNS             ErrorClass = "dns"
	ClassNotFound        ErrorClass = "not_found"
	ClassTemporary       ErrorClass = "temporary"
	ClassTLS             ErrorClass = "tls"
	ClassPermission      ErrorClass = "permission"
	ClassHTTPStatus      ErrorClass = "http_status"
	ClassToolUnavailable ErrorClass = "tool_unavailable"
	ClassInternal        ErrorClass = "internal"
	ClassOther           ErrorClass = "other"
)

// Outcome is the normalized result of a single probe.
type Outcome struct {
	Success    bool       `json:"success"`
	LatencyMs  *float64   `json:"latency_ms,omitempty"`
	Error      string     `json:"error,omitempty"`
	ErrorClass ErrorClass `json:"error_class,omitempty"`

	// DNS only.
	IPs []string `json:"ips,omitempty"`
	// HTTP and HTTPS only.
	StatusCode *int `json:"status_code,omitempty"`
}

// Failed builds a failure outcome.
func Failed(class ErrorClass, msg string) Outcome {
	return Outcome{Error: msg, ErrorClass: class}
}

// ToolUnavailable reports whether the probing mechanism itself was missing.
func (o Outcome) ToolUnavailable() bool {
	return !o.Success && o.ErrorClass == ClassToolUnavailable
}
