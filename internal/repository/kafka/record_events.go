package kafka

import (
	"context"
	"fmt"
	"strings"

	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/NordCoder/Netprobe/internal/domain/record"
	"github.com/NordCoder/Netprobe/internal/obs/retry"
)

var _ record.Sink = (*RecordSink)(nil)

// RecordSink publishes each record as a protobuf Struct keyed by user_host,
// so one machine's records stay on one partition.
type RecordSink struct {
	p *Producer
}

func NewRecordSink(p *Producer) *RecordSink { return &RecordSink{p: p} }

func (s *RecordSink) Name() string { return "kafka" }

func (s *RecordSink) Write(ctx context.Context, r record.LogRecord) error {
	msg, err := EncodeRecord(r)
	if err != nil {
		return err
	}
	return s.p.PublishProto(ctx, []byte(r.UserHost), msg)
}

func (s *RecordSink) Close() error { return s.p.Close() }

// EncodeRecord maps a record onto its column names. Missing numbers become
// null values.
func EncodeRecord(r record.LogRecord) (*structpb.Struct, error) {
	issues := make([]any, 0, len(r.Issues))
	for _, i := range r.Issues {
		issues = append(issues, validUTF8(i))
	}
	st, err := structpb.NewStruct(map[string]any{
		"timestamp":           validUTF8(r.Timestamp),
		"user_host":           validUTF8(r.UserHost),
		"connection_type":     validUTF8(r.ConnectionType),
		"ssid":                validUTF8(r.SSID),
		"overall_score":       num(r.OverallScore),
		"connectivity_status": validUTF8(r.Status),
		"ping_success_rate":   num(r.PingSuccessRate),
		"avg_ping_latency":    num(r.AvgPingLatency),
		"http_success_rate":   num(r.HTTPSuccessRate),
		"https_success_rate":  num(r.HTTPSSuccessRate),
		"dns_success_rate":    num(r.DNSSuccessRate),
		"issues":              issues,
		"system":              validUTF8(r.System),
	})
	if err != nil {
		return nil, retry.Permanent(fmt.Errorf("encode record: %w", err))
	}
	return st, nil
}

// DecodeRecord reverses EncodeRecord for a consumed message and returns the
// context carried in its headers.
func DecodeRecord(ctx context.Context, msg kafka.Message) (context.Context, record.LogRecord, error) {
	ctx = otel.GetTextMapPropagator().Extract(ctx, carrierFor(&msg.Headers))

	var st structpb.Struct
	if err := proto.Unmarshal(msg.Value, &st); err != nil {
		return ctx, record.LogRecord{}, fmt.Errorf("decode record: %w", err)
	}
	f := st.GetFields()
	str := func(k string) string { return f[k].GetStringValue() }
	flt := func(k string) *float64 {
		v, ok := f[k]
		if !ok {
			return nil
		}
		if _, isNum := v.GetKind().(*structpb.Value_NumberValue); !isNum {
			return nil
		}
		n := v.GetNumberValue()
		return &n
	}

	r := record.LogRecord{
		Timestamp:        str("timestamp"),
		UserHost:         str("user_host"),
		ConnectionType:   str("connection_type"),
		SSID:             str("ssid"),
		OverallScore:     flt("overall_score"),
		Status:           str("connectivity_status"),
		PingSuccessRate:  flt("ping_success_rate"),
		AvgPingLatency:   flt("avg_ping_latency"),
		HTTPSuccessRate:  flt("http_success_rate"),
		HTTPSSuccessRate: flt("https_success_rate"),
		DNSSuccessRate:   flt("dns_success_rate"),
		System:           str("system"),
	}
	for _, v := range f["issues"].GetListValue().GetValues() {
		r.Issues = append(r.Issues, v.GetStringValue())
	}
	return ctx, r, nil
}

// validUTF8 replaces invalid byte sequences; SSIDs in particular are raw bytes
// and structpb only accepts valid UTF-8.
func validUTF8(s string) string { return strings.ToValidUTF8(s, "\uFFFD") }

func num(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
