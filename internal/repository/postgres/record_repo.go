package postgres

import (
	"context"
	"fmt"

	"github.com/NordCoder/Netprobe/internal/domain/record"
)

var (
	_ record.Sink   = (*RecordRepo)(nil)
	_ record.Reader = (*RecordRepo)(nil)
)

// RecordRepo mirrors the CSV log into connectivity_records.
type RecordRepo struct {
	db *DB
	// UserHost restricts reads to one machine; empty reads every host.
	UserHost string
}

func NewRecordRepo(db *DB) *RecordRepo { return &RecordRepo{db: db} }

const (
	qRecordInsert = `
INSERT INTO connectivity_records (
    local_ts, user_host, connection_type, ssid, overall_score, connectivity_status,
    ping_success_rate, avg_ping_latency, http_success_rate, https_success_rate,
    dns_success_rate, issues, system
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (user_host, local_ts) DO UPDATE SET user_host = EXCLUDED.user_host
RETURNING id;`

	qRecordsRecent = `
SELECT local_ts, user_host, connection_type, ssid, overall_score, connectivity_status,
       ping_success_rate, avg_ping_latency, http_success_rate, https_success_rate,
       dns_success_rate, issues, system
FROM connectivity_records
WHERE ($1 = '' OR user_host = $1)
ORDER BY id DESC
LIMIT $2;`
)

func (r *RecordRepo) Name() string { return "postgres" }

func (r *RecordRepo) Write(ctx context.Context, rec record.LogRecord) error {
	_, err := r.Insert(ctx, rec)
	return err
}

// Insert is idempotent per (user_host, timestamp): writing the same record
// again, e.g. after a retried export whose first reply was lost, returns the
// existing row's id instead of adding a duplicate.
func (r *RecordRepo) Insert(ctx context.Context, rec record.LogRecord) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	issues := rec.Issues
	if issues == nil {
		issues = []string{}
	}
	var id int64
	err := r.db.Pool.QueryRow(ctx, qRecordInsert,
		rec.Timestamp, rec.UserHost, rec.ConnectionType, rec.SSID, rec.OverallScore, rec.Status,
		rec.PingSuccessRate, rec.AvgPingLatency, rec.HTTPSuccessRate, rec.HTTPSSuccessRate,
		rec.DNSSuccessRate, issues, rec.System,
	).Scan(&id)
	if err != nil {
		return 0, mapErr("insert record", err)
	}
	return id, nil
}

// Load returns every stored record, newest first.
func (r *RecordRepo) Load(ctx context.Context) ([]record.LogRecord, error) {
	return r.ListRecent(ctx, 0)
}

// ListRecent returns up to limit records, newest first. limit <= 0 means
// no limit.
func (r *RecordRepo) ListRecent(ctx context.Context, limit int) ([]record.LogRecord, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := r.db.Pool.Query(ctx, qRecordsRecent, r.UserHost, lim)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	var out []record.LogRecord
	for rows.Next() {
		var rec record.LogRecord
		if err := rows.Scan(
			&rec.Timestamp, &rec.UserHost, &rec.ConnectionType, &rec.SSID, &rec.OverallScore, &rec.Status,
			&rec.PingSuccessRate, &rec.AvgPingLatency, &rec.HTTPSuccessRate, &rec.HTTPSSuccessRate,
			&rec.DNSSuccessRate, &rec.Issues, &rec.System,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if len(rec.Issues) == 0 {
			rec.Issues = nil
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}
