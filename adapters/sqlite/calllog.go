package sqlite

import (
	"context"
	"time"

	"github.com/artpar/wiregate/domain/calllog"
	"github.com/artpar/wiregate/ports"
)

// CallLogStore implements ports.CallLog using SQLite.
type CallLogStore struct {
	db *DB
}

// NewCallLogStore creates a new SQLite call log store.
func NewCallLogStore(db *DB) *CallLogStore {
	return &CallLogStore{db: db}
}

// Record stores one dispatch entry.
func (s *CallLogStore) Record(ctx context.Context, e calllog.Entry) error {
	// Store timestamp in UTC for consistent querying
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO call_log (id, request_id, feature, method, outcome, latency_ms, remote_ip, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.RequestID, e.Feature, e.Method, string(e.Outcome), e.LatencyMs, e.RemoteIP, e.Timestamp.UTC())
	return err
}

// Recent returns the most recent entries, newest first.
func (s *CallLogStore) Recent(ctx context.Context, limit int) ([]calllog.Entry, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, request_id, feature, method, outcome, latency_ms, remote_ip, timestamp
		FROM call_log
		ORDER BY timestamp DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []calllog.Entry
	for rows.Next() {
		var e calllog.Entry
		var outcome string
		if err := rows.Scan(&e.ID, &e.RequestID, &e.Feature, &e.Method, &outcome, &e.LatencyMs, &e.RemoteIP, &e.Timestamp); err != nil {
			return nil, err
		}
		e.Outcome = calllog.Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Summary aggregates entries for one feature over a period.
func (s *CallLogStore) Summary(ctx context.Context, feature string, start, end time.Time) (calllog.Summary, error) {
	// Format times as ISO8601 strings for SQLite comparison; timestamps
	// are stored in UTC.
	startStr := start.UTC().Format("2006-01-02 15:04:05")
	endStr := end.UTC().Format("2006-01-02 15:04:05")

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) as call_count,
			COALESCE(SUM(CASE WHEN outcome != 'ok' THEN 1 ELSE 0 END), 0) as error_count,
			CAST(COALESCE(AVG(latency_ms), 0) AS INTEGER) as avg_latency
		FROM call_log
		WHERE feature = ? AND datetime(timestamp) >= datetime(?) AND datetime(timestamp) < datetime(?)
	`, feature, startStr, endStr)

	summary := calllog.Summary{
		Feature:     feature,
		PeriodStart: start,
		PeriodEnd:   end,
	}
	if err := row.Scan(&summary.CallCount, &summary.ErrorCount, &summary.AvgLatencyMs); err != nil {
		return calllog.Summary{}, err
	}
	return summary, nil
}

// Ensure interface compliance.
var _ ports.CallLog = (*CallLogStore)(nil)
