// internal/storage/usage_repo.go
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/prompt-ai/promptapi-backend/internal/domain"
)

// AppendUsageLog inserts exactly one immutable invocation record. Rows
// are never updated afterwards.
func AppendUsageLog(ctx context.Context, db *sql.DB, entry *domain.UsageLog) error {
	query := `INSERT INTO usage_logs
		(id, api_id, api_key_id, user_id, request_body, response_body, status_code, latency_ms, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		entry.ID, entry.APIID, entry.APIKeyID, entry.UserID,
		entry.RequestBody, entry.ResponseBody, entry.StatusCode, entry.LatencyMs, entry.ErrorMessage)
	if err != nil {
		customLog.Warnf("Storage: Failed to append usage log for api '%s': %v", entry.APIID, err)
		return fmt.Errorf("database error appending usage log: %w", err)
	}
	return nil
}

// ListUsageLogsForAPI returns the most recent logs for one API.
func ListUsageLogsForAPI(ctx context.Context, db *sql.DB, apiID string, limit int) ([]*domain.UsageLog, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := `SELECT id, api_id, api_key_id, user_id, request_body, response_body,
		status_code, latency_ms, error_message, created_at
		FROM usage_logs WHERE api_id = ? ORDER BY created_at DESC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, apiID, limit)
	if err != nil {
		customLog.Warnf("Storage: Failed to list usage logs for api '%s': %v", apiID, err)
		return nil, fmt.Errorf("database error listing usage logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.UsageLog
	for rows.Next() {
		var entry domain.UsageLog
		if err := rows.Scan(
			&entry.ID, &entry.APIID, &entry.APIKeyID, &entry.UserID,
			&entry.RequestBody, &entry.ResponseBody, &entry.StatusCode,
			&entry.LatencyMs, &entry.ErrorMessage, &entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("database error scanning usage log row: %w", err)
		}
		logs = append(logs, &entry)
	}
	return logs, rows.Err()
}

// CountUsageLogsForAPI returns the total number of logged invocations.
func CountUsageLogsForAPI(ctx context.Context, db *sql.DB, apiID string) (int64, error) {
	var count int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM usage_logs WHERE api_id = ?`, apiID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("database error counting usage logs: %w", err)
	}
	return count, nil
}

// UsageTotals summarizes a user's consumption across all their APIs.
type UsageTotals struct {
	TotalRequests int64   `json:"totalRequests"`
	TotalErrors   int64   `json:"totalErrors"`
	AvgLatencyMs  float64 `json:"avgLatencyMs"`
}

// UsageTotalsForUser aggregates usage log rows owned by one user.
func UsageTotalsForUser(ctx context.Context, db *sql.DB, userID string) (*UsageTotals, error) {
	query := `SELECT COUNT(1),
		COALESCE(SUM(CASE WHEN status_code >= 400 THEN 1 ELSE 0 END), 0),
		COALESCE(AVG(latency_ms), 0)
		FROM usage_logs WHERE user_id = ?`
	var totals UsageTotals
	err := db.QueryRowContext(ctx, query, userID).Scan(
		&totals.TotalRequests, &totals.TotalErrors, &totals.AvgLatencyMs)
	if err != nil && err != sql.ErrNoRows {
		customLog.Warnf("Storage: Failed to aggregate usage for user '%s': %v", userID, err)
		return nil, fmt.Errorf("database error aggregating usage: %w", err)
	}
	return &totals, nil
}
