// internal/storage/key_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/prompt-ai/promptapi-backend/internal/domain"
)

const keyColumns = `id, api_id, key, key_hash, name, is_active, expires_at, usage_count, last_used_at, created_at`

func scanKey(row interface{ Scan(...any) error }) (*domain.APIKey, error) {
	var key domain.APIKey
	err := row.Scan(
		&key.ID, &key.APIID, &key.Key, &key.KeyHash, &key.Name,
		&key.IsActive, &key.ExpiresAt, &key.UsageCount, &key.LastUsedAt, &key.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// CreateAPIKey inserts an additional key for an existing API.
func CreateAPIKey(ctx context.Context, db *sql.DB, key *domain.APIKey) error {
	query := `INSERT INTO api_keys (id, api_id, key, key_hash, name, is_active, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := db.ExecContext(ctx, query,
		key.ID, key.APIID, key.Key, key.KeyHash, key.Name, key.IsActive, key.ExpiresAt)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert key '%s' for api '%s': %v", key.Name, key.APIID, err)
		return fmt.Errorf("database error creating api key: %w", err)
	}
	return nil
}

// FindActiveKey matches a key hash against the active keys of one API.
// Expiry is deliberately not checked here; the gateway owns that step so
// an expired key is distinguishable from an unknown one.
func FindActiveKey(ctx context.Context, db *sql.DB, apiID, keyHash string) (*domain.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys
		WHERE api_id = ? AND key_hash = ? AND is_active = 1 LIMIT 1`
	key, err := scanKey(db.QueryRowContext(ctx, query, apiID, keyHash))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPIKeyNotFound
		}
		customLog.Warnf("Storage: Failed to find active key for api '%s': %v", apiID, err)
		return nil, fmt.Errorf("database error finding api key: %w", err)
	}
	return key, nil
}

// ListKeysForAPI returns all keys belonging to an API, newest first.
func ListKeysForAPI(ctx context.Context, db *sql.DB, apiID string) ([]*domain.APIKey, error) {
	query := `SELECT ` + keyColumns + ` FROM api_keys WHERE api_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, apiID)
	if err != nil {
		customLog.Warnf("Storage: Failed to list keys for api '%s': %v", apiID, err)
		return nil, fmt.Errorf("database error listing api keys: %w", err)
	}
	defer rows.Close()

	var keys []*domain.APIKey
	for rows.Next() {
		key, err := scanKey(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning key row: %w", err)
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

// DeactivateAPIKey revokes a key without deleting it, preserving its
// usage history. Rotation means issuing a new key, never mutating the
// secret of an old one.
func DeactivateAPIKey(ctx context.Context, db *sql.DB, keyID, apiID string) error {
	query := `UPDATE api_keys SET is_active = 0 WHERE id = ? AND api_id = ?`
	result, err := db.ExecContext(ctx, query, keyID, apiID)
	if err != nil {
		customLog.Warnf("Storage: Failed to deactivate key '%s': %v", keyID, err)
		return fmt.Errorf("database error deactivating api key: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAPIKeyNotFound
	}
	return nil
}

// RecordKeyUsage bumps the key's usage counter and last-used timestamp.
// Safe to call for a key deleted mid-flight.
func RecordKeyUsage(ctx context.Context, db *sql.DB, keyID string) error {
	query := `UPDATE api_keys
		SET usage_count = usage_count + 1, last_used_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, keyID); err != nil {
		customLog.Warnf("Storage: Failed to record usage for key '%s': %v", keyID, err)
		return fmt.Errorf("database error recording key usage: %w", err)
	}
	return nil
}
