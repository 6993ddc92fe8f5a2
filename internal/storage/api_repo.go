// internal/storage/api_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/prompt-ai/promptapi-backend/internal/domain"
)

const apiColumns = `id, user_id, name, description, slug, user_prompt, system_prompt,
	input_schema, output_schema, configuration, status, usage_count, last_used_at, created_at, updated_at`

func scanAPI(row interface{ Scan(...any) error }) (*domain.GeneratedAPI, error) {
	var api domain.GeneratedAPI
	err := row.Scan(
		&api.ID, &api.UserID, &api.Name, &api.Description, &api.Slug,
		&api.UserPrompt, &api.SystemPrompt, &api.InputSchema, &api.OutputSchema,
		&api.Configuration, &api.Status, &api.UsageCount, &api.LastUsedAt,
		&api.CreatedAt, &api.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &api, nil
}

// CreateAPIWithKey inserts a GeneratedAPI and its default key in one
// transaction, so an API is never provisioned without a working credential.
func CreateAPIWithKey(ctx context.Context, db *sql.DB, api *domain.GeneratedAPI, key *domain.APIKey) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("database error starting transaction: %w", err)
	}
	defer tx.Rollback()

	insertAPI := `INSERT INTO generated_apis
		(id, user_id, name, description, slug, user_prompt, system_prompt, input_schema, output_schema, configuration, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, insertAPI,
		api.ID, api.UserID, api.Name, api.Description, api.Slug,
		api.UserPrompt, api.SystemPrompt, api.InputSchema, api.OutputSchema,
		api.Configuration, api.Status,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return ErrSlugExists
		}
		customLog.Warnf("Storage: Failed to insert api '%s': %v", api.Slug, err)
		return fmt.Errorf("database error creating api: %w", err)
	}

	insertKey := `INSERT INTO api_keys (id, api_id, key, key_hash, name, is_active, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, insertKey,
		key.ID, api.ID, key.Key, key.KeyHash, key.Name, key.IsActive, key.ExpiresAt,
	); err != nil {
		customLog.Warnf("Storage: Failed to insert default key for api '%s': %v", api.Slug, err)
		return fmt.Errorf("database error creating default key: %w", err)
	}

	return tx.Commit()
}

// FindAPIBySlug retrieves an API by its public slug.
func FindAPIBySlug(ctx context.Context, db *sql.DB, slug string) (*domain.GeneratedAPI, error) {
	query := `SELECT ` + apiColumns + ` FROM generated_apis WHERE slug = ? LIMIT 1`
	api, err := scanAPI(db.QueryRowContext(ctx, query, slug))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPINotFound
		}
		customLog.Warnf("Storage: Failed to find api by slug '%s': %v", slug, err)
		return nil, fmt.Errorf("database error finding api: %w", err)
	}
	return api, nil
}

// SlugExists reports whether any API already claims the given slug.
func SlugExists(ctx context.Context, db *sql.DB, slug string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx, `SELECT COUNT(1) FROM generated_apis WHERE slug = ?`, slug).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("database error checking slug: %w", err)
	}
	return count > 0, nil
}

// FindAPIByIDForUser retrieves an API scoped to its owner.
func FindAPIByIDForUser(ctx context.Context, db *sql.DB, id, userID string) (*domain.GeneratedAPI, error) {
	query := `SELECT ` + apiColumns + ` FROM generated_apis WHERE id = ? AND user_id = ? LIMIT 1`
	api, err := scanAPI(db.QueryRowContext(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAPINotFound
		}
		customLog.Warnf("Storage: Failed to find api '%s' for user '%s': %v", id, userID, err)
		return nil, fmt.Errorf("database error finding api: %w", err)
	}
	return api, nil
}

// ListAPIsForUser returns all APIs owned by userID, newest first.
func ListAPIsForUser(ctx context.Context, db *sql.DB, userID string) ([]*domain.GeneratedAPI, error) {
	query := `SELECT ` + apiColumns + ` FROM generated_apis WHERE user_id = ? ORDER BY created_at DESC`
	rows, err := db.QueryContext(ctx, query, userID)
	if err != nil {
		customLog.Warnf("Storage: Failed to list apis for user '%s': %v", userID, err)
		return nil, fmt.Errorf("database error listing apis: %w", err)
	}
	defer rows.Close()

	var apis []*domain.GeneratedAPI
	for rows.Next() {
		api, err := scanAPI(rows)
		if err != nil {
			return nil, fmt.Errorf("database error scanning api row: %w", err)
		}
		apis = append(apis, api)
	}
	return apis, rows.Err()
}

// UpdateAPI persists the mutable fields of an API definition.
func UpdateAPI(ctx context.Context, db *sql.DB, api *domain.GeneratedAPI) error {
	query := `UPDATE generated_apis
		SET name = ?, description = ?, status = ?, system_prompt = ?, configuration = ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	result, err := db.ExecContext(ctx, query,
		api.Name, api.Description, api.Status, api.SystemPrompt, api.Configuration, api.ID)
	if err != nil {
		customLog.Warnf("Storage: Failed to update api '%s': %v", api.ID, err)
		return fmt.Errorf("database error updating api: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAPINotFound
	}
	return nil
}

// DeleteAPI removes an API; keys and logs follow via cascade.
func DeleteAPI(ctx context.Context, db *sql.DB, id string) error {
	result, err := db.ExecContext(ctx, `DELETE FROM generated_apis WHERE id = ?`, id)
	if err != nil {
		customLog.Warnf("Storage: Failed to delete api '%s': %v", id, err)
		return fmt.Errorf("database error deleting api: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return ErrAPINotFound
	}
	return nil
}

// RecordAPIUsage bumps the usage counter and last-used timestamp. A
// vanished row is not an error; usage counts are advisory telemetry.
func RecordAPIUsage(ctx context.Context, db *sql.DB, apiID string) error {
	query := `UPDATE generated_apis
		SET usage_count = usage_count + 1, last_used_at = CURRENT_TIMESTAMP
		WHERE id = ?`
	if _, err := db.ExecContext(ctx, query, apiID); err != nil {
		customLog.Warnf("Storage: Failed to record usage for api '%s': %v", apiID, err)
		return fmt.Errorf("database error recording api usage: %w", err)
	}
	return nil
}
