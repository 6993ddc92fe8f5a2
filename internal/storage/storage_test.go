package storage_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/auth"
	"github.com/prompt-ai/promptapi-backend/internal/domain"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	tempDir := t.TempDir()
	cfg := &config.Config{
		MetadataDbDir:  filepath.Join(tempDir, "data"),
		MetadataDbFile: "test.db",
	}
	db, err := storage.ConnectMetadataDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func seedUser(t *testing.T, db *sql.DB) string {
	t.Helper()
	userID, err := storage.CreateUser(context.Background(), db,
		uuid.New().String(), "tester", uuid.New().String()+"@example.com", "hashed")
	require.NoError(t, err)
	return userID
}

func seedAPIWithKey(t *testing.T, db *sql.DB, userID, slug string) (*domain.GeneratedAPI, *domain.APIKey, string) {
	t.Helper()

	plainKey, err := auth.GenerateAPIKey()
	require.NoError(t, err)

	api := &domain.GeneratedAPI{
		ID:           uuid.New().String(),
		UserID:       userID,
		Name:         "Test API",
		Slug:         slug,
		SystemPrompt: "Do the thing.",
		InputSchema:  `{}`,
		OutputSchema: `{}`,
		Status:       domain.StatusActive,
	}
	key := &domain.APIKey{
		ID:       uuid.New().String(),
		APIID:    api.ID,
		Key:      plainKey,
		KeyHash:  auth.HashAPIKey(plainKey),
		Name:     "Default Key",
		IsActive: true,
	}
	require.NoError(t, storage.CreateAPIWithKey(context.Background(), db, api, key))
	return api, key, plainKey
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()

	_, err := storage.CreateUser(ctx, db, uuid.New().String(), "a", "dup@example.com", "h")
	require.NoError(t, err)
	_, err = storage.CreateUser(ctx, db, uuid.New().String(), "b", "dup@example.com", "h")
	assert.ErrorIs(t, err, storage.ErrEmailExists)
}

func TestCreateAPIWithKeyAndLookups(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := seedUser(t, db)
	api, key, plainKey := seedAPIWithKey(t, db, userID, "lookup-test")

	found, err := storage.FindAPIBySlug(ctx, db, "lookup-test")
	require.NoError(t, err)
	assert.Equal(t, api.ID, found.ID)
	assert.Equal(t, domain.StatusActive, found.Status)

	_, err = storage.FindAPIBySlug(ctx, db, "no-such-slug")
	assert.ErrorIs(t, err, storage.ErrAPINotFound)

	exists, err := storage.SlugExists(ctx, db, "lookup-test")
	require.NoError(t, err)
	assert.True(t, exists)

	// Duplicate slug rolls the whole transaction back
	dup := *api
	dup.ID = uuid.New().String()
	dupKey := *key
	dupKey.ID = uuid.New().String()
	err = storage.CreateAPIWithKey(ctx, db, &dup, &dupKey)
	assert.ErrorIs(t, err, storage.ErrSlugExists)
	keys, err := storage.ListKeysForAPI(ctx, db, dup.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)

	// Hash lookup only matches the right API and active keys
	foundKey, err := storage.FindActiveKey(ctx, db, api.ID, auth.HashAPIKey(plainKey))
	require.NoError(t, err)
	assert.Equal(t, key.ID, foundKey.ID)

	_, err = storage.FindActiveKey(ctx, db, uuid.New().String(), auth.HashAPIKey(plainKey))
	assert.ErrorIs(t, err, storage.ErrAPIKeyNotFound)

	require.NoError(t, storage.DeactivateAPIKey(ctx, db, key.ID, api.ID))
	_, err = storage.FindActiveKey(ctx, db, api.ID, auth.HashAPIKey(plainKey))
	assert.ErrorIs(t, err, storage.ErrAPIKeyNotFound)
}

func TestFindActiveKeyReturnsExpiredKeys(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := seedUser(t, db)
	api, _, _ := seedAPIWithKey(t, db, userID, "expiry-test")

	expired := time.Now().Add(-time.Hour)
	plainKey, err := auth.GenerateAPIKey()
	require.NoError(t, err)
	key := &domain.APIKey{
		ID:        uuid.New().String(),
		APIID:     api.ID,
		Key:       plainKey,
		KeyHash:   auth.HashAPIKey(plainKey),
		Name:      "Expired Key",
		IsActive:  true,
		ExpiresAt: &expired,
	}
	require.NoError(t, storage.CreateAPIKey(ctx, db, key))

	// The store hands back expired keys; the caller decides expiry
	found, err := storage.FindActiveKey(ctx, db, api.ID, key.KeyHash)
	require.NoError(t, err)
	require.NotNil(t, found.ExpiresAt)
	assert.True(t, found.ExpiresAt.Before(time.Now()))
}

func TestDeleteAPICascades(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := seedUser(t, db)
	api, key, _ := seedAPIWithKey(t, db, userID, "cascade-test")

	require.NoError(t, storage.AppendUsageLog(ctx, db, &domain.UsageLog{
		ID:          uuid.New().String(),
		APIID:       api.ID,
		APIKeyID:    &key.ID,
		UserID:      userID,
		RequestBody: `{}`,
		StatusCode:  200,
		LatencyMs:   12,
	}))

	require.NoError(t, storage.DeleteAPI(ctx, db, api.ID))

	_, err := storage.FindAPIBySlug(ctx, db, "cascade-test")
	assert.ErrorIs(t, err, storage.ErrAPINotFound)
	keys, err := storage.ListKeysForAPI(ctx, db, api.ID)
	require.NoError(t, err)
	assert.Empty(t, keys)
	count, err := storage.CountUsageLogsForAPI(ctx, db, api.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	assert.ErrorIs(t, storage.DeleteAPI(ctx, db, api.ID), storage.ErrAPINotFound)
}

func TestUsageCountersAndTotals(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := seedUser(t, db)
	api, key, _ := seedAPIWithKey(t, db, userID, "counter-test")

	for i := 0; i < 3; i++ {
		require.NoError(t, storage.RecordAPIUsage(ctx, db, api.ID))
		require.NoError(t, storage.RecordKeyUsage(ctx, db, key.ID))
	}
	require.NoError(t, storage.AppendUsageLog(ctx, db, &domain.UsageLog{
		ID: uuid.New().String(), APIID: api.ID, APIKeyID: &key.ID, UserID: userID,
		RequestBody: `{}`, StatusCode: 200, LatencyMs: 100,
	}))
	require.NoError(t, storage.AppendUsageLog(ctx, db, &domain.UsageLog{
		ID: uuid.New().String(), APIID: api.ID, APIKeyID: &key.ID, UserID: userID,
		RequestBody: `{}`, StatusCode: 500, LatencyMs: 300,
	}))

	found, err := storage.FindAPIBySlug(ctx, db, "counter-test")
	require.NoError(t, err)
	assert.Equal(t, int64(3), found.UsageCount)
	assert.NotNil(t, found.LastUsedAt)

	keys, err := storage.ListKeysForAPI(ctx, db, api.ID)
	require.NoError(t, err)
	require.Len(t, keys, 1)
	assert.Equal(t, int64(3), keys[0].UsageCount)

	totals, err := storage.UsageTotalsForUser(ctx, db, userID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), totals.TotalRequests)
	assert.Equal(t, int64(1), totals.TotalErrors)
	assert.InDelta(t, 200.0, totals.AvgLatencyMs, 0.01)

	// Counters are advisory; unknown ids are not an error
	assert.NoError(t, storage.RecordAPIUsage(ctx, db, "missing"))
	assert.NoError(t, storage.RecordKeyUsage(ctx, db, "missing"))
}

func TestUpdateAPIPersistsFields(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	userID := seedUser(t, db)
	api, _, _ := seedAPIWithKey(t, db, userID, "update-test")

	api.Name = "Renamed"
	api.Status = domain.StatusPaused
	api.SystemPrompt = "New instructions."
	require.NoError(t, storage.UpdateAPI(ctx, db, api))

	found, err := storage.FindAPIByIDForUser(ctx, db, api.ID, userID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", found.Name)
	assert.Equal(t, domain.StatusPaused, found.Status)
	assert.Equal(t, "New instructions.", found.SystemPrompt)

	// Owner scoping
	_, err = storage.FindAPIByIDForUser(ctx, db, api.ID, "someone-else")
	assert.ErrorIs(t, err, storage.ErrAPINotFound)
}
