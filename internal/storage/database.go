// internal/storage/database.go
package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // Driver registration

	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Sentinel errors surfaced by the storage layer and mapped to HTTP by
// the error-handling middleware.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAPINotFound        = errors.New("api not found")
	ErrSlugExists         = errors.New("slug already exists")
	ErrAPIKeyNotFound     = errors.New("api key not found")
)

// ConnectMetadataDB initializes the connection pool for the platform SQLite
// database and ensures all required tables exist.
func ConnectMetadataDB(cfg *config.Config) (*sql.DB, error) {
	dbPath := filepath.Join(cfg.MetadataDbDir, cfg.MetadataDbFile)
	customLog.Printf("Storage: Initializing metadata database: %s", dbPath)

	// Ensure the data directory exists
	if err := os.MkdirAll(cfg.MetadataDbDir, 0750); err != nil {
		customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.MetadataDbDir, err)
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// _foreign_keys=on makes the declared cascades actually fire
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		customLog.Warnf("Storage: Failed to open metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to open metadata db: %w", err)
	}

	// Verify connection is working
	if err = db.Ping(); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping metadata db '%s': %v", dbPath, err)
		return nil, fmt.Errorf("failed to connect to metadata db: %w", err)
	}
	customLog.Println("Storage: Metadata database connection successful.")

	// SQLite allows one writer at a time; a single pooled connection
	// keeps the gateway's concurrent usage writes from hitting SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	for name, stmt := range schemaStatements {
		if _, err = db.Exec(stmt); err != nil {
			db.Close()
			customLog.Warnf("Storage: Failed to create %s table: %v", name, err)
			return nil, fmt.Errorf("failed to ensure %s table: %w", name, err)
		}
	}
	customLog.Println("Storage: All tables ensured.")

	return db, nil
}

// Deleting an API cascades to its keys and its logs; deactivating a key
// keeps its log rows via ON DELETE SET NULL, so usage history survives
// key rotation.
var schemaStatements = map[string]string{
	"users": `
	CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		plan TEXT NOT NULL DEFAULT 'free',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);`,
	"generated_apis": `
	CREATE TABLE IF NOT EXISTS generated_apis (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		slug TEXT NOT NULL UNIQUE,
		user_prompt TEXT NOT NULL DEFAULT '',
		system_prompt TEXT NOT NULL,
		input_schema TEXT NOT NULL DEFAULT '{}',
		output_schema TEXT NOT NULL DEFAULT '{}',
		configuration TEXT NOT NULL DEFAULT '{}',
		status TEXT NOT NULL DEFAULT 'draft',
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (user_id) REFERENCES users(user_id) ON DELETE CASCADE
	);`,
	"api_keys": `
	CREATE TABLE IF NOT EXISTS api_keys (
		id TEXT PRIMARY KEY,
		api_id TEXT NOT NULL,
		key TEXT NOT NULL,
		key_hash TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT 'Default Key',
		is_active INTEGER NOT NULL DEFAULT 1,
		expires_at TIMESTAMP,
		usage_count INTEGER NOT NULL DEFAULT 0,
		last_used_at TIMESTAMP,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (api_id) REFERENCES generated_apis(id) ON DELETE CASCADE
	);`,
	"usage_logs": `
	CREATE TABLE IF NOT EXISTS usage_logs (
		id TEXT PRIMARY KEY,
		api_id TEXT NOT NULL,
		api_key_id TEXT,
		user_id TEXT NOT NULL,
		request_body TEXT NOT NULL DEFAULT '',
		response_body TEXT,
		status_code INTEGER NOT NULL,
		latency_ms INTEGER NOT NULL,
		error_message TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (api_id) REFERENCES generated_apis(id) ON DELETE CASCADE,
		FOREIGN KEY (api_key_id) REFERENCES api_keys(id) ON DELETE SET NULL
	);`,
}
