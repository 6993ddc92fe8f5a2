// internal/domain/models.go
package domain

import "time"

// API lifecycle statuses. The gateway only ever serves StatusActive;
// transitions between statuses are driven by the owner through the
// management plane, never inferred here.
const (
	StatusDraft       = "draft"
	StatusConfiguring = "configuring"
	StatusActive      = "active"
	StatusPaused      = "paused"
	StatusError       = "error"
)

// User defines the structure for user data in the DB
type User struct {
	UserID       string
	Username     string
	Email        string
	PasswordHash string
	Plan         string
	CreatedAt    time.Time
}

// GeneratedAPI is a user-defined, prompt-backed endpoint.
// InputSchema, OutputSchema and Configuration are stored as JSON text;
// the slug is globally unique and immutable once assigned.
type GeneratedAPI struct {
	ID            string
	UserID        string
	Name          string
	Description   string
	Slug          string
	UserPrompt    string
	SystemPrompt  string
	InputSchema   string
	OutputSchema  string
	Configuration string
	Status        string
	UsageCount    int64
	LastUsedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// APIKey is a credential scoped to exactly one GeneratedAPI. Only the
// sha256 hash is used for lookup; the plaintext is shown once at issue
// time and kept solely for dashboard display.
type APIKey struct {
	ID         string
	APIID      string
	Key        string
	KeyHash    string
	Name       string
	IsActive   bool
	ExpiresAt  *time.Time
	UsageCount int64
	LastUsedAt *time.Time
	CreatedAt  time.Time
}

// UsageLog is an immutable record of one gateway invocation, written
// exactly once after the attempt concludes.
type UsageLog struct {
	ID           string
	APIID        string
	APIKeyID     *string
	UserID       string
	RequestBody  string
	ResponseBody *string
	StatusCode   int
	LatencyMs    int64
	ErrorMessage *string
	CreatedAt    time.Time
}

// RateLimitConfig is declared intent for an external policy layer;
// the gateway stores and returns it but does not enforce it.
type RateLimitConfig struct {
	RequestsPerMinute int `json:"requestsPerMinute"`
	RequestsPerDay    int `json:"requestsPerDay"`
}

// APIConfiguration is the per-API generation parameter bundle persisted
// as JSON in generated_apis.configuration.
type APIConfiguration struct {
	Model          string          `json:"model"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"maxTokens"`
	RateLimit      RateLimitConfig `json:"rateLimit"`
	Authentication bool            `json:"authentication"`
}
