// api/models/api_models.go
package models

import (
	"time"

	"github.com/prompt-ai/promptapi-backend/internal/core"
	"github.com/prompt-ai/promptapi-backend/internal/domain"
)

// --- Setup Generation ---

// GenerateSetupRequest carries the user's natural-language description
// of the API they want designed.
type GenerateSetupRequest struct {
	Prompt string `json:"prompt" binding:"required,min=10,max=5000"`
}

// APISetup is the LLM-proposed definition of a generated API. The user
// reviews and may edit it before provisioning.
type APISetup struct {
	Name              string            `json:"name" binding:"required"`
	Description       string            `json:"description"`
	SystemPrompt      string            `json:"systemPrompt" binding:"required"`
	InputSchema       core.InputSchema  `json:"inputSchema"`
	OutputSchema      core.InputSchema  `json:"outputSchema"`
	ExampleInput      map[string]any    `json:"exampleInput,omitempty"`
	ExampleOutput     map[string]any    `json:"exampleOutput,omitempty"`
	SuggestedEndpoint string            `json:"suggestedEndpoint"`
}

// --- API Management ---

// CreateAPIRequest provisions a GeneratedAPI from an approved setup.
type CreateAPIRequest struct {
	Prompt string                   `json:"prompt" binding:"required"`
	Setup  APISetup                 `json:"setup" binding:"required"`
	Config *domain.APIConfiguration `json:"config,omitempty"`
}

// CreateAPIResponse is the only place the plaintext default key appears.
type CreateAPIResponse struct {
	ID       string `json:"id"`
	APIKey   string `json:"apiKey"`
	Endpoint string `json:"endpoint"`
}

// UpdateAPIRequest carries partial updates; empty fields are left unchanged.
type UpdateAPIRequest struct {
	Name          string                   `json:"name,omitempty"`
	Description   string                   `json:"description,omitempty"`
	Status        string                   `json:"status,omitempty"`
	SystemPrompt  string                   `json:"systemPrompt,omitempty"`
	Configuration *domain.APIConfiguration `json:"configuration,omitempty"`
}

// APIKeySummary is the key view embedded in list/detail responses.
// It never carries the plaintext key.
type APIKeySummary struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	IsActive   bool       `json:"isActive"`
	ExpiresAt  *time.Time `json:"expiresAt,omitempty"`
	UsageCount int64      `json:"usageCount"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// --- Key Management ---

// CreateKeyRequest issues an additional named key for an API.
type CreateKeyRequest struct {
	Name      string     `json:"name" binding:"required"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
}

// CreateKeyResponse returns the plaintext exactly once.
type CreateKeyResponse struct {
	ID     string `json:"id"`
	APIKey string `json:"apiKey"`
	Name   string `json:"name"`
}
