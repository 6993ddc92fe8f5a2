// api/handlers/api_handler.go
package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prompt-ai/promptapi-backend/api/models"
	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/auth"
	"github.com/prompt-ai/promptapi-backend/internal/core"
	"github.com/prompt-ai/promptapi-backend/internal/domain"
	"github.com/prompt-ai/promptapi-backend/internal/llm"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

// APIHandler owns the management plane for GeneratedAPI definitions.
type APIHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewAPIHandler creates a new APIHandler.
func NewAPIHandler(db *sql.DB, cfg *config.Config) *APIHandler {
	return &APIHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// defaultConfiguration merges a user-supplied partial configuration
// into the platform defaults, mirroring the provisioning defaults of
// the dashboard.
func defaultConfiguration(override *domain.APIConfiguration) domain.APIConfiguration {
	cfg := domain.APIConfiguration{
		Model:       llm.DefaultModel,
		Temperature: llm.DefaultTemperature,
		MaxTokens:   llm.DefaultMaxTokens,
		RateLimit: domain.RateLimitConfig{
			RequestsPerMinute: 60,
			RequestsPerDay:    1000,
		},
		Authentication: true,
	}
	if override != nil {
		if override.Model != "" {
			cfg.Model = override.Model
		}
		if override.Temperature != 0 {
			cfg.Temperature = override.Temperature
		}
		if override.MaxTokens != 0 {
			cfg.MaxTokens = override.MaxTokens
		}
		if override.RateLimit.RequestsPerMinute != 0 {
			cfg.RateLimit.RequestsPerMinute = override.RateLimit.RequestsPerMinute
		}
		if override.RateLimit.RequestsPerDay != 0 {
			cfg.RateLimit.RequestsPerDay = override.RateLimit.RequestsPerDay
		}
	}
	return cfg
}

// CreateAPI handles POST /api/v1/apis: provisions a GeneratedAPI from an
// approved setup together with its default key, in one transaction. The
// response is the only place the plaintext key ever appears.
func (h *APIHandler) CreateAPI(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req models.CreateAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("CreateAPI binding error: %v", err)
		_ = c.Error(err)
		return
	}

	cfg := defaultConfiguration(req.Config)
	if problems := core.ValidateConfiguration(cfg, llm.KnownModels); len(problems) > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(problems, "; ")})
		return
	}

	// Slugs are immutable and globally unique; on collision append a
	// base36 timestamp suffix instead of failing the request.
	slug := core.Slugify(req.Setup.SuggestedEndpoint)
	if slug == "" {
		slug = core.Slugify(req.Setup.Name)
	}
	if slug == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Setup does not yield a usable endpoint name"})
		return
	}
	exists, err := storage.SlugExists(c.Request.Context(), h.DB, slug)
	if err != nil {
		_ = c.Error(err)
		return
	}
	if exists {
		slug = slug + "-" + strconv.FormatInt(time.Now().UnixMilli(), 36)
	}

	plainKey, err := auth.GenerateAPIKey()
	if err != nil {
		_ = c.Error(err)
		return
	}

	inputSchema, err := json.Marshal(req.Setup.InputSchema)
	if err != nil {
		_ = c.Error(err)
		return
	}
	outputSchema, err := json.Marshal(req.Setup.OutputSchema)
	if err != nil {
		_ = c.Error(err)
		return
	}
	configuration, err := json.Marshal(cfg)
	if err != nil {
		_ = c.Error(err)
		return
	}

	api := &domain.GeneratedAPI{
		ID:            uuid.New().String(),
		UserID:        userID,
		Name:          req.Setup.Name,
		Description:   req.Setup.Description,
		Slug:          slug,
		UserPrompt:    req.Prompt,
		SystemPrompt:  req.Setup.SystemPrompt,
		InputSchema:   string(inputSchema),
		OutputSchema:  string(outputSchema),
		Configuration: string(configuration),
		Status:        domain.StatusActive,
	}
	key := &domain.APIKey{
		ID:       uuid.New().String(),
		APIID:    api.ID,
		Key:      plainKey,
		KeyHash:  auth.HashAPIKey(plainKey),
		Name:     "Default Key",
		IsActive: true,
	}

	if err := storage.CreateAPIWithKey(c.Request.Context(), h.DB, api, key); err != nil {
		customLog.Warnf("Failed to create api '%s' for user %s: %v", slug, userID, err)
		_ = c.Error(err)
		return
	}

	customLog.Printf("Provisioned api '%s' (slug %s) for user %s", api.Name, slug, userID)
	c.JSON(http.StatusCreated, models.CreateAPIResponse{
		ID:       api.ID,
		APIKey:   plainKey,
		Endpoint: h.Cfg.PublicBaseURL + "/api/v1/" + slug,
	})
}

// ListAPIs handles GET /api/v1/apis for the authenticated owner.
func (h *APIHandler) ListAPIs(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	apis, err := storage.ListAPIsForUser(c.Request.Context(), h.DB, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]gin.H, 0, len(apis))
	for _, api := range apis {
		keys, err := storage.ListKeysForAPI(c.Request.Context(), h.DB, api.ID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		logCount, err := storage.CountUsageLogsForAPI(c.Request.Context(), h.DB, api.ID)
		if err != nil {
			_ = c.Error(err)
			return
		}
		out = append(out, gin.H{
			"id":          api.ID,
			"name":        api.Name,
			"description": api.Description,
			"slug":        api.Slug,
			"status":      api.Status,
			"usageCount":  api.UsageCount,
			"lastUsedAt":  api.LastUsedAt,
			"createdAt":   api.CreatedAt,
			"apiKeys":     keySummaries(keys),
			"logCount":    logCount,
		})
	}

	c.JSON(http.StatusOK, gin.H{"apis": out})
}

// GetAPI handles GET /api/v1/apis/:id for the authenticated owner.
func (h *APIHandler) GetAPI(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}
	keys, err := storage.ListKeysForAPI(c.Request.Context(), h.DB, api.ID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"api": gin.H{
			"id":            api.ID,
			"name":          api.Name,
			"slug":          api.Slug,
			"description":   api.Description,
			"status":        api.Status,
			"systemPrompt":  api.SystemPrompt,
			"inputSchema":   json.RawMessage(api.InputSchema),
			"outputSchema":  json.RawMessage(api.OutputSchema),
			"configuration": json.RawMessage(api.Configuration),
			"usageCount":    api.UsageCount,
			"lastUsedAt":    api.LastUsedAt,
			"apiKeys":       keySummaries(keys),
		},
	})
}

// UpdateAPI handles PATCH /api/v1/apis/:id; empty fields are left as-is.
// Status changes here are what the gateway's status check later reads.
func (h *APIHandler) UpdateAPI(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req models.UpdateAPIRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("UpdateAPI binding error: %v", err)
		_ = c.Error(err)
		return
	}

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if req.Name != "" {
		api.Name = req.Name
	}
	if req.Description != "" {
		api.Description = req.Description
	}
	if req.Status != "" {
		if !validStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status '" + req.Status + "'"})
			return
		}
		api.Status = req.Status
	}
	if req.SystemPrompt != "" {
		api.SystemPrompt = req.SystemPrompt
	}
	if req.Configuration != nil {
		if problems := core.ValidateConfiguration(*req.Configuration, llm.KnownModels); len(problems) > 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": strings.Join(problems, "; ")})
			return
		}
		configuration, err := json.Marshal(req.Configuration)
		if err != nil {
			_ = c.Error(err)
			return
		}
		api.Configuration = string(configuration)
	}

	if err := storage.UpdateAPI(c.Request.Context(), h.DB, api); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"api": gin.H{
		"id":     api.ID,
		"name":   api.Name,
		"slug":   api.Slug,
		"status": api.Status,
	}})
}

// DeleteAPI handles DELETE /api/v1/apis/:id. Keys and usage logs go
// with it via the store's cascade.
func (h *APIHandler) DeleteAPI(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := storage.DeleteAPI(c.Request.Context(), h.DB, api.ID); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Deleted api '%s' (slug %s) for user %s", api.Name, api.Slug, userID)
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func validStatus(status string) bool {
	switch status {
	case domain.StatusDraft, domain.StatusConfiguring, domain.StatusActive, domain.StatusPaused, domain.StatusError:
		return true
	}
	return false
}

func keySummaries(keys []*domain.APIKey) []models.APIKeySummary {
	out := make([]models.APIKeySummary, 0, len(keys))
	for _, k := range keys {
		out = append(out, models.APIKeySummary{
			ID:         k.ID,
			Name:       k.Name,
			IsActive:   k.IsActive,
			ExpiresAt:  k.ExpiresAt,
			UsageCount: k.UsageCount,
			LastUsedAt: k.LastUsedAt,
		})
	}
	return out
}
