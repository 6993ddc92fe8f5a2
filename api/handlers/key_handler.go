// api/handlers/key_handler.go
package handlers

import (
	"database/sql"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prompt-ai/promptapi-backend/api/models"
	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/auth"
	"github.com/prompt-ai/promptapi-backend/internal/domain"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

// KeyHandler manages API key issuance and revocation for the owner.
type KeyHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewKeyHandler creates a new KeyHandler.
func NewKeyHandler(db *sql.DB, cfg *config.Config) *KeyHandler {
	return &KeyHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// CreateKey handles POST /api/v1/apis/:id/keys. The plaintext key is
// returned once and never retrievable again through the gateway surface.
func (h *KeyHandler) CreateKey(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	var req models.CreateKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("CreateKey binding error: %v", err)
		_ = c.Error(err)
		return
	}

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	plainKey, err := auth.GenerateAPIKey()
	if err != nil {
		_ = c.Error(err)
		return
	}

	key := &domain.APIKey{
		ID:        uuid.New().String(),
		APIID:     api.ID,
		Key:       plainKey,
		KeyHash:   auth.HashAPIKey(plainKey),
		Name:      req.Name,
		IsActive:  true,
		ExpiresAt: req.ExpiresAt,
	}
	if err := storage.CreateAPIKey(c.Request.Context(), h.DB, key); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Issued key '%s' for api '%s'", req.Name, api.Slug)
	c.JSON(http.StatusCreated, models.CreateKeyResponse{
		ID:     key.ID,
		APIKey: plainKey,
		Name:   key.Name,
	})
}

// RevokeKey handles DELETE /api/v1/apis/:id/keys/:key_id. Keys are
// deactivated, never deleted: usage history stays attached.
func (h *KeyHandler) RevokeKey(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	if err := storage.DeactivateAPIKey(c.Request.Context(), h.DB, c.Param("key_id"), api.ID); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Revoked key '%s' for api '%s'", c.Param("key_id"), api.Slug)
	c.JSON(http.StatusOK, gin.H{"success": true})
}
