// api/handlers/usage_handler.go
package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

// UsageHandler exposes usage logs and aggregates to the owner.
type UsageHandler struct {
	DB  *sql.DB
	Cfg *config.Config
}

// NewUsageHandler creates a new UsageHandler.
func NewUsageHandler(db *sql.DB, cfg *config.Config) *UsageHandler {
	return &UsageHandler{
		DB:  db,
		Cfg: cfg,
	}
}

// ListLogs handles GET /api/v1/apis/:id/logs?limit=n.
func (h *UsageHandler) ListLogs(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	api, err := storage.FindAPIByIDForUser(c.Request.Context(), h.DB, c.Param("id"), userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := storage.ListUsageLogsForAPI(c.Request.Context(), h.DB, api.ID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}

	out := make([]gin.H, 0, len(logs))
	for _, entry := range logs {
		out = append(out, gin.H{
			"id":           entry.ID,
			"apiKeyId":     entry.APIKeyID,
			"statusCode":   entry.StatusCode,
			"latencyMs":    entry.LatencyMs,
			"errorMessage": entry.ErrorMessage,
			"createdAt":    entry.CreatedAt,
		})
	}
	c.JSON(http.StatusOK, gin.H{"logs": out})
}

// UsageSummary handles GET /api/v1/usage: per-user totals across all APIs.
func (h *UsageHandler) UsageSummary(c *gin.Context) {
	userID := c.MustGet("userId").(string)

	totals, err := storage.UsageTotalsForUser(c.Request.Context(), h.DB, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"usage": totals})
}
