// api/handlers/gateway_handler.go
package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/auth"
	"github.com/prompt-ai/promptapi-backend/internal/core"
	"github.com/prompt-ai/promptapi-backend/internal/domain"
	"github.com/prompt-ai/promptapi-backend/internal/llm"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

// Machine-readable error codes carried in the gateway's {error, code} shape.
const (
	CodeAPINotFound   = "API_NOT_FOUND"
	CodeAPIInactive   = "API_INACTIVE"
	CodeUnauthorized  = "UNAUTHORIZED"
	CodeInvalidAPIKey = "INVALID_API_KEY"
	CodeAPIKeyExpired = "API_KEY_EXPIRED"
	CodeInvalidInput  = "INVALID_INPUT"
	CodeInternalError = "INTERNAL_ERROR"
)

// gatewayError pins one failure exit of the execution pipeline to its
// wire representation. detail is only surfaced for the 500 case.
type gatewayError struct {
	status  int
	code    string
	message string
	detail  string
}

func (e *gatewayError) Error() string {
	if e.detail != "" {
		return e.message + ": " + e.detail
	}
	return e.message
}

func internalError(detail string) *gatewayError {
	return &gatewayError{
		status:  http.StatusInternalServerError,
		code:    CodeInternalError,
		message: "API request failed",
		detail:  detail,
	}
}

// GatewayHandler serves the dynamic generated-API endpoints. It is
// stateless per request: all shared state lives in the store and the
// invoker, both safe for concurrent use.
type GatewayHandler struct {
	DB   *sql.DB
	Cfg  *config.Config
	Chat llm.ChatCompleter
}

// NewGatewayHandler creates a GatewayHandler with its injected
// collaborators. No package-level store handle: tests pass a fake
// invoker and a temp database.
func NewGatewayHandler(db *sql.DB, cfg *config.Config, chat llm.ChatCompleter) *GatewayHandler {
	return &GatewayHandler{
		DB:   db,
		Cfg:  cfg,
		Chat: chat,
	}
}

// extractAPIKey pulls the caller's credential. A Bearer token takes
// precedence over the x-api-key header.
func extractAPIKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return c.GetHeader("x-api-key")
}

// Execute handles POST /api/v1/:slug — the full invocation pipeline:
// resolve the API, check its status, authenticate the key, validate the
// payload against the declared required fields, invoke the model,
// coerce its reply to JSON, and record usage. Every failure exit
// produces the fixed {error, code} shape plus one usage log entry once
// the API itself has been resolved.
func (h *GatewayHandler) Execute(c *gin.Context) {
	ctx := c.Request.Context()
	start := time.Now()
	slug := c.Param("slug")

	// RESOLVE_API
	api, err := storage.FindAPIBySlug(ctx, h.DB, slug)
	if err != nil {
		h.respondError(c, nil, nil, "", start, &gatewayError{
			status: http.StatusNotFound, code: CodeAPINotFound, message: "API not found",
		})
		return
	}

	// CHECK_STATUS — the gateway only reads status, never changes it
	if api.Status != domain.StatusActive {
		h.respondError(c, api, nil, "", start, &gatewayError{
			status: http.StatusForbidden, code: CodeAPIInactive, message: "API is not active",
		})
		return
	}

	// EXTRACT_KEY — fail before any key-table lookup when absent
	rawKey := extractAPIKey(c)
	if rawKey == "" {
		h.respondError(c, api, nil, "", start, &gatewayError{
			status: http.StatusUnauthorized, code: CodeUnauthorized, message: "API key required",
		})
		return
	}

	// RESOLVE_KEY
	keyHash := auth.HashAPIKey(rawKey)
	apiKey, err := storage.FindActiveKey(ctx, h.DB, api.ID, keyHash)
	if err != nil {
		h.respondError(c, api, nil, "", start, &gatewayError{
			status: http.StatusUnauthorized, code: CodeInvalidAPIKey, message: "Invalid API key",
		})
		return
	}

	// CHECK_EXPIRY
	if apiKey.ExpiresAt != nil && apiKey.ExpiresAt.Before(time.Now()) {
		h.respondError(c, api, apiKey, "", start, &gatewayError{
			status: http.StatusUnauthorized, code: CodeAPIKeyExpired, message: "API key expired",
		})
		return
	}

	// PARSE_BODY — a malformed body surfaces as an internal error, not
	// a 400; existing callers depend on that distinction
	rawBody, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.respondError(c, api, apiKey, "", start, internalError(err.Error()))
		return
	}
	var payload map[string]any
	if err := json.Unmarshal(rawBody, &payload); err != nil {
		h.respondError(c, api, apiKey, string(rawBody), start, internalError(err.Error()))
		return
	}

	// VALIDATE_SCHEMA — presence of declared required fields only;
	// undeclared fields pass through to the model untouched
	schema, err := core.ParseInputSchema(api.InputSchema)
	if err != nil {
		h.respondError(c, api, apiKey, string(rawBody), start, internalError(err.Error()))
		return
	}
	if missing := schema.ValidateRequired(payload); missing != "" {
		h.respondError(c, api, apiKey, string(rawBody), start, &gatewayError{
			status: http.StatusBadRequest, code: CodeInvalidInput,
			message: "Missing required field: " + missing,
		})
		return
	}

	// INVOKE_MODEL — system prompt + pretty-printed payload, parameters
	// from the stored configuration with platform defaults
	var apiCfg domain.APIConfiguration
	if api.Configuration != "" {
		if err := json.Unmarshal([]byte(api.Configuration), &apiCfg); err != nil {
			h.respondError(c, api, apiKey, string(rawBody), start, internalError(err.Error()))
			return
		}
	}
	userMessage, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		h.respondError(c, api, apiKey, string(rawBody), start, internalError(err.Error()))
		return
	}

	reply, err := h.Chat.Chat(ctx,
		[]llm.Message{
			{Role: "system", Content: api.SystemPrompt},
			{Role: "user", Content: string(userMessage)},
		},
		llm.Options{
			Model:       apiCfg.Model,
			Temperature: apiCfg.Temperature,
			MaxTokens:   apiCfg.MaxTokens,
		},
	)
	if err != nil {
		h.respondError(c, api, apiKey, string(rawBody), start, internalError(err.Error()))
		return
	}

	// COERCE_OUTPUT — never fails, degrades to {"response": raw}
	output := core.CoerceJSON(reply)

	// RECORD_SUCCESS
	latency := time.Since(start).Milliseconds()
	responseBody, _ := json.Marshal(output)
	h.recordSuccess(api, apiKey, string(rawBody), string(responseBody), latency)

	// RESPOND
	c.Header("X-Request-Id", requestID())
	c.Header("X-Latency-Ms", strconv.FormatInt(latency, 10))
	c.JSON(http.StatusOK, output)
}

// Describe handles GET /api/v1/:slug — the public introspection
// surface. It never exposes the system prompt or any key material.
func (h *GatewayHandler) Describe(c *gin.Context) {
	ctx := c.Request.Context()
	slug := c.Param("slug")

	api, err := storage.FindAPIBySlug(ctx, h.DB, slug)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "API not found"})
		return
	}

	inputSchema := json.RawMessage(api.InputSchema)
	outputSchema := json.RawMessage(api.OutputSchema)
	c.JSON(http.StatusOK, gin.H{
		"name":         api.Name,
		"description":  api.Description,
		"status":       api.Status,
		"inputSchema":  inputSchema,
		"outputSchema": outputSchema,
	})
}

// respondError records the failed attempt (once the API is known) and
// writes the fixed error shape. Logging failures never change the
// response already decided.
func (h *GatewayHandler) respondError(c *gin.Context, api *domain.GeneratedAPI, apiKey *domain.APIKey, requestBody string, start time.Time, gwErr *gatewayError) {
	latency := time.Since(start).Milliseconds()

	if api != nil {
		entry := &domain.UsageLog{
			ID:          uuid.New().String(),
			APIID:       api.ID,
			UserID:      api.UserID,
			RequestBody: requestBody,
			StatusCode:  gwErr.status,
			LatencyMs:   latency,
		}
		if apiKey != nil {
			entry.APIKeyID = &apiKey.ID
		}
		errMsg := gwErr.Error()
		entry.ErrorMessage = &errMsg
		if err := storage.AppendUsageLog(c.Request.Context(), h.DB, entry); err != nil {
			customLog.Warnf("Gateway: failed to log error for api '%s': %v", api.Slug, err)
		}
	}

	body := gin.H{"error": gwErr.message, "code": gwErr.code}
	if gwErr.status == http.StatusInternalServerError {
		body["message"] = gwErr.detail
	}
	c.JSON(gwErr.status, body)
}

// recordSuccess issues the log append and the two counter bumps
// concurrently. The three writes are independent and deliberately not
// transactional: counters are advisory telemetry, and a partially
// applied bundle is an accepted failure mode. Billing-grade accounting
// would need a different design.
func (h *GatewayHandler) recordSuccess(api *domain.GeneratedAPI, apiKey *domain.APIKey, requestBody, responseBody string, latency int64) {
	ctx := context.Background()

	entry := &domain.UsageLog{
		ID:           uuid.New().String(),
		APIID:        api.ID,
		APIKeyID:     &apiKey.ID,
		UserID:       api.UserID,
		RequestBody:  requestBody,
		ResponseBody: &responseBody,
		StatusCode:   http.StatusOK,
		LatencyMs:    latency,
	}

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		if err := storage.AppendUsageLog(ctx, h.DB, entry); err != nil {
			customLog.Warnf("Gateway: failed to append usage log for api '%s': %v", api.Slug, err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := storage.RecordAPIUsage(ctx, h.DB, api.ID); err != nil {
			customLog.Warnf("Gateway: failed to record api usage for '%s': %v", api.Slug, err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := storage.RecordKeyUsage(ctx, h.DB, apiKey.ID); err != nil {
			customLog.Warnf("Gateway: failed to record key usage for '%s': %v", api.Slug, err)
		}
	}()
	wg.Wait()
}

// requestID builds the opaque per-call token: "req_" plus the
// millisecond timestamp in base36.
func requestID() string {
	return "req_" + strconv.FormatInt(time.Now().UnixMilli(), 36)
}
