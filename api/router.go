// api/router.go
package api

import (
	"database/sql"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/prompt-ai/promptapi-backend/api/handlers"
	"github.com/prompt-ai/promptapi-backend/api/middleware"
	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/llm"
)

// SetupRouter initializes the Gin router and sets up all routes.
// The chat client is injected so tests can substitute a fake invoker.
func SetupRouter(metaDB *sql.DB, cfg *config.Config, chat llm.ChatCompleter) *gin.Engine {
	router := gin.Default() // Includes Logger and Recovery

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization", "x-api-key")
	router.Use(cors.New(corsCfg))

	// Management-plane rate limiting; generated endpoints are exempt
	// (their declared rateLimit is enforced by an external layer, not here).
	ratelimiter := middleware.NewRateLimiter(60, time.Minute)

	// Initialize Handlers
	authHandler := handlers.NewAuthHandler(metaDB, cfg)
	apiHandler := handlers.NewAPIHandler(metaDB, cfg)
	keyHandler := handlers.NewKeyHandler(metaDB, cfg)
	usageHandler := handlers.NewUsageHandler(metaDB, cfg)
	setupHandler := handlers.NewSetupHandler(chat)
	gatewayHandler := handlers.NewGatewayHandler(metaDB, cfg, chat)

	// --- Public Routes ---
	router.GET("/ping", func(c *gin.Context) { c.String(200, "pong") })
	authRoutes := router.Group("/auth")
	authRoutes.Use(middleware.RateLimitMiddleware(ratelimiter), middleware.ErrorHandler())
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
	}

	// --- Management Plane (JWT) ---
	mgmtRoutes := router.Group("/api/v1")
	mgmtRoutes.Use(
		middleware.RateLimitMiddleware(ratelimiter),
		middleware.ErrorHandler(),
		middleware.AuthMiddleware(cfg),
	)
	{
		mgmtRoutes.GET("/me", authHandler.Me)
		mgmtRoutes.POST("/generate-setup", setupHandler.GenerateSetup)

		mgmtRoutes.GET("/apis", apiHandler.ListAPIs)
		mgmtRoutes.POST("/apis", apiHandler.CreateAPI)
		mgmtRoutes.GET("/apis/:id", apiHandler.GetAPI)
		mgmtRoutes.PATCH("/apis/:id", apiHandler.UpdateAPI)
		mgmtRoutes.DELETE("/apis/:id", apiHandler.DeleteAPI)

		mgmtRoutes.POST("/apis/:id/keys", keyHandler.CreateKey)
		mgmtRoutes.DELETE("/apis/:id/keys/:key_id", keyHandler.RevokeKey)

		mgmtRoutes.GET("/apis/:id/logs", usageHandler.ListLogs)
		mgmtRoutes.GET("/usage", usageHandler.UsageSummary)
	}

	// --- Generated-API Gateway (per-API keys, no JWT) ---
	// The gateway owns its own auth and its own {error, code} responses,
	// so none of the management middleware applies here. Static siblings
	// (/apis, /me, ...) take precedence over the slug parameter.
	router.GET("/api/v1/:slug", gatewayHandler.Describe)
	router.POST("/api/v1/:slug", gatewayHandler.Execute)

	return router
}
