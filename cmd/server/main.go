// cmd/server/main.go
package main

import (
	"os"

	"github.com/prompt-ai/promptapi-backend/api"
	"github.com/prompt-ai/promptapi-backend/config"
	"github.com/prompt-ai/promptapi-backend/internal/llm"
	"github.com/prompt-ai/promptapi-backend/internal/logger"
	"github.com/prompt-ai/promptapi-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting PromptAPI backend server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// 2. Initialize Metadata Database Connection
	metaDB, err := storage.ConnectMetadataDB(cfg)
	if err != nil {
		customLog.Fatalf("Failed to initialize metadata database: %v", err)
		os.Exit(1)
	}
	defer func() {
		customLog.Println("Closing metadata database connection...")
		if err := metaDB.Close(); err != nil {
			customLog.Printf("Error closing metadata database: %v", err)
		}
	}()

	// 3. Initialize LLM client (Groq, OpenAI wire protocol)
	chat := llm.NewClient(cfg.GroqAPIKey, cfg.GroqBaseURL, cfg.DefaultModel)

	// 4. Setup Router (passing dependencies)
	router := api.SetupRouter(metaDB, cfg, chat)

	// 5. Start Server
	customLog.Printf("Server listening on port %s", cfg.ServerPort)
	if err := router.Run(cfg.ServerPort); err != nil {
		customLog.Fatalf("Failed to start server: %v", err)
	}
}
