// api/handlers/setup_handler.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prompt-ai/promptapi-backend/api/models"
	"github.com/prompt-ai/promptapi-backend/internal/core"
	"github.com/prompt-ai/promptapi-backend/internal/llm"
)

// designerSystemPrompt instructs the model to act as the API designer
// and reply with a provisioning-ready setup document.
const designerSystemPrompt = `You are an AI API designer. Given a user's description of the API they want, you produce a complete API definition.

Reply with a JSON document in exactly this shape:
{
  "name": "Short descriptive name of the API",
  "description": "One or two sentences on what the API does",
  "systemPrompt": "The system prompt given to the AI model serving this API (detailed, self-contained)",
  "inputSchema": {
    "type": "object",
    "properties": {
      "field_name": { "type": "string", "description": "What this field holds" }
    },
    "required": ["field_name"]
  },
  "outputSchema": {
    "type": "object",
    "properties": {
      "result_field": { "type": "string", "description": "What this field holds" }
    }
  },
  "exampleInput": { "field_name": "example value" },
  "exampleOutput": { "result_field": "example result" },
  "suggestedEndpoint": "kebab-case-endpoint-name"
}

Rules:
1. systemPrompt must fully describe the API's task; the model serving it sees nothing else
2. inputSchema and outputSchema must be JSON Schema shaped
3. exampleInput and exampleOutput must be realistic
4. suggestedEndpoint must be URL-friendly kebab-case`

// SetupHandler turns natural-language API descriptions into proposed
// setup documents via the designer prompt.
type SetupHandler struct {
	Chat llm.ChatCompleter
}

// NewSetupHandler creates a new SetupHandler.
func NewSetupHandler(chat llm.ChatCompleter) *SetupHandler {
	return &SetupHandler{Chat: chat}
}

// GenerateSetup handles POST /api/v1/generate-setup. The proposal is
// returned for user review; nothing is provisioned here.
func (h *SetupHandler) GenerateSetup(c *gin.Context) {
	var req models.GenerateSetupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("GenerateSetup binding error: %v", err)
		_ = c.Error(err)
		return
	}

	var setup models.APISetup
	err := llm.GenerateJSON(c.Request.Context(), h.Chat, designerSystemPrompt, "User request: "+req.Prompt, &setup)
	if err != nil {
		customLog.Warnf("GenerateSetup: designer call failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate API setup"})
		return
	}

	// Make sure the proposed endpoint is a usable slug
	if setup.SuggestedEndpoint != "" {
		setup.SuggestedEndpoint = core.Slugify(setup.SuggestedEndpoint)
	}
	if setup.SuggestedEndpoint == "" {
		setup.SuggestedEndpoint = core.Slugify(setup.Name)
	}

	c.JSON(http.StatusOK, gin.H{"setup": setup})
}
