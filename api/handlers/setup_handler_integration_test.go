package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prompt-ai/promptapi-backend/api/models"
)

// TestGenerateSetup checks that a designer reply is parsed into a setup
// proposal even when the model wraps the JSON in chatter, and that the
// suggested endpoint comes back slugified.
func TestGenerateSetup(t *testing.T) {
	fake := &fakeChat{reply: `Sure, here is the API definition you asked for:
{
  "name": "Recipe Generator",
  "description": "Generates a recipe from a list of ingredients",
  "systemPrompt": "You generate recipes. Reply with JSON.",
  "inputSchema": {"type":"object","properties":{"ingredients":{"type":"string"}},"required":["ingredients"]},
  "outputSchema": {"type":"object","properties":{"recipe":{"type":"string"}}},
  "exampleInput": {"ingredients": "eggs, flour, milk"},
  "exampleOutput": {"recipe": "Pancakes: mix and fry."},
  "suggestedEndpoint": "Recipe Generator!"
}`}
	server, _, cleanup := setupTestServer(t, fake)
	defer cleanup()

	token := signupAndLogin(t, server, "designer@example.com")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/generate-setup", token,
		models.GenerateSetupRequest{Prompt: "I want an API that generates recipes from ingredients"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	setup, _ := body["setup"].(map[string]any)
	require.NotNil(t, setup)
	assert.Equal(t, "Recipe Generator", setup["name"])
	assert.Equal(t, "recipe-generator", setup["suggestedEndpoint"])
	assert.NotEmpty(t, setup["systemPrompt"])

	// The designer call carries a low temperature for determinism
	assert.Equal(t, 0.3, fake.opts.Temperature)
}

func TestGenerateSetupPromptTooShort(t *testing.T) {
	server, _, cleanup := setupTestServer(t, &fakeChat{})
	defer cleanup()

	token := signupAndLogin(t, server, "designer@example.com")

	resp, _ := doJSON(t, http.MethodPost, server.URL+"/api/v1/generate-setup", token,
		models.GenerateSetupRequest{Prompt: "too short"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGenerateSetupModelFailure(t *testing.T) {
	server, _, cleanup := setupTestServer(t, &fakeChat{err: errors.New("upstream unavailable")})
	defer cleanup()

	token := signupAndLogin(t, server, "designer@example.com")

	resp, body := doJSON(t, http.MethodPost, server.URL+"/api/v1/generate-setup", token,
		models.GenerateSetupRequest{Prompt: "I want an API that generates recipes from ingredients"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Failed to generate API setup", body["error"])
}
