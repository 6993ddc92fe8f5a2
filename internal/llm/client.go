// internal/llm/client.go
package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/prompt-ai/promptapi-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Model identifiers accepted by the Groq endpoint.
const (
	ModelLlama70B = "llama-3.3-70b-versatile"
	ModelLlama8B  = "llama-3.1-8b-instant"
	ModelMixtral  = "mixtral-8x7b-32768"
	ModelGemma    = "gemma2-9b-it"
)

// Generation defaults applied when a stored configuration omits a field.
const (
	DefaultModel       = ModelLlama70B
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2000
)

// KnownModels lists the model identifiers accepted in API configurations.
var KnownModels = []string{ModelLlama70B, ModelLlama8B, ModelMixtral, ModelGemma}

// Message is one turn of a chat exchange.
type Message struct {
	Role    string
	Content string
}

// Options are per-call generation parameters; zero values fall back to
// the defaults above.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// ChatCompleter is the narrow invoker surface the gateway depends on,
// so tests can substitute a fake for the hosted provider.
type ChatCompleter interface {
	Chat(ctx context.Context, messages []Message, opts Options) (string, error)
}

// Client talks to the Groq OpenAI-compatible chat completion endpoint.
// It is stateless and safe for concurrent use.
type Client struct {
	api          *openai.Client
	defaultModel string
}

// NewClient builds a provider client. baseURL points at the Groq
// OpenAI-compatible endpoint; defaultModel is used when neither the
// call nor the stored configuration names one.
func NewClient(apiKey, baseURL, defaultModel string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if defaultModel == "" {
		defaultModel = DefaultModel
	}
	return &Client{
		api:          openai.NewClientWithConfig(cfg),
		defaultModel: defaultModel,
	}
}

// Chat sends the message exchange and returns the raw text completion.
// No retries: a transport or provider error propagates to the caller,
// which owns retry policy.
func (c *Client) Chat(ctx context.Context, messages []Message, opts Options) (string, error) {
	model := opts.Model
	if model == "" {
		model = c.defaultModel
	}
	temperature := opts.Temperature
	if temperature == 0 {
		temperature = DefaultTemperature
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}

	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: float32(temperature),
		MaxTokens:   maxTokens,
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, openai.ChatCompletionMessage{
			Role:    m.Role,
			Content: m.Content,
		})
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		customLog.Warnf("LLM: chat completion failed (model %s): %v", model, err)
		return "", fmt.Errorf("model invocation failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
