// internal/llm/generate.go
package llm

import (
	"context"
	"fmt"

	"github.com/prompt-ai/promptapi-backend/internal/core"
)

const jsonOnlySuffix = "\n\nRESPOND WITH VALID JSON ONLY. DO NOT WRITE ANYTHING ELSE."

// GenerateJSON asks the model for a structured reply and decodes the
// brace-delimited object from it into out. Unlike the gateway's lossy
// coercion this fails when no parseable object comes back: callers of
// the setup designer need a real document, not a wrapper.
func GenerateJSON(ctx context.Context, cc ChatCompleter, systemPrompt, prompt string, out any) error {
	reply, err := cc.Chat(ctx,
		[]Message{
			{Role: "system", Content: systemPrompt + jsonOnlySuffix},
			{Role: "user", Content: prompt},
		},
		Options{Temperature: 0.3},
	)
	if err != nil {
		return err
	}
	if err := core.ExtractJSON(reply, out); err != nil {
		return fmt.Errorf("model returned unusable reply: %w", err)
	}
	return nil
}
