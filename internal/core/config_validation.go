// internal/core/config_validation.go
package core

import (
	"fmt"
	"slices"

	"github.com/prompt-ai/promptapi-backend/internal/domain"
)

const (
	MaxTemperature   = 2.0
	MaxTokensCeiling = 16000
)

// ValidateConfiguration checks a submitted configuration bundle against
// the platform bounds. knownModels is the set of model identifiers the
// provider accepts. Returns the list of problems found, empty when valid.
func ValidateConfiguration(cfg domain.APIConfiguration, knownModels []string) []string {
	var problems []string

	if cfg.Model != "" && !slices.Contains(knownModels, cfg.Model) {
		problems = append(problems, fmt.Sprintf("unknown model '%s'", cfg.Model))
	}
	if cfg.Temperature < 0 || cfg.Temperature > MaxTemperature {
		problems = append(problems, fmt.Sprintf("temperature must be between 0 and %g", MaxTemperature))
	}
	if cfg.MaxTokens < 0 || cfg.MaxTokens > MaxTokensCeiling {
		problems = append(problems, fmt.Sprintf("maxTokens must be between 1 and %d", MaxTokensCeiling))
	}
	if cfg.RateLimit.RequestsPerMinute < 0 {
		problems = append(problems, "requestsPerMinute must be positive")
	}
	if cfg.RateLimit.RequestsPerDay < 0 {
		problems = append(problems, "requestsPerDay must be positive")
	}

	return problems
}
