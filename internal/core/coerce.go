// internal/core/coerce.go
package core

import (
	"encoding/json"
	"regexp"
)

// Greedy first-{ to last-} match, deliberately not a balanced-brace
// parse. Nested or multiple objects in the reply are a known ambiguity
// inherited from the wrapper fallback contract.
var jsonObjectRegex = regexp.MustCompile(`(?s)\{.*\}`)

// CoerceJSON extracts a JSON object from free-form model text. It never
// fails: when no parseable object substring exists, the raw text is
// wrapped as {"response": <text>}.
func CoerceJSON(raw string) map[string]any {
	if match := jsonObjectRegex.FindString(raw); match != "" {
		var out map[string]any
		if err := json.Unmarshal([]byte(match), &out); err == nil {
			return out
		}
	}
	return map[string]any{"response": raw}
}

// ExtractJSON is the strict sibling of CoerceJSON used by the setup
// generator: it decodes the first-to-last brace span into out and
// errors when the reply carries no parseable object.
func ExtractJSON(raw string, out any) error {
	match := jsonObjectRegex.FindString(raw)
	if match == "" {
		return ErrNoJSONObject
	}
	return json.Unmarshal([]byte(match), out)
}
