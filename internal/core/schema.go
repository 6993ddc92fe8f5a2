// internal/core/schema.go
package core

import "encoding/json"

// SchemaProperty documents a single declared field. The type is
// informational only; the validator never enforces it.
type SchemaProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// InputSchema is the shallow, user-declared shape of an API's input.
// Only the Required list drives runtime behavior.
type InputSchema struct {
	Type       string                    `json:"type"`
	Properties map[string]SchemaProperty `json:"properties,omitempty"`
	Required   []string                  `json:"required,omitempty"`
}

// ParseInputSchema decodes a stored schema document. An empty document
// yields a schema that validates everything.
func ParseInputSchema(raw string) (*InputSchema, error) {
	var schema InputSchema
	if raw == "" {
		return &schema, nil
	}
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// ValidateRequired checks that every declared required field is present
// in the payload. Presence is the whole contract: values are not
// type-checked, and undeclared fields pass through untouched. Returns
// the first missing field name, or "" when the payload validates.
func (s *InputSchema) ValidateRequired(payload map[string]any) string {
	for _, field := range s.Required {
		if _, ok := payload[field]; !ok {
			return field
		}
	}
	return ""
}
