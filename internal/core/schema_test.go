package core

import "testing"

func TestValidateRequired(t *testing.T) {
	testCases := []struct {
		name        string
		required    []string
		payload     map[string]any
		wantMissing string
	}{
		{"no schema validates anything", nil, map[string]any{"x": 1}, ""},
		{"empty payload with no schema", nil, map[string]any{}, ""},
		{"single required present", []string{"text"}, map[string]any{"text": "hi"}, ""},
		{"single required missing", []string{"text"}, map[string]any{}, "text"},
		{"null value still counts as present", []string{"text"}, map[string]any{"text": nil}, ""},
		{"type is not enforced", []string{"text"}, map[string]any{"text": 42}, ""},
		{"extra fields pass through", []string{"text"}, map[string]any{"text": "hi", "extra": true}, ""},
		{"first missing field reported", []string{"a", "b", "c"}, map[string]any{"a": 1}, "b"},
		{"all present", []string{"a", "b"}, map[string]any{"a": 1, "b": 2}, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			schema := &InputSchema{Type: "object", Required: tc.required}
			got := schema.ValidateRequired(tc.payload)
			if got != tc.wantMissing {
				t.Errorf("ValidateRequired(%v) = %q; want %q", tc.payload, got, tc.wantMissing)
			}
		})
	}
}

func TestParseInputSchema(t *testing.T) {
	schema, err := ParseInputSchema(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`)
	if err != nil {
		t.Fatalf("ParseInputSchema returned error: %v", err)
	}
	if len(schema.Required) != 1 || schema.Required[0] != "text" {
		t.Errorf("ParseInputSchema required = %v; want [text]", schema.Required)
	}

	empty, err := ParseInputSchema("")
	if err != nil {
		t.Fatalf("ParseInputSchema(\"\") returned error: %v", err)
	}
	if missing := empty.ValidateRequired(map[string]any{}); missing != "" {
		t.Errorf("empty schema should validate everything, got missing %q", missing)
	}

	if _, err := ParseInputSchema("{broken"); err == nil {
		t.Error("ParseInputSchema with malformed JSON: expected error, got nil")
	}
}
