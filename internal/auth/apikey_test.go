package auth

import "testing"

func TestGenerateAPIKey(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		key, err := GenerateAPIKey()
		if err != nil {
			t.Fatalf("GenerateAPIKey returned error: %v", err)
		}
		if !APIKeyPattern.MatchString(key) {
			t.Fatalf("generated key %q does not match %s", key, APIKeyPattern)
		}
		if seen[key] {
			t.Fatalf("generated key %q twice", key)
		}
		seen[key] = true
	}
}

func TestHashAPIKey(t *testing.T) {
	key := "pak_demo0000000000000000000000000000"

	h1 := HashAPIKey(key)
	h2 := HashAPIKey(key)
	if h1 != h2 {
		t.Errorf("hash is not deterministic: %q != %q", h1, h2)
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d; want 64 hex chars", len(h1))
	}
	if other := HashAPIKey(key + "x"); other == h1 {
		t.Error("different keys produced the same hash")
	}
}
