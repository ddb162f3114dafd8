package api

import (
	"strings"
	"testing"
)

func TestNewCompletionID(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewCompletionID()
		if !strings.HasPrefix(id, "chatcmpl-") {
			t.Fatalf("id %q missing chatcmpl- prefix", id)
		}
		if seen[id] {
			t.Fatalf("duplicate id generated: %q", id)
		}
		seen[id] = true
	}
}
