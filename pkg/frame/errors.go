package frame

import (
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/xwartz/cursor-api/pkg/api"
)

const errorEnvelopeMarker = `{"error`

// findErrorEnvelope scans text for an embedded JSON object with an "error"
// key. When a complete, parseable envelope is found, the serialized error
// payload is returned. Malformed candidates are not fatal; the caller
// falls through to plain text cleaning.
func findErrorEnvelope(text string) (string, bool) {
	start := strings.Index(text, errorEnvelopeMarker)
	if start < 0 {
		return "", false
	}

	candidate, ok := balancedObject(text[start:])
	if !ok {
		return "", false
	}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal([]byte(candidate), &envelope); err != nil || len(envelope.Error) == 0 {
		slog.Warn("unparseable error envelope in frame", "data", truncate(candidate, 200))
		return "", false
	}
	return string(envelope.Error), true
}

// balancedObject returns the shortest prefix of s that forms a complete
// JSON object, tracking string literals and escapes while counting braces.
func balancedObject(s string) (string, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case !inString && c == '{':
			depth++
		case !inString && c == '}':
			depth--
			if depth == 0 {
				return s[:i+1], true
			}
		}
	}
	return "", false
}

// apiError wraps a serialized backend error payload as a typed API error.
func apiError(payload string) *api.Error {
	return api.NewAPIError("API Error: " + payload)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
