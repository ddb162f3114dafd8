package frame

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Role-delimiter markers the backend leaks into responses.
const (
	beginSystem    = "<|BEGIN_SYSTEM|>"
	endSystem      = "<|END_SYSTEM|>"
	beginUser      = "<|BEGIN_USER|>"
	endUser        = "<|END_USER|>"
	beginAssistant = "<|BEGIN_ASSISTANT|>"
	endAssistant   = "<|END_ASSISTANT|>"
)

// Clean extracts user-visible text from a streamed frame's payload.
//
// An empty string or a literal "{}" is the backend's no-op / implicit
// end-of-stream marker and cleans to nothing. A complete system+user
// scaffolding sequence is leaked prompt framing, never content. Otherwise
// everything through the last end-of-user marker is dropped, a leading
// "\n<letter>" prefix-framing artifact is stripped, and a trailing "{}"
// artifact is removed.
//
// Clean is idempotent: applying it to its own output changes nothing.
func Clean(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" || trimmed == "{}" {
		return ""
	}

	if isPromptScaffolding(text) {
		return ""
	}

	if idx := strings.LastIndex(text, endUser); idx >= 0 {
		text = text[idx+len(endUser):]
		text = stripLetterArtifact(text)
	}

	return strings.TrimSpace(trimTrailingBraces(text))
}

// CleanFinal is the aggregate (non-streaming) variant of Clean. Buffered
// responses place the true reply either before the echoed system prompt or
// between explicit assistant markers, depending on response mode.
//
// Precedence: content before the first system marker wins when present;
// otherwise the content of the last assistant-marker pair; otherwise the
// streaming clean of the whole text.
func CleanFinal(text string) string {
	if idx := strings.Index(text, beginSystem); idx >= 0 {
		if before := strings.TrimSpace(text[:idx]); before != "" {
			return Clean(before)
		}
	}

	if start := strings.LastIndex(text, beginAssistant); start >= 0 {
		rest := text[start+len(beginAssistant):]
		if end := strings.Index(rest, endAssistant); end >= 0 {
			return Clean(rest[:end])
		}
	}

	return Clean(text)
}

// isPromptScaffolding reports whether text contains a complete, in-order
// system+user marker sequence, the shape of leaked prompt framing.
func isPromptScaffolding(text string) bool {
	for _, marker := range []string{beginSystem, endSystem, beginUser, endUser} {
		idx := strings.Index(text, marker)
		if idx < 0 {
			return false
		}
		text = text[idx+len(marker):]
	}
	return true
}

// stripLetterArtifact removes a leading "\n<letter>" pair, an artifact of
// the backend's prefix framing that follows the end-of-user marker.
func stripLetterArtifact(text string) string {
	if !strings.HasPrefix(text, "\n") {
		return text
	}
	r, size := utf8.DecodeRuneInString(text[1:])
	if r == utf8.RuneError || !unicode.IsLetter(r) {
		return text
	}
	return text[1+size:]
}

// trimTrailingBraces removes a trailing "{}" artifact together with its
// surrounding whitespace.
func trimTrailingBraces(text string) string {
	t := strings.TrimRight(text, " \t\r\n")
	if strings.HasSuffix(t, "{}") {
		return strings.TrimRight(t[:len(t)-2], " \t\r\n")
	}
	return text
}
