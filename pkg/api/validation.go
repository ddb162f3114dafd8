package api

import "fmt"

// ValidateRequest checks a chat-completion request before any encoding or
// network activity. It returns a validation Error on the first violation:
// messages must be non-empty, every message needs a known role and
// non-empty content, and the model name must be non-empty.
func ValidateRequest(messages []ChatMessage, model string) error {
	if len(messages) == 0 {
		return NewValidationError("messages", "messages must be a non-empty list")
	}
	for i, m := range messages {
		if m.Role == "" {
			return NewValidationError(fmt.Sprintf("messages[%d].role", i), "role is required")
		}
		switch m.Role {
		case RoleSystem, RoleUser, RoleAssistant:
			// valid
		default:
			return NewValidationError(
				fmt.Sprintf("messages[%d].role", i),
				fmt.Sprintf("role must be %q, %q, or %q, got %q", RoleSystem, RoleUser, RoleAssistant, m.Role),
			)
		}
		if m.Content == "" {
			return NewValidationError(fmt.Sprintf("messages[%d].content", i), "content is required")
		}
	}
	if model == "" {
		return NewValidationError("model", "model is required")
	}
	return nil
}
