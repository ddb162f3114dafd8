package api

import "testing"

func TestValidateRequest(t *testing.T) {
	valid := []ChatMessage{{Role: RoleUser, Content: "hello"}}

	tests := []struct {
		name      string
		messages  []ChatMessage
		model     string
		wantErr   bool
		wantParam string
	}{
		{"valid single message", valid, "gpt-4o", false, ""},
		{
			"valid conversation",
			[]ChatMessage{
				{Role: RoleSystem, Content: "be brief"},
				{Role: RoleUser, Content: "hi"},
				{Role: RoleAssistant, Content: "hello"},
				{Role: RoleUser, Content: "continue"},
			},
			"claude-3.5-sonnet", false, "",
		},
		{"empty messages", nil, "gpt-4o", true, "messages"},
		{"empty content", []ChatMessage{{Role: RoleUser, Content: ""}}, "gpt-4o", true, "messages[0].content"},
		{"missing role", []ChatMessage{{Content: "hi"}}, "gpt-4o", true, "messages[0].role"},
		{"unknown role", []ChatMessage{{Role: "tool", Content: "hi"}}, "gpt-4o", true, "messages[0].role"},
		{"empty model", valid, "", true, "model"},
		{
			"second message invalid",
			[]ChatMessage{{Role: RoleUser, Content: "hi"}, {Role: RoleAssistant, Content: ""}},
			"gpt-4o", true, "messages[1].content",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.messages, tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ValidateRequest() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !IsValidationError(err) {
				t.Errorf("error is not a validation error: %v", err)
			}
			apiErr := err.(*Error)
			if apiErr.Param != tt.wantParam {
				t.Errorf("Param = %q, want %q", apiErr.Param, tt.wantParam)
			}
		})
	}
}
