package wire

import (
	"github.com/google/uuid"

	"github.com/xwartz/cursor-api/pkg/api"
)

// Fixed request envelope values. The instruction string and project path
// placeholder are part of the backend contract.
const (
	defaultInstruction = "Always respond in the user's preferred language"
	projectPathValue   = "/path/to/project"
)

// LengthPrefixSize is the size of the framing length header: 10 hex digits
// rendered as 5 raw bytes, big-endian.
const LengthPrefixSize = 5

// BuildRequest turns OpenAI-style chat messages and a model name into the
// length-prefixed binary payload the backend expects. Validation happens
// before any encoding; a violation returns a client-side validation error
// and no request body is produced.
func BuildRequest(messages []api.ChatMessage, model string) ([]byte, error) {
	if err := api.ValidateRequest(messages, model); err != nil {
		return nil, err
	}

	req := newRequest(messages, model)
	payload := req.Encode()

	body := make([]byte, 0, LengthPrefixSize+len(payload))
	body = AppendLengthPrefix(body, len(payload))
	body = append(body, payload...)
	return body, nil
}

// newRequest maps caller messages onto the wire envelope. Every messageId,
// requestId, and conversationId is a freshly generated UUID, never reused
// and never derived from content.
func newRequest(messages []api.ChatMessage, model string) *Request {
	wireMessages := make([]Message, 0, len(messages))
	for _, m := range messages {
		role := uint64(RoleOther)
		if m.Role == api.RoleUser {
			role = RoleUser
		}
		wireMessages = append(wireMessages, Message{
			Content:   m.Content,
			Role:      role,
			MessageID: uuid.NewString(),
		})
	}

	return &Request{
		Messages:       wireMessages,
		Instruction:    defaultInstruction,
		ProjectPath:    projectPathValue,
		Model:          model,
		RequestID:      uuid.NewString(),
		ConversationID: uuid.NewString(),
	}
}

// AppendLengthPrefix appends the 5-byte big-endian length header encoding
// n (the equivalent of a 10-hex-digit rendering of the byte count).
func AppendLengthPrefix(dst []byte, n int) []byte {
	v := uint64(n)
	return append(dst,
		byte(v>>32),
		byte(v>>24),
		byte(v>>16),
		byte(v>>8),
		byte(v),
	)
}

// ParseLengthPrefix reads a 5-byte big-endian length header from the start
// of b. ok is false when fewer than 5 bytes are available.
func ParseLengthPrefix(b []byte) (length uint64, ok bool) {
	if len(b) < LengthPrefixSize {
		return 0, false
	}
	length = uint64(b[0])<<32 | uint64(b[1])<<24 | uint64(b[2])<<16 | uint64(b[3])<<8 | uint64(b[4])
	return length, true
}
