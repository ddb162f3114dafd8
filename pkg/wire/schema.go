// Package wire maps chat-completion requests onto the backend's numbered
// binary fields and builds the framed request body the backend expects.
//
// The field numbers are a backend compatibility contract and must match
// exactly. Absent fields are omitted entirely; no zero-value placeholders
// are written.
package wire

import (
	"github.com/xwartz/cursor-api/pkg/codec"
)

// Request envelope field numbers.
const (
	fieldMessages       = 2
	fieldInstructions   = 4
	fieldProjectPath    = 5
	fieldModel          = 7
	fieldRequestID      = 9
	fieldSummary        = 11
	fieldConversationID = 15
)

// Nested message field numbers.
const (
	fieldMsgContent = 1
	fieldMsgRole    = 2
	fieldMsgID      = 13

	fieldInstructionText = 1

	fieldModelName  = 1
	fieldModelEmpty = 4
)

// Response envelope field number: the only field the client reads.
const fieldResponseText = 1

// Wire roles. The backend distinguishes only the user from everyone else:
// system and assistant messages are indistinguishable on the wire. This is
// the backend's expectation, not a defect.
const (
	RoleUser  = 1
	RoleOther = 2
)

// Message is one outbound conversation turn. Created fresh per request and
// discarded after encoding.
type Message struct {
	Content   string
	Role      uint64
	MessageID string
}

// Request is the full outbound envelope for one API call.
type Request struct {
	Messages       []Message
	Instruction    string
	ProjectPath    string
	Model          string
	RequestID      string
	Summary        string
	ConversationID string
}

// Encode serializes the request to the backend's binary field layout.
// Fields with empty values are omitted.
func (r *Request) Encode() []byte {
	b := codec.NewBuffer(256)

	for i := range r.Messages {
		m := &r.Messages[i]
		b.WriteMessageField(fieldMessages, func(sub *codec.Buffer) {
			if m.Content != "" {
				sub.WriteStringField(fieldMsgContent, m.Content)
			}
			if m.Role != 0 {
				sub.WriteVarintField(fieldMsgRole, m.Role)
			}
			if m.MessageID != "" {
				sub.WriteStringField(fieldMsgID, m.MessageID)
			}
		})
	}

	if r.Instruction != "" {
		b.WriteMessageField(fieldInstructions, func(sub *codec.Buffer) {
			sub.WriteStringField(fieldInstructionText, r.Instruction)
		})
	}

	if r.ProjectPath != "" {
		b.WriteStringField(fieldProjectPath, r.ProjectPath)
	}

	if r.Model != "" {
		b.WriteMessageField(fieldModel, func(sub *codec.Buffer) {
			// fieldModelEmpty is always empty and therefore never written.
			sub.WriteStringField(fieldModelName, r.Model)
		})
	}

	if r.RequestID != "" {
		b.WriteStringField(fieldRequestID, r.RequestID)
	}
	if r.Summary != "" {
		b.WriteStringField(fieldSummary, r.Summary)
	}
	if r.ConversationID != "" {
		b.WriteStringField(fieldConversationID, r.ConversationID)
	}

	return b.Bytes()
}

// DecodeRequest decodes a request envelope back into a Request. It is the
// inverse of Encode for the fields the backend reads, used by tooling that
// plays the backend's role. Unknown fields are skipped.
func DecodeRequest(payload []byte) (*Request, error) {
	req := &Request{}
	r := codec.NewReader(payload)
	for r.More() {
		field, wt, err := r.Next()
		if err != nil {
			return nil, err
		}
		switch {
		case field == fieldMessages && wt == codec.WireBytes:
			data, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			msg, err := decodeMessage(data)
			if err != nil {
				return nil, err
			}
			req.Messages = append(req.Messages, msg)

		case field == fieldInstructions && wt == codec.WireBytes:
			data, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			req.Instruction, err = decodeStringField(data, fieldInstructionText)
			if err != nil {
				return nil, err
			}

		case field == fieldProjectPath && wt == codec.WireBytes:
			if req.ProjectPath, err = r.ReadString(); err != nil {
				return nil, err
			}

		case field == fieldModel && wt == codec.WireBytes:
			data, err := r.ReadBytes()
			if err != nil {
				return nil, err
			}
			req.Model, err = decodeStringField(data, fieldModelName)
			if err != nil {
				return nil, err
			}

		case field == fieldRequestID && wt == codec.WireBytes:
			if req.RequestID, err = r.ReadString(); err != nil {
				return nil, err
			}

		case field == fieldSummary && wt == codec.WireBytes:
			if req.Summary, err = r.ReadString(); err != nil {
				return nil, err
			}

		case field == fieldConversationID && wt == codec.WireBytes:
			if req.ConversationID, err = r.ReadString(); err != nil {
				return nil, err
			}

		default:
			if err := r.Skip(wt); err != nil {
				return nil, err
			}
		}
	}
	return req, nil
}

// decodeMessage decodes one nested conversation turn.
func decodeMessage(payload []byte) (Message, error) {
	var msg Message
	r := codec.NewReader(payload)
	for r.More() {
		field, wt, err := r.Next()
		if err != nil {
			return Message{}, err
		}
		switch {
		case field == fieldMsgContent && wt == codec.WireBytes:
			if msg.Content, err = r.ReadString(); err != nil {
				return Message{}, err
			}
		case field == fieldMsgRole && wt == codec.WireVarint:
			if msg.Role, err = r.ReadVarint(); err != nil {
				return Message{}, err
			}
		case field == fieldMsgID && wt == codec.WireBytes:
			if msg.MessageID, err = r.ReadString(); err != nil {
				return Message{}, err
			}
		default:
			if err := r.Skip(wt); err != nil {
				return Message{}, err
			}
		}
	}
	return msg, nil
}

// decodeStringField extracts one string field from an encoded message.
func decodeStringField(payload []byte, want int) (string, error) {
	r := codec.NewReader(payload)
	for r.More() {
		field, wt, err := r.Next()
		if err != nil {
			return "", err
		}
		if field == want && wt == codec.WireBytes {
			return r.ReadString()
		}
		if err := r.Skip(wt); err != nil {
			return "", err
		}
	}
	return "", nil
}

// DecodeResponseText decodes a response envelope to its message string.
// All fields other than the message text are skipped; unknown fields never
// break parsing.
func DecodeResponseText(payload []byte) (string, error) {
	r := codec.NewReader(payload)
	var text string
	for r.More() {
		field, wt, err := r.Next()
		if err != nil {
			return "", err
		}
		if field == fieldResponseText && wt == codec.WireBytes {
			text, err = r.ReadString()
			if err != nil {
				return "", err
			}
			continue
		}
		if err := r.Skip(wt); err != nil {
			return "", err
		}
	}
	return text, nil
}
