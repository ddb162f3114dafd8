package api

// Message roles accepted in a chat-completion request.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single conversation turn supplied by the caller.
// It mirrors the OpenAI Chat Completions message format.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
	Name    string `json:"name,omitempty"`
}

// ChatCompletion is the non-streaming completion response.
type ChatCompletion struct {
	ID      string   `json:"id"`
	Object  string   `json:"object"`
	Created int64    `json:"created"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   Usage    `json:"usage"`
}

// Choice is one completion choice in a non-streaming response.
type Choice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

// ChatCompletionChunk is one streamed delta in a streaming response.
type ChatCompletionChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
}

// ChunkChoice is one choice within a streamed chunk. FinishReason is nil
// for content deltas and "stop" on the final chunk.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta carries the incremental content of a streamed chunk.
type Delta struct {
	Role    string `json:"role,omitempty"`
	Content string `json:"content,omitempty"`
}

// Usage holds token counts. The backend does not report usage, so all
// fields are zero in every response.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Object type constants for the OpenAI wire format.
const (
	ObjectChatCompletion      = "chat.completion"
	ObjectChatCompletionChunk = "chat.completion.chunk"
)

// FinishReasonStop marks a normally terminated choice or stream.
const FinishReasonStop = "stop"

// NewCompletion builds a ChatCompletion with a single assistant choice
// holding the given content and zeroed usage.
func NewCompletion(id string, created int64, model, content string) *ChatCompletion {
	return &ChatCompletion{
		ID:      id,
		Object:  ObjectChatCompletion,
		Created: created,
		Model:   model,
		Choices: []Choice{
			{
				Index: 0,
				Message: ChatMessage{
					Role:    RoleAssistant,
					Content: content,
				},
				FinishReason: FinishReasonStop,
			},
		},
	}
}

// NewChunk builds a ChatCompletionChunk carrying a content delta.
func NewChunk(id string, created int64, model, content string) *ChatCompletionChunk {
	return &ChatCompletionChunk{
		ID:      id,
		Object:  ObjectChatCompletionChunk,
		Created: created,
		Model:   model,
		Choices: []ChunkChoice{
			{Index: 0, Delta: Delta{Content: content}},
		},
	}
}

// NewFinalChunk builds the terminal chunk of a stream: empty delta with
// finish_reason "stop".
func NewFinalChunk(id string, created int64, model string) *ChatCompletionChunk {
	reason := FinishReasonStop
	return &ChatCompletionChunk{
		ID:      id,
		Object:  ObjectChatCompletionChunk,
		Created: created,
		Model:   model,
		Choices: []ChunkChoice{
			{Index: 0, Delta: Delta{}, FinishReason: &reason},
		},
	}
}
