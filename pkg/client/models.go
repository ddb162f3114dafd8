package client

// ModelInfo describes one model known to the backend, in the OpenAI
// /v1/models wire shape.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

// modelIDs is the static list of model names the backend accepts. The
// backend exposes no listing RPC, so the set is maintained by hand.
var modelIDs = []string{
	"claude-3-5-sonnet-20241022",
	"claude-3-opus",
	"claude-3.5-haiku",
	"claude-3.5-sonnet",
	"cursor-small",
	"gemini-exp-1206",
	"gpt-3.5-turbo",
	"gpt-4",
	"gpt-4-turbo-2024-04-09",
	"gpt-4o",
	"gpt-4o-mini",
	"o1-mini",
	"o1-preview",
}

// Models returns the known backend models. The slice is freshly
// allocated on every call.
func Models() []ModelInfo {
	models := make([]ModelInfo, 0, len(modelIDs))
	for _, id := range modelIDs {
		models = append(models, ModelInfo{
			ID:      id,
			Object:  "model",
			Created: 1706745600,
			OwnedBy: "cursor",
		})
	}
	return models
}
