package api

import (
	"time"

	"github.com/google/uuid"
)

const completionIDPrefix = "chatcmpl-"

// NewCompletionID generates a completion ID with the "chatcmpl-" prefix
// followed by a fresh UUID. Every response and every stream gets its own.
func NewCompletionID() string {
	return completionIDPrefix + uuid.NewString()
}

// Now returns the current Unix timestamp for the "created" field.
func Now() int64 {
	return time.Now().Unix()
}
