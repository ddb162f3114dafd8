// Package api defines the public OpenAI-compatible types for the cursor-api
// client SDK.
//
// This package provides the request and response types callers interact
// with (ChatMessage, ChatCompletion, ChatCompletionChunk), the typed error
// taxonomy, and ID generation. All types produce JSON compatible with the
// OpenAI Chat Completions wire format, enabling drop-in use with client
// code written against that API.
//
// The package has zero protocol knowledge and performs no I/O. Translation
// to and from the backend's binary protocol lives in pkg/wire, pkg/frame,
// and pkg/stream.
//
// Error taxonomy:
//   - [ErrorTypeValidation]: client-side request validation, raised before
//     any network activity
//   - [ErrorTypeAPI]: error envelope embedded by the backend in a response
//     frame
//   - [ErrorTypeTransport]: connection-level failure (dial, timeout, drop)
//
// Callers can branch on the taxonomy via [IsValidationError], [IsAPIError],
// and [IsTransportError] (for example: retry transport errors, never retry
// validation errors).
package api
