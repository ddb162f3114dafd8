// Package client is the public entry point of the SDK. A Client turns
// OpenAI-style chat messages into the backend's binary RPC format, posts
// them over HTTP, and decodes the framed response back into completions
// or streamed chunks.
package client
