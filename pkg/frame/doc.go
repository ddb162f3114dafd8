// Package frame turns raw transport chunks into clean text deltas.
//
// The backend does not commit to a single response shape. A chunk arriving
// over the transport can be a headered binary frame (gzip or UTF-8 payload
// behind a 5-byte framing header), a bare gzip stream, bare length-prefixed
// protocol messages, or plain UTF-8 text. [Classify] inspects each chunk,
// picks exactly one interpretation, and normalizes it to text.
//
// Extraction is deliberately forgiving: a single malformed frame is logged
// and yields an empty string rather than aborting the stream. The one hard
// failure is an embedded JSON error envelope, which surfaces as a typed
// API error.
//
// [Clean] and [CleanFinal] strip the backend's role-delimiter scaffolding
// and framing artifacts. The two variants exist because streamed and
// buffered responses arrive with genuinely different marker layouts; both
// are documented heuristics reverse-engineered from observed behavior, and
// both fall back to returning plainly cleaned text when no marker pattern
// matches.
package frame
