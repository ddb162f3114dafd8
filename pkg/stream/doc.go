// Package stream consumes raw transport chunks and produces OpenAI-style
// completion output.
//
// [Assembler] is the streaming path: a stateful pull loop that classifies
// each chunk, emits content deltas on a channel, and decides when the
// stream is over. The backend guarantees no single terminator, so the end
// of a stream is detected by independent guards evaluated on every pull:
// an explicit "{}" marker frame, natural transport completion, an idle
// timeout, and a repeated-empty-frame heuristic.
//
// [Aggregate] is the non-streaming path: it buffers every frame of one
// request, reassembles gzip streams the backend may have split across
// frames, and produces a single cleaned response string.
//
// Each request owns exactly one Assembler or one Aggregate call and one
// transport reader; nothing is shared between concurrent requests.
package stream
