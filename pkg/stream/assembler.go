package stream

import (
	"context"
	"io"
	"time"

	"github.com/xwartz/cursor-api/pkg/api"
	"github.com/xwartz/cursor-api/pkg/debug"
	"github.com/xwartz/cursor-api/pkg/frame"
	"github.com/xwartz/cursor-api/pkg/observability"
)

// Event is one item of a streaming response: either a chunk or a terminal
// error. After an error event, no further events follow.
type Event struct {
	Chunk *api.ChatCompletionChunk
	Err   error
}

// Timing constants for the pull loop.
const (
	// readTimeout is how long a single pull waits before re-evaluating
	// the idle guards.
	readTimeout = 5 * time.Second

	// idleTimeout ends the stream when frames have been seen but none
	// arrived for this long.
	idleTimeout = 10 * time.Second

	// smallFramePause throttles the loop after tiny content-free frames,
	// which are usually connection-level keepalive noise.
	smallFramePause = 50 * time.Millisecond

	// smallFrameSize is the largest frame treated as keepalive noise.
	smallFrameSize = 5

	// maxConsecutiveEmpties is the repeated-empty heuristic: this many
	// content-free frames in a row after real content means the stream
	// is done.
	maxConsecutiveEmpties = 2
)

// readResult is one transport read delivered to the pull loop.
type readResult struct {
	data []byte
	err  error
}

// Assembler incrementally turns one request's transport chunks into delta
// chunks. Its counters are owned exclusively by the pull loop; an
// Assembler must not be shared across requests.
type Assembler struct {
	id      string
	created int64
	model   string

	// Timing knobs, set to the package defaults by NewAssembler.
	readTimeout time.Duration
	idleTimeout time.Duration
	smallPause  time.Duration

	chunkCount   int
	emptyCount   int
	lastActivity time.Time
	framesSeen   int
	done         bool
}

// NewAssembler creates an Assembler for one streaming request. The id,
// created timestamp, and model are stamped onto every emitted chunk.
func NewAssembler(id string, created int64, model string) *Assembler {
	return &Assembler{
		id:          id,
		created:     created,
		model:       model,
		readTimeout: readTimeout,
		idleTimeout: idleTimeout,
		smallPause:  smallFramePause,
	}
}

// Run pulls chunks from body until the stream ends, emitting events on ch.
// The channel is NOT closed by Run; the caller closes it. The body is
// closed before Run returns, including on cancellation, so the transport
// reader is always released.
//
// Termination: an explicit "{}" marker frame, transport completion, the
// idle timeout, and the repeated-empty heuristic all emit a final chunk
// with finish_reason "stop". A backend error envelope or a transport read
// failure emits an error event instead.
func (a *Assembler) Run(ctx context.Context, body io.ReadCloser, ch chan<- Event) {
	defer body.Close()

	reads := make(chan readResult)
	readCtx, stopReader := context.WithCancel(ctx)
	defer stopReader()

	go readChunks(readCtx, body, reads)

	a.lastActivity = time.Now()
	timer := time.NewTimer(a.readTimeout)
	defer timer.Stop()

	for !a.done {
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(a.readTimeout)

		select {
		case <-ctx.Done():
			// Cancellation releases the reader via the deferred Close.
			observability.StreamEndsTotal.WithLabelValues("cancelled").Inc()
			a.done = true

		case res, ok := <-reads:
			if !ok {
				// Natural transport completion.
				a.finish(ch, "transport_eof")
				continue
			}
			if res.err != nil {
				observability.StreamEndsTotal.WithLabelValues("error").Inc()
				ch <- Event{Err: api.NewTransportError("stream read error: " + res.err.Error())}
				a.done = true
				continue
			}
			a.lastActivity = time.Now()
			a.framesSeen++
			a.handleFrame(ctx, res.data, ch)

		case <-timer.C:
			// No content timeout before the first frame.
			if a.framesSeen == 0 {
				continue
			}
			if time.Since(a.lastActivity) > a.idleTimeout {
				a.finish(ch, "idle_timeout")
			}
		}
	}
}

// handleFrame classifies and cleans one frame, applying the per-frame
// guards of the pull loop.
func (a *Assembler) handleFrame(ctx context.Context, data []byte, ch chan<- Event) {
	cls, err := frame.Classify(data)
	observability.FramesTotal.WithLabelValues(cls.Kind.String()).Inc()
	if err != nil {
		// Backend error envelope: terminal, not a normal close.
		observability.StreamEndsTotal.WithLabelValues("error").Inc()
		ch <- Event{Err: err}
		a.done = true
		return
	}

	debug.Log("streaming", "frame processed",
		"kind", cls.Kind.String(), "bytes", len(data), "text_len", len(cls.Text))

	if cls.EndOfStream {
		a.finish(ch, "explicit_marker")
		return
	}

	if cls.Text != "" {
		a.emptyCount = 0
		a.chunkCount++
		observability.DeltasTotal.Inc()
		ch <- Event{Chunk: api.NewChunk(a.id, a.created, a.model, cls.Text)}
		return
	}

	a.emptyCount++
	if a.chunkCount > 0 && a.emptyCount >= maxConsecutiveEmpties {
		// Consecutive content-free frames after real content: the
		// backend is done even though it never said so.
		a.finish(ch, "empty_frames")
		return
	}
	if len(data) <= smallFrameSize {
		// Keepalive noise; don't busy-loop on it.
		select {
		case <-time.After(a.smallPause):
		case <-ctx.Done():
		}
	}
}

// finish emits the synthetic final chunk and marks the stream done.
func (a *Assembler) finish(ch chan<- Event, cause string) {
	observability.StreamEndsTotal.WithLabelValues(cause).Inc()
	debug.Log("streaming", "stream finished",
		"cause", cause, "chunks", a.chunkCount)
	ch <- Event{Chunk: api.NewFinalChunk(a.id, a.created, a.model)}
	a.done = true
}

// readChunks delivers transport reads to the pull loop until EOF, a read
// error, or cancellation. The channel is closed on clean EOF.
func readChunks(ctx context.Context, body io.Reader, reads chan<- readResult) {
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case reads <- readResult{data: data}:
			case <-ctx.Done():
				return
			}
		}
		if err != nil {
			if err == io.EOF {
				close(reads)
				return
			}
			select {
			case reads <- readResult{err: err}:
			case <-ctx.Done():
			}
			return
		}
	}
}
