package stream

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/xwartz/cursor-api/pkg/api"
)

// gzipBytes compresses data with gzip.
func gzipBytes(t *testing.T, data []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		t.Fatalf("gzip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("gzip close: %v", err)
	}
	return buf.Bytes()
}

// headeredFrame prepends a 5-byte framing header to payload.
func headeredFrame(sig byte, payload []byte) []byte {
	f := []byte{sig, 0x00, 0x00, 0x00, 0x00}
	return append(f, payload...)
}

// scriptedBody serves one frame per Read and then errEnd (io.EOF by
// default).
type scriptedBody struct {
	frames [][]byte
	errEnd error

	mu     sync.Mutex
	closed bool
}

func (b *scriptedBody) Read(p []byte) (int, error) {
	if len(b.frames) == 0 {
		if b.errEnd != nil {
			return 0, b.errEnd
		}
		return 0, io.EOF
	}
	f := b.frames[0]
	b.frames = b.frames[1:]
	return copy(p, f), nil
}

func (b *scriptedBody) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	return nil
}

func (b *scriptedBody) wasClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

// stallingBody serves an optional first frame and then blocks until
// Close releases it.
type stallingBody struct {
	first   []byte
	served  bool
	release chan struct{}
	once    sync.Once
}

func newStallingBody(first []byte) *stallingBody {
	return &stallingBody{
		first:   first,
		served:  first == nil,
		release: make(chan struct{}),
	}
}

func (b *stallingBody) Read(p []byte) (int, error) {
	if !b.served {
		b.served = true
		return copy(p, b.first), nil
	}
	<-b.release
	return 0, io.EOF
}

func (b *stallingBody) Close() error {
	b.once.Do(func() { close(b.release) })
	return nil
}

// runAssembler drives Run to completion and collects every event.
func runAssembler(t *testing.T, ctx context.Context, a *Assembler, body io.ReadCloser) []Event {
	t.Helper()
	ch := make(chan Event)
	done := make(chan struct{})
	var events []Event
	go func() {
		for ev := range ch {
			events = append(events, ev)
		}
		close(done)
	}()
	a.Run(ctx, body, ch)
	close(ch)
	<-done
	return events
}

// wantFinalChunk asserts that ev is a final chunk with finish_reason stop
// and no content.
func wantFinalChunk(t *testing.T, ev Event) {
	t.Helper()
	if ev.Err != nil {
		t.Fatalf("unexpected error event: %v", ev.Err)
	}
	if ev.Chunk == nil {
		t.Fatal("event has no chunk")
	}
	choice := ev.Chunk.Choices[0]
	if choice.FinishReason == nil || *choice.FinishReason != "stop" {
		t.Errorf("FinishReason = %v, want stop", choice.FinishReason)
	}
	if choice.Delta.Content != "" {
		t.Errorf("final chunk content = %q, want empty", choice.Delta.Content)
	}
}

func TestRunExplicitEndMarker(t *testing.T) {
	body := &scriptedBody{frames: [][]byte{
		headeredFrame(0x01, []byte("Hello")),
		headeredFrame(0x01, []byte(", world")),
		headeredFrame(0x01, []byte("{}")),
	}}
	a := NewAssembler("chatcmpl-test", 1700000000, "gpt-4")

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 3 {
		t.Fatalf("got %d events, want 3", len(events))
	}
	for i, want := range []string{"Hello", ", world"} {
		ev := events[i]
		if ev.Err != nil {
			t.Fatalf("event %d: unexpected error %v", i, ev.Err)
		}
		if got := ev.Chunk.Choices[0].Delta.Content; got != want {
			t.Errorf("event %d content = %q, want %q", i, got, want)
		}
		if ev.Chunk.ID != "chatcmpl-test" || ev.Chunk.Model != "gpt-4" {
			t.Errorf("event %d stamped %s/%s", i, ev.Chunk.ID, ev.Chunk.Model)
		}
	}
	wantFinalChunk(t, events[2])
	if !body.wasClosed() {
		t.Error("body not closed")
	}
}

func TestRunGzipFrames(t *testing.T) {
	body := &scriptedBody{frames: [][]byte{
		headeredFrame(0x02, gzipBytes(t, []byte("compressed delta"))),
		headeredFrame(0x02, gzipBytes(t, []byte("{}"))),
	}}
	a := NewAssembler("chatcmpl-gz", 1700000000, "gpt-4")

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := events[0].Chunk.Choices[0].Delta.Content; got != "compressed delta" {
		t.Errorf("content = %q", got)
	}
	wantFinalChunk(t, events[1])
}

func TestRunTransportEOF(t *testing.T) {
	body := &scriptedBody{frames: [][]byte{
		headeredFrame(0x01, []byte("partial answer")),
	}}
	a := NewAssembler("chatcmpl-eof", 1700000000, "gpt-4")

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := events[0].Chunk.Choices[0].Delta.Content; got != "partial answer" {
		t.Errorf("content = %q", got)
	}
	wantFinalChunk(t, events[1])
}

func TestRunReadError(t *testing.T) {
	body := &scriptedBody{
		frames: [][]byte{headeredFrame(0x01, []byte("before the failure"))},
		errEnd: io.ErrUnexpectedEOF,
	}
	a := NewAssembler("chatcmpl-err", 1700000000, "gpt-4")

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	last := events[1]
	if last.Err == nil {
		t.Fatal("want an error event")
	}
	if !api.IsTransportError(last.Err) {
		t.Errorf("error type = %T, want transport error", last.Err)
	}
}

func TestRunErrorEnvelope(t *testing.T) {
	body := &scriptedBody{frames: [][]byte{
		headeredFrame(0x01, []byte(`{"error":{"message":"model overloaded"}}`)),
	}}
	a := NewAssembler("chatcmpl-env", 1700000000, "gpt-4")

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 1 {
		t.Fatalf("got %d events, want 1", len(events))
	}
	if !api.IsAPIError(events[0].Err) {
		t.Fatalf("error = %v, want API error", events[0].Err)
	}
}

func TestRunEmptyFrameHeuristic(t *testing.T) {
	// "{}" outside a headered frame cleans to empty content rather than
	// an end marker; two in a row after real content close the stream.
	body := &scriptedBody{
		frames: [][]byte{
			headeredFrame(0x01, []byte("real content")),
			[]byte("{}"),
			[]byte("{}"),
		},
		errEnd: io.ErrUnexpectedEOF,
	}
	a := NewAssembler("chatcmpl-empty", 1700000000, "gpt-4")
	a.smallPause = time.Millisecond

	events := runAssembler(t, context.Background(), a, body)

	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if got := events[0].Chunk.Choices[0].Delta.Content; got != "real content" {
		t.Errorf("content = %q", got)
	}
	wantFinalChunk(t, events[1])
}

func TestRunIdleTimeout(t *testing.T) {
	body := newStallingBody(headeredFrame(0x01, []byte("then silence")))
	a := NewAssembler("chatcmpl-idle", 1700000000, "gpt-4")
	a.readTimeout = 10 * time.Millisecond
	a.idleTimeout = 20 * time.Millisecond

	start := time.Now()
	events := runAssembler(t, context.Background(), a, body)

	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("Run hung for %v", elapsed)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	wantFinalChunk(t, events[1])
}

func TestRunCancellation(t *testing.T) {
	body := newStallingBody(nil)
	a := NewAssembler("chatcmpl-cancel", 1700000000, "gpt-4")

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	events := runAssembler(t, ctx, a, body)

	// Cancellation tears the stream down without a synthetic final chunk.
	if len(events) != 0 {
		t.Fatalf("got %d events, want 0", len(events))
	}
}
