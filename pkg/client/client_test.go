package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xwartz/cursor-api/pkg/api"
	"github.com/xwartz/cursor-api/pkg/wire"
)

const testToken = "user_01ABC::eyJhbGciOiJIUzI1NiJ9.payload.sig"

// headeredFrame prepends a 5-byte framing header to payload.
func headeredFrame(sig byte, payload []byte) []byte {
	f := []byte{sig, 0x00, 0x00, 0x00, 0x00}
	return append(f, payload...)
}

// newTestClient points a Client at a test server.
func newTestClient(t *testing.T, serverURL string) *Client {
	t.Helper()
	c, err := New(Options{Token: testToken, BaseURL: serverURL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

// checkRequestHeaders asserts the connect-protocol and signing headers.
func checkRequestHeaders(t *testing.T, r *http.Request) {
	t.Helper()
	if ct := r.Header.Get("Content-Type"); ct != "application/connect+proto" {
		t.Errorf("Content-Type = %q", ct)
	}
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ey") {
		t.Errorf("Authorization = %q, want bearer JWT tail", auth)
	}
	if strings.Contains(auth, "::") {
		t.Errorf("Authorization carries unnormalized token: %q", auth)
	}
	if r.Header.Get("X-Cursor-Checksum") == "" {
		t.Error("X-Cursor-Checksum missing")
	}
	if r.Header.Get("Connect-Protocol-Version") != "1" {
		t.Error("Connect-Protocol-Version missing")
	}
}

func TestCreateChatCompletion(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkRequestHeaders(t, r)

		buf := make([]byte, wire.LengthPrefixSize)
		if _, err := io.ReadFull(r.Body, buf); err != nil {
			t.Errorf("reading request prefix: %v", err)
		}
		if _, ok := wire.ParseLengthPrefix(buf); !ok {
			t.Errorf("request does not start with a length prefix: %x", buf)
		}

		w.Write(headeredFrame(0x01, []byte("The answer is 42.")))
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	messages := []api.ChatMessage{{Role: api.RoleUser, Content: "What is the answer?"}}

	resp, err := c.CreateChatCompletion(context.Background(), messages, "gpt-4")
	if err != nil {
		t.Fatalf("CreateChatCompletion: %v", err)
	}
	if len(resp.Choices) != 1 {
		t.Fatalf("got %d choices, want 1", len(resp.Choices))
	}
	choice := resp.Choices[0]
	if choice.Message.Role != api.RoleAssistant {
		t.Errorf("role = %q", choice.Message.Role)
	}
	if choice.Message.Content != "The answer is 42." {
		t.Errorf("content = %q", choice.Message.Content)
	}
	if choice.FinishReason != "stop" {
		t.Errorf("finish_reason = %q", choice.FinishReason)
	}
	if resp.Usage.TotalTokens != 0 {
		t.Errorf("usage = %+v, want all zero", resp.Usage)
	}
	if !strings.HasPrefix(resp.ID, "chatcmpl-") {
		t.Errorf("ID = %q", resp.ID)
	}
}

func TestCreateChatCompletionValidationSkipsNetwork(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("network call made for an invalid request")
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)

	tests := []struct {
		name     string
		messages []api.ChatMessage
		model    string
	}{
		{name: "no messages", messages: nil, model: "gpt-4"},
		{name: "empty content", messages: []api.ChatMessage{{Role: api.RoleUser}}, model: "gpt-4"},
		{name: "bad role", messages: []api.ChatMessage{{Role: "robot", Content: "hi"}}, model: "gpt-4"},
		{name: "no model", messages: []api.ChatMessage{{Role: api.RoleUser, Content: "hi"}}, model: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateChatCompletion(context.Background(), tt.messages, tt.model)
			if !api.IsValidationError(err) {
				t.Errorf("error = %v, want validation error", err)
			}
		})
	}
}

func TestCreateChatCompletionHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid session", http.StatusUnauthorized)
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	messages := []api.ChatMessage{{Role: api.RoleUser, Content: "hi"}}

	_, err := c.CreateChatCompletion(context.Background(), messages, "gpt-4")
	if !api.IsAPIError(err) {
		t.Fatalf("error = %v, want API error", err)
	}
	if !strings.Contains(err.Error(), "invalid session") {
		t.Errorf("error %q does not carry the backend message", err.Error())
	}
}

func TestCreateChatCompletionConnectionRefused(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	c := newTestClient(t, server.URL)
	messages := []api.ChatMessage{{Role: api.RoleUser, Content: "hi"}}

	_, err := c.CreateChatCompletion(context.Background(), messages, "gpt-4")
	if !api.IsTransportError(err) {
		t.Fatalf("error = %v, want transport error", err)
	}
}

func TestCreateChatCompletionStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		checkRequestHeaders(t, r)

		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer is not a flusher")
		}
		for _, delta := range []string{"Hello", ", ", "world"} {
			w.Write(headeredFrame(0x01, []byte(delta)))
			flusher.Flush()
			time.Sleep(5 * time.Millisecond)
		}
		w.Write(headeredFrame(0x01, []byte("{}")))
		flusher.Flush()
	}))
	defer server.Close()

	c := newTestClient(t, server.URL)
	messages := []api.ChatMessage{{Role: api.RoleUser, Content: "greet me"}}

	events, err := c.CreateChatCompletionStream(context.Background(), messages, "gpt-4")
	if err != nil {
		t.Fatalf("CreateChatCompletionStream: %v", err)
	}

	var content strings.Builder
	var sawFinal bool
	for ev := range events {
		if ev.Err != nil {
			t.Fatalf("unexpected error event: %v", ev.Err)
		}
		choice := ev.Chunk.Choices[0]
		if choice.FinishReason != nil {
			if *choice.FinishReason != "stop" {
				t.Errorf("finish_reason = %q", *choice.FinishReason)
			}
			sawFinal = true
			continue
		}
		content.WriteString(choice.Delta.Content)
	}

	if content.String() != "Hello, world" {
		t.Errorf("streamed content = %q", content.String())
	}
	if !sawFinal {
		t.Error("stream ended without a stop chunk")
	}
}

func TestCreateChatCompletionStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Write(headeredFrame(0x01, []byte("first")))
		flusher.Flush()
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := newTestClient(t, server.URL)
	messages := []api.ChatMessage{{Role: api.RoleUser, Content: "hi"}}

	ctx, cancel := context.WithCancel(context.Background())
	events, err := c.CreateChatCompletionStream(ctx, messages, "gpt-4")
	if err != nil {
		t.Fatalf("CreateChatCompletionStream: %v", err)
	}

	<-events // first delta
	cancel()

	// The channel must close promptly after cancellation.
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-events:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("event channel not closed after cancellation")
		}
	}
}

func TestModels(t *testing.T) {
	models := Models()
	if len(models) == 0 {
		t.Fatal("no models")
	}
	seen := make(map[string]bool, len(models))
	for _, m := range models {
		if m.ID == "" || m.Object != "model" || m.OwnedBy != "cursor" {
			t.Errorf("malformed entry: %+v", m)
		}
		if seen[m.ID] {
			t.Errorf("duplicate model %q", m.ID)
		}
		seen[m.ID] = true
	}
	if !seen["gpt-4o"] {
		t.Error("gpt-4o missing from the model list")
	}
}
