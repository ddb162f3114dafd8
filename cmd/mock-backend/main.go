// Command mock-backend runs a local stand-in for the chat RPC endpoint.
// It decodes incoming framed requests and streams a canned reply in any
// of the response frame shapes the real backend produces, so the full
// client pipeline can be exercised without credentials.
//
// Configuration:
//
//	MOCK_PORT  - Listen port (default: 9090)
//	MOCK_SHAPE - Response frame shape: headered-text (default),
//	             headered-gzip, bare-gzip, protocol
package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/xwartz/cursor-api/pkg/codec"
	"github.com/xwartz/cursor-api/pkg/wire"
)

func main() {
	port := os.Getenv("MOCK_PORT")
	if port == "" {
		port = "9090"
	}
	shape := os.Getenv("MOCK_SHAPE")
	if shape == "" {
		shape = "headered-text"
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /aiserver.v1.AiService/StreamChat", makeChatHandler(shape))
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok\n"))
	})

	srv := &http.Server{Addr: ":" + port, Handler: mux}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("mock backend starting", "port", port, "shape", shape)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("mock backend failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("mock backend shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}

// makeChatHandler returns a handler that echoes a summary of the decoded
// request as a streamed reply in the configured frame shape.
func makeChatHandler(shape string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "reading body: "+err.Error(), http.StatusBadRequest)
			return
		}

		req, err := decodeFramedRequest(body)
		if err != nil {
			http.Error(w, "decoding request: "+err.Error(), http.StatusBadRequest)
			return
		}
		slog.Info("request decoded",
			"messages", len(req.Messages), "model", req.Model)

		reply := fmt.Sprintf("Mock reply to %d message(s) for model %s. Last message was: %s",
			len(req.Messages), req.Model, lastContent(req))

		w.Header().Set("Content-Type", "application/connect+proto")
		writeReply(w, shape, reply)
	}
}

// writeReply streams the reply word by word in the selected frame shape,
// then an end-of-stream marker where the shape has one.
func writeReply(w http.ResponseWriter, shape, reply string) {
	flusher, _ := w.(http.Flusher)
	flush := func() {
		if flusher != nil {
			flusher.Flush()
		}
	}

	words := strings.SplitAfter(reply, " ")
	switch shape {
	case "headered-gzip":
		for _, word := range words {
			w.Write(headeredFrame(0x02, gzipBytes([]byte(word))))
			flush()
		}
		w.Write(headeredFrame(0x02, gzipBytes([]byte("{}"))))
	case "bare-gzip":
		for _, word := range words {
			w.Write(gzipBytes([]byte(word)))
			flush()
		}
	case "protocol":
		for _, word := range words {
			w.Write(protocolFrame(word))
			flush()
		}
	default:
		for _, word := range words {
			w.Write(headeredFrame(0x01, []byte(word)))
			flush()
		}
		w.Write(headeredFrame(0x01, []byte("{}")))
	}
	flush()
}

// headeredFrame prepends a 5-byte framing header to payload.
func headeredFrame(sig byte, payload []byte) []byte {
	f := []byte{sig, 0x00, 0x00, 0x00, 0x00}
	return append(f, payload...)
}

// protocolFrame builds a length-prefixed response message.
func protocolFrame(text string) []byte {
	b := codec.NewBuffer(len(text) + 8)
	b.WriteStringField(1, text)
	out := wire.AppendLengthPrefix(nil, b.Len())
	return append(out, b.Bytes()...)
}

// gzipBytes compresses data with gzip.
func gzipBytes(data []byte) []byte {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	zw.Write(data)
	zw.Close()
	return buf.Bytes()
}

// decodeFramedRequest strips the length prefix and decodes the request
// envelope.
func decodeFramedRequest(body []byte) (*wire.Request, error) {
	if len(body) < wire.LengthPrefixSize {
		return nil, fmt.Errorf("body shorter than a length prefix")
	}
	length, ok := wire.ParseLengthPrefix(body[:wire.LengthPrefixSize])
	if !ok || uint64(len(body)-wire.LengthPrefixSize) < length {
		return nil, fmt.Errorf("length prefix does not match body")
	}
	payload := body[wire.LengthPrefixSize : wire.LengthPrefixSize+int(length)]
	return wire.DecodeRequest(payload)
}

// lastContent returns the content of the final conversation turn.
func lastContent(req *wire.Request) string {
	if len(req.Messages) == 0 {
		return ""
	}
	return req.Messages[len(req.Messages)-1].Content
}
