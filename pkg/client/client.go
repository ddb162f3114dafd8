package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/xwartz/cursor-api/pkg/api"
	"github.com/xwartz/cursor-api/pkg/debug"
	"github.com/xwartz/cursor-api/pkg/observability"
	"github.com/xwartz/cursor-api/pkg/stream"
	"github.com/xwartz/cursor-api/pkg/wire"
)

const (
	defaultBaseURL = "https://api2.cursor.sh"
	rpcPath        = "/aiserver.v1.AiService/StreamChat"
	defaultTimeout = 120 * time.Second

	clientVersion = "0.42.3"
	userAgent     = "connect-es/1.4.0"
)

// Options configures a Client. Token is required; everything else has a
// working default.
type Options struct {
	// Token is the Cursor session token. The "sub::jwt" and URL-encoded
	// "%3A%3A" forms are accepted; the JWT tail is what gets sent.
	Token string

	// BaseURL overrides the backend endpoint. Mostly useful for tests
	// and local mock backends.
	BaseURL string

	// Timeout bounds non-streaming requests. Streaming requests are
	// governed by context cancellation instead.
	Timeout time.Duration

	// HTTPClient replaces the default transport when set. Its Timeout
	// is still overridden per the rules above.
	HTTPClient *http.Client
}

// Client issues chat-completion requests against the backend.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	checksum   string
}

// New creates a Client. The token is normalized and inspected up front;
// an unusable token fails here rather than on the first request.
func New(opts Options) (*Client, error) {
	token, err := NormalizeToken(opts.Token)
	if err != nil {
		return nil, err
	}
	warnIfExpired(token)

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = defaultTimeout
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		token:      token,
		checksum:   Checksum(token),
	}, nil
}

// CreateChatCompletion performs a non-streaming request: the whole framed
// response is buffered, aggregated, and returned as a single completion.
func (c *Client) CreateChatCompletion(ctx context.Context, messages []api.ChatMessage, model string) (*api.ChatCompletion, error) {
	start := time.Now()

	resp, err := c.post(ctx, c.httpClient, messages, model)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("chat", model, "error").Inc()
		return nil, err
	}
	defer resp.Body.Close()

	frames, err := readFrames(resp.Body)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("chat", model, "error").Inc()
		return nil, api.NewTransportError("failed to read response: " + err.Error())
	}
	debug.Log("client", "response buffered", "frames", len(frames))

	text, err := stream.Aggregate(frames)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("chat", model, "error").Inc()
		return nil, err
	}

	observability.RequestsTotal.WithLabelValues("chat", model, "ok").Inc()
	observability.RequestDuration.WithLabelValues("chat", model).Observe(time.Since(start).Seconds())
	return api.NewCompletion(api.NewCompletionID(), api.Now(), model, text), nil
}

// CreateChatCompletionStream performs a streaming request. It returns a
// channel of events: zero or more content chunks, then either a final
// chunk with finish_reason "stop" or one error event. The channel is
// closed afterwards. Cancelling the context tears the stream down.
func (c *Client) CreateChatCompletionStream(ctx context.Context, messages []api.ChatMessage, model string) (<-chan stream.Event, error) {
	// No overall timeout for streaming; a stream can legitimately
	// outlive any fixed deadline. The context controls its lifetime.
	streamClient := &http.Client{Transport: c.httpClient.Transport}

	resp, err := c.post(ctx, streamClient, messages, model)
	if err != nil {
		observability.RequestsTotal.WithLabelValues("stream", model, "error").Inc()
		return nil, err
	}

	observability.RequestsTotal.WithLabelValues("stream", model, "ok").Inc()
	observability.StreamsActive.Inc()

	start := time.Now()
	ch := make(chan stream.Event, 16)
	a := stream.NewAssembler(api.NewCompletionID(), api.Now(), model)

	go func() {
		defer close(ch)
		defer observability.StreamsActive.Dec()
		a.Run(ctx, resp.Body, ch)
		observability.RequestDuration.WithLabelValues("stream", model).Observe(time.Since(start).Seconds())
	}()

	return ch, nil
}

// post builds, frames, and sends one RPC request. Validation failures
// surface before any network activity.
func (c *Client) post(ctx context.Context, httpClient *http.Client, messages []api.ChatMessage, model string) (*http.Response, error) {
	payload, err := wire.BuildRequest(messages, model)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + rpcPath
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, api.NewTransportError("failed to create HTTP request: " + err.Error())
	}
	c.setHeaders(req)

	debug.Log("client", "sending request",
		"url", url, "model", model, "payload_bytes", len(payload))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, mapNetworkError(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, mapHTTPError(resp)
	}
	return resp, nil
}

// setHeaders applies the connect-protocol and signing headers the backend
// requires on every request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/connect+proto")
	req.Header.Set("Connect-Protocol-Version", "1")
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Cursor-Checksum", c.checksum)
	req.Header.Set("X-Cursor-Client-Version", clientVersion)
}

// mapHTTPError converts a non-2xx response into a typed API error,
// carrying whatever the backend put in the body.
func mapHTTPError(resp *http.Response) *api.Error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	message := strings.TrimSpace(string(body))
	if message == "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			message = "authentication failed"
		default:
			message = "request failed"
		}
	}
	return api.NewAPIError(fmt.Sprintf("API Error: %s (HTTP %d)", message, resp.StatusCode))
}

// mapNetworkError converts a network-level failure (connection refused,
// DNS, timeout) into a typed transport error.
func mapNetworkError(err error) *api.Error {
	return api.NewTransportError("backend connection error: " + err.Error())
}

// readFrames drains body, returning each transport read as its own frame.
// Frame boundaries follow read boundaries, the same granularity the
// streaming path sees.
func readFrames(body io.Reader) ([][]byte, error) {
	var frames [][]byte
	buf := make([]byte, 32*1024)
	for {
		n, err := body.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			frames = append(frames, data)
		}
		if err == io.EOF {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
	}
}
