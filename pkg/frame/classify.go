package frame

import (
	"bytes"
	"compress/gzip"
	"io"
	"log/slog"
	"strings"

	"github.com/xwartz/cursor-api/pkg/debug"
	"github.com/xwartz/cursor-api/pkg/wire"
)

// Kind identifies which framing variant a chunk was classified as.
type Kind int

const (
	// KindHeaderedGzip is a 5-byte framing header followed by a gzip payload.
	KindHeaderedGzip Kind = iota
	// KindHeaderedText is a 5-byte framing header followed by UTF-8 text.
	KindHeaderedText
	// KindBareGzip is a chunk that is a gzip stream in its entirety.
	KindBareGzip
	// KindBareProtocol is one or more bare length-prefixed protocol messages.
	KindBareProtocol
	// KindZeroPrefixed is a 4-byte all-zero prefix followed by one
	// protocol-encoded message.
	KindZeroPrefixed
	// KindPlainText is the fallback interpretation: raw UTF-8 text.
	KindPlainText
)

// String returns the kind name used in logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindHeaderedGzip:
		return "headered_gzip"
	case KindHeaderedText:
		return "headered_text"
	case KindBareGzip:
		return "bare_gzip"
	case KindBareProtocol:
		return "bare_protocol"
	case KindZeroPrefixed:
		return "zero_prefixed"
	case KindPlainText:
		return "plain_text"
	default:
		return "unknown"
	}
}

// Classified is the result of classifying one transport chunk.
type Classified struct {
	Kind Kind

	// Text is the cleaned user-visible text extracted from the chunk.
	// Empty for frames that carry no content.
	Text string

	// EndOfStream is set when a headered frame's payload decodes to the
	// literal "{}", the backend's implicit end-of-stream marker.
	EndOfStream bool
}

// Frame header signatures: the first three bytes of the 5-byte header.
var (
	headerSigText = []byte{0x01, 0x00, 0x00}
	headerSigGzip = []byte{0x02, 0x00, 0x00}
	gzipMagic     = []byte{0x1f, 0x8b}
)

// headerSize is the length of the framing header preceding a payload.
const headerSize = 5

// HasHeader reports whether the chunk starts with a known 5-byte framing
// header signature and is long enough to carry a payload behind it.
func HasHeader(chunk []byte) bool {
	return len(chunk) > headerSize &&
		(bytes.HasPrefix(chunk, headerSigText) || bytes.HasPrefix(chunk, headerSigGzip))
}

// HeaderPayload returns the payload behind the framing header. Callers
// must check HasHeader first.
func HeaderPayload(chunk []byte) []byte {
	return chunk[headerSize:]
}

// IsGzip reports whether data starts with the gzip magic bytes.
func IsGzip(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// HasZeroPrefix reports whether the chunk starts with a 4-byte all-zero
// prefix followed by at least one payload byte.
func HasZeroPrefix(chunk []byte) bool {
	return len(chunk) > 4 &&
		chunk[0] == 0 && chunk[1] == 0 && chunk[2] == 0 && chunk[3] == 0
}

// Gunzip decompresses a gzip stream held fully in memory.
func Gunzip(data []byte) ([]byte, error) {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

// Classify determines which framing variant the chunk is and extracts its
// text. The decision order is fixed: headered frames first, then bare
// gzip, then zero-prefixed and bare protocol messages, then plain text.
//
// Decompression failures are non-fatal: the frame yields an empty string
// and the stream continues. The only returned error is a backend error
// envelope embedded in a headered text payload.
func Classify(chunk []byte) (Classified, error) {
	if HasHeader(chunk) {
		payload := HeaderPayload(chunk)

		if IsGzip(payload) {
			text := gunzipText(payload)
			return Classified{
				Kind:        KindHeaderedGzip,
				Text:        Clean(text),
				EndOfStream: strings.TrimSpace(text) == "{}",
			}, nil
		}

		text := string(payload)
		if errPayload, found := findErrorEnvelope(text); found {
			return Classified{Kind: KindHeaderedText}, apiError(errPayload)
		}
		return Classified{
			Kind:        KindHeaderedText,
			Text:        Clean(text),
			EndOfStream: strings.TrimSpace(text) == "{}",
		}, nil
	}

	if IsGzip(chunk) {
		return Classified{Kind: KindBareGzip, Text: Clean(gunzipText(chunk))}, nil
	}

	if texts := ParseMessages(chunk); len(texts) > 0 {
		return Classified{Kind: KindBareProtocol, Text: Clean(strings.Join(texts, ""))}, nil
	}

	if HasZeroPrefix(chunk) {
		if text, err := wire.DecodeResponseText(chunk[4:]); err == nil {
			return Classified{Kind: KindZeroPrefixed, Text: Clean(text)}, nil
		}
		// Not a decodable zero-prefixed message; fall through to text.
	}

	return Classified{Kind: KindPlainText, Text: Clean(stripControl(string(chunk)))}, nil
}

// gunzipText decompresses payload, returning an empty string on failure.
// A single corrupt frame must not abort the stream.
func gunzipText(payload []byte) string {
	out, err := Gunzip(payload)
	if err != nil {
		slog.Warn("dropping undecompressable frame",
			"error", err.Error(),
			"bytes", len(payload),
		)
		return ""
	}
	debug.Log("frames", "decompressed frame", "in", len(payload), "out", len(out))
	return string(out)
}

// stripControl removes control characters (C0 and C1 ranges plus DEL) and
// the Unicode replacement character from the plain-text fallback.
func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if r <= 0x1f || (r >= 0x7f && r <= 0x9f) || r == '�' {
			return -1
		}
		return r
	}, s)
}
