package stream

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/xwartz/cursor-api/pkg/frame"
	"github.com/xwartz/cursor-api/pkg/wire"
)

// gzipHeaderByte marks a headered frame carrying compressed content. A
// continuation fragment of a split gzip stream keeps this header byte but
// does not start with the gzip magic, so the header is what identifies it.
const gzipHeaderByte = 0x02

// Aggregate produces the final response string for a non-streaming
// request from all of its raw frames.
//
// Frames are partitioned three ways: headered gzip frames have their
// payloads collected for cross-frame reassembly (the backend may split
// one compressed stream across several frames), zero-prefixed frames are
// decoded as bare protocol messages, and everything else goes through the
// normal per-frame classify+clean pipeline. The partial results are
// concatenated in frame-arrival order (the reassembled gzip text standing
// in at the position of its first fragment) and cleaned once as a whole.
//
// A backend error envelope in any frame aborts aggregation immediately;
// no partial content is returned.
func Aggregate(frames [][]byte) (string, error) {
	var parts []string
	var gzipPayloads [][]byte
	gzipSlot := -1

	for _, f := range frames {
		switch {
		case isGzipFrame(f):
			if gzipSlot < 0 {
				gzipSlot = len(parts)
				parts = append(parts, "")
			}
			gzipPayloads = append(gzipPayloads, frame.HeaderPayload(f))

		case frame.HasZeroPrefix(f):
			text, err := wire.DecodeResponseText(f[4:])
			if err != nil {
				// Malformed frames are dropped, never fatal.
				slog.Warn("skipping malformed zero-prefixed frame",
					"error", err.Error(), "bytes", len(f))
				continue
			}
			parts = append(parts, text)

		default:
			cls, err := frame.Classify(f)
			if err != nil {
				return "", err
			}
			parts = append(parts, cls.Text)
		}
	}

	if gzipSlot >= 0 {
		parts[gzipSlot] = reassembleGzip(gzipPayloads)
	}

	return frame.CleanFinal(strings.Join(parts, "")), nil
}

// isGzipFrame reports whether a headered frame carries gzip content:
// either the payload starts with the gzip magic or the header byte marks
// a compressed frame.
func isGzipFrame(f []byte) bool {
	if !frame.HasHeader(f) {
		return false
	}
	return frame.IsGzip(frame.HeaderPayload(f)) || f[0] == gzipHeaderByte
}

// reassembleGzip decompresses the collected gzip payloads. The payloads
// are first concatenated and decompressed as one stream; if that fails,
// each payload is decompressed independently and the failures skipped.
func reassembleGzip(payloads [][]byte) string {
	joined := bytes.Join(payloads, nil)
	if out, err := frame.Gunzip(joined); err == nil {
		return string(out)
	}

	var sb strings.Builder
	for _, p := range payloads {
		out, err := frame.Gunzip(p)
		if err != nil {
			slog.Warn("skipping undecompressable gzip fragment",
				"error", err.Error(), "bytes", len(p))
			continue
		}
		sb.Write(out)
	}
	return sb.String()
}
