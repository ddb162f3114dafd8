package frame

import (
	"github.com/xwartz/cursor-api/pkg/debug"
	"github.com/xwartz/cursor-api/pkg/wire"
)

// ParseMessages scans data for bare length-prefixed protocol messages and
// returns the decoded message texts in order.
//
// Each message is a 5-byte big-endian length prefix followed by that many
// protocol-encoded bytes. Scanning stops at a truncated prefix or when a
// declared length exceeds the remaining bytes (an incomplete trailing
// message is unconsumed, not an error). A message that fails to decode is
// skipped and scanning continues at the next prefix; one bad message never
// aborts parsing of the ones after it.
func ParseMessages(data []byte) []string {
	var texts []string
	for {
		length, ok := wire.ParseLengthPrefix(data)
		if !ok {
			break
		}
		data = data[wire.LengthPrefixSize:]
		if length > uint64(len(data)) {
			break
		}
		payload := data[:length]
		data = data[length:]

		text, err := wire.DecodeResponseText(payload)
		if err != nil {
			debug.Log("frames", "skipping malformed protocol message",
				"error", err.Error(), "bytes", len(payload))
			continue
		}
		texts = append(texts, text)
	}
	return texts
}
