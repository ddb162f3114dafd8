// Package codec implements the length-delimited, tagged-field binary
// encoding the backend protocol is built on.
//
// Each field is a tag byte (field number shifted left by three, OR'd with a
// wire-type code) followed by the value. Numeric fields use variable-length
// integer encoding (7 bits per byte, continuation bit). String and byte
// fields are prefixed with a varint byte count. Nested messages are encoded
// as length-delimited fields whose payload is itself a fully encoded
// sub-message.
//
// Decoding walks tag by tag and must skip unrecognized fields without
// failing; unknown fields never break parsing. Malformed input (truncated
// varint, length prefix exceeding the remaining buffer) fails with a decode
// error that callers treat as "try another interpretation", never as fatal.
package codec

import "errors"

// WireType identifies how a field's value is encoded on the wire.
type WireType byte

const (
	// WireVarint is a variable-length integer value.
	WireVarint WireType = 0
	// WireBytes is a varint length prefix followed by raw bytes.
	WireBytes WireType = 2
)

var (
	// ErrShortBuffer is returned when fewer bytes remain than a length
	// prefix or fixed read requires.
	ErrShortBuffer = errors.New("codec: insufficient data in buffer")

	// ErrTruncatedVarint is returned when a varint's continuation bit is
	// set on the final byte of the buffer.
	ErrTruncatedVarint = errors.New("codec: truncated varint")

	// ErrUnknownWireType is returned for wire-type codes the protocol
	// does not use.
	ErrUnknownWireType = errors.New("codec: unknown wire type")
)

// maxVarintLen bounds varint reads to 64-bit values (10 bytes of 7 bits).
const maxVarintLen = 10
