package codec

// Buffer is a growable byte buffer used for field-tagged binary encoding.
type Buffer struct {
	data []byte
}

// NewBuffer returns a Buffer pre-allocated with the given capacity.
func NewBuffer(cap int) *Buffer {
	return &Buffer{data: make([]byte, 0, cap)}
}

// Bytes returns the accumulated encoded bytes.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// Len returns the number of bytes written so far.
func (b *Buffer) Len() int {
	return len(b.data)
}

// Reset clears the buffer for reuse.
func (b *Buffer) Reset() {
	b.data = b.data[:0]
}

// putVarint appends v in variable-length encoding: 7 bits per byte, high
// bit set on all but the last.
func (b *Buffer) putVarint(v uint64) {
	for v >= 0x80 {
		b.data = append(b.data, byte(v)|0x80)
		v >>= 7
	}
	b.data = append(b.data, byte(v))
}

// putTag appends the tag for the given field number and wire type.
func (b *Buffer) putTag(field int, wt WireType) {
	b.putVarint(uint64(field)<<3 | uint64(wt))
}

// WriteVarintField appends a numeric field.
func (b *Buffer) WriteVarintField(field int, v uint64) {
	b.putTag(field, WireVarint)
	b.putVarint(v)
}

// WriteBytesField appends a length-delimited byte field.
func (b *Buffer) WriteBytesField(field int, p []byte) {
	b.putTag(field, WireBytes)
	b.putVarint(uint64(len(p)))
	b.data = append(b.data, p...)
}

// WriteStringField appends a length-delimited UTF-8 string field.
func (b *Buffer) WriteStringField(field int, s string) {
	b.putTag(field, WireBytes)
	b.putVarint(uint64(len(s)))
	b.data = append(b.data, s...)
}

// WriteMessageField appends a nested message as a length-delimited field.
// encode is called with a scratch buffer to produce the sub-message payload.
func (b *Buffer) WriteMessageField(field int, encode func(*Buffer)) {
	sub := NewBuffer(64)
	encode(sub)
	b.WriteBytesField(field, sub.Bytes())
}
