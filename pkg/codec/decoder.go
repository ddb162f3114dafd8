package codec

// Reader provides sequential, zero-copy decoding of field-tagged binary
// data. Callers loop with More/Next, read the fields they recognize, and
// Skip the rest.
type Reader struct {
	data   []byte
	offset int
}

// NewReader wraps an existing byte slice for decoding.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// More reports whether unread bytes remain.
func (r *Reader) More() bool {
	return r.offset < len(r.data)
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

// readVarint reads one variable-length integer.
func (r *Reader) readVarint() (uint64, error) {
	var v uint64
	for i := 0; i < maxVarintLen; i++ {
		if r.offset >= len(r.data) {
			return 0, ErrTruncatedVarint
		}
		b := r.data[r.offset]
		r.offset++
		v |= uint64(b&0x7f) << (7 * i)
		if b&0x80 == 0 {
			return v, nil
		}
	}
	return 0, ErrTruncatedVarint
}

// Next reads the next field tag, returning the field number and wire type.
// Callers must check More before calling.
func (r *Reader) Next() (field int, wt WireType, err error) {
	tag, err := r.readVarint()
	if err != nil {
		return 0, 0, err
	}
	wt = WireType(tag & 0x7)
	switch wt {
	case WireVarint, WireBytes:
		return int(tag >> 3), wt, nil
	default:
		return 0, 0, ErrUnknownWireType
	}
}

// ReadVarint reads a numeric field value.
func (r *Reader) ReadVarint() (uint64, error) {
	return r.readVarint()
}

// ReadBytes reads a length-delimited field value. The returned slice is a
// sub-slice of the Reader's underlying buffer (zero-copy).
func (r *Reader) ReadBytes() ([]byte, error) {
	length, err := r.readVarint()
	if err != nil {
		return nil, err
	}
	if length > uint64(r.Remaining()) {
		return nil, ErrShortBuffer
	}
	start := r.offset
	r.offset += int(length)
	return r.data[start:r.offset], nil
}

// ReadString reads a length-delimited field value as a string. The string
// holds its own copy of the data.
func (r *Reader) ReadString() (string, error) {
	p, err := r.ReadBytes()
	if err != nil {
		return "", err
	}
	return string(p), nil
}

// Skip discards the value of an unrecognized field. Unknown fields must
// not break parsing of the fields around them.
func (r *Reader) Skip(wt WireType) error {
	switch wt {
	case WireVarint:
		_, err := r.readVarint()
		return err
	case WireBytes:
		_, err := r.ReadBytes()
		return err
	default:
		return ErrUnknownWireType
	}
}
