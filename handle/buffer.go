package handle

import (
	"io"

	"github.com/wippyai/asset-overlay/errors"
)

// Buffer is the in-memory content served for a virtualized handle: an owned
// byte slice and a read cursor. The cursor may sit past the end; reads there
// return io.EOF.
type Buffer struct {
	data []byte
	pos  int64
}

// NewBuffer takes ownership of data.
func NewBuffer(data []byte) *Buffer {
	return &Buffer{data: data}
}

// Read copies from the cursor into p and advances the cursor.
func (b *Buffer) Read(p []byte) (int, error) {
	if b.pos >= int64(len(b.data)) {
		if len(p) == 0 {
			return 0, nil
		}
		return 0, io.EOF
	}
	n := copy(p, b.data[b.pos:])
	b.pos += int64(n)
	return n, nil
}

// Seek moves the cursor. Seeking past the end is allowed; a resulting
// negative position is an error and leaves the cursor unchanged.
func (b *Buffer) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		base = b.pos
	case io.SeekEnd:
		base = int64(len(b.data))
	default:
		return 0, errors.New(errors.PhaseSeek, errors.KindInvalidInput).
			Value(whence).
			Detail("invalid whence %d", whence).
			Build()
	}

	next := base + offset
	if (offset > 0 && next < base) || (offset < 0 && next > base) {
		return 0, errors.Overflow(errors.PhaseSeek, nil, offset, "int64 position")
	}
	if next < 0 {
		return 0, errors.New(errors.PhaseSeek, errors.KindOutOfBounds).
			Offset(next).
			Detail("seek to a negative position").
			Build()
	}
	b.pos = next
	return next, nil
}

// Len returns the total size.
func (b *Buffer) Len() int64 {
	return int64(len(b.data))
}

// Remaining returns the bytes between the cursor and the end, or 0 when the
// cursor is past the end.
func (b *Buffer) Remaining() int64 {
	if b.pos >= int64(len(b.data)) {
		return 0
	}
	return int64(len(b.data)) - b.pos
}

// Position returns the cursor.
func (b *Buffer) Position() int64 {
	return b.pos
}

// Bytes returns the backing storage without copying.
func (b *Buffer) Bytes() []byte {
	return b.data
}
