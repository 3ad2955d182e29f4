package binary

import (
	"encoding/binary"
	stderrors "errors"
	"fmt"
	"io"
	"math"
	"unicode/utf8"

	"github.com/wippyai/asset-overlay/errors"
)

// ErrInvalidBool is returned by ReadBool for a byte other than 0 or 1.
var ErrInvalidBool = stderrors.New("bool byte is neither 0 nor 1")

// Reader decodes little-endian primitives from a byte slice with position
// tracking. Every length read from the input is checked against the bytes
// remaining before anything is allocated.
type Reader struct {
	data []byte
	pos  int
}

// NewReader creates a new Reader over data.
func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	return len(r.data) - r.pos
}

// ReadBytes reads exactly n bytes. The result aliases the input.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, r.wrapError(fmt.Errorf("negative length %d", n))
	}
	if n > r.Len() {
		if r.Len() == 0 {
			return nil, io.EOF
		}
		return nil, r.wrapError(io.ErrUnexpectedEOF)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadByte reads a single byte.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.ReadBytes(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a strict boolean byte.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadByte()
	if err != nil {
		return false, err
	}
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	r.pos--
	return false, r.wrapError(ErrInvalidBool)
}

// ReadU16LE reads a little-endian uint16.
func (r *Reader) ReadU16LE() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf), nil
}

// ReadU32LE reads a little-endian uint32.
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// ReadU64LE reads a little-endian uint64.
func (r *Reader) ReadU64LE() (uint64, error) {
	buf, err := r.ReadBytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf), nil
}

// ReadF32LE reads a little-endian IEEE 754 float32.
func (r *Reader) ReadF32LE() (float32, error) {
	bits, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(bits), nil
}

// ReadString reads a u32 length-prefixed UTF-8 string.
func (r *Reader) ReadString() (string, error) {
	start := r.pos
	length, err := r.ReadU32LE()
	if err != nil {
		return "", err
	}
	if uint64(length) > uint64(r.Len()) {
		remaining := r.Len()
		r.pos = start
		return "", r.at(errors.OutOfBounds(errors.PhaseDecode, nil, int(length), remaining))
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.at(errors.InvalidUTF8(errors.PhaseDecode, nil, data))
	}
	return string(data), nil
}

// ReadBlob reads a u32 length-prefixed byte sequence and copies it.
func (r *Reader) ReadBlob() ([]byte, error) {
	length, err := r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	if uint64(length) > uint64(r.Len()) {
		return nil, r.at(errors.OutOfBounds(errors.PhaseDecode, nil, int(length), r.Len()))
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}

// at stamps e with the current position.
func (r *Reader) at(e *errors.Error) error {
	e.Offset = int64(r.pos)
	e.HasOffset = true
	return e
}

// ParseError represents an error during binary parsing with position information.
type ParseError struct {
	Err      error
	Section  string
	Position int
}

func (e *ParseError) Error() string {
	if e.Section != "" {
		return fmt.Sprintf("materialbin: %s at position %d: %v", e.Section, e.Position, e.Err)
	}
	return fmt.Sprintf("materialbin: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError with the current position.
func (r *Reader) WrapError(section string, err error) error {
	return &ParseError{
		Position: r.pos,
		Section:  section,
		Err:      err,
	}
}
