package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"

	ovlerrors "github.com/wippyai/asset-overlay/errors"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(data)

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	if r.Position() != 3 {
		t.Errorf("final position: got %d, want 3", r.Position())
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadBytes(t *testing.T) {
	r := NewReader([]byte{0x01, 0x02, 0x03, 0x04, 0x05})

	got, err := r.ReadBytes(3)
	if err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	if !bytes.Equal(got, []byte{0x01, 0x02, 0x03}) {
		t.Errorf("ReadBytes: got %v, want [1 2 3]", got)
	}
	if r.Len() != 2 {
		t.Errorf("Len: got %d, want 2", r.Len())
	}

	_, err = r.ReadBytes(10)
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	if r.Position() != 3 {
		t.Errorf("failed read moved position to %d", r.Position())
	}

	if _, err := r.ReadBytes(-1); err == nil {
		t.Error("expected error for negative length")
	}
}

func TestReaderFixedWidth(t *testing.T) {
	w := NewWriter()
	w.WriteU16LE(0xBEEF)
	w.WriteU32LE(0xDEADBEEF)
	w.WriteU64LE(0x0A11DA1A)
	w.WriteF32LE(0.025)
	w.Bool(true)
	w.Bool(false)

	r := NewReader(w.Bytes())
	u16, err := r.ReadU16LE()
	if err != nil || u16 != 0xBEEF {
		t.Fatalf("ReadU16LE = %x, %v", u16, err)
	}
	u32, err := r.ReadU32LE()
	if err != nil || u32 != 0xDEADBEEF {
		t.Fatalf("ReadU32LE = %x, %v", u32, err)
	}
	u64, err := r.ReadU64LE()
	if err != nil || u64 != 0x0A11DA1A {
		t.Fatalf("ReadU64LE = %x, %v", u64, err)
	}
	f, err := r.ReadF32LE()
	if err != nil || f != 0.025 {
		t.Fatalf("ReadF32LE = %v, %v", f, err)
	}
	b1, err := r.ReadBool()
	if err != nil || !b1 {
		t.Fatalf("ReadBool = %v, %v", b1, err)
	}
	b2, err := r.ReadBool()
	if err != nil || b2 {
		t.Fatalf("ReadBool = %v, %v", b2, err)
	}
	if r.Len() != 0 {
		t.Errorf("trailing bytes: %d", r.Len())
	}
}

func TestReaderLittleEndianLayout(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x454E4F4E)
	if got := string(w.Bytes()); got != "NONE" {
		t.Errorf("encryption tag bytes = %q, want NONE", got)
	}
}

func TestReaderReadBoolStrict(t *testing.T) {
	r := NewReader([]byte{0x02})
	_, err := r.ReadBool()
	if !errors.Is(err, ErrInvalidBool) {
		t.Fatalf("expected ErrInvalidBool, got %v", err)
	}
	if r.Position() != 0 {
		t.Errorf("position after rejected bool: got %d, want 0", r.Position())
	}
}

func TestReaderReadString(t *testing.T) {
	w := NewWriter()
	w.WriteString("RenderChunk")
	w.WriteString("")

	r := NewReader(w.Bytes())
	s, err := r.ReadString()
	if err != nil || s != "RenderChunk" {
		t.Fatalf("ReadString = %q, %v", s, err)
	}
	s, err = r.ReadString()
	if err != nil || s != "" {
		t.Fatalf("ReadString empty = %q, %v", s, err)
	}
}

func TestReaderReadStringRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		kind ovlerrors.Kind // "" for a plain truncation error
		pos  int64
	}{
		{"length past end", []byte{0xff, 0xff, 0xff, 0xff, 'a'}, ovlerrors.KindOutOfBounds, 0},
		{"short length", []byte{0x05, 0x00}, "", 0},
		{"invalid utf8", []byte{0x02, 0x00, 0x00, 0x00, 0xff, 0xfe}, ovlerrors.KindInvalidUTF8, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(tt.data)
			_, err := r.ReadString()
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.kind == "" {
				return
			}
			var e *ovlerrors.Error
			if !errors.As(err, &e) {
				t.Fatalf("expected *errors.Error, got %T: %v", err, err)
			}
			if e.Kind != tt.kind || e.Phase != ovlerrors.PhaseDecode {
				t.Errorf("error = %s/%s, want decode/%s", e.Phase, e.Kind, tt.kind)
			}
			if !e.HasOffset || e.Offset != tt.pos {
				t.Errorf("offset = %d (set %v), want %d", e.Offset, e.HasOffset, tt.pos)
			}
		})
	}
}

func TestReaderReadBlobPastEnd(t *testing.T) {
	r := NewReader([]byte{0x10, 0x00, 0x00, 0x00, 0x01})
	_, err := r.ReadBlob()
	if !errors.Is(err, &ovlerrors.Error{Phase: ovlerrors.PhaseDecode, Kind: ovlerrors.KindOutOfBounds}) {
		t.Fatalf("expected out of bounds, got %v", err)
	}
}

func TestReaderReadBlobCopies(t *testing.T) {
	w := NewWriter()
	w.WriteBlob([]byte{1, 2, 3})
	raw := w.Bytes()

	r := NewReader(raw)
	blob, err := r.ReadBlob()
	if err != nil {
		t.Fatalf("ReadBlob: %v", err)
	}
	raw[4] = 9
	if blob[0] != 1 {
		t.Error("ReadBlob result aliases the input")
	}
}

func TestParseError(t *testing.T) {
	r := NewReader([]byte{0x01})
	_, _ = r.ReadByte()
	err := r.WrapError("header", io.ErrUnexpectedEOF)

	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 1 || pe.Section != "header" {
		t.Errorf("ParseError = %+v", pe)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ParseError should unwrap to its cause")
	}
}

func TestWriterSize(t *testing.T) {
	w := NewWriterSize(64)
	w.Byte(0xAA)
	w.WriteBytes([]byte{0xBB, 0xCC})
	if w.Len() != 3 {
		t.Errorf("Len = %d, want 3", w.Len())
	}
	if !bytes.Equal(w.Bytes(), []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("Bytes = %x", w.Bytes())
	}
}
