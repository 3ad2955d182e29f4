package vio

import (
	"io"
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/handle"
)

// Facade answers the native asset API. Handles registered in the registry are
// served from their virtual buffer; everything else goes to the native
// implementation unchanged.
type Facade struct {
	registry *handle.Registry
	native   Native
}

// NewFacade creates a facade over registry and native.
func NewFacade(registry *handle.Registry, native Native) *Facade {
	return &Facade{registry: registry, native: native}
}

// Registry returns the registry the facade consults.
func (f *Facade) Registry() *handle.Registry {
	return f.registry
}

// Read copies up to len(dst) bytes from the cursor. It returns the count
// read, 0 at end of content, or -1 on error.
func (f *Facade) Read(id handle.ID, dst []byte) int {
	n := 0
	var err error
	ok := f.registry.With(id, func(b *handle.Buffer) {
		n, err = b.Read(dst)
	})
	if !ok {
		return f.native.Read(id, dst)
	}
	if err != nil && err != io.EOF {
		Logger().Warn("virtual read failed", zap.Stringer("handle", id), zap.Error(err))
		return -1
	}
	return n
}

// Seek moves the cursor and returns the new position, or -1 if the position
// would be negative, whence is invalid or the result does not fit in 32 bits.
func (f *Facade) Seek(id handle.ID, offset int32, whence int) int32 {
	pos := int64(-1)
	ok := f.registry.With(id, func(b *handle.Buffer) {
		pos = seek(b, int64(offset), whence, math.MaxInt32)
	})
	if !ok {
		return f.native.Seek(id, offset, whence)
	}
	return int32(pos)
}

// Seek64 is Seek with 64-bit offsets.
func (f *Facade) Seek64(id handle.ID, offset int64, whence int) int64 {
	pos := int64(-1)
	ok := f.registry.With(id, func(b *handle.Buffer) {
		pos = seek(b, offset, whence, math.MaxInt64)
	})
	if !ok {
		return f.native.Seek64(id, offset, whence)
	}
	return pos
}

// seek applies a native-style seek to b. A failed seek leaves the cursor
// where it was.
func seek(b *handle.Buffer, offset int64, whence int, limit int64) int64 {
	var w int
	switch whence {
	case SeekSet:
		if offset < 0 {
			Logger().Warn("negative absolute seek", zap.Int64("offset", offset))
			return -1
		}
		w = io.SeekStart
	case SeekCur:
		w = io.SeekCurrent
	case SeekEnd:
		w = io.SeekEnd
	default:
		Logger().Warn("invalid seek whence", zap.Int("whence", whence))
		return -1
	}

	prev := b.Position()
	pos, err := b.Seek(offset, w)
	if err != nil {
		Logger().Warn("virtual seek failed", zap.Error(err))
		return -1
	}
	if pos > limit {
		_, _ = b.Seek(prev, io.SeekStart)
		Logger().Warn("seek result out of range", zap.Int64("position", pos))
		return -1
	}
	return pos
}

// Length returns the total size, or -1 if it does not fit in 32 bits.
func (f *Facade) Length(id handle.ID) int32 {
	var n int64
	if !f.registry.With(id, func(b *handle.Buffer) { n = b.Len() }) {
		return f.native.Length(id)
	}
	return saturate32(n)
}

// Length64 returns the total size.
func (f *Facade) Length64(id handle.ID) int64 {
	var n int64
	if !f.registry.With(id, func(b *handle.Buffer) { n = b.Len() }) {
		return f.native.Length64(id)
	}
	return n
}

// RemainingLength returns the bytes left after the cursor, 0 when the cursor
// is past the end, or -1 if the count does not fit in 32 bits.
func (f *Facade) RemainingLength(id handle.ID) int32 {
	var n int64
	if !f.registry.With(id, func(b *handle.Buffer) { n = b.Remaining() }) {
		return f.native.RemainingLength(id)
	}
	return saturate32(n)
}

// RemainingLength64 returns the bytes left after the cursor.
func (f *Facade) RemainingLength64(id handle.ID) int64 {
	var n int64
	if !f.registry.With(id, func(b *handle.Buffer) { n = b.Remaining() }) {
		return f.native.RemainingLength64(id)
	}
	return n
}

// Close releases id. A virtual handle's buffer is dropped and the native
// handle it shadowed is always closed too: every virtual handle id is a live
// native open, and skipping the native close would leak it for the lifetime
// of the process.
func (f *Facade) Close(id handle.ID) {
	if _, ok := f.registry.Remove(id); ok {
		Logger().Debug("virtual handle closed", zap.Stringer("handle", id))
	}
	f.native.Close(id)
}

// Buffer returns the whole content without copying. The slice is owned by
// the handle and is only valid until Close.
func (f *Facade) Buffer(id handle.ID) []byte {
	var data []byte
	if !f.registry.With(id, func(b *handle.Buffer) { data = b.Bytes() }) {
		return f.native.Buffer(id)
	}
	return data
}

// OpenFileDescriptor returns a descriptor for the asset's backing file.
// Virtual content has none, so virtual handles report -1.
func (f *Facade) OpenFileDescriptor(id handle.ID) (fd int, start, length int32) {
	if f.registry.Contains(id) {
		Logger().Error("file descriptor requested for virtual asset", zap.Stringer("handle", id))
		return -1, 0, 0
	}
	return f.native.OpenFileDescriptor(id)
}

// OpenFileDescriptor64 is OpenFileDescriptor with 64-bit offsets.
func (f *Facade) OpenFileDescriptor64(id handle.ID) (fd int, start, length int64) {
	if f.registry.Contains(id) {
		Logger().Error("file descriptor requested for virtual asset", zap.Stringer("handle", id))
		return -1, 0, 0
	}
	return f.native.OpenFileDescriptor64(id)
}

// IsAllocated reports whether the native buffer is heap allocated. Virtual
// handles report false.
func (f *Facade) IsAllocated(id handle.ID) bool {
	if f.registry.Contains(id) {
		return false
	}
	return f.native.IsAllocated(id)
}

func saturate32(n int64) int32 {
	if n > math.MaxInt32 {
		return -1
	}
	return int32(n)
}

var _ Native = (*Facade)(nil)
