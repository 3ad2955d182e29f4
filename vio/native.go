package vio

import "github.com/wippyai/asset-overlay/handle"

// Whence values accepted by Seek and Seek64.
const (
	SeekSet = 0
	SeekCur = 1
	SeekEnd = 2
)

// Mode is the access hint passed to Open.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeRandom
	ModeStreaming
	ModeBuffer
)

func (m Mode) String() string {
	switch m {
	case ModeUnknown:
		return "unknown"
	case ModeRandom:
		return "random"
	case ModeStreaming:
		return "streaming"
	case ModeBuffer:
		return "buffer"
	}
	return "invalid"
}

// Native is the host's asset API for handles it opened itself. Failures are
// reported with the host's sentinels: -1 for counts and offsets, nil for
// buffers, false for IsAllocated.
type Native interface {
	Read(id handle.ID, dst []byte) int
	Seek(id handle.ID, offset int32, whence int) int32
	Seek64(id handle.ID, offset int64, whence int) int64
	Length(id handle.ID) int32
	Length64(id handle.ID) int64
	RemainingLength(id handle.ID) int32
	RemainingLength64(id handle.ID) int64
	Close(id handle.ID)
	Buffer(id handle.ID) []byte
	OpenFileDescriptor(id handle.ID) (fd int, start, length int32)
	OpenFileDescriptor64(id handle.ID) (fd int, start, length int64)
	IsAllocated(id handle.ID) bool
}

// Opener is a Native that can also open assets by path. Open returns
// handle.Null when the asset does not exist.
type Opener interface {
	Native
	Open(path string, mode Mode) handle.ID
}
