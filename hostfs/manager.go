package hostfs

import (
	"bytes"
	stderrors "errors"
	"io"
	"io/fs"
	"math"
	"os"
	"path"
	"strings"
	"sync"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/errors"
	"github.com/wippyai/asset-overlay/handle"
	"github.com/wippyai/asset-overlay/vio"
)

// ErrClosed is returned by ReadAsset after Close.
var ErrClosed = errors.New(errors.PhaseIO, errors.KindNotInitialized).
	Detail("asset manager closed").
	Build()

// AssetManager is the host's native asset loader over an afero filesystem
// rooted at the asset archive. Open handles are slots in a table; a closed
// slot goes on a free list and its ID is handed out again by a later Open.
type AssetManager struct {
	fs       afero.Fs
	entries  []entry
	freeList []handle.ID
	mu       sync.Mutex
	closed   bool
}

type entry struct {
	file      afero.File
	reader    io.ReadSeeker
	name      string
	data      []byte
	size      int64
	valid     bool
	allocated bool
}

// New creates an asset manager over fsys.
func New(fsys afero.Fs) *AssetManager {
	return &AssetManager{
		fs:       fsys,
		entries:  make([]entry, 0, 64),
		freeList: make([]handle.ID, 0, 16),
	}
}

// NewDir creates an asset manager over an unpacked archive directory.
func NewDir(root string) *AssetManager {
	return New(afero.NewBasePathFs(afero.NewOsFs(), root))
}

// Fs returns the filesystem the manager reads from.
func (m *AssetManager) Fs() afero.Fs {
	return m.fs
}

// Clean normalizes an asset path: forward slashes, no leading slash, no dot
// segments. It returns "" for paths that name the archive root.
func Clean(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(path.Clean("/"+p), "/")
	return p
}

// Open opens an asset and returns its handle, or handle.Null if it does not
// exist or is a directory. ModeBuffer reads the whole asset up front.
func (m *AssetManager) Open(name string, mode vio.Mode) handle.ID {
	clean := Clean(name)
	if clean == "" {
		return handle.Null
	}

	f, err := m.fs.Open(clean)
	if err != nil {
		Logger().Debug("open failed", zap.String("path", clean), zap.Error(err))
		return handle.Null
	}
	info, err := f.Stat()
	if err != nil || info.IsDir() {
		_ = f.Close()
		return handle.Null
	}

	e := entry{
		file:   f,
		reader: f,
		name:   clean,
		size:   info.Size(),
		valid:  true,
	}
	if mode == vio.ModeBuffer {
		data, err := io.ReadAll(f)
		if err != nil {
			_ = f.Close()
			Logger().Warn("preload failed", zap.String("path", clean), zap.Error(err))
			return handle.Null
		}
		e.data = data
		e.reader = bytes.NewReader(data)
		e.size = int64(len(data))
		e.allocated = true
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		_ = f.Close()
		return handle.Null
	}

	if len(m.freeList) > 0 {
		id := m.freeList[len(m.freeList)-1]
		m.freeList = m.freeList[:len(m.freeList)-1]
		m.entries[id-1] = e
		return id
	}

	m.entries = append(m.entries, e)
	return handle.ID(len(m.entries))
}

// ReadAsset reads a whole asset without opening a handle.
func (m *AssetManager) ReadAsset(name string) ([]byte, error) {
	m.mu.Lock()
	closed := m.closed
	m.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	clean := Clean(name)
	data, err := afero.ReadFile(m.fs, clean)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			return nil, errors.NotFound(errors.PhaseIO, "asset", clean)
		}
		return nil, errors.New(errors.PhaseIO, errors.KindInvalidData).
			Asset(clean).
			Cause(err).
			Build()
	}
	return data, nil
}

// Name returns the cleaned path the handle was opened with.
func (m *AssetManager) Name(id handle.ID) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.lookup(id)
	if e == nil {
		return "", false
	}
	return e.name, true
}

// Len returns the number of open handles.
func (m *AssetManager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for _, e := range m.entries {
		if e.valid {
			count++
		}
	}
	return count
}

// lookup returns the live entry for id. Caller holds mu.
func (m *AssetManager) lookup(id handle.ID) *entry {
	if id == handle.Null || uint64(id-1) >= uint64(len(m.entries)) {
		return nil
	}
	e := &m.entries[id-1]
	if !e.valid {
		return nil
	}
	return e
}

// Read implements vio.Native.
func (m *AssetManager) Read(id handle.ID, dst []byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1
	}
	n, err := e.reader.Read(dst)
	if err != nil && err != io.EOF {
		Logger().Warn("read failed", zap.String("path", e.name), zap.Error(err))
		return -1
	}
	return n
}

// Seek implements vio.Native.
func (m *AssetManager) Seek(id handle.ID, offset int32, whence int) int32 {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1
	}
	pos := e.seek(int64(offset), whence)
	if pos > math.MaxInt32 {
		return -1
	}
	return int32(pos)
}

// Seek64 implements vio.Native.
func (m *AssetManager) Seek64(id handle.ID, offset int64, whence int) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1
	}
	return e.seek(offset, whence)
}

// seek resolves the target itself and always seeks from the start; some
// afero files accept negative positions.
func (e *entry) seek(offset int64, whence int) int64 {
	var base int64
	switch whence {
	case vio.SeekSet:
	case vio.SeekCur:
		cur, err := e.reader.Seek(0, io.SeekCurrent)
		if err != nil {
			return -1
		}
		base = cur
	case vio.SeekEnd:
		base = e.size
	default:
		return -1
	}
	target := base + offset
	if target < 0 || (offset > 0 && target < base) {
		return -1
	}
	pos, err := e.reader.Seek(target, io.SeekStart)
	if err != nil {
		return -1
	}
	return pos
}

func (e *entry) remaining() int64 {
	pos, err := e.reader.Seek(0, io.SeekCurrent)
	if err != nil {
		return -1
	}
	if pos >= e.size {
		return 0
	}
	return e.size - pos
}

// Length implements vio.Native.
func (m *AssetManager) Length(id handle.ID) int32 {
	n := m.Length64(id)
	if n > math.MaxInt32 {
		return -1
	}
	return int32(n)
}

// Length64 implements vio.Native.
func (m *AssetManager) Length64(id handle.ID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1
	}
	return e.size
}

// RemainingLength implements vio.Native.
func (m *AssetManager) RemainingLength(id handle.ID) int32 {
	n := m.RemainingLength64(id)
	if n > math.MaxInt32 {
		return -1
	}
	return int32(n)
}

// RemainingLength64 implements vio.Native.
func (m *AssetManager) RemainingLength64(id handle.ID) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1
	}
	return e.remaining()
}

// Close implements vio.Native. The slot is reused by a later Open.
func (m *AssetManager) Close(id handle.ID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return
	}
	if err := e.file.Close(); err != nil {
		Logger().Debug("close failed", zap.String("path", e.name), zap.Error(err))
	}
	*e = entry{}
	m.freeList = append(m.freeList, id)
}

// Buffer implements vio.Native. The first call on a handle that was not
// opened with ModeBuffer reads the whole asset into memory.
func (m *AssetManager) Buffer(id handle.ID) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return nil
	}
	if e.data == nil {
		data := make([]byte, e.size)
		if _, err := e.file.ReadAt(data, 0); err != nil && err != io.EOF {
			Logger().Warn("buffer read failed", zap.String("path", e.name), zap.Error(err))
			return nil
		}
		e.data = data
		e.allocated = true
	}
	return e.data
}

// OpenFileDescriptor implements vio.Native. Only assets stored as plain
// files on the host filesystem have a descriptor.
func (m *AssetManager) OpenFileDescriptor(id handle.ID) (fd int, start, length int32) {
	fd, _, n := m.OpenFileDescriptor64(id)
	if fd < 0 || n > math.MaxInt32 {
		return -1, 0, 0
	}
	return fd, 0, int32(n)
}

// OpenFileDescriptor64 implements vio.Native.
func (m *AssetManager) OpenFileDescriptor64(id handle.ID) (fd int, start, length int64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	if e == nil {
		return -1, 0, 0
	}
	f := e.file
	if bp, ok := f.(*afero.BasePathFile); ok {
		f = bp.File
	}
	osf, ok := f.(*os.File)
	if !ok {
		return -1, 0, 0
	}
	return int(osf.Fd()), 0, e.size
}

// IsAllocated implements vio.Native.
func (m *AssetManager) IsAllocated(id handle.ID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := m.lookup(id)
	return e != nil && e.allocated
}

// CloseAll closes every open handle. Later Opens fail.
func (m *AssetManager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true

	var first error
	for i := range m.entries {
		if m.entries[i].valid {
			if err := m.entries[i].file.Close(); err != nil && first == nil {
				first = err
			}
		}
	}
	m.entries = nil
	m.freeList = nil
	return first
}

var _ vio.Opener = (*AssetManager)(nil)
