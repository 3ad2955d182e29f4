package hostfs

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"

	"github.com/wippyai/asset-overlay/errors"
	"github.com/wippyai/asset-overlay/handle"
	"github.com/wippyai/asset-overlay/vio"
)

func newManager(t *testing.T, files map[string]string) *AssetManager {
	t.Helper()
	fsys := afero.NewMemMapFs()
	for name, content := range files {
		if err := afero.WriteFile(fsys, name, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return New(fsys)
}

func TestClean(t *testing.T) {
	tests := []struct{ in, want string }{
		{"assets/a.json", "assets/a.json"},
		{"/assets/a.json", "assets/a.json"},
		{"assets//b/../a.json", "assets/a.json"},
		{"assets\\ui\\x.png", "assets/ui/x.png"},
		{"../../etc/passwd", "etc/passwd"},
		{"", ""},
		{"/", ""},
	}
	for _, tt := range tests {
		if got := Clean(tt.in); got != tt.want {
			t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenMissing(t *testing.T) {
	m := newManager(t, map[string]string{"assets/a.txt": "a"})

	for _, name := range []string{"assets/missing.txt", "assets", "", "/"} {
		if id := m.Open(name, vio.ModeStreaming); id != handle.Null {
			t.Errorf("Open(%q) = %s, want Null", name, id)
		}
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d", m.Len())
	}
}

func TestReadSeek(t *testing.T) {
	m := newManager(t, map[string]string{"assets/a.txt": "0123456789"})
	id := m.Open("/assets/a.txt", vio.ModeStreaming)
	if id == handle.Null {
		t.Fatal("Open failed")
	}
	if name, ok := m.Name(id); !ok || name != "assets/a.txt" {
		t.Errorf("Name = %q, %v", name, ok)
	}

	dst := make([]byte, 4)
	if n := m.Read(id, dst); n != 4 || string(dst) != "0123" {
		t.Fatalf("Read = %d %q", n, dst)
	}
	if got := m.RemainingLength(id); got != 6 {
		t.Errorf("RemainingLength = %d", got)
	}
	if got := m.Seek(id, -2, vio.SeekEnd); got != 8 {
		t.Errorf("Seek(-2, end) = %d", got)
	}
	if got := m.Seek64(id, -9, vio.SeekCur); got != -1 {
		t.Errorf("Seek before start = %d, want -1", got)
	}
	if got := m.Seek(id, -1, vio.SeekSet); got != -1 {
		t.Errorf("negative absolute Seek = %d, want -1", got)
	}
	if got := m.Seek(id, 0, 5); got != -1 {
		t.Errorf("bad whence = %d, want -1", got)
	}
	if n := m.Read(id, dst); n != 2 || string(dst[:n]) != "89" {
		t.Errorf("Read after seek = %d %q", n, dst[:n])
	}
	if n := m.Read(id, dst); n != 0 {
		t.Errorf("Read at end = %d", n)
	}
	if m.Length(id) != 10 || m.Length64(id) != 10 {
		t.Errorf("Length = %d", m.Length(id))
	}

	m.Seek(id, 20, vio.SeekSet)
	if got := m.RemainingLength64(id); got != 0 {
		t.Errorf("RemainingLength64 past end = %d", got)
	}
}

func TestBufferMode(t *testing.T) {
	m := newManager(t, map[string]string{"a.bin": "payload"})

	streamed := m.Open("a.bin", vio.ModeStreaming)
	if m.IsAllocated(streamed) {
		t.Error("streaming handle reported allocated before Buffer")
	}
	if string(m.Buffer(streamed)) != "payload" {
		t.Errorf("Buffer = %q", m.Buffer(streamed))
	}
	if !m.IsAllocated(streamed) {
		t.Error("Buffer did not allocate")
	}

	buffered := m.Open("a.bin", vio.ModeBuffer)
	if !m.IsAllocated(buffered) {
		t.Error("ModeBuffer handle not allocated")
	}
	dst := make([]byte, 3)
	if n := m.Read(buffered, dst); n != 3 || string(dst) != "pay" {
		t.Errorf("Read = %d %q", n, dst)
	}
}

func TestCloseReusesSlot(t *testing.T) {
	m := newManager(t, map[string]string{"a": "a", "b": "b"})

	first := m.Open("a", vio.ModeStreaming)
	second := m.Open("b", vio.ModeStreaming)
	if first == second {
		t.Fatal("live handles share an ID")
	}

	m.Close(first)
	if m.Length64(first) != -1 {
		t.Error("closed handle still answers")
	}
	m.Close(first) // no-op

	again := m.Open("b", vio.ModeStreaming)
	if again != first {
		t.Errorf("Open after Close = %s, want reused %s", again, first)
	}
	if m.Len() != 2 {
		t.Errorf("Len = %d, want 2", m.Len())
	}
}

func TestUnknownHandle(t *testing.T) {
	m := newManager(t, nil)
	for _, id := range []handle.ID{handle.Null, 7, handle.ID(^uintptr(0))} {
		if m.Read(id, make([]byte, 1)) != -1 || m.Seek(id, 0, vio.SeekSet) != -1 ||
			m.Length(id) != -1 || m.RemainingLength(id) != -1 || m.Buffer(id) != nil ||
			m.IsAllocated(id) {
			t.Errorf("handle %s not rejected", id)
		}
		if fd, _, _ := m.OpenFileDescriptor(id); fd != -1 {
			t.Errorf("OpenFileDescriptor(%s) = %d", id, fd)
		}
		m.Close(id)
	}
}

func TestFileDescriptor(t *testing.T) {
	mem := newManager(t, map[string]string{"a": "abc"})
	id := mem.Open("a", vio.ModeStreaming)
	if fd, _, _ := mem.OpenFileDescriptor64(id); fd != -1 {
		t.Errorf("in-memory asset fd = %d, want -1", fd)
	}

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "b.txt"), []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	disk := NewDir(dir)
	id = disk.Open("b.txt", vio.ModeStreaming)
	if id == handle.Null {
		t.Fatal("Open on directory archive failed")
	}
	fd, start, length := disk.OpenFileDescriptor(id)
	if fd < 0 || start != 0 || length != 5 {
		t.Errorf("OpenFileDescriptor = %d %d %d", fd, start, length)
	}
	if err := disk.CloseAll(); err != nil {
		t.Error(err)
	}
}

func TestReadAsset(t *testing.T) {
	m := newManager(t, map[string]string{"renderer/materials/UIText.material.bin": "bin"})

	data, err := m.ReadAsset("/renderer/materials/UIText.material.bin")
	if err != nil || string(data) != "bin" {
		t.Fatalf("ReadAsset = %q, %v", data, err)
	}

	_, err = m.ReadAsset("renderer/missing")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseIO, Kind: errors.KindNotFound}) {
		t.Errorf("err = %v, want not found", err)
	}
	if m.Len() != 0 {
		t.Error("ReadAsset left a handle open")
	}
}

func TestCloseAll(t *testing.T) {
	m := newManager(t, map[string]string{"a": "a"})
	m.Open("a", vio.ModeStreaming)

	if err := m.CloseAll(); err != nil {
		t.Fatal(err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d after CloseAll", m.Len())
	}
	if id := m.Open("a", vio.ModeStreaming); id != handle.Null {
		t.Errorf("Open after CloseAll = %s", id)
	}
	if _, err := m.ReadAsset("a"); err != ErrClosed {
		t.Errorf("ReadAsset after CloseAll = %v", err)
	}
}
