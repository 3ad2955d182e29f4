package handle

import (
	stderrors "errors"
	"io"
	"sync"
	"testing"

	"github.com/wippyai/asset-overlay/errors"
)

func TestBufferRead(t *testing.T) {
	b := NewBuffer([]byte("hello world"))

	p := make([]byte, 5)
	n, err := b.Read(p)
	if err != nil || n != 5 || string(p) != "hello" {
		t.Fatalf("Read = %d, %v, %q", n, err, p[:n])
	}
	if b.Remaining() != 6 {
		t.Errorf("Remaining = %d, want 6", b.Remaining())
	}

	p = make([]byte, 32)
	n, err = b.Read(p)
	if err != nil || n != 6 || string(p[:n]) != " world" {
		t.Fatalf("Read = %d, %v, %q", n, err, p[:n])
	}

	n, err = b.Read(p)
	if n != 0 || err != io.EOF {
		t.Errorf("Read at end = %d, %v, want 0, EOF", n, err)
	}

	n, err = b.Read(nil)
	if n != 0 || err != nil {
		t.Errorf("Read(nil) at end = %d, %v, want 0, nil", n, err)
	}
}

func TestBufferSeek(t *testing.T) {
	data := []byte("0123456789")
	size := int64(len(data))

	tests := []struct {
		name    string
		start   int64
		offset  int64
		whence  int
		want    int64
		wantErr errors.Kind
	}{
		{"start", 4, 2, io.SeekStart, 2, ""},
		{"current forward", 4, 3, io.SeekCurrent, 7, ""},
		{"current back", 4, -4, io.SeekCurrent, 0, ""},
		{"end", 0, -3, io.SeekEnd, 7, ""},
		{"past end", 0, 5, io.SeekEnd, 15, ""},
		{"negative start", 4, -1, io.SeekStart, 0, errors.KindOutOfBounds},
		{"negative current", 4, -5, io.SeekCurrent, 0, errors.KindOutOfBounds},
		{"bad whence", 4, 0, 7, 0, errors.KindInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuffer(data)
			if _, err := b.Seek(tt.start, io.SeekStart); err != nil {
				t.Fatal(err)
			}

			got, err := b.Seek(tt.offset, tt.whence)
			if tt.wantErr != "" {
				if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseSeek, Kind: tt.wantErr}) {
					t.Fatalf("err = %v, want kind %s", err, tt.wantErr)
				}
				if b.Position() != tt.start {
					t.Errorf("failed seek moved cursor to %d", b.Position())
				}
				return
			}
			if err != nil {
				t.Fatalf("Seek: %v", err)
			}
			if got != tt.want || b.Position() != tt.want {
				t.Errorf("Seek = %d (pos %d), want %d", got, b.Position(), tt.want)
			}
			if b.Len() != size {
				t.Errorf("Len changed to %d", b.Len())
			}
		})
	}
}

func TestBufferSeekOverflow(t *testing.T) {
	b := NewBuffer([]byte("x"))
	if _, err := b.Seek(1<<62, io.SeekStart); err != nil {
		t.Fatal(err)
	}
	_, err := b.Seek(1<<62, io.SeekCurrent)
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseSeek, Kind: errors.KindOverflow}) {
		t.Errorf("err = %v, want overflow", err)
	}
}

func TestBufferRemainingAfterSeek(t *testing.T) {
	data := make([]byte, 64)
	b := NewBuffer(data)
	for k := int64(0); k <= int64(len(data)); k++ {
		if _, err := b.Seek(k, io.SeekStart); err != nil {
			t.Fatal(err)
		}
		if got := b.Remaining(); got != int64(len(data))-k {
			t.Fatalf("Remaining after Seek(%d) = %d", k, got)
		}
	}

	if _, err := b.Seek(0, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining at end = %d", b.Remaining())
	}

	if _, err := b.Seek(10, io.SeekEnd); err != nil {
		t.Fatal(err)
	}
	if b.Remaining() != 0 {
		t.Errorf("Remaining past end = %d", b.Remaining())
	}
}

func TestRegistryRegister(t *testing.T) {
	r := NewRegistry()

	if err := r.Register(Null, NewBuffer(nil)); err != ErrNullHandle {
		t.Errorf("Register(Null) = %v, want ErrNullHandle", err)
	}
	if r.Len() != 0 {
		t.Fatalf("Len = %d after rejected register", r.Len())
	}

	if err := r.Register(0x10, NewBuffer([]byte("first"))); err != nil {
		t.Fatal(err)
	}
	if err := r.Register(0x10, NewBuffer([]byte("second"))); err != ErrAlreadyRegistered {
		t.Errorf("duplicate Register = %v, want ErrAlreadyRegistered", err)
	}

	var got string
	ok := r.With(0x10, func(b *Buffer) { got = string(b.Bytes()) })
	if !ok || got != "first" {
		t.Errorf("With = %v, %q; existing entry must be kept", ok, got)
	}
}

func TestRegistryNilBuffer(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(1, nil); err != nil {
		t.Fatal(err)
	}
	var size int64 = -1
	r.With(1, func(b *Buffer) { size = b.Len() })
	if size != 0 {
		t.Errorf("Len = %d, want 0", size)
	}
}

func TestRegistryWithUnknown(t *testing.T) {
	r := NewRegistry()
	called := false
	if r.With(0x99, func(*Buffer) { called = true }) {
		t.Error("With reported an unregistered id")
	}
	if called {
		t.Error("callback ran for an unregistered id")
	}
}

func TestRegistryRemove(t *testing.T) {
	r := NewRegistry()
	_ = r.Register(1, NewBuffer([]byte("abc")))

	buf, ok := r.Remove(1)
	if !ok || string(buf.Bytes()) != "abc" {
		t.Fatalf("Remove = %v, %v", buf, ok)
	}
	if r.Contains(1) {
		t.Error("id still present after Remove")
	}
	if _, ok := r.Remove(1); ok {
		t.Error("second Remove succeeded")
	}

	// A removed id may be reused by a later open.
	if err := r.Register(1, NewBuffer([]byte("def"))); err != nil {
		t.Errorf("re-Register after Remove: %v", err)
	}
}

func TestRegistryClear(t *testing.T) {
	r := NewRegistry()
	for i := ID(1); i <= 5; i++ {
		_ = r.Register(i, NewBuffer([]byte{byte(i)}))
	}
	r.Clear()
	if r.Len() != 0 {
		t.Errorf("Len = %d after Clear", r.Len())
	}
}

type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) OnHandleEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func TestRegistryObservers(t *testing.T) {
	r := NewRegistry()
	rec := &recorder{}
	r.Subscribe(rec)

	_ = r.Register(7, NewBuffer(make([]byte, 12)))
	_ = r.Register(7, NewBuffer(nil)) // rejected, no event
	r.Remove(7)
	r.Remove(7) // absent, no event

	want := []Event{
		{ID: 7, Size: 12, Type: EventRegistered},
		{ID: 7, Size: 12, Type: EventRemoved},
	}
	if len(rec.events) != len(want) {
		t.Fatalf("events = %v, want %v", rec.events, want)
	}
	for i := range want {
		if rec.events[i] != want[i] {
			t.Errorf("event %d = %+v, want %+v", i, rec.events[i], want[i])
		}
	}

	r.Unsubscribe(rec)
	_ = r.Register(8, NewBuffer(nil))
	if len(rec.events) != 2 {
		t.Error("observer received events after Unsubscribe")
	}
}

func TestRegistryObserverFunc(t *testing.T) {
	r := NewRegistry()
	var types []EventType
	r.Subscribe(ObserverFunc(func(e Event) { types = append(types, e.Type) }))

	_ = r.Register(3, NewBuffer(nil))
	r.Clear()

	if len(types) != 2 || types[0] != EventRegistered || types[1] != EventRemoved {
		t.Errorf("types = %v", types)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	const workers = 16
	const perWorker = 200

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			p := make([]byte, 4)
			for i := 0; i < perWorker; i++ {
				id := ID(w*perWorker + i + 1)
				if err := r.Register(id, NewBuffer([]byte("data"))); err != nil {
					t.Errorf("Register(%s): %v", id, err)
					return
				}
				r.With(id, func(b *Buffer) { _, _ = b.Read(p) })
				if i%2 == 0 {
					r.Remove(id)
				}
			}
		}(w)
	}
	wg.Wait()

	if got, want := r.Len(), workers*perWorker/2; got != want {
		t.Errorf("Len = %d, want %d", got, want)
	}
}

func TestIDString(t *testing.T) {
	if got := ID(0x1f).String(); got != "0x1f" {
		t.Errorf("String = %q", got)
	}
	if EventRemoved.String() != "removed" || EventType(9).String() != "unknown" {
		t.Error("EventType.String mismatch")
	}
}
