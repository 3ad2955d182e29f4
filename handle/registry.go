package handle

import (
	"sync"

	"github.com/wippyai/asset-overlay/errors"
)

// Errors returned by Register.
var (
	ErrNullHandle        = errors.InvalidInput(errors.PhaseDispatch, "cannot register the null handle")
	ErrAlreadyRegistered = errors.Conflict(errors.PhaseDispatch, "handle is already registered")
)

// Registry maps handle IDs to virtual buffers. Every operation runs under a
// single mutex, so no caller observes a partial update. Entries live until
// Remove or Clear; nothing is evicted.
type Registry struct {
	entries   map[ID]*Buffer
	observers []Observer
	mu        sync.Mutex
	obsMu     sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[ID]*Buffer, 16),
	}
}

// Register installs buf under id. An id that is still registered is
// rejected and its existing entry kept.
func (r *Registry) Register(id ID, buf *Buffer) error {
	if id == Null {
		return ErrNullHandle
	}
	if buf == nil {
		buf = NewBuffer(nil)
	}

	r.mu.Lock()
	if _, exists := r.entries[id]; exists {
		r.mu.Unlock()
		return ErrAlreadyRegistered
	}
	r.entries[id] = buf
	size := len(buf.data)
	r.mu.Unlock()

	r.notify(Event{Type: EventRegistered, ID: id, Size: size})
	return nil
}

// With runs fn on the buffer registered under id while holding the lock and
// reports whether the id was registered. fn must not retain the buffer or
// call back into the registry.
func (r *Registry) With(id ID, fn func(*Buffer)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	buf, ok := r.entries[id]
	if !ok {
		return false
	}
	fn(buf)
	return true
}

// Contains reports whether id is registered.
func (r *Registry) Contains(id ID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.entries[id]
	return ok
}

// Remove deletes the entry for id and returns its buffer.
func (r *Registry) Remove(id ID) (*Buffer, bool) {
	r.mu.Lock()
	buf, ok := r.entries[id]
	if ok {
		delete(r.entries, id)
	}
	r.mu.Unlock()

	if !ok {
		return nil, false
	}
	r.notify(Event{Type: EventRemoved, ID: id, Size: len(buf.data)})
	return buf, true
}

// Len returns the number of registered handles.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Clear removes every entry.
func (r *Registry) Clear() {
	// Collect ids first so observers run without the lock held
	r.mu.Lock()
	ids := make([]ID, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	for _, id := range ids {
		r.Remove(id)
	}
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer. o must be of a comparable type; an
// ObserverFunc cannot be unsubscribed.
func (r *Registry) Unsubscribe(o Observer) {
	r.obsMu.Lock()
	defer r.obsMu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.obsMu.RLock()
	defer r.obsMu.RUnlock()
	for _, o := range r.observers {
		o.OnHandleEvent(e)
	}
}
