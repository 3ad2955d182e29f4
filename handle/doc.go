// Package handle tracks which native asset handles are being served from
// memory.
//
// When the dispatcher decides to substitute an asset's content it registers
// a Buffer under the handle the native open returned. From then on every
// read, seek and length query for that ID is answered from the buffer, and
// an ID that is not registered is passed through to the native loader.
//
//	reg := handle.NewRegistry()
//	if err := reg.Register(id, handle.NewBuffer(payload)); err != nil {
//	    // id is null or still registered from an earlier open
//	}
//
//	reg.With(id, func(b *handle.Buffer) {
//	    n, _ = b.Read(dst)
//	})
//
//	reg.Remove(id) // on close
//
// # Locking
//
// A Registry has one mutex. With holds it for the duration of the callback,
// which should be a bounded copy or cursor update; never call a resolver or
// transcoder from inside it. Two goroutines reading the same ID at once is a
// caller error, just as it is for the native API.
//
// # Observers
//
// Subscribe to be told when buffers are registered or removed:
//
//	reg.Subscribe(handle.ObserverFunc(func(e handle.Event) {
//	    log.Printf("%s %s (%d bytes)", e.ID, e.Type, e.Size)
//	}))
//
// Events are delivered after the registry lock is released.
//
// # Memory
//
// Buffers are not evicted. A handle the host never closes keeps its buffer
// until Clear.
package handle
