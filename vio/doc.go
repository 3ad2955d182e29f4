// Package vio implements the host's asset I/O surface on top of a handle
// registry.
//
// Every call takes the handle the host received from its open. If the
// handle has a virtual buffer registered, the call is answered from that
// buffer using the same sentinels the native API uses; otherwise it is
// forwarded to the Native implementation untouched:
//
//	f := vio.NewFacade(registry, native)
//	n := f.Read(id, dst)          // -1 on error, 0 at end
//	pos := f.Seek(id, 0, vio.SeekEnd)
//	f.Close(id)
//
// Virtual handles have no file descriptor and are never reported as
// allocated. Close drops the virtual buffer and then closes the native
// handle it replaced.
package vio
