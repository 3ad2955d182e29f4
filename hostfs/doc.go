// Package hostfs is a native asset loader over an afero filesystem.
//
// It stands in for the host's own loader: an unpacked archive directory, a
// zip-backed filesystem or an in-memory one for tests. Handles are slot
// indexes plus one, so handle.Null never names an open asset and a closed
// handle's ID comes back on a later Open.
package hostfs
