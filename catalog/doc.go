// Package catalog holds the replacement payloads the dispatcher installs:
// JSON documents, textures and material binaries. Every accessor returns a
// fresh copy the caller may keep.
package catalog
