package resolver

import (
	"path"
	"strings"

	"github.com/wippyai/asset-overlay/errors"
)

// Location is a normalized path inside a resource pack: forward slashes, no
// leading slash and no dot segments.
type Location struct {
	path string
}

// NewLocation normalizes p. Paths that are empty or climb out of the pack
// root are rejected.
func NewLocation(p string) (Location, error) {
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimLeft(p, "/")
	if p == "" {
		return Location{}, errors.InvalidInput(errors.PhaseResolve, "empty resource location")
	}
	clean := path.Clean(p)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return Location{}, errors.New(errors.PhaseResolve, errors.KindInvalidInput).
			Asset(p).
			Detail("location escapes the pack root").
			Build()
	}
	return Location{path: clean}, nil
}

// String returns the normalized path.
func (l Location) String() string {
	return l.path
}

// IsZero reports whether l is the zero Location.
func (l Location) IsZero() bool {
	return l.path == ""
}
