package resolver

import (
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/errors"
)

// ErrNotFound is returned by Store.Load when no pack has the location. Any
// error matching it with errors.Is counts as a miss.
var ErrNotFound = errors.New(errors.PhaseResolve, errors.KindNotFound).
	Detail("resource not found").
	Build()

// Store is a prioritized stack of resource packs.
type Store interface {
	// Ready reports whether the store can answer lookups yet.
	Ready() bool
	// Load returns the content of the highest priority pack holding loc.
	Load(loc Location) ([]byte, error)
}

// Resolver looks up replacement content in a Store. It never caches.
type Resolver struct {
	store Store
}

// New creates a resolver over store. A nil store resolves nothing.
func New(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the content at loc and whether it was found. A found but
// empty resource is still found.
func (r *Resolver) Resolve(loc Location) ([]byte, bool) {
	if r.store == nil || !r.store.Ready() {
		Logger().Warn("resource store not ready", zap.Stringer("location", loc))
		return nil, false
	}

	data, err := r.store.Load(loc)
	if err != nil {
		if stderrors.Is(err, ErrNotFound) {
			Logger().Debug("resource not in any pack", zap.Stringer("location", loc))
		} else {
			Logger().Warn("resource load failed", zap.Stringer("location", loc), zap.Error(err))
		}
		return nil, false
	}
	if data == nil {
		data = []byte{}
	}
	return data, true
}
