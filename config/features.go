package config

import (
	"sort"
	"sync"

	"github.com/wippyai/asset-overlay/errors"
)

// Feature names a user-facing toggle that gates replacement rules.
type Feature string

const (
	NoHurtCam         Feature = "no_hurt_cam"
	NoFog             Feature = "no_fog"
	JavaCubemap       Feature = "java_cubemap"
	ParticlesDisabler Feature = "particles_disabler"
	JavaClouds        Feature = "java_clouds"
	ClassicSkins      Feature = "classic_skins"
	CapePhysics       Feature = "cape_physics"
	NightVision       Feature = "night_vision"
)

// AllFeatures lists every known feature.
var AllFeatures = []Feature{
	NoHurtCam,
	NoFog,
	JavaCubemap,
	ParticlesDisabler,
	JavaClouds,
	ClassicSkins,
	CapePhysics,
	NightVision,
}

// Valid reports whether f is a known feature.
func (f Feature) Valid() bool {
	for _, known := range AllFeatures {
		if f == known {
			return true
		}
	}
	return false
}

// Features answers whether a feature is currently on. Implementations must
// be safe for concurrent use; callers read it on every decision.
type Features interface {
	Enabled(f Feature) bool
}

// Toggles is a live, concurrency-safe feature set.
type Toggles struct {
	on map[Feature]bool
	mu sync.RWMutex
}

// NewToggles creates a set with the given features on.
func NewToggles(enabled ...Feature) *Toggles {
	t := &Toggles{on: make(map[Feature]bool, len(AllFeatures))}
	for _, f := range enabled {
		t.on[f] = true
	}
	return t
}

// Set turns f on or off.
func (t *Toggles) Set(f Feature, on bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.on[f] = on
}

// Enabled implements Features.
func (t *Toggles) Enabled(f Feature) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.on[f]
}

// Snapshot returns a copy of the current state of every known feature.
func (t *Toggles) Snapshot() map[Feature]bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make(map[Feature]bool, len(AllFeatures))
	for _, f := range AllFeatures {
		out[f] = t.on[f]
	}
	return out
}

// EnabledList returns the features that are on, sorted by name.
func (t *Toggles) EnabledList() []Feature {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Feature
	for f, on := range t.on {
		if on {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ Features = (*Toggles)(nil)

// ParseFeatures parses a comma separated feature list such as
// "no_fog,classic_skins". "all" selects every feature.
func ParseFeatures(s string) ([]Feature, error) {
	var out []Feature
	for _, name := range splitList(s) {
		if name == "all" {
			return append([]Feature(nil), AllFeatures...), nil
		}
		f := Feature(name)
		if !f.Valid() {
			return nil, errors.New(errors.PhaseConfig, errors.KindInvalidInput).
				Value(name).
				Detail("unknown feature %q", name).
				Build()
		}
		out = append(out, f)
	}
	return out, nil
}
