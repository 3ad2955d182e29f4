package resolver

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/tidwall/jsonc"

	"github.com/wippyai/asset-overlay/errors"
)

// Manifest is the subset of a pack's manifest.json the store needs.
type Manifest struct {
	FormatVersion int            `json:"format_version"`
	Header        ManifestHeader `json:"header"`
	Modules       []ModuleHeader `json:"modules"`
}

// ManifestHeader identifies a pack.
type ManifestHeader struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	UUID        string `json:"uuid"`
	Version     []int  `json:"version"`
}

// ModuleHeader describes one module of a pack.
type ModuleHeader struct {
	Type    string `json:"type"`
	UUID    string `json:"uuid"`
	Version []int  `json:"version"`
}

// ParseManifest reads a manifest. Comments and trailing commas are allowed,
// as packs in the wild carry both. The header UUID must be valid.
func ParseManifest(data []byte) (*Manifest, uuid.UUID, error) {
	var m Manifest
	if err := json.Unmarshal(jsonc.ToJSON(data), &m); err != nil {
		return nil, uuid.Nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path("manifest.json").
			Cause(err).
			Build()
	}

	id, err := uuid.Parse(m.Header.UUID)
	if err != nil {
		return nil, uuid.Nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path("manifest.json", "header", "uuid").
			Value(m.Header.UUID).
			Cause(err).
			Build()
	}
	if id == uuid.Nil {
		return nil, uuid.Nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Path("manifest.json", "header", "uuid").
			Detail("nil uuid").
			Build()
	}
	return &m, id, nil
}

// VersionString formats a manifest version triple as "1.2.3".
func (h ManifestHeader) VersionString() string {
	if len(h.Version) == 0 {
		return "0.0.0"
	}
	s := fmt.Sprint(h.Version[0])
	for _, n := range h.Version[1:] {
		s += fmt.Sprintf(".%d", n)
	}
	return s
}
