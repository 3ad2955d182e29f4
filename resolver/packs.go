package resolver

import (
	"archive/zip"
	stderrors "errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/klauspost/compress/flate"
	"github.com/spf13/afero"
	"github.com/spf13/afero/zipfs"
	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/errors"
)

// Pack is one mounted resource pack.
type Pack struct {
	Name    string
	UUID    uuid.UUID
	Version string
	Source  string
	Archive bool

	fs     afero.Fs
	closer io.Closer
}

// PackStore is a Store over resource packs on a host filesystem. A pack is
// a directory or a .zip/.mcpack archive with manifest.json at its root.
// Packs mounted earlier take priority.
type PackStore struct {
	host  afero.Fs
	packs []*Pack
	mu    sync.RWMutex
	ready bool
}

// NewPackStore creates an empty, unready store reading packs from host.
func NewPackStore(host afero.Fs) *PackStore {
	if host == nil {
		host = afero.NewOsFs()
	}
	return &PackStore{host: host}
}

// Mount opens the packs at paths, highest priority first, and makes the
// store ready. On error nothing changes. Packs already mounted are replaced.
func (s *PackStore) Mount(paths ...string) error {
	packs := make([]*Pack, 0, len(paths))
	seen := make(map[uuid.UUID]string, len(paths))

	for _, p := range paths {
		pack, err := s.open(p)
		if err != nil {
			closePacks(packs)
			return err
		}
		if prev, dup := seen[pack.UUID]; dup {
			closePacks(append(packs, pack))
			return errors.New(errors.PhaseLoad, errors.KindConflict).
				Asset(p).
				Detail("pack %s already mounted from %s", pack.UUID, prev).
				Build()
		}
		seen[pack.UUID] = p
		packs = append(packs, pack)
		Logger().Info("pack mounted",
			zap.String("name", pack.Name),
			zap.Stringer("uuid", pack.UUID),
			zap.String("version", pack.Version),
			zap.String("source", p))
	}

	s.mu.Lock()
	old := s.packs
	s.packs = packs
	s.ready = true
	s.mu.Unlock()

	closePacks(old)
	return nil
}

// Unmount closes every pack and makes the store unready.
func (s *PackStore) Unmount() {
	s.mu.Lock()
	old := s.packs
	s.packs = nil
	s.ready = false
	s.mu.Unlock()

	closePacks(old)
}

// Packs returns the mounted packs in priority order.
func (s *PackStore) Packs() []*Pack {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]*Pack(nil), s.packs...)
}

// Ready implements Store.
func (s *PackStore) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ready
}

// Load implements Store.
func (s *PackStore) Load(loc Location) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.ready {
		return nil, errors.NotInitialized(errors.PhaseResolve, "pack store")
	}
	for _, p := range s.packs {
		data, err := afero.ReadFile(p.fs, loc.String())
		if err == nil {
			return data, nil
		}
		if stderrors.Is(err, fs.ErrNotExist) {
			continue
		}
		return nil, errors.New(errors.PhaseResolve, errors.KindInvalidData).
			Asset(loc.String()).
			Detail("pack %s", p.Name).
			Cause(err).
			Build()
	}
	return nil, ErrNotFound
}

func (s *PackStore) open(p string) (*Pack, error) {
	info, err := s.host.Stat(p)
	if err != nil {
		return nil, errors.New(errors.PhaseLoad, errors.KindNotFound).
			Asset(p).
			Cause(err).
			Build()
	}

	pack := &Pack{Source: p}
	if info.IsDir() {
		pack.fs = afero.NewReadOnlyFs(afero.NewBasePathFs(s.host, p))
	} else {
		ext := strings.ToLower(filepath.Ext(p))
		if ext != ".zip" && ext != ".mcpack" {
			e := errors.Unsupported(errors.PhaseLoad, "pack must be a directory, .zip or .mcpack")
			e.Asset = p
			return nil, e
		}
		f, err := s.host.Open(p)
		if err != nil {
			return nil, errors.Wrap(errors.PhaseLoad, errors.KindInvalidData, err, p)
		}
		zr, err := zip.NewReader(f, info.Size())
		if err != nil {
			_ = f.Close()
			return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
				Asset(p).
				Cause(err).
				Build()
		}
		zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
			return flate.NewReader(r)
		})
		pack.fs = zipfs.New(zr)
		pack.closer = f
		pack.Archive = true
	}

	raw, err := afero.ReadFile(pack.fs, "manifest.json")
	if err != nil {
		pack.close()
		return nil, errors.New(errors.PhaseLoad, errors.KindInvalidData).
			Asset(p).
			Detail("missing manifest.json").
			Cause(err).
			Build()
	}
	m, id, err := ParseManifest(raw)
	if err != nil {
		pack.close()
		var e *errors.Error
		if stderrors.As(err, &e) {
			e.Asset = p
		}
		return nil, err
	}

	pack.Name = m.Header.Name
	pack.UUID = id
	pack.Version = m.Header.VersionString()
	return pack, nil
}

func (p *Pack) close() {
	if p.closer != nil {
		if err := p.closer.Close(); err != nil {
			Logger().Debug("pack close failed", zap.String("source", p.Source), zap.Error(err))
		}
		p.closer = nil
	}
}

func closePacks(packs []*Pack) {
	for _, p := range packs {
		p.close()
	}
}

var _ Store = (*PackStore)(nil)
