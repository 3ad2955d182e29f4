package transcoder

import (
	stderrors "errors"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/errors"
	"github.com/wippyai/asset-overlay/materialbin"
)

// DefaultReferencePaths are tried in order for a material whose layout
// reveals the host's version. The first path that exists is used.
var DefaultReferencePaths = []string{
	"assets/renderer/materials/UIText.material.bin",
	"renderer/materials/UIText.material.bin",
}

// ReferenceSource reads whole assets from the host archive. A missing asset
// is reported with an error matching errors.KindNotFound.
type ReferenceSource interface {
	ReadAsset(path string) ([]byte, error)
}

// Option configures a Transcoder.
type Option func(*Transcoder)

// WithReferencePaths replaces DefaultReferencePaths.
func WithReferencePaths(paths ...string) Option {
	return func(t *Transcoder) {
		t.paths = append([]string(nil), paths...)
	}
}

// Transcoder rewrites material binaries into the layout the host expects.
// The host version is detected on first use and never again.
type Transcoder struct {
	source ReferenceSource
	paths  []string
	once   sync.Once
	host   materialbin.Version
	err    error
}

// New creates a transcoder that detects the host version from source.
// A nil source leaves the host version Unknown.
func New(source ReferenceSource, opts ...Option) *Transcoder {
	t := &Transcoder{
		source: source,
		paths:  DefaultReferencePaths,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// HostVersion returns the detected host version, running detection on the
// first call. Concurrent first callers wait for the same result.
func (t *Transcoder) HostVersion() materialbin.Version {
	t.once.Do(func() {
		t.host, t.err = t.detect()
		if t.err != nil {
			Logger().Error("material transcoding disabled", zap.Error(t.err))
		} else {
			Logger().Info("host material version detected", zap.Stringer("version", t.host))
		}
	})
	return t.host
}

// Err returns why detection failed, or nil if the host version is known.
// It runs detection if HostVersion has not.
func (t *Transcoder) Err() error {
	t.HostVersion()
	return t.err
}

func (t *Transcoder) detect() (materialbin.Version, error) {
	if t.source == nil {
		return materialbin.Unknown, errors.NotInitialized(errors.PhaseDetect, "reference source")
	}

	for _, path := range t.paths {
		data, err := t.source.ReadAsset(path)
		if err != nil {
			if stderrors.Is(err, &errors.Error{Phase: errors.PhaseIO, Kind: errors.KindNotFound}) {
				continue
			}
			return materialbin.Unknown, errors.New(errors.PhaseDetect, errors.KindInvalidData).
				Asset(path).
				Detail("reference material unreadable").
				Cause(err).
				Build()
		}

		_, v, err := materialbin.Detect(data)
		if err != nil {
			return materialbin.Unknown, errors.New(errors.PhaseDetect, errors.KindUnsupported).
				Asset(path).
				Detail("reference material unparseable").
				Cause(err).
				Build()
		}
		return v, nil
	}

	return materialbin.Unknown, errors.NotFound(errors.PhaseDetect, "reference material", strings.Join(t.paths, ", "))
}

// Transcode re-encodes data for the host version. It reports false, and the
// caller should keep data as it is, when the host version is unknown, data
// is not a material this package can parse, data already matches the host
// or re-encoding fails.
func (t *Transcoder) Transcode(data []byte) ([]byte, bool) {
	host := t.HostVersion()
	if host == materialbin.Unknown {
		return nil, false
	}

	def, v, err := materialbin.Detect(data)
	if err != nil {
		Logger().Debug("material not transcoded", zap.Error(err))
		return nil, false
	}
	if v == host {
		Logger().Debug("material already matches host", zap.Stringer("version", v))
		return nil, false
	}

	out, err := def.Encode(host)
	if err != nil {
		Logger().Debug("material re-encode failed",
			zap.Stringer("from", v),
			zap.Stringer("to", host),
			zap.Error(err))
		return nil, false
	}
	Logger().Debug("material transcoded",
		zap.String("name", def.Name),
		zap.Stringer("from", v),
		zap.Stringer("to", host))
	return out, true
}

// Apply returns the transcoded form of data, or data itself when Transcode
// reports false.
func (t *Transcoder) Apply(data []byte) []byte {
	if out, ok := t.Transcode(data); ok {
		return out
	}
	return data
}
