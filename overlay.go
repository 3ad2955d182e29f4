package assetoverlay

import (
	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/config"
	"github.com/wippyai/asset-overlay/dispatch"
	"github.com/wippyai/asset-overlay/handle"
	"github.com/wippyai/asset-overlay/hostfs"
	"github.com/wippyai/asset-overlay/materialbin"
	"github.com/wippyai/asset-overlay/resolver"
	"github.com/wippyai/asset-overlay/transcoder"
	"github.com/wippyai/asset-overlay/vio"
)

type options struct {
	logger     *zap.Logger
	references transcoder.ReferenceSource
	refPaths   []string
	rules      []dispatch.Rule
	observers  []handle.Observer
}

// Option configures an Overlay.
type Option func(*options)

// WithLogger installs l in every package of the module. Loggers are package
// globals, so this affects other overlays in the same process.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithReferenceSource sets where the reference material is read from. By
// default the native loader is used if it can read whole assets.
func WithReferenceSource(src transcoder.ReferenceSource) Option {
	return func(o *options) { o.references = src }
}

// WithReferencePaths overrides the materials read to detect the host version.
func WithReferencePaths(paths ...string) Option {
	return func(o *options) { o.refPaths = paths }
}

// WithRules replaces the default rule table.
func WithRules(rules ...dispatch.Rule) Option {
	return func(o *options) { o.rules = rules }
}

// WithObserver subscribes o to handle registry events.
func WithObserver(obs handle.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, obs) }
}

// Overlay is the native asset API with content substitution. The embedded
// facade serves every call except Open.
type Overlay struct {
	*vio.Facade

	native     vio.Opener
	registry   *handle.Registry
	dispatcher *dispatch.Dispatcher
	transcoder *transcoder.Transcoder
	resolver   *resolver.Resolver
}

// New builds an overlay in front of native. A nil store disables resource
// pack lookups.
func New(native vio.Opener, features config.Features, store resolver.Store, opts ...Option) *Overlay {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		setLoggers(o.logger)
	}

	refs := o.references
	if refs == nil {
		if src, ok := native.(transcoder.ReferenceSource); ok {
			refs = src
		}
	}
	var tcOpts []transcoder.Option
	if len(o.refPaths) > 0 {
		tcOpts = append(tcOpts, transcoder.WithReferencePaths(o.refPaths...))
	}

	registry := handle.NewRegistry()
	for _, obs := range o.observers {
		registry.Subscribe(obs)
	}

	ov := &Overlay{
		Facade:     vio.NewFacade(registry, native),
		native:     native,
		registry:   registry,
		transcoder: transcoder.New(refs, tcOpts...),
	}
	if store != nil {
		ov.resolver = resolver.New(store)
	}

	dOpts := []dispatch.Option{
		dispatch.WithFeatures(features),
		dispatch.WithTranscoder(ov.transcoder),
	}
	if ov.resolver != nil {
		dOpts = append(dOpts, dispatch.WithResolver(ov.resolver))
	}
	if o.rules != nil {
		dOpts = append(dOpts, dispatch.WithRules(o.rules...))
	}
	ov.dispatcher = dispatch.New(registry, native, dOpts...)
	return ov
}

func setLoggers(l *zap.Logger) {
	vio.SetLogger(l.Named("vio"))
	hostfs.SetLogger(l.Named("hostfs"))
	transcoder.SetLogger(l.Named("transcoder"))
	resolver.SetLogger(l.Named("resolver"))
	dispatch.SetLogger(l.Named("dispatch"))
}

// Open opens path natively and runs the dispatcher on the result. It
// returns the handle the host should use, handle.Null if the asset is
// missing or blocked.
func (ov *Overlay) Open(path string, mode vio.Mode) handle.ID {
	return ov.OpenOutcome(path, mode).ID
}

// OpenOutcome is Open that also reports what the dispatcher decided.
func (ov *Overlay) OpenOutcome(path string, mode vio.Mode) dispatch.Outcome {
	id := ov.native.Open(path, mode)
	return ov.dispatcher.OnOpen(path, mode, id)
}

// Dispatcher returns the overlay's dispatcher.
func (ov *Overlay) Dispatcher() *dispatch.Dispatcher {
	return ov.dispatcher
}

// HostVersion returns the detected host material version.
func (ov *Overlay) HostVersion() materialbin.Version {
	return ov.transcoder.HostVersion()
}

// Shutdown drops every virtual buffer. Native handles are left to the host.
func (ov *Overlay) Shutdown() {
	ov.registry.Clear()
}

var _ vio.Opener = (*Overlay)(nil)
