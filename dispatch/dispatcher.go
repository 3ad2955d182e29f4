package dispatch

import (
	"encoding/hex"
	"strings"

	"github.com/zeebo/blake3"
	"go.uber.org/zap"

	"github.com/wippyai/asset-overlay/config"
	"github.com/wippyai/asset-overlay/handle"
	"github.com/wippyai/asset-overlay/resolver"
	"github.com/wippyai/asset-overlay/transcoder"
	"github.com/wippyai/asset-overlay/vio"
)

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithFeatures sets the toggles consulted on every open. Without it only
// rules with no feature gate apply.
func WithFeatures(f config.Features) Option {
	return func(d *Dispatcher) { d.features = f }
}

// WithResolver sets the resource pack resolver used by Resolve rules.
func WithResolver(r *resolver.Resolver) Option {
	return func(d *Dispatcher) { d.resolver = r }
}

// WithTranscoder sets the material transcoder.
func WithTranscoder(t *transcoder.Transcoder) Option {
	return func(d *Dispatcher) { d.transcoder = t }
}

// WithRules replaces DefaultRules.
func WithRules(rules ...Rule) Option {
	return func(d *Dispatcher) { d.rules = append([]Rule(nil), rules...) }
}

// Dispatcher decides, for each opened asset, whether to pass it through,
// block it or install replacement content for its handle.
type Dispatcher struct {
	registry   *handle.Registry
	native     vio.Native
	features   config.Features
	resolver   *resolver.Resolver
	transcoder *transcoder.Transcoder
	rules      []Rule
}

// New creates a dispatcher that installs content in registry and closes
// blocked handles through native.
func New(registry *handle.Registry, native vio.Native, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		registry: registry,
		native:   native,
		rules:    DefaultRules(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Rules returns a copy of the rule table in evaluation order.
func (d *Dispatcher) Rules() []Rule {
	return append([]Rule(nil), d.rules...)
}

// Match returns the first enabled rule matching path, without side effects.
func (d *Dispatcher) Match(path string) (Rule, bool) {
	req := NewRequest(path)
	if req.Filename == "" {
		return Rule{}, false
	}
	for i := range d.rules {
		r := &d.rules[i]
		if r.enabled(d.features) && r.matches(req) {
			return *r, true
		}
	}
	return Rule{}, false
}

// OnOpen runs after the native open of path returned id. The returned
// Outcome carries the handle the host should receive.
func (d *Dispatcher) OnOpen(path string, mode vio.Mode, id handle.ID) (out Outcome) {
	log := Logger().With(zap.String("path", path), zap.Stringer("handle", id))

	// A faulty matcher or payload must not take the host down with it.
	defer func() {
		if p := recover(); p != nil {
			log.Error("dispatch panicked", zap.Any("panic", p))
			out = Outcome{ID: id, Decision: PassThrough}
		}
	}()

	if id == handle.Null {
		log.Warn("native open failed, not intercepting")
		return Outcome{ID: handle.Null, Decision: PassThrough}
	}

	req := NewRequest(path)
	if req.Filename == "" {
		log.Warn("path has no file name")
		return Outcome{ID: id, Decision: PassThrough}
	}

	for i := range d.rules {
		r := &d.rules[i]
		if !r.enabled(d.features) || !r.matches(req) {
			continue
		}

		switch r.Kind {
		case KindBlock:
			d.native.Close(id)
			log.Info("asset blocked", zap.String("rule", r.Name), zap.Stringer("feature", feature(r.Feature)))
			return Outcome{ID: handle.Null, Decision: Blocked, Rule: r.Name}

		case KindStatic:
			if r.Payload == nil {
				log.Error("static rule has no payload", zap.String("rule", r.Name))
				return Outcome{ID: id, Decision: PassThrough, Rule: r.Name}
			}
			data := r.Payload()
			if r.Transcode {
				data = d.transcode(data)
			}
			return d.install(log, id, r, Replaced, data)

		case KindResolve:
			return d.resolve(log, req, id, r)
		}
	}

	log.Debug("asset passed through", zap.Stringer("mode", mode))
	return Outcome{ID: id, Decision: PassThrough}
}

func (d *Dispatcher) resolve(log *zap.Logger, req Request, id handle.ID, r *Rule) Outcome {
	miss := Outcome{ID: id, Decision: PassThrough, Rule: r.Name}

	rd, target, ok := r.redirect(req)
	if !ok {
		return miss
	}
	if d.resolver == nil {
		log.Warn("no resolver configured", zap.String("rule", r.Name))
		return miss
	}
	loc, err := resolver.NewLocation(target)
	if err != nil {
		log.Warn("bad redirect target", zap.String("target", target), zap.Error(err))
		return miss
	}

	data, found := d.resolver.Resolve(loc)
	if !found {
		log.Info("resource pack has no replacement",
			zap.String("from", rd.From),
			zap.Stringer("location", loc))
		return miss
	}
	if strings.HasSuffix(req.Filename, ".material.bin") {
		data = d.transcode(data)
	}
	return d.install(log, id, r, Resolved, data)
}

func (d *Dispatcher) transcode(data []byte) []byte {
	if d.transcoder == nil {
		return data
	}
	return d.transcoder.Apply(data)
}

func (d *Dispatcher) install(log *zap.Logger, id handle.ID, r *Rule, decision Decision, data []byte) Outcome {
	if err := d.registry.Register(id, handle.NewBuffer(data)); err != nil {
		log.Error("cannot install replacement", zap.String("rule", r.Name), zap.Error(err))
		return Outcome{ID: id, Decision: PassThrough, Rule: r.Name}
	}

	digest := Digest(data)
	log.Info("asset replaced",
		zap.String("rule", r.Name),
		zap.Stringer("decision", decision),
		zap.Int("size", len(data)),
		zap.String("blake3", digest))
	return Outcome{
		ID:       id,
		Decision: decision,
		Rule:     r.Name,
		Size:     len(data),
		Digest:   digest,
	}
}

// Digest is the hex BLAKE3-256 of data, as logged for installed content.
func Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}

type feature config.Feature

func (f feature) String() string {
	if f == "" {
		return "always"
	}
	return string(f)
}
