package dispatch

import (
	"strings"

	"github.com/wippyai/asset-overlay/config"
	"github.com/wippyai/asset-overlay/handle"
)

// Kind is what a rule does when it matches.
type Kind uint8

const (
	// KindBlock closes the native handle and reports the asset as missing.
	KindBlock Kind = iota
	// KindStatic serves a fixed payload.
	KindStatic
	// KindResolve serves content from a resource pack, if one has it.
	KindResolve
)

func (k Kind) String() string {
	switch k {
	case KindBlock:
		return "block"
	case KindStatic:
		return "static"
	case KindResolve:
		return "resolve"
	}
	return "unknown"
}

// Decision is what happened to an open.
type Decision uint8

const (
	PassThrough Decision = iota
	Blocked
	Replaced
	Resolved
)

func (d Decision) String() string {
	switch d {
	case PassThrough:
		return "pass-through"
	case Blocked:
		return "blocked"
	case Replaced:
		return "replaced"
	case Resolved:
		return "resolved"
	}
	return "unknown"
}

// Request is an opened path split the ways rules look at it.
type Request struct {
	// Path as the host passed it.
	Path string
	// Stripped is Path without a leading "assets/".
	Stripped string
	// Filename is the last path component.
	Filename string
}

// NewRequest splits p. Filename is empty when p has no final component,
// as for "", "/" or a path ending in "..".
func NewRequest(p string) Request {
	return Request{
		Path:     p,
		Stripped: strings.TrimPrefix(p, "assets/"),
		Filename: filename(p),
	}
}

func filename(p string) string {
	p = strings.TrimRight(p, "/")
	if p == "" {
		return ""
	}
	name := p[strings.LastIndexByte(p, '/')+1:]
	if name == "." || name == ".." {
		return ""
	}
	return name
}

// Matcher reports whether a rule applies to a request.
type Matcher func(Request) bool

// Redirect maps an archive directory to a resource pack directory.
type Redirect struct {
	From string
	To   string
}

// Rule is one entry of the ordered replacement table.
type Rule struct {
	Name string
	Kind Kind
	// Feature gates the rule; empty means always on.
	Feature config.Feature
	// Match selects requests. Resolve rules without one match any request
	// whose stripped path starts with a redirect source.
	Match Matcher
	// Payload produces the content of a Static rule.
	Payload func() []byte
	// Transcode runs a Static payload through the material transcoder.
	Transcode bool
	// Redirects of a Resolve rule, tried in order.
	Redirects []Redirect
}

func (r *Rule) enabled(features config.Features) bool {
	if r.Feature == "" {
		return true
	}
	return features != nil && features.Enabled(r.Feature)
}

func (r *Rule) matches(req Request) bool {
	if r.Match != nil {
		return r.Match(req)
	}
	if r.Kind == KindResolve {
		_, _, ok := r.redirect(req)
		return ok
	}
	return false
}

// redirect returns the first redirect whose source prefixes req.Stripped,
// and the rewritten pack path.
func (r *Rule) redirect(req Request) (Redirect, string, bool) {
	for _, rd := range r.Redirects {
		if rest, ok := strings.CutPrefix(req.Stripped, rd.From); ok {
			return rd, rd.To + rest, true
		}
	}
	return Redirect{}, "", false
}

// Outcome reports what OnOpen did.
type Outcome struct {
	// ID is the handle to return to the host: the original, or handle.Null
	// when blocked.
	ID       handle.ID
	Decision Decision
	// Rule is the name of the rule that decided, empty for pass-through
	// without a match.
	Rule string
	// Size and Digest describe the installed content.
	Size   int
	Digest string
}
