package materialbin

import (
	stderrors "errors"
	"fmt"

	"github.com/wippyai/asset-overlay/errors"
	"github.com/wippyai/asset-overlay/materialbin/internal/binary"
)

// Decode parses data under the layout of version v. The whole input must be
// consumed; trailing bytes are an error.
func Decode(data []byte, v Version) (*Definition, error) {
	if !v.Valid() {
		return nil, errors.InvalidInput(errors.PhaseDecode, fmt.Sprintf("unknown version %d", v))
	}
	d := &decoder{r: binary.NewReader(data), v: v}
	def, err := d.definition()
	if err != nil {
		return nil, err
	}
	if d.r.Len() != 0 {
		return nil, d.fail(errors.KindInvalidData, "%d trailing bytes", d.r.Len())
	}
	return def, nil
}

// Detect decodes data under each version in AllVersions order and returns
// the first that succeeds. The returned error is the one from the last
// attempted layout.
func Detect(data []byte) (*Definition, Version, error) {
	var lastErr error
	for _, v := range AllVersions {
		def, err := Decode(data, v)
		if err == nil {
			return def, v, nil
		}
		lastErr = err
	}
	return nil, Unknown, errors.Wrap(errors.PhaseDecode, errors.KindUnsupported, lastErr, "no known material layout matches")
}

type decoder struct {
	r    *binary.Reader
	v    Version
	path []string
}

func (d *decoder) push(seg string) { d.path = append(d.path, seg) }
func (d *decoder) pop()            { d.path = d.path[:len(d.path)-1] }

func (d *decoder) fail(kind errors.Kind, msg string, args ...any) error {
	return errors.New(errors.PhaseDecode, kind).
		Path(append([]string(nil), d.path...)...).
		Offset(int64(d.r.Position())).
		Detail(msg, args...).
		Build()
}

// wrap adds the field path to a reader error, keeping its kind when the
// reader already classified it.
func (d *decoder) wrap(err error) error {
	kind := errors.KindInvalidData
	var e *errors.Error
	if stderrors.As(err, &e) {
		kind = e.Kind
	}
	return errors.New(errors.PhaseDecode, kind).
		Path(append([]string(nil), d.path...)...).
		Offset(int64(d.r.Position())).
		Cause(err).
		Build()
}

func (d *decoder) u8() (uint8, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, d.wrap(err)
	}
	return b, nil
}

func (d *decoder) u16() (uint16, error) {
	v, err := d.r.ReadU16LE()
	if err != nil {
		return 0, d.wrap(err)
	}
	return v, nil
}

func (d *decoder) u32() (uint32, error) {
	v, err := d.r.ReadU32LE()
	if err != nil {
		return 0, d.wrap(err)
	}
	return v, nil
}

func (d *decoder) u64() (uint64, error) {
	v, err := d.r.ReadU64LE()
	if err != nil {
		return 0, d.wrap(err)
	}
	return v, nil
}

func (d *decoder) boolean() (bool, error) {
	v, err := d.r.ReadBool()
	if err != nil {
		return false, d.wrap(err)
	}
	return v, nil
}

func (d *decoder) str() (string, error) {
	s, err := d.r.ReadString()
	if err != nil {
		return "", d.wrap(err)
	}
	return s, nil
}

func (d *decoder) optStr() (*string, error) {
	present, err := d.boolean()
	if err != nil || !present {
		return nil, err
	}
	s, err := d.str()
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// enum reads a byte and rejects values above max.
func (d *decoder) enum(max uint8, name string) (uint8, error) {
	b, err := d.u8()
	if err != nil {
		return 0, err
	}
	if b > max {
		return 0, d.fail(errors.KindInvalidEnum, "%s %d", name, b)
	}
	return b, nil
}

func (d *decoder) definition() (*Definition, error) {
	d.push("header")
	magic, err := d.u64()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, d.fail(errors.KindInvalidData, "magic %#x", magic)
	}
	ident, err := d.str()
	if err != nil {
		return nil, err
	}
	if ident != Identifier {
		return nil, d.fail(errors.KindInvalidData, "identifier %q", ident)
	}
	format, err := d.u64()
	if err != nil {
		return nil, err
	}
	if format != FormatVersion {
		return nil, d.fail(errors.KindUnsupported, "format version %d", format)
	}
	enc, err := d.u32()
	if err != nil {
		return nil, err
	}
	if enc != EncryptionNone {
		return nil, d.fail(errors.KindUnsupported, "encryption %#x", enc)
	}
	d.pop()

	def := &Definition{}
	if def.Name, err = d.str(); err != nil {
		return nil, err
	}
	if def.Parent, err = d.optStr(); err != nil {
		return nil, err
	}

	d.push("buffers")
	nbuf, err := d.u8()
	if err != nil {
		return nil, err
	}
	def.Buffers = make([]Buffer, 0, nbuf)
	for i := 0; i < int(nbuf); i++ {
		b, err := d.buffer()
		if err != nil {
			return nil, err
		}
		def.Buffers = append(def.Buffers, b)
	}
	d.pop()

	d.push("uniforms")
	nuni, err := d.u16()
	if err != nil {
		return nil, err
	}
	def.Uniforms = make([]Uniform, 0, min(int(nuni), d.r.Len()))
	for i := 0; i < int(nuni); i++ {
		u, err := d.uniform()
		if err != nil {
			return nil, err
		}
		def.Uniforms = append(def.Uniforms, u)
	}
	d.pop()

	if d.v.hasOverrides() {
		d.push("overrides")
		n, err := d.u16()
		if err != nil {
			return nil, err
		}
		for i := 0; i < int(n); i++ {
			name, err := d.str()
			if err != nil {
				return nil, err
			}
			value, err := d.str()
			if err != nil {
				return nil, err
			}
			def.Overrides = append(def.Overrides, UniformOverride{Name: name, Value: value})
		}
		d.pop()
	}

	d.push("passes")
	npass, err := d.u16()
	if err != nil {
		return nil, err
	}
	def.Passes = make([]Pass, 0, min(int(npass), d.r.Len()))
	for i := 0; i < int(npass); i++ {
		p, err := d.pass()
		if err != nil {
			return nil, err
		}
		def.Passes = append(def.Passes, p)
	}
	d.pop()

	d.push("footer")
	end, err := d.u64()
	if err != nil {
		return nil, err
	}
	if end != Magic {
		return nil, d.fail(errors.KindInvalidData, "closing magic %#x", end)
	}
	d.pop()

	return def, nil
}

func (d *decoder) buffer() (Buffer, error) {
	var b Buffer
	var err error

	if d.v.hasAlwaysOne() {
		if b.AlwaysOne, err = d.boolean(); err != nil {
			return b, err
		}
	}
	if b.Name, err = d.str(); err != nil {
		return b, err
	}
	d.push(b.Name)
	defer d.pop()

	if b.Reg1, err = d.u16(); err != nil {
		return b, err
	}
	if d.v.hasSplitRegister() {
		if b.Reg2, err = d.u16(); err != nil {
			return b, err
		}
	} else {
		b.Reg2 = b.Reg1
	}

	access, err := d.enum(uint8(AccessReadWrite), "buffer access")
	if err != nil {
		return b, err
	}
	b.Access = BufferAccess(access)

	precision, err := d.enum(uint8(PrecisionHigh), "precision")
	if err != nil {
		return b, err
	}
	b.Precision = Precision(precision)

	if b.UnorderedAccess, err = d.boolean(); err != nil {
		return b, err
	}

	typ, err := d.enum(uint8(BufferShadow2D), "buffer type")
	if err != nil {
		return b, err
	}
	b.Type = BufferType(typ)

	if b.TextureFormat, err = d.str(); err != nil {
		return b, err
	}
	if d.v.hasTexturePath() {
		if b.TexturePath, err = d.optStr(); err != nil {
			return b, err
		}
	}
	return b, nil
}

func (d *decoder) uniform() (Uniform, error) {
	var u Uniform
	var err error

	if u.Name, err = d.str(); err != nil {
		return u, err
	}
	d.push(u.Name)
	defer d.pop()

	typ, err := d.enum(uint8(UniformExternal), "uniform type")
	if err != nil {
		return u, err
	}
	u.Type = UniformType(typ)

	if u.Count, err = d.u32(); err != nil {
		return u, err
	}

	hasDefault, err := d.boolean()
	if err != nil {
		return u, err
	}
	if hasDefault {
		width := u.Type.Width()
		if width == 0 {
			return u, d.fail(errors.KindInvalidData, "external uniform with default value")
		}
		u.Default = make([]float32, width)
		for i := range u.Default {
			f, err := d.r.ReadF32LE()
			if err != nil {
				return u, d.wrap(err)
			}
			u.Default[i] = f
		}
	}
	return u, nil
}

func (d *decoder) flags() ([]Flag, error) {
	n, err := d.u16()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	// every flag needs at least two length prefixes
	if int(n)*8 > d.r.Len() {
		return nil, d.fail(errors.KindOutOfBounds, "%d flags exceed %d remaining bytes", n, d.r.Len())
	}
	out := make([]Flag, 0, n)
	for i := 0; i < int(n); i++ {
		key, err := d.str()
		if err != nil {
			return nil, err
		}
		value, err := d.str()
		if err != nil {
			return nil, err
		}
		out = append(out, Flag{Key: key, Value: value})
	}
	return out, nil
}

func (d *decoder) pass() (Pass, error) {
	var p Pass
	var err error

	if p.Name, err = d.str(); err != nil {
		return p, err
	}
	d.push(p.Name)
	defer d.pop()

	if p.SupportedPlatforms, err = d.str(); err != nil {
		return p, err
	}
	for _, c := range p.SupportedPlatforms {
		if c != '0' && c != '1' {
			return p, d.fail(errors.KindInvalidData, "platform bitset %q", p.SupportedPlatforms)
		}
	}
	if p.Fallback, err = d.str(); err != nil {
		return p, err
	}
	if d.v.hasBlendMode() {
		present, err := d.boolean()
		if err != nil {
			return p, err
		}
		if present {
			mode, err := d.u16()
			if err != nil {
				return p, err
			}
			p.DefaultBlendMode = &mode
		}
	}
	if p.DefaultFlags, err = d.flags(); err != nil {
		return p, err
	}

	nvar, err := d.u16()
	if err != nil {
		return p, err
	}
	p.Variants = make([]Variant, 0, min(int(nvar), d.r.Len()))
	for i := 0; i < int(nvar); i++ {
		d.push(fmt.Sprintf("variant[%d]", i))
		v, err := d.variant()
		d.pop()
		if err != nil {
			return p, err
		}
		p.Variants = append(p.Variants, v)
	}

	if d.v.hasFramebuffer() {
		if p.FramebufferBinding, err = d.u8(); err != nil {
			return p, err
		}
	}
	return p, nil
}

func (d *decoder) variant() (Variant, error) {
	var v Variant
	var err error

	if v.Supported, err = d.boolean(); err != nil {
		return v, err
	}
	if v.Flags, err = d.flags(); err != nil {
		return v, err
	}
	n, err := d.u16()
	if err != nil {
		return v, err
	}
	v.Shaders = make([]Shader, 0, min(int(n), d.r.Len()))
	for i := 0; i < int(n); i++ {
		s, err := d.shader()
		if err != nil {
			return v, err
		}
		v.Shaders = append(v.Shaders, s)
	}
	return v, nil
}

func (d *decoder) shader() (Shader, error) {
	var s Shader

	stage, err := d.enum(uint8(StageUnknown), "shader stage")
	if err != nil {
		return s, err
	}
	s.Stage = ShaderStage(stage)

	platform, err := d.enum(uint8(PlatformMetal), "shader platform")
	if err != nil {
		return s, err
	}
	s.Platform = Platform(platform)

	n, err := d.u16()
	if err != nil {
		return s, err
	}
	for i := 0; i < int(n); i++ {
		var in ShaderInput
		if in.Name, err = d.str(); err != nil {
			return s, err
		}
		typ, err := d.enum(uint8(maxInputType), "input type")
		if err != nil {
			return s, err
		}
		in.Type = InputType(typ)
		if in.PerInstance, err = d.boolean(); err != nil {
			return s, err
		}
		s.Inputs = append(s.Inputs, in)
	}

	if s.SourceHash, err = d.u64(); err != nil {
		return s, err
	}
	code, err := d.r.ReadBlob()
	if err != nil {
		return s, d.wrap(err)
	}
	s.Code = code
	return s, nil
}
