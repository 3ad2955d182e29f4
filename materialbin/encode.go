package materialbin

import (
	"fmt"
	"math"

	"github.com/wippyai/asset-overlay/errors"
	"github.com/wippyai/asset-overlay/materialbin/internal/binary"
)

// Encode serializes the definition under the layout of version v. Fields the
// target layout lacks are dropped; fields it needs but the definition never
// had are written with their zero values.
func (d *Definition) Encode(v Version) ([]byte, error) {
	if !v.Valid() {
		return nil, errors.InvalidInput(errors.PhaseEncode, fmt.Sprintf("unknown version %d", v))
	}
	if err := d.check(); err != nil {
		return nil, err
	}

	w := binary.NewWriterSize(d.sizeHint())

	w.WriteU64LE(Magic)
	w.WriteString(Identifier)
	w.WriteU64LE(FormatVersion)
	w.WriteU32LE(EncryptionNone)

	w.WriteString(d.Name)
	writeOptString(w, d.Parent)

	w.Byte(uint8(len(d.Buffers)))
	for i := range d.Buffers {
		writeBuffer(w, &d.Buffers[i], v)
	}

	w.WriteU16LE(uint16(len(d.Uniforms)))
	for i := range d.Uniforms {
		writeUniform(w, &d.Uniforms[i])
	}

	if v.hasOverrides() {
		w.WriteU16LE(uint16(len(d.Overrides)))
		for _, o := range d.Overrides {
			w.WriteString(o.Name)
			w.WriteString(o.Value)
		}
	}

	w.WriteU16LE(uint16(len(d.Passes)))
	for i := range d.Passes {
		writePass(w, &d.Passes[i], v)
	}

	w.WriteU64LE(Magic)
	return w.Bytes(), nil
}

// check rejects definitions the layout cannot represent.
func (d *Definition) check() error {
	if len(d.Buffers) > math.MaxUint8 {
		return errors.Overflow(errors.PhaseEncode, []string{"buffers"}, len(d.Buffers), "u8")
	}
	if len(d.Uniforms) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, []string{"uniforms"}, len(d.Uniforms), "u16")
	}
	if len(d.Overrides) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, []string{"overrides"}, len(d.Overrides), "u16")
	}
	if len(d.Passes) > math.MaxUint16 {
		return errors.Overflow(errors.PhaseEncode, []string{"passes"}, len(d.Passes), "u16")
	}
	for _, b := range d.Buffers {
		if b.Access > AccessReadWrite {
			return errors.InvalidEnum(errors.PhaseEncode, []string{"buffers", b.Name}, b.Access, "buffer access")
		}
		if b.Precision > PrecisionHigh {
			return errors.InvalidEnum(errors.PhaseEncode, []string{"buffers", b.Name}, b.Precision, "precision")
		}
		if b.Type > BufferShadow2D {
			return errors.InvalidEnum(errors.PhaseEncode, []string{"buffers", b.Name}, b.Type, "buffer type")
		}
	}
	for _, u := range d.Uniforms {
		if u.Type > UniformExternal {
			return errors.InvalidEnum(errors.PhaseEncode, []string{"uniforms", u.Name}, u.Type, "uniform type")
		}
		if u.Default != nil && len(u.Default) != u.Type.Width() {
			return errors.New(errors.PhaseEncode, errors.KindInvalidData).
				Path("uniforms", u.Name).
				Detail("default has %d values, type needs %d", len(u.Default), u.Type.Width()).
				Build()
		}
	}
	for _, p := range d.Passes {
		if len(p.DefaultFlags) > math.MaxUint16 || len(p.Variants) > math.MaxUint16 {
			return errors.Overflow(errors.PhaseEncode, []string{"passes", p.Name}, len(p.Variants), "u16")
		}
		for _, c := range p.SupportedPlatforms {
			if c != '0' && c != '1' {
				return errors.InvalidData(errors.PhaseEncode, []string{"passes", p.Name}, fmt.Sprintf("platform bitset %q", p.SupportedPlatforms))
			}
		}
		for _, v := range p.Variants {
			if len(v.Flags) > math.MaxUint16 || len(v.Shaders) > math.MaxUint16 {
				return errors.Overflow(errors.PhaseEncode, []string{"passes", p.Name, "variants"}, len(v.Shaders), "u16")
			}
			for _, s := range v.Shaders {
				if s.Stage > StageUnknown || s.Platform > PlatformMetal {
					return errors.InvalidEnum(errors.PhaseEncode, []string{"passes", p.Name, "shaders"}, s.Stage, "shader stage/platform")
				}
				for _, in := range s.Inputs {
					if in.Type > maxInputType {
						return errors.InvalidEnum(errors.PhaseEncode, []string{"passes", p.Name, "inputs", in.Name}, in.Type, "input type")
					}
				}
			}
		}
	}
	return nil
}

func (d *Definition) sizeHint() int {
	n := 128
	for _, p := range d.Passes {
		for _, v := range p.Variants {
			for _, s := range v.Shaders {
				n += len(s.Code) + 32
			}
		}
	}
	return n
}

func writeOptString(w *binary.Writer, s *string) {
	if s == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	w.WriteString(*s)
}

func writeFlags(w *binary.Writer, flags []Flag) {
	w.WriteU16LE(uint16(len(flags)))
	for _, f := range flags {
		w.WriteString(f.Key)
		w.WriteString(f.Value)
	}
}

func writeBuffer(w *binary.Writer, b *Buffer, v Version) {
	if v.hasAlwaysOne() {
		w.Bool(b.AlwaysOne)
	}
	w.WriteString(b.Name)
	w.WriteU16LE(b.Reg1)
	if v.hasSplitRegister() {
		w.WriteU16LE(b.Reg2)
	}
	w.Byte(uint8(b.Access))
	w.Byte(uint8(b.Precision))
	w.Bool(b.UnorderedAccess)
	w.Byte(uint8(b.Type))
	w.WriteString(b.TextureFormat)
	if v.hasTexturePath() {
		writeOptString(w, b.TexturePath)
	}
}

func writeUniform(w *binary.Writer, u *Uniform) {
	w.WriteString(u.Name)
	w.Byte(uint8(u.Type))
	w.WriteU32LE(u.Count)
	if u.Default == nil {
		w.Bool(false)
		return
	}
	w.Bool(true)
	for _, f := range u.Default {
		w.WriteF32LE(f)
	}
}

func writePass(w *binary.Writer, p *Pass, v Version) {
	w.WriteString(p.Name)
	w.WriteString(p.SupportedPlatforms)
	w.WriteString(p.Fallback)
	if v.hasBlendMode() {
		if p.DefaultBlendMode == nil {
			w.Bool(false)
		} else {
			w.Bool(true)
			w.WriteU16LE(*p.DefaultBlendMode)
		}
	}
	writeFlags(w, p.DefaultFlags)
	w.WriteU16LE(uint16(len(p.Variants)))
	for i := range p.Variants {
		writeVariant(w, &p.Variants[i])
	}
	if v.hasFramebuffer() {
		w.Byte(p.FramebufferBinding)
	}
}

func writeVariant(w *binary.Writer, vr *Variant) {
	w.Bool(vr.Supported)
	writeFlags(w, vr.Flags)
	w.WriteU16LE(uint16(len(vr.Shaders)))
	for i := range vr.Shaders {
		s := &vr.Shaders[i]
		w.Byte(uint8(s.Stage))
		w.Byte(uint8(s.Platform))
		w.WriteU16LE(uint16(len(s.Inputs)))
		for _, in := range s.Inputs {
			w.WriteString(in.Name)
			w.Byte(uint8(in.Type))
			w.Bool(in.PerInstance)
		}
		w.WriteU64LE(s.SourceHash)
		w.WriteBlob(s.Code)
	}
}
