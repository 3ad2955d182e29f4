package materialbin

import "fmt"

// Format constants shared by every version.
const (
	Magic         uint64 = 0x0A11DA1A
	Identifier           = "RenderDragon.CompiledMaterialDefinition"
	FormatVersion uint64 = 22

	// EncryptionNone is the little-endian FourCC "NONE".
	EncryptionNone uint32 = 0x454E4F4E
	// EncryptionSimplePassphrase is the little-endian FourCC "SMPL".
	EncryptionSimplePassphrase uint32 = 0x4C504D53
	// EncryptionKeyPair is the little-endian FourCC "KYPR".
	EncryptionKeyPair uint32 = 0x5250594B
)

// Version identifies a host release whose material layout differs from its
// neighbours. The binary carries no field naming the layout; it is found by
// decoding under each candidate in AllVersions order.
type Version uint8

const (
	Unknown Version = iota
	V1_18_30
	V1_19_60
	V1_20_80
	V1_21_20
	V1_21_110
)

// AllVersions is the authoritative trial order, newest first. Two layouts
// can both accept the same bytes; the earlier entry wins.
var AllVersions = []Version{V1_21_110, V1_21_20, V1_20_80, V1_19_60, V1_18_30}

func (v Version) String() string {
	switch v {
	case V1_18_30:
		return "1.18.30"
	case V1_19_60:
		return "1.19.60"
	case V1_20_80:
		return "1.20.80"
	case V1_21_20:
		return "1.21.20"
	case V1_21_110:
		return "1.21.110"
	}
	return "unknown"
}

// Valid reports whether v is a known layout.
func (v Version) Valid() bool {
	return v >= V1_18_30 && v <= V1_21_110
}

// ParseVersion maps a release string such as "1.21.20" to its Version.
func ParseVersion(s string) (Version, error) {
	for _, v := range AllVersions {
		if v.String() == s {
			return v, nil
		}
	}
	return Unknown, fmt.Errorf("unknown material version %q", s)
}

// layout feature predicates
func (v Version) hasAlwaysOne() bool     { return v >= V1_19_60 }
func (v Version) hasBlendMode() bool     { return v >= V1_19_60 }
func (v Version) hasTexturePath() bool   { return v >= V1_20_80 }
func (v Version) hasOverrides() bool     { return v >= V1_20_80 }
func (v Version) hasFramebuffer() bool   { return v >= V1_21_20 }
func (v Version) hasSplitRegister() bool { return v >= V1_21_110 }

// BufferAccess is how a shader may touch a buffer.
type BufferAccess uint8

const (
	AccessUndefined BufferAccess = iota
	AccessReadOnly
	AccessWriteOnly
	AccessReadWrite
)

// Precision of a buffer's sampled values.
type Precision uint8

const (
	PrecisionLow Precision = iota
	PrecisionMedium
	PrecisionHigh
)

// BufferType is the resource kind bound at a register.
type BufferType uint8

const (
	BufferTexture2D BufferType = iota
	BufferTexture2DArray
	BufferExternal2D
	BufferTexture3D
	BufferTextureCube
	BufferStructBuffer
	BufferRawBuffer
	BufferAccelerationStructure
	BufferShadow2D
)

// UniformType is the value shape of a uniform.
type UniformType uint8

const (
	UniformVec4 UniformType = iota
	UniformMat3
	UniformMat4
	UniformExternal
)

// Width returns how many float32 values a default of this type holds.
func (t UniformType) Width() int {
	switch t {
	case UniformVec4:
		return 4
	case UniformMat3:
		return 9
	case UniformMat4:
		return 16
	}
	return 0
}

// ShaderStage is the pipeline stage a shader runs in.
type ShaderStage uint8

const (
	StageVertex ShaderStage = iota
	StageFragment
	StageCompute
	StageUnknown
)

// Platform is the graphics backend a shader was compiled for.
type Platform uint8

const (
	PlatformDirect3DSM40 Platform = iota
	PlatformDirect3DSM50
	PlatformDirect3DSM60
	PlatformDirect3DSM65
	PlatformDirect3DXB1
	PlatformDirect3DXBX
	PlatformGLSL120
	PlatformGLSL430
	PlatformESSL100
	PlatformESSL300
	PlatformESSL310
	PlatformMetal
)

// InputType is the attribute type of a vertex shader input.
type InputType uint8

const maxInputType InputType = 8

// Definition is a decoded material. Fields that only some layouts carry are
// zero when decoded from a layout without them.
type Definition struct {
	Name      string
	Parent    *string
	Buffers   []Buffer
	Uniforms  []Uniform
	Overrides []UniformOverride
	Passes    []Pass
}

// Buffer is a texture or buffer binding.
type Buffer struct {
	Name            string
	Reg1            uint16
	Reg2            uint16
	Access          BufferAccess
	Precision       Precision
	UnorderedAccess bool
	Type            BufferType
	TextureFormat   string
	AlwaysOne       bool
	TexturePath     *string
}

// Uniform is a shader constant, optionally with a default value.
type Uniform struct {
	Name    string
	Type    UniformType
	Count   uint32
	Default []float32
}

// UniformOverride replaces a uniform's value by name.
type UniformOverride struct {
	Name  string
	Value string
}

// Flag is a key/value pair used by passes and variants.
type Flag struct {
	Key   string
	Value string
}

// Pass is one render pass of a material.
type Pass struct {
	Name               string
	SupportedPlatforms string
	Fallback           string
	DefaultBlendMode   *uint16
	DefaultFlags       []Flag
	Variants           []Variant
	FramebufferBinding uint8
}

// Variant is a flag combination with its compiled shaders.
type Variant struct {
	Supported bool
	Flags     []Flag
	Shaders   []Shader
}

// Shader is compiled bytecode for one stage and platform.
type Shader struct {
	Stage      ShaderStage
	Platform   Platform
	Inputs     []ShaderInput
	SourceHash uint64
	Code       []byte
}

// ShaderInput is a vertex attribute consumed by a shader.
type ShaderInput struct {
	Name        string
	Type        InputType
	PerInstance bool
}
