package catalog

import (
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/wippyai/asset-overlay/materialbin"
)

// PayloadVersion is the layout the material payloads are encoded in. The
// transcoder converts them when the host differs.
const PayloadVersion = materialbin.V1_21_110

var (
	noFogChunk       = sync.OnceValue(func() []byte { return mustEncode(renderChunk("NoFog", noFogFragment)) })
	nightVisionChunk = sync.OnceValue(func() []byte { return mustEncode(renderChunk("NightVision", nightVisionFragment)) })
	legacyCubemap    = sync.OnceValue(func() []byte { return mustEncode(cubemap()) })
)

// NoFogRenderChunk is a RenderChunk material whose fragment stage skips the
// fog blend.
func NoFogRenderChunk() []byte { return clone(noFogChunk()) }

// NightVisionRenderChunk is a RenderChunk material that lights every block
// as if at full sky light.
func NightVisionRenderChunk() []byte { return clone(nightVisionChunk()) }

// LegacyCubemap is a LegacyCubemap material that samples a flat sky.
func LegacyCubemap() []byte { return clone(legacyCubemap()) }

func clone(b []byte) []byte {
	return append([]byte(nil), b...)
}

func mustEncode(def *materialbin.Definition) []byte {
	data, err := def.Encode(PayloadVersion)
	if err != nil {
		panic("catalog: encode " + def.Name + ": " + err.Error())
	}
	return data
}

const chunkVertex = `#version 300 es
in vec3 a_position;
in vec4 a_color0;
in vec2 a_texcoord0;
in vec2 a_texcoord1;
uniform mat4 u_modelViewProj;
out vec4 v_color0;
out vec2 v_texcoord0;
out vec2 v_lightmapUV;
void main() {
    v_color0 = a_color0;
    v_texcoord0 = a_texcoord0;
    v_lightmapUV = a_texcoord1;
    gl_Position = u_modelViewProj * vec4(a_position, 1.0);
}
`

const noFogFragment = `#version 300 es
precision mediump float;
uniform sampler2D s_MatTexture;
uniform sampler2D s_LightMapTexture;
in vec4 v_color0;
in vec2 v_texcoord0;
in vec2 v_lightmapUV;
out vec4 fragColor;
void main() {
    vec4 diffuse = texture(s_MatTexture, v_texcoord0);
    diffuse.rgb *= texture(s_LightMapTexture, v_lightmapUV).rgb * v_color0.rgb;
    fragColor = diffuse;
}
`

const nightVisionFragment = `#version 300 es
precision mediump float;
uniform sampler2D s_MatTexture;
uniform sampler2D s_LightMapTexture;
in vec4 v_color0;
in vec2 v_texcoord0;
in vec2 v_lightmapUV;
out vec4 fragColor;
void main() {
    vec4 diffuse = texture(s_MatTexture, v_texcoord0);
    diffuse.rgb *= texture(s_LightMapTexture, vec2(v_lightmapUV.x, 1.0)).rgb * v_color0.rgb;
    fragColor = diffuse;
}
`

const cubemapVertex = `#version 300 es
in vec3 a_position;
uniform mat4 u_modelViewProj;
out vec3 v_dir;
void main() {
    v_dir = a_position;
    gl_Position = u_modelViewProj * vec4(a_position, 1.0);
}
`

const cubemapFragment = `#version 300 es
precision mediump float;
uniform vec4 SkyColor;
in vec3 v_dir;
out vec4 fragColor;
void main() {
    fragColor = vec4(SkyColor.rgb, 1.0);
}
`

var chunkInputs = []materialbin.ShaderInput{
	{Name: "a_position", Type: 1},
	{Name: "a_color0", Type: 0},
	{Name: "a_texcoord0", Type: 2},
	{Name: "a_texcoord1", Type: 2},
}

func shaders(vertex, fragment string, inputs []materialbin.ShaderInput) []materialbin.Shader {
	return []materialbin.Shader{
		{
			Stage:      materialbin.StageVertex,
			Platform:   materialbin.PlatformESSL300,
			Inputs:     inputs,
			SourceHash: sourceHash(vertex),
			Code:       []byte(vertex),
		},
		{
			Stage:      materialbin.StageFragment,
			Platform:   materialbin.PlatformESSL300,
			SourceHash: sourceHash(fragment),
			Code:       []byte(fragment),
		},
	}
}

func renderChunk(variant, fragment string) *materialbin.Definition {
	pass := func(name string) materialbin.Pass {
		return materialbin.Pass{
			Name:               name,
			SupportedPlatforms: "0000000010",
			DefaultFlags: []materialbin.Flag{
				{Key: "Instancing", Value: "Off"},
				{Key: "RenderAsBillboards", Value: "Off"},
			},
			Variants: []materialbin.Variant{{
				Supported: true,
				Flags:     []materialbin.Flag{{Key: "Seasons", Value: "Off"}},
				Shaders:   shaders(chunkVertex, fragment, chunkInputs),
			}},
		}
	}

	return &materialbin.Definition{
		Name: "RenderChunk",
		Buffers: []materialbin.Buffer{
			{
				Name:          "s_MatTexture",
				Reg1:          0,
				Reg2:          0,
				Access:        materialbin.AccessReadOnly,
				Precision:     materialbin.PrecisionLow,
				Type:          materialbin.BufferTexture2D,
				TextureFormat: "",
			},
			{
				Name:          "s_LightMapTexture",
				Reg1:          1,
				Reg2:          1,
				Access:        materialbin.AccessReadOnly,
				Precision:     materialbin.PrecisionLow,
				Type:          materialbin.BufferTexture2D,
				TextureFormat: "",
			},
		},
		Uniforms: []materialbin.Uniform{
			{Name: "FogColor", Type: materialbin.UniformVec4, Count: 1, Default: []float32{0, 0, 0, 0}},
			{Name: "FogAndDistanceControl", Type: materialbin.UniformVec4, Count: 1, Default: []float32{0, 1, 0, 0}},
			{Name: "u_modelViewProj", Type: materialbin.UniformMat4, Count: 1},
		},
		Overrides: []materialbin.UniformOverride{{Name: "Variant", Value: variant}},
		Passes: []materialbin.Pass{
			pass("Opaque"),
			pass("AlphaTest"),
			pass("Transparent"),
		},
	}
}

func cubemap() *materialbin.Definition {
	return &materialbin.Definition{
		Name: "LegacyCubemap",
		Buffers: []materialbin.Buffer{{
			Name:          "s_CubeMapTexture",
			Access:        materialbin.AccessReadOnly,
			Precision:     materialbin.PrecisionLow,
			Type:          materialbin.BufferTextureCube,
			TextureFormat: "",
		}},
		Uniforms: []materialbin.Uniform{
			{Name: "SkyColor", Type: materialbin.UniformVec4, Count: 1, Default: []float32{0.47, 0.65, 1, 1}},
			{Name: "u_modelViewProj", Type: materialbin.UniformMat4, Count: 1},
		},
		Passes: []materialbin.Pass{{
			Name:               "Transparent",
			SupportedPlatforms: "0000000010",
			Variants: []materialbin.Variant{{
				Supported: true,
				Shaders:   shaders(cubemapVertex, cubemapFragment, []materialbin.ShaderInput{{Name: "a_position", Type: 1}}),
			}},
		}},
	}
}

// sourceHash is the XXH3-64 of the shader source.
func sourceHash(src string) uint64 {
	return xxh3.HashString(src)
}
