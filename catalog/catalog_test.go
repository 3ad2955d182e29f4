package catalog

import (
	"bytes"
	"encoding/json"
	"image/png"
	"testing"

	"github.com/zeebo/xxh3"

	"github.com/wippyai/asset-overlay/materialbin"
)

func TestJSONPayloads(t *testing.T) {
	payloads := map[string][]byte{
		"splashes":           Splashes(),
		"loading_messages":   LoadingMessages(),
		"skins":              Skins(),
		"first_person":       FirstPersonCamera(),
		"third_person":       ThirdPersonCamera(),
		"third_person_front": ThirdPersonFrontCamera(),
		"player_animation":   PlayerAnimation(),
		"mobs":               Mobs(),
	}
	for name, data := range payloads {
		if len(data) == 0 || !json.Valid(data) {
			t.Errorf("%s is not valid JSON", name)
		}
	}

	var splashes struct {
		Splashes []string `json:"splashes"`
	}
	if err := json.Unmarshal(Splashes(), &splashes); err != nil || len(splashes.Splashes) == 0 {
		t.Errorf("splashes = %v, %v", splashes, err)
	}

	var skins struct {
		Skins []struct {
			Texture string `json:"texture"`
		} `json:"skins"`
	}
	if err := json.Unmarshal(Skins(), &skins); err != nil {
		t.Fatal(err)
	}
	if len(skins.Skins) != 2 || skins.Skins[0].Texture != "steve.png" || skins.Skins[1].Texture != "alex.png" {
		t.Errorf("skins = %+v", skins)
	}
}

func TestCameraPresets(t *testing.T) {
	for name, data := range map[string][]byte{
		"minecraft:first_person":       FirstPersonCamera(),
		"minecraft:third_person":       ThirdPersonCamera(),
		"minecraft:third_person_front": ThirdPersonFrontCamera(),
	} {
		var doc struct {
			Entity struct {
				Description struct {
					Identifier string `json:"identifier"`
				} `json:"description"`
			} `json:"minecraft:camera_entity"`
		}
		if err := json.Unmarshal(data, &doc); err != nil {
			t.Fatal(err)
		}
		if doc.Entity.Description.Identifier != name {
			t.Errorf("identifier = %q, want %q", doc.Entity.Description.Identifier, name)
		}
	}
}

func TestTextures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		w, h int
	}{
		{"steve", SteveTexture(), 64, 64},
		{"alex", AlexTexture(), 64, 64},
		{"clouds", CloudsTexture(), 256, 256},
	}
	for _, tt := range tests {
		img, err := png.Decode(bytes.NewReader(tt.data))
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if b := img.Bounds(); b.Dx() != tt.w || b.Dy() != tt.h {
			t.Errorf("%s is %dx%d", tt.name, b.Dx(), b.Dy())
		}
	}
}

func TestMaterials(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want string
	}{
		{"no fog", NoFogRenderChunk(), "RenderChunk"},
		{"night vision", NightVisionRenderChunk(), "RenderChunk"},
		{"cubemap", LegacyCubemap(), "LegacyCubemap"},
	}
	for _, tt := range tests {
		def, v, err := materialbin.Detect(tt.data)
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if v != PayloadVersion {
			t.Errorf("%s detected as %s", tt.name, v)
		}
		if def.Name != tt.want {
			t.Errorf("%s name = %q", tt.name, def.Name)
		}
	}

	if bytes.Equal(NoFogRenderChunk(), NightVisionRenderChunk()) {
		t.Error("no-fog and night-vision payloads are identical")
	}
}

func TestShaderSourceHash(t *testing.T) {
	def, _, err := materialbin.Detect(NoFogRenderChunk())
	if err != nil {
		t.Fatal(err)
	}
	n := 0
	for _, p := range def.Passes {
		for _, v := range p.Variants {
			for _, sh := range v.Shaders {
				n++
				if want := xxh3.Hash(sh.Code); sh.SourceHash != want {
					t.Errorf("pass %q stage %d hash = %#x, want %#x", p.Name, sh.Stage, sh.SourceHash, want)
				}
			}
		}
	}
	if n == 0 {
		t.Fatal("no shaders decoded")
	}
}

func TestMaterialsTranscodeToOldest(t *testing.T) {
	def, _, err := materialbin.Detect(NoFogRenderChunk())
	if err != nil {
		t.Fatal(err)
	}
	old, err := def.Encode(materialbin.V1_18_30)
	if err != nil {
		t.Fatal(err)
	}
	if _, v, err := materialbin.Detect(old); err != nil || v != materialbin.V1_18_30 {
		t.Errorf("re-encoded payload detected as %s, %v", v, err)
	}
}

func TestAccessorsReturnCopies(t *testing.T) {
	a := Splashes()
	a[0] = 'X'
	if Splashes()[0] == 'X' {
		t.Error("Splashes shares storage")
	}
	m := LegacyCubemap()
	m[0] ^= 0xff
	if bytes.Equal(m, LegacyCubemap()) {
		t.Error("LegacyCubemap shares storage")
	}
}
