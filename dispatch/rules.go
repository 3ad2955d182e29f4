package dispatch

import (
	"strings"

	"github.com/wippyai/asset-overlay/catalog"
	"github.com/wippyai/asset-overlay/config"
)

// personaFiles are persona presets that override the classic skins.
var personaFiles = []string{
	"persona/08_Kai_Dcast.json",
	"persona/07_Zuri_Dcast.json",
	"persona/06_Efe_Dcast.json",
	"persona/05_Makena_Dcast.json",
	"persona/04_Sunny_Dcast.json",
	"persona/03_Ari_Dcast.json",
	"persona/02_ Noor_Dcast.json",
}

var particlePatterns = []string{
	"/particles/",
	"particles/",
	"/particle/",
	"particle/",
	"_particle",
	"particle_",
	".particle.",
	"particles.",
	"/effects/",
	"effects/",
	"_effect",
	"effect_",
	".effect.",
	"effects.",
}

// skinDirs are the archive directories the vanilla skin pack ships from.
var skinDirs = []string{
	"vanilla/",
	"skin_packs/vanilla/",
	"resource_packs/vanilla/",
	"assets/skin_packs/vanilla/",
}

// DefaultRedirects map archive directories to resource pack directories.
var DefaultRedirects = []Redirect{
	{From: "gui/dist/hbui/", To: "hbui/"},
	{From: "skin_packs/persona/", To: "persona/"},
	{From: "renderer/", To: "renderer/"},
	{From: "resource_packs/vanilla/cameras/", To: "vanilla_cameras/"},
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

func isPersona(req Request) bool {
	return containsAny(req.Path, personaFiles)
}

func isParticle(req Request) bool {
	p := req.Path
	return containsAny(p, particlePatterns) ||
		strings.HasPrefix(p, "particles") ||
		strings.HasSuffix(p, ".particle")
}

func isClouds(req Request) bool {
	return strings.Contains(req.Path, "clouds.png")
}

func skinFile(name string) Matcher {
	return func(req Request) bool {
		for _, dir := range skinDirs {
			if strings.Contains(req.Path, dir+name) {
				return true
			}
		}
		return false
	}
}

func named(name string) Matcher {
	return func(req Request) bool {
		return req.Filename == name
	}
}

func camera(name string) Matcher {
	return func(req Request) bool {
		return req.Filename == name && strings.Contains(req.Path, "cameras/")
	}
}

// DefaultRules returns the replacement table in evaluation order. Blocks
// come first so a blocked asset is never served.
func DefaultRules() []Rule {
	return []Rule{
		{Name: "persona", Kind: KindBlock, Feature: config.ClassicSkins, Match: isPersona},
		{Name: "particles", Kind: KindBlock, Feature: config.ParticlesDisabler, Match: isParticle},

		{Name: "splashes", Kind: KindStatic, Match: named("splashes.json"), Payload: catalog.Splashes},
		{Name: "loading_messages", Kind: KindStatic, Match: named("loading_messages.json"), Payload: catalog.LoadingMessages},

		{Name: "clouds", Kind: KindStatic, Feature: config.JavaClouds, Match: isClouds, Payload: catalog.CloudsTexture},
		{Name: "steve", Kind: KindStatic, Feature: config.ClassicSkins, Match: skinFile("steve.png"), Payload: catalog.SteveTexture},
		{Name: "alex", Kind: KindStatic, Feature: config.ClassicSkins, Match: skinFile("alex.png"), Payload: catalog.AlexTexture},

		{Name: "skins", Kind: KindStatic, Feature: config.ClassicSkins, Match: skinFile("skins.json"), Payload: catalog.Skins},

		{Name: "first_person", Kind: KindStatic, Feature: config.NoHurtCam, Match: camera("first_person.json"), Payload: catalog.FirstPersonCamera},
		{Name: "third_person", Kind: KindStatic, Feature: config.NoHurtCam, Match: camera("third_person.json"), Payload: catalog.ThirdPersonCamera},
		{Name: "third_person_front", Kind: KindStatic, Feature: config.NoHurtCam, Match: camera("third_person_front.json"), Payload: catalog.ThirdPersonFrontCamera},

		{Name: "no_fog", Kind: KindStatic, Feature: config.NoFog, Match: named("RenderChunk.material.bin"), Payload: catalog.NoFogRenderChunk, Transcode: true},
		{Name: "night_vision", Kind: KindStatic, Feature: config.NightVision, Match: named("RenderChunk.material.bin"), Payload: catalog.NightVisionRenderChunk, Transcode: true},
		{Name: "cape_animation", Kind: KindStatic, Feature: config.CapePhysics, Match: named("player.animation.json"), Payload: catalog.PlayerAnimation},
		{Name: "cape_model", Kind: KindStatic, Feature: config.CapePhysics, Match: named("mobs.json"), Payload: catalog.Mobs},
		{Name: "java_cubemap", Kind: KindStatic, Feature: config.JavaCubemap, Match: named("LegacyCubemap.material.bin"), Payload: catalog.LegacyCubemap, Transcode: true},

		{Name: "resource_packs", Kind: KindResolve, Redirects: DefaultRedirects},
	}
}
