package catalog

import (
	"embed"
	"path"
)

//go:embed data
var files embed.FS

func load(name string) []byte {
	data, err := files.ReadFile(path.Join("data", name))
	if err != nil {
		// embedded at build time; a miss is a packaging bug
		panic("catalog: missing " + name)
	}
	return data
}

// Splashes is the title screen splash text catalog.
func Splashes() []byte { return load("splashes.json") }

// LoadingMessages is the loading screen message catalog.
func LoadingMessages() []byte { return load("loading_messages.json") }

// Skins lists the two classic skins.
func Skins() []byte { return load("skins.json") }

// FirstPersonCamera is the first person camera preset without hurt shake.
func FirstPersonCamera() []byte { return load("cameras/first_person.json") }

// ThirdPersonCamera is the third person camera preset without hurt shake.
func ThirdPersonCamera() []byte { return load("cameras/third_person.json") }

// ThirdPersonFrontCamera is the front-facing third person preset without
// hurt shake.
func ThirdPersonFrontCamera() []byte { return load("cameras/third_person_front.json") }

// PlayerAnimation adds a swinging cape bone animation to the player.
func PlayerAnimation() []byte { return load("cape/player.animation.json") }

// Mobs is the cape geometry used by PlayerAnimation.
func Mobs() []byte { return load("cape/mobs.json") }

// SteveTexture is the classic Steve skin.
func SteveTexture() []byte { return load("textures/steve.png") }

// AlexTexture is the classic Alex skin.
func AlexTexture() []byte { return load("textures/alex.png") }

// CloudsTexture is the blocky cloud layer texture.
func CloudsTexture() []byte { return load("textures/clouds.png") }
