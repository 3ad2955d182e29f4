// Package assetoverlay substitutes asset content inside a host's asset loader.
//
// The host keeps calling its usual native API: open, read, seek, length,
// buffer, close. An Overlay sits in front of that API. After every native
// open it asks the dispatcher whether the asset should be blocked, replaced
// with built-in content or served from a resource pack. Replaced handles are
// answered from memory; every other handle goes to the native loader
// unchanged.
//
// # Packages
//
//	assetoverlay/   Overlay: wires the pieces below together
//	├── handle/      virtual buffers keyed by native handle ID
//	├── vio/         native API facade and the Native contract
//	├── dispatch/    ordered rule table run after each open
//	├── resolver/    resource packs (directories or .zip/.mcpack)
//	├── transcoder/  host version detection and material transcoding
//	├── materialbin/ RenderDragon material binary decoder/encoder
//	├── catalog/     embedded replacement payloads
//	├── config/      YAML, .env and environment configuration
//	├── hostfs/      native loader over an afero filesystem
//	└── errors/      structured errors with phase and kind
//
// # Quick Start
//
//	native := hostfs.NewDir("/data/assets")
//	packs := resolver.NewPackStore(nil)
//	if err := packs.Mount("packs/hud"); err != nil {
//	    log.Fatal(err)
//	}
//
//	ov := assetoverlay.New(native, config.NewToggles(config.NoFog), packs,
//	    assetoverlay.WithLogger(logger))
//	defer ov.Shutdown()
//
//	id := ov.Open("assets/renderer/materials/RenderChunk.material.bin", vio.ModeBuffer)
//	data := ov.Buffer(id)
//	ov.Close(id)
//
// Features are read on every open, so a Toggles value may be changed while
// the overlay is in use.
package assetoverlay
