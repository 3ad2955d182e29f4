// Package materialbin reads and writes compiled RenderDragon material
// definitions (*.material.bin).
//
// The container looks the same in every host release: a magic number, the
// identifier string, a format number that has stayed at 22, and the
// encryption tag. What changes between releases is the layout of the body:
// fields are added to buffers and passes, and registers were split in two.
// Nothing in the file says which layout it uses, so a reader has to try each
// one:
//
//	def, version, err := materialbin.Detect(data)
//	if err != nil {
//	    // not a material, encrypted, or a layout this package does not know
//	}
//
// Decoding is strict. Booleans must be 0 or 1, enums must be in range,
// strings must be UTF-8 and fit in the input, the closing magic must be
// present and nothing may follow it. A buffer decoded under the wrong layout
// therefore fails instead of producing a plausible but wrong definition.
//
// # Versions
//
//	V1_18_30   base layout
//	V1_19_60   + buffer always_one flag, + pass default blend mode
//	V1_20_80   + buffer texture path, + uniform overrides
//	V1_21_20   + pass framebuffer binding
//	V1_21_110  buffer register split into reg1/reg2
//
// AllVersions lists them newest first. That order is authoritative: when two
// layouts accept the same bytes the first one wins.
//
// # Re-encoding
//
// A decoded definition can be written under any version:
//
//	out, err := def.Encode(materialbin.V1_19_60)
//
// Encoding to an older layout drops the fields it does not have. Encoding to
// a newer one writes defaults (reg2 copies reg1, optional fields absent,
// framebuffer binding 0).
package materialbin
