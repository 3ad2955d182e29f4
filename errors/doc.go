// Package errors provides structured error types for the asset overlay.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type carries context: field path inside a material definition, the
// asset path, the byte offset, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindInvalidEnum).
//		Path("passes", "Transparent", "variants").
//		Asset("renderer/materials/RenderChunk.material.bin").
//		Offset(412).
//		Detail("shader stage 7").
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.InvalidEnum(errors.PhaseDecode, path, 7, "shader stage")
//	err := errors.OutOfBounds(errors.PhaseDecode, path, 10, 5)
//
// Sentinel return values (-1, a null handle) exist only at the native call
// boundary; everything below it returns these errors.
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
