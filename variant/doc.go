// Package variant encodes sum types as tagged Lists.
//
// The value model has no sum-type variant, so discriminated unions cross the
// native boundary in a structural form recognised by shape:
//
//	[Special, TypeName, CaseName, payload...]
//
// Option is the canonical instance:
//
//	[Special, "Option", "None"]
//	[Special, "Option", "Some", payload]
//
// Inside Go code natives use the Option type and only encode at the
// boundary. Consumers decode by List length and the literal names at
// indices 1 and 2, never by a dedicated tag.
package variant
