// Package abi moves Values across a linear memory boundary.
//
// Each Value is a 16-byte slot, little-endian, 8-byte aligned:
//
//	offset  size  field
//	0       4     tag (1 integer, 2 string, 3 list, 4 special)
//	4       4     reserved, zero
//	8       8     payload
//
// Integer payloads are an i64. A String payload is a pointer and a byte
// length; the bytes are followed by a NUL so guests may treat them as C
// strings. A List payload is a pointer to count consecutive slots. Special
// has no payload.
//
// The Encoder allocates through an Allocator (the guest's own allocator
// when running under wasmhost) and records every region in an
// AllocationList. The Decoder copies everything it reads into GC memory
// through a gc.Handle, so lifted Values never alias guest memory.
//
// LinearMemory and BumpAllocator are an in-process memory and allocator for
// tests and for embedding without a wasm engine.
package abi
