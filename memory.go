package nativeruntime

// Memory represents a linear (wasm-style) memory that Values are lowered into
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
	ReadU8(offset uint32) (uint8, error)
	ReadU32(offset uint32) (uint32, error)
	ReadU64(offset uint32) (uint64, error)
	WriteU8(offset uint32, value uint8) error
	WriteU32(offset uint32, value uint32) error
	WriteU64(offset uint32, value uint64) error
}

// MemorySizer provides the current size of linear memory in bytes.
type MemorySizer interface {
	Size() uint32
}

// MemoryGrower is implemented by memories that can grow by whole 64KiB pages.
// Grow returns the previous size in pages.
type MemoryGrower interface {
	Grow(deltaPages uint32) (uint32, bool)
}

// Allocator allocates regions of linear memory.
//
// This is the guest-side counterpart of gc.Handle: gc.Handle hands out
// collector-owned Go memory, Allocator hands out offsets into a Memory.
type Allocator interface {
	Alloc(size, align uint32) (uint32, error)
	Free(ptr, size, align uint32)
}

// PageSize is the size of one linear memory page.
const PageSize = 65536
