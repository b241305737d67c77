package abi

import (
	"math"

	nativeruntime "github.com/wippyai/native-runtime"
)

type Memory = nativeruntime.Memory
type Allocator = nativeruntime.Allocator

// Slot layout. Every Value occupies one 16-byte, 8-aligned slot:
//
//	0..4   tag
//	4..8   reserved, zero
//	8..16  payload
const (
	SlotSize  = 16
	SlotAlign = 8

	payloadOffset = 8
	lengthOffset  = 12
)

// Tag identifies the Value kind stored in a slot.
type Tag uint32

const (
	TagInteger Tag = 1
	TagString  Tag = 2
	TagList    Tag = 3
	TagSpecial Tag = 4
)

func (t Tag) String() string {
	switch t {
	case TagInteger:
		return "integer"
	case TagString:
		return "string"
	case TagList:
		return "list"
	case TagSpecial:
		return "special"
	default:
		return "unknown"
	}
}

// Safety limits for data read from or written to guest memory.
const (
	MaxStringSize = 16 << 20 // 16 MB
	MaxListLength = 1 << 20  // 1M elements
	MaxDepth      = 64
)

func safeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func safeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

func alignTo(offset, align uint32) uint32 {
	if align == 0 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}
