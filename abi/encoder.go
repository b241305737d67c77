package abi

import (
	"strconv"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/value"
)

// Encoder lowers Values into linear memory. Every region it allocates is
// recorded in the allocation list, so a failed lowering can be unwound with
// AllocationList.Free.
type Encoder struct {
	alloc     Allocator
	allocList *AllocationList
}

func NewEncoder(alloc Allocator, allocList *AllocationList) *Encoder {
	return &Encoder{alloc: alloc, allocList: allocList}
}

// Encode allocates a slot for v, stores v in it and returns its address.
func (e *Encoder) Encode(mem Memory, v value.Value) (uint32, error) {
	addr, err := e.allocate(SlotSize, SlotAlign, nil)
	if err != nil {
		return 0, err
	}
	if err := e.Store(mem, addr, v); err != nil {
		return 0, err
	}
	return addr, nil
}

// Store writes v into the slot at addr. Strings and list items are placed
// in freshly allocated regions.
func (e *Encoder) Store(mem Memory, addr uint32, v value.Value) error {
	return e.store(mem, addr, v, nil, 0)
}

func (e *Encoder) allocate(size, align uint32, path []string) (uint32, error) {
	if e.alloc == nil {
		return 0, errors.NotInitialized(errors.PhaseEncode, "allocator")
	}
	ptr, err := e.alloc.Alloc(size, align)
	if err != nil {
		return 0, errors.New(errors.PhaseEncode, errors.KindAllocation).
			Path(path...).
			Detail("allocate %d bytes", size).
			Cause(err).
			Build()
	}
	if e.allocList != nil {
		e.allocList.Add(ptr, size, align)
	}
	return ptr, nil
}

func (e *Encoder) store(mem Memory, addr uint32, v value.Value, path []string, depth int) error {
	if depth > MaxDepth {
		return errors.Overflow(errors.PhaseEncode, path, depth, "max nesting depth")
	}

	var tag Tag
	switch v.Kind() {
	case value.KindInteger:
		tag = TagInteger
	case value.KindString:
		tag = TagString
	case value.KindList:
		tag = TagList
	case value.KindSpecial:
		tag = TagSpecial
	default:
		return errors.InvalidData(errors.PhaseEncode, path, "invalid value")
	}

	if err := mem.WriteU32(addr, uint32(tag)); err != nil {
		return err
	}
	if err := mem.WriteU32(addr+4, 0); err != nil {
		return err
	}

	switch tag {
	case TagInteger:
		return mem.WriteU64(addr+payloadOffset, uint64(v.Int()))
	case TagString:
		return e.storeString(mem, addr, v, path)
	case TagList:
		return e.storeList(mem, addr, v, path, depth)
	default:
		return mem.WriteU64(addr+payloadOffset, 0)
	}
}

func (e *Encoder) storeString(mem Memory, addr uint32, v value.Value, path []string) error {
	data := v.CString()
	n := len(data) - 1
	if n > MaxStringSize {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("string size %d exceeds maximum %d", n, MaxStringSize).
			Build()
	}

	ptr, err := e.allocate(uint32(len(data)), 1, path)
	if err != nil {
		return err
	}
	if err := mem.Write(ptr, data); err != nil {
		return err
	}
	if err := mem.WriteU32(addr+payloadOffset, ptr); err != nil {
		return err
	}
	return mem.WriteU32(addr+lengthOffset, uint32(n))
}

func (e *Encoder) storeList(mem Memory, addr uint32, v value.Value, path []string, depth int) error {
	items := v.Items()
	if len(items) > MaxListLength {
		return errors.New(errors.PhaseEncode, errors.KindOverflow).
			Path(path...).
			Detail("list length %d exceeds maximum %d", len(items), MaxListLength).
			Build()
	}

	var ptr uint32
	if len(items) > 0 {
		size, ok := safeMulU32(uint32(len(items)), SlotSize)
		if !ok {
			return errors.Overflow(errors.PhaseEncode, path, len(items), "list data size")
		}
		var err error
		if ptr, err = e.allocate(size, SlotAlign, path); err != nil {
			return err
		}
		for i, item := range items {
			itemPath := append(append([]string{}, path...), strconv.Itoa(i))
			if err := e.store(mem, ptr+uint32(i)*SlotSize, item, itemPath, depth+1); err != nil {
				return err
			}
		}
	}

	if err := mem.WriteU32(addr+payloadOffset, ptr); err != nil {
		return err
	}
	return mem.WriteU32(addr+lengthOffset, uint32(len(items)))
}
