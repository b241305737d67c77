package abi

import (
	"encoding/binary"
	"sync"

	nativeruntime "github.com/wippyai/native-runtime"
	"github.com/wippyai/native-runtime/errors"
)

type Allocation struct {
	Ptr   uint32
	Size  uint32
	Align uint32
}

// AllocationList records guest allocations made while lowering a Value so
// they can be returned if the lowering fails part way.
type AllocationList struct {
	allocations []Allocation
}

var allocationListPool = sync.Pool{
	New: func() any {
		return &AllocationList{allocations: make([]Allocation, 0, 8)}
	},
}

func NewAllocationList() *AllocationList {
	return allocationListPool.Get().(*AllocationList)
}

const maxPooledAllocationCapacity = 128

// Release returns the list to the pool. The list is invalid afterwards.
func (al *AllocationList) Release() {
	if cap(al.allocations) > maxPooledAllocationCapacity {
		return
	}
	al.Reset()
	allocationListPool.Put(al)
}

func (al *AllocationList) FreeAndRelease(allocator Allocator) {
	al.Free(allocator)
	al.Release()
}

func (al *AllocationList) Add(ptr, size, align uint32) {
	al.allocations = append(al.allocations, Allocation{
		Ptr:   ptr,
		Size:  size,
		Align: align,
	})
}

func (al *AllocationList) Free(allocator Allocator) {
	if allocator == nil {
		return
	}
	for _, a := range al.allocations {
		if a.Ptr != 0 {
			allocator.Free(a.Ptr, a.Size, a.Align)
		}
	}
}

func (al *AllocationList) Reset() {
	al.allocations = al.allocations[:0]
}

func (al *AllocationList) Count() int {
	return len(al.allocations)
}

// Bytes returns the total size of the recorded allocations.
func (al *AllocationList) Bytes() uint64 {
	var n uint64
	for _, a := range al.allocations {
		n += uint64(a.Size)
	}
	return n
}

// LinearMemory is an in-process Memory backed by a Go slice. It grows in
// whole pages up to an optional maximum.
type LinearMemory struct {
	data     []byte
	maxPages uint32
}

// NewLinearMemory creates a memory of pages pages. maxPages of 0 means no
// limit beyond the 4 GiB address space.
func NewLinearMemory(pages, maxPages uint32) *LinearMemory {
	return &LinearMemory{
		data:     make([]byte, uint64(pages)*nativeruntime.PageSize),
		maxPages: maxPages,
	}
}

func (m *LinearMemory) Size() uint32 {
	return uint32(len(m.data))
}

func (m *LinearMemory) Grow(deltaPages uint32) (uint32, bool) {
	prev := uint32(uint64(len(m.data)) / nativeruntime.PageSize)
	next := uint64(prev) + uint64(deltaPages)
	if next > 65536 || (m.maxPages > 0 && next > uint64(m.maxPages)) {
		return prev, false
	}
	grown := make([]byte, next*nativeruntime.PageSize)
	copy(grown, m.data)
	m.data = grown
	return prev, true
}

func (m *LinearMemory) check(offset, length uint32) error {
	end, ok := safeAddU32(offset, length)
	if !ok || uint64(end) > uint64(len(m.data)) {
		return errors.New(errors.PhaseHost, errors.KindOutOfBounds).
			Detail("memory access [%d, %d) outside %d bytes", offset, uint64(offset)+uint64(length), len(m.data)).
			Build()
	}
	return nil
}

func (m *LinearMemory) Read(offset, length uint32) ([]byte, error) {
	if err := m.check(offset, length); err != nil {
		return nil, err
	}
	return m.data[offset : offset+length], nil
}

func (m *LinearMemory) Write(offset uint32, data []byte) error {
	if err := m.check(offset, uint32(len(data))); err != nil {
		return err
	}
	copy(m.data[offset:], data)
	return nil
}

func (m *LinearMemory) ReadU8(offset uint32) (uint8, error) {
	if err := m.check(offset, 1); err != nil {
		return 0, err
	}
	return m.data[offset], nil
}

func (m *LinearMemory) ReadU32(offset uint32) (uint32, error) {
	if err := m.check(offset, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(m.data[offset:]), nil
}

func (m *LinearMemory) ReadU64(offset uint32) (uint64, error) {
	if err := m.check(offset, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(m.data[offset:]), nil
}

func (m *LinearMemory) WriteU8(offset uint32, value uint8) error {
	if err := m.check(offset, 1); err != nil {
		return err
	}
	m.data[offset] = value
	return nil
}

func (m *LinearMemory) WriteU32(offset uint32, value uint32) error {
	if err := m.check(offset, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(m.data[offset:], value)
	return nil
}

func (m *LinearMemory) WriteU64(offset uint32, value uint64) error {
	if err := m.check(offset, 8); err != nil {
		return err
	}
	binary.LittleEndian.PutUint64(m.data[offset:], value)
	return nil
}

// BumpAllocator hands out increasing offsets and never reuses freed space.
// When the memory can grow, exhausted space is extended a page at a time.
type BumpAllocator struct {
	mem  Memory
	next uint32
}

// NewBumpAllocator allocates from mem starting at base. Offset 0 is never
// returned, so a zero pointer always means "no allocation".
func NewBumpAllocator(mem Memory, base uint32) *BumpAllocator {
	if base == 0 {
		base = SlotAlign
	}
	return &BumpAllocator{mem: mem, next: base}
}

func (b *BumpAllocator) Alloc(size, align uint32) (uint32, error) {
	ptr := alignTo(b.next, align)
	end, ok := safeAddU32(ptr, size)
	if !ok {
		return 0, errors.AllocationFailed(uint64(size), "address space exhausted")
	}
	if err := b.ensure(end); err != nil {
		return 0, err
	}
	b.next = end
	return ptr, nil
}

func (b *BumpAllocator) Free(ptr, size, align uint32) {}

// Used returns the high-water mark.
func (b *BumpAllocator) Used() uint32 {
	return b.next
}

func (b *BumpAllocator) ensure(end uint32) error {
	sizer, ok := b.mem.(nativeruntime.MemorySizer)
	if !ok {
		return nil
	}
	size := sizer.Size()
	if end <= size {
		return nil
	}
	grower, ok := b.mem.(nativeruntime.MemoryGrower)
	if !ok {
		return errors.AllocationFailed(uint64(end-size), "memory cannot grow")
	}
	need := (uint64(end) - uint64(size) + nativeruntime.PageSize - 1) / nativeruntime.PageSize
	if _, ok := grower.Grow(uint32(need)); !ok {
		return errors.AllocationFailed(uint64(end-size), "memory grow refused")
	}
	return nil
}
