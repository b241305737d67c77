package wasmhost

import (
	"context"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	nativeruntime "github.com/wippyai/native-runtime"
	"github.com/wippyai/native-runtime/errors"
)

// Guest allocator exports, in lookup order.
const (
	CabiRealloc = "cabi_realloc"
	simpleAlloc = "alloc"
	CabiFree    = "cabi_free"
	simpleFree  = "free"
)

// AllocatorFactory returns the allocator result memory is taken from when a
// native called by mod returns a String or List. A nil allocator means
// results that need memory cannot be returned.
type AllocatorFactory func(ctx context.Context, mod api.Module) nativeruntime.Allocator

// GuestAllocator allocates through the calling module's own exports:
// cabi_realloc(0, 0, align, size) or alloc(size), and cabi_free or free when
// present. It returns nil when the module exports neither allocator.
func GuestAllocator(ctx context.Context, mod api.Module) nativeruntime.Allocator {
	defs := mod.ExportedFunctionDefinitions()

	def := defs[CabiRealloc]
	if def == nil {
		def = defs[simpleAlloc]
	}
	if def == nil {
		return nil
	}

	a := &guestAllocator{
		ctx:         ctx,
		allocFn:     mod.ExportedFunction(def.Name()),
		simpleAlloc: len(def.ParamTypes()) < 4,
		stack:       make([]uint64, 4),
	}
	for _, name := range []string{CabiFree, simpleFree} {
		if fd := defs[name]; fd != nil {
			a.freeFn = mod.ExportedFunction(name)
			a.freeParams = len(fd.ParamTypes())
			break
		}
	}
	return a
}

type guestAllocator struct {
	ctx         context.Context
	allocFn     api.Function
	freeFn      api.Function
	stack       []uint64
	freeParams  int
	simpleAlloc bool
}

func (a *guestAllocator) Alloc(size, align uint32) (uint32, error) {
	var err error
	if a.simpleAlloc {
		a.stack[0] = uint64(size)
		err = a.allocFn.CallWithStack(a.ctx, a.stack[:1])
	} else {
		a.stack[0] = 0
		a.stack[1] = 0
		a.stack[2] = uint64(align)
		a.stack[3] = uint64(size)
		err = a.allocFn.CallWithStack(a.ctx, a.stack[:4])
	}
	if err != nil {
		return 0, errors.New(errors.PhaseAlloc, errors.KindAllocation).
			Detail("guest allocator failed for %d bytes", size).
			Cause(err).
			Build()
	}
	ptr := api.DecodeU32(a.stack[0])
	if ptr == 0 && size > 0 {
		return 0, errors.AllocationFailed(uint64(size), "guest allocator returned null")
	}
	return ptr, nil
}

func (a *guestAllocator) Free(ptr, size, align uint32) {
	if a.freeFn == nil || ptr == 0 {
		return
	}
	args := [3]uint64{uint64(ptr), uint64(size), uint64(align)}
	n := min(a.freeParams, len(args))
	copy(a.stack, args[:n])
	if err := a.freeFn.CallWithStack(a.ctx, a.stack[:max(n, 1)]); err != nil {
		Logger().Warn("guest free failed",
			zap.Uint32("ptr", ptr),
			zap.Uint32("size", size),
			zap.Error(err))
	}
}

var _ nativeruntime.Allocator = (*guestAllocator)(nil)
