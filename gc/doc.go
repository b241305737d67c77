// Package gc provides the allocator handle native functions build values through.
//
// A Heap owns accounting and limits; its Handle is the opaque capability
// threaded into every native call. Memory comes from the Go collector, which
// satisfies the runtime's collector contract: allocations are traced,
// live storage is never invalidated, and unreachable storage is reclaimed
// without native code ever freeing it.
//
//	heap := gc.New(gc.Config{CallBudget: 1 << 20})
//	h := heap.Handle()
//	buf := h.Alloc(16)
//	items := gc.AllocSlice[value.Value](h, 4)
//
// # Exhaustion
//
// A request larger than MaxAlloc, or one that would push the current call
// past CallBudget, panics with an errors.KindAllocation error. This is a
// process-level failure: the native call convention deliberately does not
// recover it.
//
// # Collection passes
//
// When CollectThreshold is set, any allocation may first run a collection
// pass (runtime.GC unless replaced with WithCollector). Because Go memory is
// traced precisely through Go references, a native holding a Value in a local
// variable across an allocation keeps it alive.
package gc
