package gc

import (
	goruntime "runtime"
	"unsafe"

	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/errors"
)

// Config bounds what a Heap hands out. Zero values mean unlimited / never.
type Config struct {
	// CallBudget caps the bytes allocated between BeginCall and EndCall.
	CallBudget uint64

	// CollectThreshold triggers a collection pass once this many bytes
	// have been allocated since the previous pass.
	CollectThreshold uint64

	// MaxAlloc caps a single allocation request.
	MaxAlloc uint64
}

// Stats is a snapshot of heap accounting.
type Stats struct {
	Allocs      uint64 // allocation requests served
	Bytes       uint64 // total bytes handed out
	Collections uint64 // collection passes triggered
	CallBytes   uint64 // bytes handed out in the current call
	Calls       uint64 // calls bracketed by BeginCall
}

// Heap is the runtime's collector-facing allocator. Storage is owned by the
// Go garbage collector: it is never moved while referenced and is reclaimed
// once unreachable, so native code never frees.
//
// A Heap is not safe for concurrent use; the runtime executes one native
// call at a time.
type Heap struct {
	collect      func()
	logger       *zap.Logger
	cfg          Config
	stats        Stats
	sinceCollect uint64
	callDepth    int
}

// Option configures a Heap.
type Option func(*Heap)

// WithCollector replaces the collection pass (runtime.GC by default).
func WithCollector(fn func()) Option {
	return func(h *Heap) {
		if fn != nil {
			h.collect = fn
		}
	}
}

// WithLogger sets the logger used for collection and exhaustion events.
func WithLogger(l *zap.Logger) Option {
	return func(h *Heap) {
		if l != nil {
			h.logger = l
		}
	}
}

// New creates a heap.
func New(cfg Config, opts ...Option) *Heap {
	h := &Heap{
		cfg:     cfg,
		collect: goruntime.GC,
		logger:  Logger(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle returns the allocation capability for this heap.
func (h *Heap) Handle() Handle {
	return Handle{heap: h}
}

// Config returns the heap limits.
func (h *Heap) Config() Config {
	return h.cfg
}

// Stats returns a snapshot of the accounting counters.
func (h *Heap) Stats() Stats {
	return h.stats
}

// BeginCall opens a per-call budget window. Windows nest: a native calling
// another native stays inside the outermost window and its budget.
func (h *Heap) BeginCall() {
	if h.callDepth == 0 {
		h.stats.CallBytes = 0
	}
	h.callDepth++
	h.stats.Calls++
}

// EndCall closes the innermost per-call budget window.
func (h *Heap) EndCall() {
	if h.callDepth > 0 {
		h.callDepth--
	}
}

// Collect runs a collection pass immediately.
func (h *Heap) Collect() {
	h.sinceCollect = 0
	h.stats.Collections++
	h.collect()
	h.logger.Debug("collection pass",
		zap.Uint64("collections", h.stats.Collections),
		zap.Uint64("bytes", h.stats.Bytes))
}

// reserve accounts for size bytes or panics with an allocation error.
// Exhaustion is fatal: callers must not recover it.
func (h *Heap) reserve(size uint64) {
	if h.cfg.MaxAlloc > 0 && size > h.cfg.MaxAlloc {
		h.exhausted(size, "request exceeds max_alloc")
	}
	if h.callDepth > 0 && h.cfg.CallBudget > 0 && h.stats.CallBytes+size > h.cfg.CallBudget {
		h.exhausted(size, "call budget exhausted")
	}

	if h.cfg.CollectThreshold > 0 && h.sinceCollect+size >= h.cfg.CollectThreshold {
		h.Collect()
	}

	h.stats.Allocs++
	h.stats.Bytes += size
	h.sinceCollect += size
	if h.callDepth > 0 {
		h.stats.CallBytes += size
	}
}

func (h *Heap) exhausted(size uint64, why string) {
	h.logger.Error("allocator exhausted",
		zap.Uint64("size", size),
		zap.String("reason", why),
		zap.Uint64("call_bytes", h.stats.CallBytes))
	panic(errors.AllocationFailed(size, why))
}

// Handle is the opaque, copyable capability to request GC-managed memory.
// It is threaded into every native call through the module context.
type Handle struct {
	heap *Heap
}

// Valid reports whether the handle is bound to a heap.
func (h Handle) Valid() bool {
	return h.heap != nil
}

// Heap returns the heap behind the handle.
func (h Handle) Heap() *Heap {
	return h.heap
}

// Alloc returns size zero-initialised bytes of GC-managed memory.
// It may run a collection pass first. Exhaustion panics and is fatal.
func (h Handle) Alloc(size int) []byte {
	h.mustValid()
	if size < 0 {
		panic(errors.AllocationFailed(0, "negative size"))
	}
	h.heap.reserve(uint64(size))
	return make([]byte, size)
}

func (h Handle) mustValid() {
	if h.heap == nil {
		panic(errors.NotInitialized(errors.PhaseAlloc, "allocator handle"))
	}
}

// AllocSlice returns n zero-valued elements of T in GC-managed memory.
func AllocSlice[T any](h Handle, n int) []T {
	h.mustValid()
	if n < 0 {
		panic(errors.AllocationFailed(0, "negative length"))
	}
	var zero T
	h.heap.reserve(uint64(n) * uint64(unsafe.Sizeof(zero)))
	return make([]T, n)
}
