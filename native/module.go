package native

import (
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/gc"
)

// Module is the binding context passed to every native call. It carries the
// allocator handle for the call and is owned by the runtime; natives read it
// and never retain it.
type Module struct {
	heap   *gc.Heap
	logger *zap.Logger
	name   string
	id     uuid.UUID
}

// ModuleOption configures a Module.
type ModuleOption func(*Module)

// WithModuleLogger sets the logger natives can reach through the module.
func WithModuleLogger(l *zap.Logger) ModuleOption {
	return func(m *Module) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewModule binds a named module to heap.
func NewModule(name string, heap *gc.Heap, opts ...ModuleOption) *Module {
	m := &Module{
		heap:   heap,
		name:   name,
		id:     uuid.New(),
		logger: Logger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.logger = m.logger.With(zap.String("module", name))
	return m
}

// GC returns the allocator handle values must be built through.
func (m *Module) GC() gc.Handle {
	return m.heap.Handle()
}

// Heap returns the heap behind the module's handle.
func (m *Module) Heap() *gc.Heap {
	return m.heap
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.name
}

// ID returns the module's process-lifetime identity.
func (m *Module) ID() uuid.UUID {
	return m.id
}

// Logger returns the module logger.
func (m *Module) Logger() *zap.Logger {
	return m.logger
}
