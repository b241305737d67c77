package wasmhost

import (
	"context"
	stderrors "errors"
	"sort"
	"sync"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/abi"
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
)

// DefaultModuleName is the import module guests use for natives.
const DefaultModuleName = "native"

// Status codes returned to the guest by every native import.
const (
	StatusOK        uint32 = 0 // result slot stored at ret
	StatusViolation uint32 = 1 // diagnostic String stored at ret
	StatusFailure   uint32 = 2 // nothing written
)

// Config holds configuration for a Host.
type Config struct {
	// ModuleName is the import module natives are exported under.
	// Empty means DefaultModuleName.
	ModuleName string

	// MemoryLimitPages caps guest memory in 64KiB pages. 0 means the
	// wazero default (65536 pages = 4GB).
	MemoryLimitPages uint32
}

// Option configures a Host.
type Option func(*Host)

// WithLogger sets the host logger.
func WithLogger(l *zap.Logger) Option {
	return func(h *Host) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithAllocatorFactory replaces GuestAllocator as the source of result
// memory.
func WithAllocatorFactory(f AllocatorFactory) Option {
	return func(h *Host) {
		if f != nil {
			h.allocFactory = f
		}
	}
}

// WithLocker serialises guest calls with l instead of a private mutex.
// Pass the lock every other caller of the same module holds so that natives
// never run concurrently on one heap.
func WithLocker(l sync.Locker) Option {
	return func(h *Host) {
		if l != nil {
			h.mu = l
		}
	}
}

// Host exposes a native registry to WebAssembly guests through wazero.
//
// Each registered native becomes an import with the signature
// (argv i32, argc i32, ret i32) -> i32: argc argument slots are read from
// argv, the native runs under native.Invoke, and its result is stored in
// the slot at ret. Guest calls into natives are serialised.
type Host struct {
	runtime      wazero.Runtime
	hostModule   api.Module
	registry     *native.Registry
	module       *native.Module
	allocFactory AllocatorFactory
	logger       *zap.Logger
	cfg          Config
	mu           sync.Locker
}

// New creates a wazero runtime and instantiates the native host module
// from every entry currently in registry.
func New(ctx context.Context, registry *native.Registry, module *native.Module, cfg Config, opts ...Option) (*Host, error) {
	if registry == nil {
		return nil, errors.NotInitialized(errors.PhaseHost, "registry")
	}
	if module == nil {
		return nil, errors.NotInitialized(errors.PhaseHost, "module")
	}
	if cfg.ModuleName == "" {
		cfg.ModuleName = DefaultModuleName
	}

	h := &Host{
		registry:     registry,
		module:       module,
		cfg:          cfg,
		allocFactory: GuestAllocator,
		logger:       Logger(),
		mu:           &sync.Mutex{},
	}
	for _, opt := range opts {
		opt(h)
	}

	runtimeCfg := wazero.NewRuntimeConfig()
	if cfg.MemoryLimitPages > 0 {
		runtimeCfg = runtimeCfg.WithMemoryLimitPages(cfg.MemoryLimitPages)
	}
	h.runtime = wazero.NewRuntimeWithConfig(ctx, runtimeCfg)

	builder := h.runtime.NewHostModuleBuilder(cfg.ModuleName)
	i32 := api.ValueTypeI32
	for _, e := range registry.Entries() {
		builder.NewFunctionBuilder().
			WithGoModuleFunction(h.handler(e), []api.ValueType{i32, i32, i32}, []api.ValueType{i32}).
			WithParameterNames("argv", "argc", "ret").
			WithResultNames("status").
			Export(e.Name)
	}

	mod, err := builder.Instantiate(ctx)
	if err != nil {
		_ = h.runtime.Close(ctx)
		return nil, errors.Instantiation("host module "+cfg.ModuleName, err)
	}
	h.hostModule = mod

	h.logger.Debug("native host module ready",
		zap.String("module", cfg.ModuleName),
		zap.Int("natives", registry.Len()))
	return h, nil
}

// Runtime returns the underlying wazero runtime.
func (h *Host) Runtime() wazero.Runtime {
	return h.runtime
}

// ModuleName returns the import module name natives are exported under.
func (h *Host) ModuleName() string {
	return h.cfg.ModuleName
}

// CheckImports reports every native the compiled guest imports that the
// host does not provide. Imports from other modules are ignored.
func (h *Host) CheckImports(compiled wazero.CompiledModule) error {
	exported := h.hostModule.ExportedFunctionDefinitions()

	var missing []string
	for _, fn := range compiled.ImportedFunctions() {
		modName, name, _ := fn.Import()
		if modName != h.cfg.ModuleName {
			continue
		}
		if _, ok := exported[name]; !ok {
			missing = append(missing, modName+"#"+name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return errors.NewMissingImportsError(missing)
}

// LoadGuest compiles and instantiates a guest module under name. Unknown
// native imports are rejected before instantiation.
func (h *Host) LoadGuest(ctx context.Context, name string, wasm []byte) (api.Module, error) {
	compiled, err := h.runtime.CompileModule(ctx, wasm)
	if err != nil {
		return nil, errors.Load("compile guest "+name, err)
	}
	if err := h.CheckImports(compiled); err != nil {
		_ = compiled.Close(ctx)
		return nil, err
	}

	mod, err := h.runtime.InstantiateModule(ctx, compiled, wazero.NewModuleConfig().WithName(name))
	if err != nil {
		_ = compiled.Close(ctx)
		return nil, errors.Instantiation("guest "+name, err)
	}
	h.logger.Debug("guest loaded", zap.String("guest", name))
	return mod, nil
}

// Close releases the runtime and every module instantiated in it.
func (h *Host) Close(ctx context.Context) error {
	if h.runtime == nil {
		return nil
	}
	err := h.runtime.Close(ctx)
	h.runtime = nil
	h.hostModule = nil
	return err
}

func (h *Host) handler(e *native.Entry) api.GoModuleFunc {
	return func(ctx context.Context, mod api.Module, stack []uint64) {
		argv := api.DecodeU32(stack[0])
		argc := api.DecodeU32(stack[1])
		ret := api.DecodeU32(stack[2])
		stack[0] = api.EncodeU32(h.dispatch(ctx, mod, e, argv, argc, ret))
	}
}

// dispatch runs one native for a guest.
func (h *Host) dispatch(ctx context.Context, mod api.Module, e *native.Entry, argv, argc, ret uint32) uint32 {
	h.mu.Lock()
	defer h.mu.Unlock()

	log := h.logger.With(zap.String("func", e.Name), zap.String("guest", mod.Name()))
	defer h.escalateExhaustion(log)

	mem := NewMemory(mod.Memory())
	if mem == nil {
		log.Warn("guest has no memory")
		return StatusFailure
	}

	gcHandle := h.module.GC()
	args, err := abi.NewDecoder(gcHandle).LoadArgs(mem, argv, argc)
	if err != nil {
		log.Warn("decode arguments", zap.Error(err))
		return StatusFailure
	}

	status := StatusOK
	result, err := native.Invoke(h.module, e.Name, e.Func, args)
	if err != nil {
		var callErr *errors.Error
		if !stderrors.As(err, &callErr) || callErr.Phase != errors.PhaseCall {
			log.Warn("native failed", zap.Error(err))
			return StatusFailure
		}
		status = StatusViolation
		result = value.StringOf(gcHandle, callErr.Message())
	}

	alloc := h.allocFactory(ctx, mod)
	allocs := abi.NewAllocationList()
	if err := abi.NewEncoder(alloc, allocs).Store(mem, ret, result); err != nil {
		log.Warn("store result", zap.Error(err))
		allocs.FreeAndRelease(alloc)
		return StatusFailure
	}
	log.Debug("result stored",
		zap.Uint32("status", status),
		zap.Int("allocations", allocs.Count()),
		zap.Uint64("bytes", allocs.Bytes()))
	allocs.Release()
	return status
}

// escalateExhaustion makes allocator exhaustion fatal on the guest path.
// wazero recovers panics raised by host functions and hands them to the
// guest's caller as errors, so the exhaustion is logged at Fatal level,
// which exits the process unless the logger carries a fatal hook. If the
// hook returns, the panic continues and traps the guest call.
func (h *Host) escalateExhaustion(log *zap.Logger) {
	r := recover()
	if r == nil {
		return
	}
	if allocErr, ok := r.(*errors.Error); ok && allocErr.Kind == errors.KindAllocation {
		log.Fatal("allocator exhausted in guest call", zap.Error(allocErr))
	}
	panic(r)
}
