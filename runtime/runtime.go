package runtime

import (
	"context"
	"sync"

	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/codec"
	"github.com/wippyai/native-runtime/config"
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/natives/text"
	"github.com/wippyai/native-runtime/value"
	"github.com/wippyai/native-runtime/wasmhost"
)

// ModuleName is the module context natives run under.
const ModuleName = "runtime"

// Library registers a set of natives.
type Library func(*native.Registry) error

type options struct {
	logger    *zap.Logger
	libraries []Library
}

// Option configures a Runtime.
type Option func(*options)

// WithLogger overrides the logger built from the [log] section.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithLibrary adds natives next to the built-in string library.
func WithLibrary(lib Library) Option {
	return func(o *options) {
		if lib != nil {
			o.libraries = append(o.libraries, lib)
		}
	}
}

// Runtime ties a heap, a module context and a native registry together and
// runs one native call at a time. Guest calls through the wasm host take the
// same lock as Call.
type Runtime struct {
	cfg      *config.Config
	heap     *gc.Heap
	module   *native.Module
	registry *native.Registry
	host     *wasmhost.Host
	logger   *zap.Logger
	mu       sync.Mutex
}

// New builds a runtime from cfg. A nil cfg means config.Default().
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Runtime, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := options{libraries: []Library{text.Register}}
	for _, opt := range opts {
		opt(&o)
	}

	logger := o.logger
	if logger == nil {
		var err error
		if logger, err = cfg.Log.Build(); err != nil {
			return nil, err
		}
	}

	all := native.NewRegistry()
	for _, lib := range o.libraries {
		if err := lib(all); err != nil {
			return nil, err
		}
	}
	if err := cfg.CheckNatives(all.Names()); err != nil {
		return nil, err
	}

	registry := native.NewRegistry()
	for _, e := range all.Entries() {
		if cfg.IsDisabled(e.Name) {
			continue
		}
		if err := registry.Register(e.Name, e.Func, e.Sig); err != nil {
			return nil, err
		}
	}

	heap := gc.New(cfg.Heap.GC(), gc.WithLogger(logger.Named("gc")))
	module := native.NewModule(ModuleName, heap, native.WithModuleLogger(logger.Named("native")))

	logger.Debug("runtime ready",
		zap.Int("natives", registry.Len()),
		zap.Strings("disabled", cfg.Natives.Disabled),
		zap.Stringer("module_id", module.ID()))

	return &Runtime{
		cfg:      cfg,
		heap:     heap,
		module:   module,
		registry: registry,
		logger:   logger,
	}, nil
}

// Close releases the wasm host, if one was started.
func (r *Runtime) Close(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var err error
	if r.host != nil {
		err = r.host.Close(ctx)
		r.host = nil
	}
	_ = r.logger.Sync()
	return err
}

// Call invokes the named native. Contract violations come back as a
// call-phase *errors.Error; allocator exhaustion panics.
func (r *Runtime) Call(name string, args ...value.Value) (value.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registry.Call(r.module, name, args...)
}

// CallAny converts plain Go arguments with codec.FromAny and invokes the
// named native.
func (r *Runtime) CallAny(name string, args ...any) (value.Value, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	h := r.module.GC()
	vals := make([]value.Value, len(args))
	for i, a := range args {
		v, err := codec.FromAny(h, a)
		if err != nil {
			return value.Value{}, err
		}
		vals[i] = v
	}
	return r.registry.Call(r.module, name, vals...)
}

// Handle returns the allocator handle for building arguments. It must not
// be used concurrently with Call.
func (r *Runtime) Handle() gc.Handle {
	return r.module.GC()
}

// Functions lists the enabled natives sorted by name.
func (r *Runtime) Functions() []*native.Entry {
	return r.registry.Entries()
}

// Lookup returns the named native.
func (r *Runtime) Lookup(name string) (*native.Entry, bool) {
	return r.registry.Lookup(name)
}

// Registry returns the enabled natives.
func (r *Runtime) Registry() *native.Registry {
	return r.registry
}

// Module returns the module context natives run under.
func (r *Runtime) Module() *native.Module {
	return r.module
}

// Config returns the configuration the runtime was built from.
func (r *Runtime) Config() *config.Config {
	return r.cfg
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *zap.Logger {
	return r.logger
}

// Stats returns heap accounting.
func (r *Runtime) Stats() gc.Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.heap.Stats()
}

// Host returns the wasm host, starting it on first use.
func (r *Runtime) Host(ctx context.Context) (*wasmhost.Host, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hostLocked(ctx)
}

func (r *Runtime) hostLocked(ctx context.Context) (*wasmhost.Host, error) {
	if r.host != nil {
		return r.host, nil
	}
	host, err := wasmhost.New(ctx, r.registry, r.module, r.cfg.Wasm.Host(),
		wasmhost.WithLogger(r.logger.Named("wasm")),
		wasmhost.WithLocker(&r.mu))
	if err != nil {
		return nil, err
	}
	r.host = host
	return host, nil
}

// LoadGuest instantiates a wasm guest that imports natives.
func (r *Runtime) LoadGuest(ctx context.Context, name string, wasm []byte) (api.Module, error) {
	if len(wasm) == 0 {
		return nil, errors.InvalidInput(errors.PhaseLoad, "empty wasm binary")
	}
	host, err := r.Host(ctx)
	if err != nil {
		return nil, err
	}
	return host.LoadGuest(ctx, name, wasm)
}
