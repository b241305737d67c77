package native

import (
	"sort"
	"sync"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/value"
)

// Entry is a registered native.
type Entry struct {
	Func Func
	Name string
	Sig  Signature
}

// Registry maps native names to functions. Registration may happen from any
// goroutine; calls go through the runtime, one at a time.
type Registry struct {
	funcs map[string]*Entry
	mu    sync.RWMutex
}

func NewRegistry() *Registry {
	return &Registry{
		funcs: make(map[string]*Entry),
	}
}

// Register adds fn under name. Names are unique.
func (r *Registry) Register(name string, fn Func, sig Signature) error {
	if name == "" {
		return errors.InvalidInput(errors.PhaseRegister, "native name cannot be empty")
	}
	if fn == nil {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseRegister, "function cannot be nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.funcs[name]; exists {
		return errors.Registration(name, errors.InvalidInput(errors.PhaseRegister, "already registered"))
	}
	r.funcs[name] = &Entry{Name: name, Func: fn, Sig: sig}
	return nil
}

// MustRegister is Register for static tables; it panics on error.
func (r *Registry) MustRegister(name string, fn Func, sig Signature) {
	if err := r.Register(name, fn, sig); err != nil {
		panic(err)
	}
}

// Unregister removes name and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.funcs[name]
	delete(r.funcs, name)
	return ok
}

// Lookup returns the entry for name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.funcs[name]
	return e, ok
}

// Names returns registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.funcs))
	for name := range r.funcs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries returns all entries sorted by name.
func (r *Registry) Entries() []*Entry {
	names := r.Names()
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Entry, 0, len(names))
	for _, name := range names {
		if e, ok := r.funcs[name]; ok {
			out = append(out, e)
		}
	}
	return out
}

// Len returns the number of registered natives.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.funcs)
}

// Call looks up name and invokes it under the call convention.
func (r *Registry) Call(mod *Module, name string, args ...value.Value) (value.Value, error) {
	e, ok := r.Lookup(name)
	if !ok {
		return value.Value{}, errors.NotFound(errors.PhaseCall, "native", name)
	}
	return Invoke(mod, name, e.Func, args)
}
