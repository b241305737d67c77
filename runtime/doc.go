// Package runtime is the entry point for embedding natives.
//
// # Quick Start
//
//	ctx := context.Background()
//	rt, err := runtime.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	v, err := rt.CallAny("str_split", "a,,b", ",")
//	fmt.Println(v) // ["a", "b"]
//
// # Configuration
//
// New takes a *config.Config, usually from config.Load. The [heap] section
// bounds allocation, [natives] disabled removes natives from the registry
// and [wasm] configures the guest host module.
//
// # Additional natives
//
//	rt, err := runtime.New(ctx, cfg, runtime.WithLibrary(func(r *native.Registry) error {
//	    return r.Register("shout", shout, native.Signature{})
//	}))
//
// # Guests
//
// LoadGuest instantiates a WebAssembly module whose "native" imports are
// served by the registry; see package wasmhost for the calling convention.
//
// # Thread Safety
//
// Calls are serialised: a Runtime may be shared between goroutines but runs
// one native at a time.
package runtime
