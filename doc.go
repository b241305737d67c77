// Package nativeruntime hosts native functions written in Go and exposes
// them to an interpreter or to WebAssembly guests through a small tagged
// value model.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	nativeruntime/       Root package with core Memory and Allocator interfaces
//	├── runtime/         High-level API: registry, heap and guest host together
//	├── native/          Call convention, argument assertions, registry
//	├── natives/text/    The string library (split, classify, convert, index)
//	├── value/           Integer, String, List and Special values
//	├── variant/         Tagged-list sum types such as Option
//	├── gc/              Heap accounting and the allocator Handle
//	├── abi/             16-byte slot layout for values in linear memory
//	├── wasmhost/        wazero host module serving natives to guests
//	├── codec/           JSON and CBOR renderings of values
//	├── config/          TOML configuration and its JSON schema
//	└── errors/          Structured error types for debugging
//
// # Quick Start
//
//	rt, err := runtime.New(ctx, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer rt.Close(ctx)
//
//	v, err := rt.CallAny("str_index", "hello", 2)
//	fmt.Println(v) // [#special, "Option", "Some", "llo"]
//
// # Native Functions
//
// A native receives the argument count, its module and the argument slice,
// and returns exactly one Value:
//
//	func isDigit(argc int, mod *native.Module, args []value.Value) value.Value {
//	    native.ExpectArgc(argc, 1)
//	    c := native.CharArg(args, 0)
//	    return value.Bool(c >= '0' && c <= '9')
//	}
//
// Contract violations abort the call and surface as *errors.Error from
// runtime.Call. Allocator exhaustion is fatal and is never turned into an
// error.
//
// # Memory Model
//
// Values are owned by the Go garbage collector. Natives allocate through the
// gc.Handle of their module and never free. Linear memory used by guests
// can only grow; results written into it are allocated by the guest.
package nativeruntime
