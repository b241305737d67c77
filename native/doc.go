// Package native defines the calling convention for native functions.
//
// Every native has the shape
//
//	func(argc int, mod *native.Module, args []value.Value) value.Value
//
// The module carries the allocator handle for the call (mod.GC()). A native
// checks its own arguments before using them; on a violation it fails with a
// formatted diagnostic and never returns a value:
//
//	func isDigit(argc int, mod *native.Module, args []value.Value) value.Value {
//		native.ExpectArgc(argc, 1)
//		c := native.CharArg(args, 0)
//		return value.Bool(c >= '0' && c <= '9')
//	}
//
// Failures are panics carrying a call-phase *errors.Error. Invoke recovers
// exactly those and hands them back as the call's error so the interpreter
// can raise them in the script. Allocator exhaustion and genuine bugs are
// not recovered.
//
// # Registry
//
// A Registry names natives and records a descriptive WIT signature for each:
//
//	reg := native.NewRegistry()
//	reg.MustRegister("is_digit", isDigit, native.Signature{
//		Params: []native.Param{{Name: "c", Type: native.StringType}},
//		Result: native.IntType,
//	})
//	v, err := reg.Call(mod, "is_digit", value.StringOf(mod.GC(), "7"))
//
// # Concurrency
//
// One native call runs at a time per runtime. The heap and module are not
// shared between concurrent calls; the runtime package enforces this.
package native
