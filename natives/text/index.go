package text

import (
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
	"github.com/wippyai/native-runtime/variant"
)

// Index returns Some(suffix of s starting at i), or None when i is outside
// [0, len(s)). The suffix is a fresh copy and never shares storage with s.
func Index(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 2)
	s := native.StringArg(args, 0)
	i := native.IntArg(args, 1)

	h := mod.GC()
	if i < 0 || i >= int64(len(s)) {
		return variant.EncodeOption(h, variant.None())
	}
	return variant.EncodeOption(h, variant.Some(value.String(h, s[i:])))
}
