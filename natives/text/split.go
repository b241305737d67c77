package text

import (
	"bytes"

	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
)

// Split tokenizes subject on any byte of the delimiter set. Runs of
// delimiters collapse and leading or trailing delimiters yield nothing, so
// "a,,b" split on "," is ["a", "b"] and "" or ",,," is []. The subject is
// not modified.
func Split(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 2)
	subject := native.StringArg(args, 0)
	delims := native.StringArg(args, 1)

	b := value.NewListBuilder(mod.GC(), 0)
	for _, tok := range tokens(subject, delims) {
		b.AppendString(tok)
	}
	return b.Build()
}

// tokens returns views into s between delimiter runs.
func tokens(s, delims []byte) [][]byte {
	var out [][]byte
	start := -1
	for i, c := range s {
		if bytes.IndexByte(delims, c) >= 0 {
			if start >= 0 {
				out = append(out, s[start:i])
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		out = append(out, s[start:])
	}
	return out
}

// Explode returns one single-byte String per byte of its argument, in order.
func Explode(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 1)
	s := native.StringArg(args, 0)

	h := mod.GC()
	items := make([]value.Value, len(s))
	for i := range s {
		items[i] = value.String(h, s[i:i+1])
	}
	return value.List(h, items, len(items))
}
