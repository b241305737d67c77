package text

import (
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
	"github.com/wippyai/native-runtime/variant"
)

// parsePrefix reads an optionally signed decimal prefix after leading
// whitespace. ok is false when no digit was found. Out-of-range values clamp
// to the int64 bounds.
func parsePrefix(s []byte) (n int64, ok bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}

	neg := false
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		neg = s[i] == '-'
		i++
	}

	// accumulate as a negative number so MinInt64 fits
	var acc int64
	saturated := false
	for ; i < len(s) && isDigit(s[i]); i++ {
		ok = true
		if saturated {
			continue
		}
		d := int64(s[i] - '0')
		if acc < (math.MinInt64+d)/10 {
			saturated = true
			continue
		}
		acc = acc*10 - d
	}

	switch {
	case !ok:
		return 0, false
	case saturated && neg:
		return math.MinInt64, true
	case saturated:
		return math.MaxInt64, true
	case neg:
		return acc, true
	case acc == math.MinInt64:
		return math.MaxInt64, true
	default:
		return -acc, true
	}
}

// ToInt parses a leading integer the way atoi does: "42x" is 42 and input
// with no numeric prefix is 0.
func ToInt(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 1)
	n, _ := parsePrefix(native.StringArg(args, 0))
	return value.Integer(n)
}

// StrToInt is ToInt that distinguishes "0" from garbage: Some(n) when a
// numeric prefix exists, None otherwise.
func StrToInt(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 1)
	h := mod.GC()
	n, ok := parsePrefix(native.StringArg(args, 0))
	if !ok {
		return variant.EncodeOption(h, variant.None())
	}
	return variant.EncodeOption(h, variant.Some(value.Integer(n)))
}

// Which returns its argument when a file exists at that path and "" when it
// does not.
func Which(argc int, mod *native.Module, args []value.Value) value.Value {
	native.ExpectArgc(argc, 1)
	path := native.StringArg(args, 0)
	if len(path) == 0 {
		return value.StringOf(mod.GC(), "")
	}
	if _, err := os.Stat(string(path)); err != nil {
		mod.Logger().Debug("which: not found", zap.ByteString("path", path))
		return value.StringOf(mod.GC(), "")
	}
	return value.String(mod.GC(), path)
}
