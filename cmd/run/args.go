package main

import (
	"fmt"
	"strconv"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/native-runtime/codec"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
)

// convertArgs turns command-line text into Values using the native's
// declared parameter types. Arity is left to the native itself.
func convertArgs(h gc.Handle, entry *native.Entry, raw []string) ([]value.Value, error) {
	args := make([]value.Value, len(raw))
	for i, s := range raw {
		var t wit.Type
		if i < len(entry.Sig.Params) {
			t = entry.Sig.Params[i].Type
		}
		v, err := convertArg(h, s, t)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}

func convertArg(h gc.Handle, s string, t wit.Type) (value.Value, error) {
	switch t.(type) {
	case wit.String, wit.Char:
		return value.StringOf(h, s), nil
	case wit.S8, wit.S16, wit.S32, wit.S64, wit.U8, wit.U16, wit.U32, wit.U64:
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(n), nil
	case wit.Bool:
		b, err := strconv.ParseBool(s)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(b), nil
	default:
		return codec.UnmarshalJSON(h, []byte(s))
	}
}
