package native

import (
	"strconv"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/value"
)

// Fail aborts the current native call with err. Invoke turns it into the
// call's error; nothing the native built so far is returned.
func Fail(err *errors.Error) {
	panic(err)
}

// Assertf aborts the current native call unless cond holds.
func Assertf(cond bool, format string, args ...any) {
	if !cond {
		Fail(errors.Assertion(format, args...))
	}
}

// ExpectArgc aborts unless exactly want arguments were passed.
func ExpectArgc(argc, want int) {
	if argc != want {
		Fail(errors.Arity(want, argc))
	}
}

func argPath(i int) []string {
	return []string{"args", strconv.Itoa(i)}
}

func expectKind(args []value.Value, i int, kind value.Kind) value.Value {
	if i < 0 || i >= len(args) {
		Fail(errors.OutOfBounds(errors.PhaseCall, argPath(i), i, len(args)))
	}
	v := args[i]
	if v.Kind() != kind {
		Fail(errors.New(errors.PhaseCall, errors.KindTypeMismatch).
			Path(argPath(i)...).
			Expected(kind.String()).
			Got(v.Kind().String()).
			Detail("Expected argument %d to be %s, but got %s", i, article(kind), v.Kind()).
			Build())
	}
	return v
}

func article(k value.Kind) string {
	if k == value.KindInteger || k == value.KindInvalid {
		return "an " + k.String()
	}
	return "a " + k.String()
}

// StringArg returns argument i's bytes, aborting unless it is a String.
func StringArg(args []value.Value, i int) []byte {
	return expectKind(args, i, value.KindString).Bytes()
}

// IntArg returns argument i's payload, aborting unless it is an Integer.
func IntArg(args []value.Value, i int) int64 {
	return expectKind(args, i, value.KindInteger).Int()
}

// ListArg returns argument i, aborting unless it is a List.
func ListArg(args []value.Value, i int) value.Value {
	return expectKind(args, i, value.KindList)
}

// CharArg returns the single byte of argument i, aborting unless it is a
// String of exactly one character.
func CharArg(args []value.Value, i int) byte {
	s := StringArg(args, i)
	if len(s) != 1 {
		Fail(errors.New(errors.PhaseCall, errors.KindShape).
			Path(argPath(i)...).
			Expected("1 character").
			Got(strconv.Itoa(len(s)) + " characters").
			Detail("Expected 1 character, but got %d", len(s)).
			Build())
	}
	return s[0]
}
