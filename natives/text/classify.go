package text

import (
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
)

// Classification follows the C locale: ASCII only, every other byte is false.

func isAlpha(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

// predicate lifts a byte classifier into a one-character native.
func predicate(class func(byte) bool) native.Func {
	return func(argc int, mod *native.Module, args []value.Value) value.Value {
		native.ExpectArgc(argc, 1)
		return value.Bool(class(native.CharArg(args, 0)))
	}
}

var (
	// IsAlphabetic reports whether the single character is an ASCII letter.
	IsAlphabetic = predicate(isAlpha)

	// IsDigit reports whether the single character is a decimal digit.
	IsDigit = predicate(isDigit)

	// IsAlphanumeric reports whether the single character is a letter or digit.
	IsAlphanumeric = predicate(func(c byte) bool { return isAlpha(c) || isDigit(c) })

	// IsWhitespace reports whether the single character is one of
	// space, \t, \n, \v, \f or \r.
	IsWhitespace = predicate(isSpace)
)
