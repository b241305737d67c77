package text

import (
	"github.com/wippyai/native-runtime/native"
)

var char = []native.Param{{Name: "c", Type: native.StringType}}

// Natives lists the library under the names scripts call it by.
func Natives() []native.Entry {
	return []native.Entry{
		{Name: "is_alphabetic", Func: IsAlphabetic, Sig: native.Signature{
			Params: char, Result: native.IntType, Doc: "1 if c is an ASCII letter",
		}},
		{Name: "is_digit", Func: IsDigit, Sig: native.Signature{
			Params: char, Result: native.IntType, Doc: "1 if c is a decimal digit",
		}},
		{Name: "is_alphanumeric", Func: IsAlphanumeric, Sig: native.Signature{
			Params: char, Result: native.IntType, Doc: "1 if c is a letter or digit",
		}},
		{Name: "is_whitespace", Func: IsWhitespace, Sig: native.Signature{
			Params: char, Result: native.IntType, Doc: "1 if c is ASCII whitespace",
		}},
		{Name: "str_split", Func: Split, Sig: native.Signature{
			Params: []native.Param{
				{Name: "s", Type: native.StringType},
				{Name: "delims", Type: native.StringType},
			},
			Result: native.ListOf(native.StringType),
			Doc:    "tokens of s separated by any byte of delims",
		}},
		{Name: "ffi_to_int", Func: ToInt, Sig: native.Signature{
			Params: []native.Param{{Name: "s", Type: native.StringType}},
			Result: native.IntType,
			Doc:    "leading integer of s, 0 when there is none",
		}},
		{Name: "str_to_int", Func: StrToInt, Sig: native.Signature{
			Params: []native.Param{{Name: "s", Type: native.StringType}},
			Result: native.OptionOf(native.IntType),
			Doc:    "leading integer of s, None when there is none",
		}},
		{Name: "str_index", Func: Index, Sig: native.Signature{
			Params: []native.Param{
				{Name: "s", Type: native.StringType},
				{Name: "i", Type: native.IntType},
			},
			Result: native.OptionOf(native.StringType),
			Doc:    "suffix of s from byte i",
		}},
		{Name: "explode", Func: Explode, Sig: native.Signature{
			Params: []native.Param{{Name: "s", Type: native.StringType}},
			Result: native.ListOf(native.StringType),
			Doc:    "one single-character string per byte of s",
		}},
		{Name: "which", Func: Which, Sig: native.Signature{
			Params: []native.Param{{Name: "path", Type: native.StringType}},
			Result: native.StringType,
			Doc:    "path if it exists, else the empty string",
		}},
	}
}

// Register adds every native in the library to r.
func Register(r *native.Registry) error {
	for _, e := range Natives() {
		if err := r.Register(e.Name, e.Func, e.Sig); err != nil {
			return err
		}
	}
	return nil
}
