package variant

import (
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

// Option wire names. These strings are part of the public ABI.
const (
	OptionType  = "Option"
	NoneCase    = "None"
	SomeCase    = "Some"
	noneLen     = headerLen
	someLen     = headerLen + 1
	payloadSlot = headerLen
)

// Option is the native sum type natives work with internally. It is only
// turned into the structural List form at the boundary.
type Option struct {
	value value.Value
	some  bool
}

// Some wraps v.
func Some(v value.Value) Option {
	return Option{value: v, some: true}
}

// None is the empty Option.
func None() Option {
	return Option{}
}

// IsSome reports whether the Option holds a value.
func (o Option) IsSome() bool {
	return o.some
}

// Get returns the wrapped value and whether there is one.
func (o Option) Get() (value.Value, bool) {
	return o.value, o.some
}

// EncodeNone builds [Special, "Option", "None"].
func EncodeNone(h gc.Handle) value.Value {
	return Encode(h, OptionType, NoneCase)
}

// EncodeSome builds [Special, "Option", "Some", v]. v is stored as-is, so
// the payload shares storage with the argument.
func EncodeSome(h gc.Handle, v value.Value) value.Value {
	return Encode(h, OptionType, SomeCase, v)
}

// EncodeOption encodes o in its structural form.
func EncodeOption(h gc.Handle, o Option) value.Value {
	if v, ok := o.Get(); ok {
		return EncodeSome(h, v)
	}
	return EncodeNone(h)
}

// DecodeOption recognises the exact None and Some shapes.
func DecodeOption(v value.Value) (Option, error) {
	vr, ok := Decode(v)
	if !ok {
		return Option{}, shapeError([]string{"option"}, "tagged list", v)
	}
	if vr.Type != OptionType {
		return Option{}, errors.InvalidDiscriminant(errors.PhaseDecode, []string{"option", "type"}, vr.Type, "not an Option")
	}

	switch vr.Case {
	case NoneCase:
		if v.Len() != noneLen {
			return Option{}, shapeError([]string{"option"}, "list of length 3", v)
		}
		return None(), nil
	case SomeCase:
		if v.Len() != someLen {
			return Option{}, shapeError([]string{"option"}, "list of length 4", v)
		}
		return Some(v.At(payloadSlot)), nil
	default:
		return Option{}, errors.InvalidDiscriminant(errors.PhaseDecode, []string{"option", "case"}, vr.Case, "expected None or Some")
	}
}

// IsOption reports whether v is a well-formed encoded Option.
func IsOption(v value.Value) bool {
	_, err := DecodeOption(v)
	return err == nil
}
