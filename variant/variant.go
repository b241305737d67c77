package variant

import (
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

// headerLen is the marker, the type name and the case name.
const headerLen = 3

// Variant is a decoded tagged record: [Special, Type, Case, Payload...].
type Variant struct {
	Type    string
	Case    string
	Payload []value.Value
}

// Encode builds the tagged List [Special, typeName, caseName, payload...].
// Every sum type crossing the native boundary uses this layout.
func Encode(h gc.Handle, typeName, caseName string, payload ...value.Value) value.Value {
	items := make([]value.Value, headerLen+len(payload))
	items[0] = value.Special()
	items[1] = value.StringOf(h, typeName)
	items[2] = value.StringOf(h, caseName)
	copy(items[headerLen:], payload)
	return value.List(h, items, len(items))
}

// IsTagged reports whether v has the tagged-record header.
func IsTagged(v value.Value) bool {
	if !v.IsList() || v.Len() < headerLen {
		return false
	}
	items := v.Items()
	return items[0].IsSpecial() && items[1].IsString() && items[2].IsString()
}

// Decode splits a tagged List into its parts. Ordinary data lists, including
// ones whose first element happens to be a String, report false.
func Decode(v value.Value) (Variant, bool) {
	if !IsTagged(v) {
		return Variant{}, false
	}
	items := v.Items()
	return Variant{
		Type:    items[1].Text(),
		Case:    items[2].Text(),
		Payload: items[headerLen:],
	}, true
}

func shapeError(path []string, expected string, v value.Value) *errors.Error {
	return errors.New(errors.PhaseDecode, errors.KindShape).
		Path(path...).
		Expected(expected).
		Got(v.String()).
		Build()
}
