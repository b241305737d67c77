package value

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
)

// Kind identifies the variant a Value holds.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindInteger
	KindString
	KindList
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "integer"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindSpecial:
		return "special"
	default:
		return "invalid"
	}
}

// Value is the runtime's tagged datum.
//
// String and List payloads live in memory obtained from a gc.Handle. Copying
// a Value copies the reference, not the storage; the constructors are the
// only place new storage is created.
type Value struct {
	str  []byte  // NUL-terminated
	list []Value // exactly Len() items
	i    int64
	kind Kind
}

// Integer makes an Integer value. It never allocates.
func Integer(i int64) Value {
	return Value{kind: KindInteger, i: i}
}

// Bool makes the Integer form of a predicate result: 1 or 0.
func Bool(b bool) Value {
	if b {
		return Integer(1)
	}
	return Integer(0)
}

// Special makes the zero-payload discriminant marker.
func Special() Value {
	return Value{kind: KindSpecial}
}

// String copies b plus a terminator into fresh GC memory. Length is implicit,
// so an embedded NUL ends the string exactly like a C-string copy would.
// The result never shares storage with b, even when b is a view into another
// String.
func String(h gc.Handle, b []byte) Value {
	if n := bytes.IndexByte(b, 0); n >= 0 {
		b = b[:n]
	}
	buf := h.Alloc(len(b) + 1)
	copy(buf, b)
	return Value{kind: KindString, str: buf}
}

// StringOf is String for a Go string.
func StringOf(h gc.Handle, s string) Value {
	if n := strings.IndexByte(s, 0); n >= 0 {
		s = s[:n]
	}
	buf := h.Alloc(len(s) + 1)
	copy(buf, s)
	return Value{kind: KindString, str: buf}
}

// List copies the first count items into a fresh GC items array.
// count may be smaller than len(items); the List's length is count.
func List(h gc.Handle, items []Value, count int) Value {
	if count < 0 || count > len(items) {
		panic(errors.New(errors.PhaseCall, errors.KindAssertion).
			Detail("list count %d outside backing length %d", count, len(items)).
			Build())
	}
	buf := gc.AllocSlice[Value](h, count)
	copy(buf, items[:count])
	return Value{kind: KindList, list: buf}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsValid reports whether v was produced by a constructor.
func (v Value) IsValid() bool {
	return v.kind != KindInvalid
}

func (v Value) IsInteger() bool { return v.kind == KindInteger }
func (v Value) IsString() bool  { return v.kind == KindString }
func (v Value) IsList() bool    { return v.kind == KindList }
func (v Value) IsSpecial() bool { return v.kind == KindSpecial }

// Int returns the Integer payload, 0 for other kinds.
func (v Value) Int() int64 {
	return v.i
}

// Bytes returns the String payload without its terminator. The slice views
// GC storage and must not be modified.
func (v Value) Bytes() []byte {
	if v.kind != KindString {
		return nil
	}
	return v.str[:len(v.str)-1]
}

// CString returns the String payload including its terminator.
func (v Value) CString() []byte {
	if v.kind != KindString {
		return nil
	}
	return v.str
}

// Text returns the String payload as a Go string.
func (v Value) Text() string {
	return string(v.Bytes())
}

// Len returns the byte length of a String or the item count of a List.
func (v Value) Len() int {
	switch v.kind {
	case KindString:
		return len(v.str) - 1
	case KindList:
		return len(v.list)
	default:
		return 0
	}
}

// At returns item i of a List.
func (v Value) At(i int) Value {
	if v.kind != KindList || i < 0 || i >= len(v.list) {
		panic(errors.OutOfBounds(errors.PhaseCall, nil, i, v.Len()))
	}
	return v.list[i]
}

// Items returns the List items. The slice views GC storage and must not be
// modified.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// Equal reports structural equality.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindInteger:
		return a.i == b.i
	case KindString:
		return bytes.Equal(a.str, b.str)
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// SameStorage reports whether a and b reference the same backing storage.
// Integers and markers have no storage and compare by value.
func SameStorage(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindString:
		return &a.str[0] == &b.str[0]
	case KindList:
		// empty lists own no storage
		if len(a.list) == 0 || len(b.list) == 0 {
			return false
		}
		return &a.list[0] == &b.list[0]
	case KindInteger:
		return a.i == b.i
	default:
		return true
	}
}

// String renders v for diagnostics: integers in decimal, strings quoted,
// lists bracketed, the marker as #special.
func (v Value) String() string {
	var b strings.Builder
	v.format(&b)
	return b.String()
}

func (v Value) format(b *strings.Builder) {
	switch v.kind {
	case KindInteger:
		b.WriteString(strconv.FormatInt(v.i, 10))
	case KindString:
		b.WriteString(strconv.Quote(v.Text()))
	case KindList:
		b.WriteByte('[')
		for i, item := range v.list {
			if i > 0 {
				b.WriteString(", ")
			}
			item.format(b)
		}
		b.WriteByte(']')
	case KindSpecial:
		b.WriteString("#special")
	default:
		b.WriteString("#invalid")
	}
}
