package native

import (
	"fmt"
	"strings"

	"go.bytecodealliance.org/wit"
)

// Param names one argument of a native and its WIT type.
type Param struct {
	Type wit.Type
	Name string
}

// Signature documents a native's arguments and result using WIT types.
// It is descriptive: natives still validate their own arguments.
type Signature struct {
	Result wit.Type
	Doc    string
	Params []Param
}

// Common WIT types used by native signatures.
var (
	StringType = wit.String{}
	IntType    = wit.S64{}
)

// OptionOf returns the WIT option<t> type.
func OptionOf(t wit.Type) wit.Type {
	return &wit.TypeDef{Kind: &wit.Option{Type: t}}
}

// ListOf returns the WIT list<t> type.
func ListOf(t wit.Type) wit.Type {
	return &wit.TypeDef{Kind: &wit.List{Type: t}}
}

// String renders the signature as "(name: type, ...) -> type".
func (s Signature) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		name := p.Name
		if name == "" {
			name = fmt.Sprintf("arg%d", i)
		}
		params[i] = name + ": " + FormatType(p.Type)
	}
	out := "(" + strings.Join(params, ", ") + ")"
	if s.Result != nil {
		out += " -> " + FormatType(s.Result)
	}
	return out
}

// FormatType renders a WIT type the way it is written in WIT.
func FormatType(t wit.Type) string {
	switch v := t.(type) {
	case nil:
		return "value"
	case wit.Bool:
		return "bool"
	case wit.U8:
		return "u8"
	case wit.S8:
		return "s8"
	case wit.U16:
		return "u16"
	case wit.S16:
		return "s16"
	case wit.U32:
		return "u32"
	case wit.S32:
		return "s32"
	case wit.U64:
		return "u64"
	case wit.S64:
		return "s64"
	case wit.Char:
		return "char"
	case wit.String:
		return "string"
	case *wit.TypeDef:
		if v.Name != nil {
			return *v.Name
		}
		switch k := v.Kind.(type) {
		case *wit.Option:
			return "option<" + FormatType(k.Type) + ">"
		case *wit.List:
			return "list<" + FormatType(k.Type) + ">"
		default:
			return "typedef"
		}
	default:
		return fmt.Sprintf("%T", t)
	}
}
