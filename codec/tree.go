package codec

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

// MaxDepth bounds List nesting in both directions.
const MaxDepth = 64

// ToAny converts v to a plain Go tree: int64, string, []any, and nil for
// Special. This is the shape hosts without a Value type see.
func ToAny(v value.Value) (any, error) {
	return toAny(v, nil, 0)
}

func toAny(v value.Value, path []string, depth int) (any, error) {
	if depth > MaxDepth {
		return nil, errors.Overflow(errors.PhaseEncode, path, depth, "max nesting depth")
	}
	switch v.Kind() {
	case value.KindInteger:
		return v.Int(), nil
	case value.KindString:
		return v.Text(), nil
	case value.KindSpecial:
		return nil, nil
	case value.KindList:
		items := v.Items()
		out := make([]any, len(items))
		for i, item := range items {
			x, err := toAny(item, append(append([]string{}, path...), strconv.Itoa(i)), depth+1)
			if err != nil {
				return nil, err
			}
			out[i] = x
		}
		return out, nil
	default:
		return nil, errors.InvalidData(errors.PhaseEncode, path, "invalid value")
	}
}

// FromAny builds a Value from a Go tree through h. Integers of any width,
// bool (as 1/0), string, []byte, []any and nil are accepted.
func FromAny(h gc.Handle, x any) (value.Value, error) {
	return fromAny(h, x, nil, 0)
}

func fromAny(h gc.Handle, x any, path []string, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, errors.Overflow(errors.PhaseDecode, path, depth, "max nesting depth")
	}
	switch t := x.(type) {
	case nil:
		return value.Special(), nil
	case bool:
		return value.Bool(t), nil
	case int:
		return value.Integer(int64(t)), nil
	case int8:
		return value.Integer(int64(t)), nil
	case int16:
		return value.Integer(int64(t)), nil
	case int32:
		return value.Integer(int64(t)), nil
	case int64:
		return value.Integer(t), nil
	case uint:
		return fromUint(uint64(t), path)
	case uint8:
		return value.Integer(int64(t)), nil
	case uint16:
		return value.Integer(int64(t)), nil
	case uint32:
		return value.Integer(int64(t)), nil
	case uint64:
		return fromUint(t, path)
	case float64:
		if t != math.Trunc(t) || t < math.MinInt64 || t >= math.MaxInt64 {
			return value.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, "integer", fmt.Sprintf("float %v", t))
		}
		return value.Integer(int64(t)), nil
	case json.Number:
		n, err := strconv.ParseInt(string(t), 10, 64)
		if err != nil {
			return value.Value{}, errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
				Path(path...).
				Expected("integer").
				Got(string(t)).
				Cause(err).
				Build()
		}
		return value.Integer(n), nil
	case string:
		return value.StringOf(h, t), nil
	case []byte:
		return value.String(h, t), nil
	case []any:
		items := make([]value.Value, len(t))
		for i, elem := range t {
			v, err := fromAny(h, elem, append(append([]string{}, path...), strconv.Itoa(i)), depth+1)
			if err != nil {
				return value.Value{}, err
			}
			items[i] = v
		}
		return value.List(h, items, len(items)), nil
	default:
		return value.Value{}, errors.TypeMismatch(errors.PhaseDecode, path, "integer, string, list or null", fmt.Sprintf("%T", x))
	}
}

func fromUint(u uint64, path []string) (value.Value, error) {
	if u > math.MaxInt64 {
		return value.Value{}, errors.Overflow(errors.PhaseDecode, path, u, "int64")
	}
	return value.Integer(int64(u)), nil
}
