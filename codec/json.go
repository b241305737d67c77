package codec

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

// MarshalJSON encodes v as JSON. Special is null.
func MarshalJSON(v value.Value) ([]byte, error) {
	x, err := ToAny(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(x)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "json marshal")
	}
	return data, nil
}

// UnmarshalJSON decodes a single JSON document into a Value allocated
// through h. Numbers must be integers; objects are rejected.
func UnmarshalJSON(h gc.Handle, data []byte) (value.Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var x any
	if err := dec.Decode(&x); err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "json unmarshal")
	}
	if _, err := dec.Token(); err != io.EOF {
		return value.Value{}, errors.InvalidData(errors.PhaseDecode, nil, "trailing data after JSON value")
	}
	return FromAny(h, x)
}
