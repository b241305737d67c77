package codec

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("codec: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// MarshalCBOR encodes v canonically. Special is CBOR null.
func MarshalCBOR(v value.Value) ([]byte, error) {
	x, err := ToAny(v)
	if err != nil {
		return nil, err
	}
	data, err := cborEncMode.Marshal(x)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseEncode, errors.KindInvalidData, err, "cbor marshal")
	}
	return data, nil
}

// UnmarshalCBOR decodes data into a Value allocated through h.
func UnmarshalCBOR(h gc.Handle, data []byte) (value.Value, error) {
	var x any
	if err := cbor.Unmarshal(data, &x); err != nil {
		return value.Value{}, errors.Wrap(errors.PhaseDecode, errors.KindInvalidData, err, "cbor unmarshal")
	}
	return FromAny(h, x)
}
