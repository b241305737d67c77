// Package codec serializes Values for hosts and tools outside the runtime.
//
// Values map onto a plain tree: Integer to int64, String to string, List to
// []any and Special to null. The encoded Option [Special, "Option", "Some", 1]
// is therefore the JSON array [null,"Option","Some",1].
//
// CBOR output is canonical, so equal Values encode to equal bytes.
package codec
