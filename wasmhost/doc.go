// Package wasmhost lets WebAssembly guests call natives through wazero.
//
// A Host builds a wazero host module (named "native" unless configured)
// with one export per registry entry. From the guest's side every native is
//
//	(import "native" "str_split" (func (param i32 i32 i32) (result i32)))
//
// taking the address of argc consecutive argument slots, the count, and the
// address of a result slot; the slot layout is described in package abi.
// The returned status is StatusOK, StatusViolation when the native rejected
// its arguments (the result slot then holds the diagnostic String), or
// StatusFailure when the host could not read arguments or store the result.
//
// Strings and Lists in the result are written into memory obtained from the
// guest: its cabi_realloc export, else alloc. WithAllocatorFactory swaps
// that for embedders with their own memory discipline.
//
// # Usage
//
//	host, err := wasmhost.New(ctx, registry, module, wasmhost.Config{})
//	if err != nil {
//		return err
//	}
//	defer host.Close(ctx)
//
//	guest, err := host.LoadGuest(ctx, "script", wasmBytes)
//	if err != nil {
//		return err // *errors.MissingImportsError lists unknown natives
//	}
package wasmhost
