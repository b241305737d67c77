package value

import "github.com/wippyai/native-runtime/gc"

// ListBuilder collects a List whose length is discovered while scanning.
// The scratch buffer grows by amortised doubling; Build copies exactly the
// collected items into GC memory.
type ListBuilder struct {
	h     gc.Handle
	items []Value
}

// NewListBuilder creates a builder with room for hint items before growing.
func NewListBuilder(h gc.Handle, hint int) *ListBuilder {
	if hint < 0 {
		hint = 0
	}
	return &ListBuilder{h: h, items: make([]Value, 0, hint)}
}

// Append adds v to the end.
func (b *ListBuilder) Append(v Value) {
	if len(b.items) == cap(b.items) {
		grown := make([]Value, len(b.items), max(2*cap(b.items), 4))
		copy(grown, b.items)
		b.items = grown
	}
	b.items = append(b.items, v)
}

// AppendString appends a String copied from s.
func (b *ListBuilder) AppendString(s []byte) {
	b.Append(String(b.h, s))
}

// Len returns the number of collected items.
func (b *ListBuilder) Len() int {
	return len(b.items)
}

// Build materialises the List at its discovered length.
func (b *ListBuilder) Build() Value {
	return List(b.h, b.items, len(b.items))
}
