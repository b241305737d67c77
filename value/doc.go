// Package value implements the runtime's tagged value model.
//
// A Value is one of:
//
//	Integer  signed 64-bit; also carries predicate results as 0/1
//	String   NUL-terminated bytes in GC memory, length implicit
//	List     fixed-length sequence of Values in GC memory
//	Special  zero-payload marker, only used as slot 0 of an encoded variant
//
// Constructors that need storage take a gc.Handle and always copy:
//
//	h := heap.Handle()
//	s := value.StringOf(h, "hello")
//	l := value.List(h, []value.Value{s, value.Integer(1)}, 2)
//
// Lists of unknown length are collected with a ListBuilder and materialised
// once the final length is known.
package value
