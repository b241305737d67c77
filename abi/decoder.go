package abi

import (
	"strconv"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/value"
)

// Decoder lifts slots out of linear memory into GC-owned Values. Nothing
// it returns references guest memory.
type Decoder struct {
	h gc.Handle
}

func NewDecoder(h gc.Handle) *Decoder {
	return &Decoder{h: h}
}

// Load lifts the slot at addr.
func (d *Decoder) Load(mem Memory, addr uint32) (value.Value, error) {
	return d.load(mem, addr, nil, 0)
}

// LoadArgs lifts argc consecutive slots starting at argv.
func (d *Decoder) LoadArgs(mem Memory, argv, argc uint32) ([]value.Value, error) {
	if argc > MaxListLength {
		return nil, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Detail("argument count %d exceeds maximum %d", argc, MaxListLength).
			Build()
	}
	area, ok := safeMulU32(argc, SlotSize)
	if !ok {
		return nil, errors.Overflow(errors.PhaseDecode, nil, argc, "argument area")
	}
	if _, ok := safeAddU32(argv, area); !ok {
		return nil, errors.Overflow(errors.PhaseDecode, nil, argv, "argument area address")
	}
	args := make([]value.Value, argc)
	for i := uint32(0); i < argc; i++ {
		v, err := d.load(mem, argv+i*SlotSize, []string{"args", strconv.Itoa(int(i))}, 0)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

func (d *Decoder) load(mem Memory, addr uint32, path []string, depth int) (value.Value, error) {
	if depth > MaxDepth {
		return value.Value{}, errors.Overflow(errors.PhaseDecode, path, depth, "max nesting depth")
	}

	raw, err := mem.ReadU32(addr)
	if err != nil {
		return value.Value{}, err
	}

	switch tag := Tag(raw); tag {
	case TagInteger:
		i, err := mem.ReadU64(addr + payloadOffset)
		if err != nil {
			return value.Value{}, err
		}
		return value.Integer(int64(i)), nil
	case TagString:
		return d.loadString(mem, addr, path)
	case TagList:
		return d.loadList(mem, addr, path, depth)
	case TagSpecial:
		return value.Special(), nil
	default:
		return value.Value{}, errors.InvalidDiscriminant(errors.PhaseDecode, path, raw, "unknown slot tag")
	}
}

func (d *Decoder) loadString(mem Memory, addr uint32, path []string) (value.Value, error) {
	ptr, err := mem.ReadU32(addr + payloadOffset)
	if err != nil {
		return value.Value{}, err
	}
	n, err := mem.ReadU32(addr + lengthOffset)
	if err != nil {
		return value.Value{}, err
	}
	if n > MaxStringSize {
		return value.Value{}, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Path(path...).
			Detail("string size %d exceeds maximum %d", n, MaxStringSize).
			Build()
	}
	if n == 0 {
		return value.StringOf(d.h, ""), nil
	}
	data, err := mem.Read(ptr, n)
	if err != nil {
		return value.Value{}, err
	}
	return value.String(d.h, data), nil
}

func (d *Decoder) loadList(mem Memory, addr uint32, path []string, depth int) (value.Value, error) {
	ptr, err := mem.ReadU32(addr + payloadOffset)
	if err != nil {
		return value.Value{}, err
	}
	count, err := mem.ReadU32(addr + lengthOffset)
	if err != nil {
		return value.Value{}, err
	}
	if count > MaxListLength {
		return value.Value{}, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Path(path...).
			Detail("list length %d exceeds maximum %d", count, MaxListLength).
			Build()
	}

	size, _ := safeMulU32(count, SlotSize)
	if _, ok := safeAddU32(ptr, size); !ok {
		return value.Value{}, errors.New(errors.PhaseDecode, errors.KindOverflow).
			Path(path...).
			Detail("list data address range overflow").
			Build()
	}

	items := make([]value.Value, count)
	for i := uint32(0); i < count; i++ {
		itemPath := append(append([]string{}, path...), strconv.Itoa(int(i)))
		v, err := d.load(mem, ptr+i*SlotSize, itemPath, depth+1)
		if err != nil {
			return value.Value{}, err
		}
		items[i] = v
	}
	return value.List(d.h, items, len(items)), nil
}
