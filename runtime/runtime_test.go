package runtime

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/wippyai/native-runtime/abi"
	"github.com/wippyai/native-runtime/config"
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
	"github.com/wippyai/native-runtime/variant"
	"github.com/wippyai/native-runtime/wasmhost"
)

func newRuntime(t *testing.T, cfg *config.Config, opts ...Option) *Runtime {
	t.Helper()
	ctx := context.Background()
	opts = append([]Option{WithLogger(zap.NewNop())}, opts...)
	rt, err := New(ctx, cfg, opts...)
	if err != nil {
		t.Fatalf("create runtime: %v", err)
	}
	t.Cleanup(func() { _ = rt.Close(ctx) })
	return rt
}

func TestRuntime_Call(t *testing.T) {
	rt := newRuntime(t, nil)

	result, err := rt.CallAny("str_split", "a,,b", ",")
	if err != nil {
		t.Fatalf("call str_split: %v", err)
	}
	if got := result.String(); got != `["a", "b"]` {
		t.Errorf("str_split = %s, want [\"a\", \"b\"]", got)
	}

	h := rt.Handle()
	result, err = rt.Call("str_index", value.StringOf(h, "hello"), value.Integer(2))
	if err != nil {
		t.Fatalf("call str_index: %v", err)
	}
	opt, err := variant.DecodeOption(result)
	if err != nil {
		t.Fatalf("decode option: %v", err)
	}
	suffix, ok := opt.Get()
	if !ok || suffix.Text() != "llo" {
		t.Errorf("str_index = %s, want Some(\"llo\")", result)
	}

	if stats := rt.Stats(); stats.Calls != 2 {
		t.Errorf("calls = %d, want 2", stats.Calls)
	}
}

func TestRuntime_CallErrors(t *testing.T) {
	rt := newRuntime(t, nil)

	_, err := rt.CallAny("is_digit", "12")
	var callErr *errors.Error
	if !stderrors.As(err, &callErr) {
		t.Fatalf("expected *errors.Error, got %v", err)
	}
	if callErr.Message() != "Expected 1 character, but got 2" {
		t.Errorf("message = %q", callErr.Message())
	}

	_, err = rt.CallAny("no_such_native")
	if !stderrors.Is(err, &errors.Error{Phase: errors.PhaseCall, Kind: errors.KindNotFound}) {
		t.Errorf("expected not found, got %v", err)
	}

	_, err = rt.CallAny("explode", map[string]int{})
	if err == nil {
		t.Error("expected conversion error")
	}
}

func TestRuntime_Disabled(t *testing.T) {
	cfg := config.Default()
	cfg.Natives.Disabled = []string{"which"}
	rt := newRuntime(t, cfg)

	if _, ok := rt.Lookup("which"); ok {
		t.Error("which should be disabled")
	}
	for _, e := range rt.Functions() {
		if e.Name == "which" {
			t.Error("which listed")
		}
	}
	if _, ok := rt.Lookup("explode"); !ok {
		t.Error("explode should be enabled")
	}

	cfg = config.Default()
	cfg.Natives.Disabled = []string{"nope"}
	if _, err := New(context.Background(), cfg, WithLogger(zap.NewNop())); err == nil {
		t.Error("expected error for unknown disabled native")
	}
}

func TestRuntime_WithLibrary(t *testing.T) {
	double := func(argc int, mod *native.Module, args []value.Value) value.Value {
		native.ExpectArgc(argc, 1)
		return value.Integer(2 * native.IntArg(args, 0))
	}
	rt := newRuntime(t, nil, WithLibrary(func(r *native.Registry) error {
		return r.Register("double", double, native.Signature{
			Params: []native.Param{{Name: "n", Type: native.IntType}},
			Result: native.IntType,
		})
	}))

	result, err := rt.CallAny("double", 21)
	if err != nil {
		t.Fatalf("call double: %v", err)
	}
	if result.Int() != 42 {
		t.Errorf("double(21) = %d", result.Int())
	}

	_, err = New(context.Background(), nil, WithLogger(zap.NewNop()), WithLibrary(func(r *native.Registry) error {
		return r.Register("explode", double, native.Signature{})
	}))
	if err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestRuntime_CallBudget(t *testing.T) {
	cfg := config.Default()
	cfg.Heap.CallBudget = 64
	rt := newRuntime(t, cfg)

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected allocator exhaustion to panic")
		}
		allocErr, ok := r.(*errors.Error)
		if !ok || allocErr.Kind != errors.KindAllocation {
			t.Fatalf("unexpected panic %v", r)
		}
	}()

	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	_, _ = rt.CallAny("explode", string(long))
}

func TestRuntime_Concurrent(t *testing.T) {
	rt := newRuntime(t, nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if _, err := rt.CallAny("is_alphabetic", "q"); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()

	if stats := rt.Stats(); stats.Calls != 400 {
		t.Errorf("calls = %d, want 400", stats.Calls)
	}
}

func TestRuntime_LoadGuest(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	if _, err := rt.LoadGuest(ctx, "empty", nil); err == nil {
		t.Error("expected error for empty binary")
	}

	// (module (memory (export "memory") 1))
	memOnly := []byte{
		0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
		0x05, 0x03, 0x01, 0x00, 0x01,
		0x07, 0x0a, 0x01, 0x06, 0x6d, 0x65, 0x6d, 0x6f, 0x72, 0x79, 0x02, 0x00,
	}
	guest, err := rt.LoadGuest(ctx, "mem", memOnly)
	if err != nil {
		t.Fatalf("load guest: %v", err)
	}
	if guest.Memory() == nil {
		t.Error("guest memory missing")
	}

	host, err := rt.Host(ctx)
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	if host.ModuleName() != "native" {
		t.Errorf("module name = %q", host.ModuleName())
	}
}

// digitGuest imports native.is_digit and exports "memory" and "call", which
// forwards (argv, argc, ret) to the import.
var digitGuest = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x08, 0x01, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7f,
	0x02, 0x13, 0x01,
	0x06, 'n', 'a', 't', 'i', 'v', 'e',
	0x08, 'i', 's', '_', 'd', 'i', 'g', 'i', 't',
	0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x11, 0x02,
	0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
	0x04, 'c', 'a', 'l', 'l', 0x00, 0x01,
	0x0a, 0x0c, 0x01, 0x0a, 0x00, 0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0x10, 0x00, 0x0b,
}

func TestRuntime_GuestAndEmbedderShareHeap(t *testing.T) {
	rt := newRuntime(t, nil)
	ctx := context.Background()

	guest, err := rt.LoadGuest(ctx, "digits", digitGuest)
	if err != nil {
		t.Fatalf("load guest: %v", err)
	}

	const argv, data, ret = 1024, 2048, 1536
	mem := guest.Memory()
	if !mem.WriteUint32Le(argv, uint32(abi.TagString)) ||
		!mem.WriteUint32Le(argv+8, data) ||
		!mem.WriteUint32Le(argv+12, 1) ||
		!mem.Write(data, []byte{'7', 0}) {
		t.Fatal("write guest arguments")
	}
	call := guest.ExportedFunction("call")

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			res, err := call.Call(ctx, argv, 1, ret)
			if err != nil {
				t.Error(err)
				return
			}
			if status := uint32(res[0]); status != wasmhost.StatusOK {
				t.Errorf("status = %d", status)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if _, err := rt.CallAny("is_alphabetic", "q"); err != nil {
				t.Error(err)
				return
			}
		}
	}()
	wg.Wait()

	if stats := rt.Stats(); stats.Calls != 400 {
		t.Errorf("calls = %d, want 400", stats.Calls)
	}
	if v, _ := mem.ReadUint64Le(ret + 8); v != 1 {
		t.Errorf("is_digit result = %d, want 1", v)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Log.Level = "loud"
	if _, err := New(context.Background(), cfg); err == nil {
		t.Error("expected invalid config error")
	}
}
