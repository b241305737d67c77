package wasmhost

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	nativeruntime "github.com/wippyai/native-runtime"
	"github.com/wippyai/native-runtime/abi"
	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/natives/text"
)

// section frames a wasm section with its id and byte length.
func section(id byte, content ...byte) []byte {
	return append([]byte{id, byte(len(content))}, content...)
}

func name(s string) []byte {
	return append([]byte{byte(len(s))}, s...)
}

// guestModule builds a module importing native.<fn> with the host ABI
// signature and exporting "memory" and "call", which forwards its three
// arguments to the import.
func guestModule(module, fn string) []byte {
	out := []byte{0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00}

	// (func (param i32 i32 i32) (result i32))
	out = append(out, section(0x01, 0x01, 0x60, 0x03, 0x7f, 0x7f, 0x7f, 0x01, 0x7f)...)

	imports := []byte{0x01}
	imports = append(imports, name(module)...)
	imports = append(imports, name(fn)...)
	imports = append(imports, 0x00, 0x00)
	out = append(out, section(0x02, imports...)...)

	out = append(out, section(0x03, 0x01, 0x00)...)
	out = append(out, section(0x05, 0x01, 0x00, 0x01)...)

	exports := []byte{0x02}
	exports = append(exports, name("memory")...)
	exports = append(exports, 0x02, 0x00)
	exports = append(exports, name("call")...)
	exports = append(exports, 0x00, 0x01)
	out = append(out, section(0x07, exports...)...)

	// local.get 0, local.get 1, local.get 2, call 0
	body := []byte{0x00, 0x20, 0x00, 0x20, 0x01, 0x20, 0x02, 0x10, 0x00, 0x0b}
	code := append([]byte{0x01, byte(len(body))}, body...)
	out = append(out, section(0x0a, code...)...)
	return out
}

const (
	argvAddr = 1024
	retAddr  = 1536
	heapBase = 4096
)

// bumpFactory hands results memory above heapBase in the guest.
func bumpFactory(ctx context.Context, mod api.Module) nativeruntime.Allocator {
	return abi.NewBumpAllocator(NewMemory(mod.Memory()), heapBase)
}

func newHost(t *testing.T, opts ...Option) *Host {
	t.Helper()
	ctx := context.Background()

	reg := native.NewRegistry()
	require.NoError(t, text.Register(reg))
	mod := native.NewModule("test", gc.New(gc.Config{}))

	host, err := New(ctx, reg, mod, Config{}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = host.Close(ctx) })
	return host
}

func loadGuest(t *testing.T, host *Host, fn string) api.Module {
	t.Helper()
	guest, err := host.LoadGuest(context.Background(), "guest-"+fn, guestModule(DefaultModuleName, fn))
	require.NoError(t, err)
	return guest
}

func writeString(t *testing.T, mem api.Memory, slot, data uint32, s string) {
	t.Helper()
	require.True(t, mem.WriteUint32Le(slot, uint32(abi.TagString)))
	require.True(t, mem.WriteUint32Le(slot+4, 0))
	require.True(t, mem.WriteUint32Le(slot+8, data))
	require.True(t, mem.WriteUint32Le(slot+12, uint32(len(s))))
	require.True(t, mem.Write(data, append([]byte(s), 0)))
}

func callGuest(t *testing.T, guest api.Module, argc uint32) uint32 {
	t.Helper()
	res, err := guest.ExportedFunction("call").Call(context.Background(), argvAddr, uint64(argc), retAddr)
	require.NoError(t, err)
	require.Len(t, res, 1)
	return api.DecodeU32(res[0])
}

func readResult(t *testing.T, guest api.Module) (abi.Tag, uint64) {
	t.Helper()
	mem := guest.Memory()
	tag, ok := mem.ReadUint32Le(retAddr)
	require.True(t, ok)
	payload, ok := mem.ReadUint64Le(retAddr + 8)
	require.True(t, ok)
	return abi.Tag(tag), payload
}

func TestHost_IsDigit(t *testing.T) {
	host := newHost(t)
	guest := loadGuest(t, host, "is_digit")

	writeString(t, guest.Memory(), argvAddr, 2048, "7")
	assert.Equal(t, StatusOK, callGuest(t, guest, 1))
	tag, payload := readResult(t, guest)
	assert.Equal(t, abi.TagInteger, tag)
	assert.Equal(t, uint64(1), payload)

	writeString(t, guest.Memory(), argvAddr, 2048, "x")
	assert.Equal(t, StatusOK, callGuest(t, guest, 1))
	_, payload = readResult(t, guest)
	assert.Equal(t, uint64(0), payload)
}

func TestHost_Violation(t *testing.T) {
	host := newHost(t, WithAllocatorFactory(bumpFactory))
	guest := loadGuest(t, host, "is_digit")

	writeString(t, guest.Memory(), argvAddr, 2048, "77")
	assert.Equal(t, StatusViolation, callGuest(t, guest, 1))

	got, err := abi.NewDecoder(gc.New(gc.Config{}).Handle()).Load(NewMemory(guest.Memory()), retAddr)
	require.NoError(t, err)
	assert.Equal(t, "Expected 1 character, but got 2", got.Text())
}

func TestHost_StringResult(t *testing.T) {
	host := newHost(t, WithAllocatorFactory(bumpFactory))
	guest := loadGuest(t, host, "str_split")

	mem := guest.Memory()
	writeString(t, mem, argvAddr, 2048, "a,,b")
	writeString(t, mem, argvAddr+abi.SlotSize, 2100, ",")
	assert.Equal(t, StatusOK, callGuest(t, guest, 2))

	got, err := abi.NewDecoder(gc.New(gc.Config{}).Handle()).Load(NewMemory(mem), retAddr)
	require.NoError(t, err)
	assert.Equal(t, `["a", "b"]`, got.String())
}

func TestHost_NoAllocatorForString(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	host := newHost(t, WithLogger(zap.New(core)))
	guest := loadGuest(t, host, "explode")

	writeString(t, guest.Memory(), argvAddr, 2048, "ab")
	assert.Equal(t, StatusFailure, callGuest(t, guest, 1))
	assert.Equal(t, 1, logs.FilterMessage("store result").Len())
}

// fatalRecorder stands in for process exit on Fatal logs.
type fatalRecorder struct {
	hits int
}

func (f *fatalRecorder) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {
	f.hits++
}

func TestHost_ExhaustionIsFatal(t *testing.T) {
	ctx := context.Background()
	reg := native.NewRegistry()
	require.NoError(t, text.Register(reg))

	core, logs := observer.New(zapcore.DebugLevel)
	rec := &fatalRecorder{}
	mod := native.NewModule("t", gc.New(gc.Config{CallBudget: 8}))
	host, err := New(ctx, reg, mod, Config{},
		WithLogger(zap.New(core, zap.WithFatalHook(rec))),
		WithAllocatorFactory(bumpFactory))
	require.NoError(t, err)
	defer host.Close(ctx)

	guest, err := host.LoadGuest(ctx, "g", guestModule(DefaultModuleName, "explode"))
	require.NoError(t, err)
	writeString(t, guest.Memory(), argvAddr, 2048, "abcdefghijklmnop")

	_, err = guest.ExportedFunction("call").Call(ctx, argvAddr, 1, retAddr)
	require.Error(t, err)
	assert.Equal(t, 1, rec.hits)

	fatal := logs.FilterMessage("allocator exhausted in guest call").All()
	require.Len(t, fatal, 1)
	assert.Equal(t, zapcore.FatalLevel, fatal[0].Level)
	assert.Equal(t, "explode", fatal[0].ContextMap()["func"])
}

func TestHost_SharedLocker(t *testing.T) {
	ctx := context.Background()
	reg := native.NewRegistry()
	require.NoError(t, text.Register(reg))

	var mu sync.Mutex
	host, err := New(ctx, reg, native.NewModule("t", gc.New(gc.Config{})), Config{}, WithLocker(&mu))
	require.NoError(t, err)
	defer host.Close(ctx)

	guest, err := host.LoadGuest(ctx, "g", guestModule(DefaultModuleName, "is_digit"))
	require.NoError(t, err)
	writeString(t, guest.Memory(), argvAddr, 2048, "5")

	mu.Lock()
	done := make(chan uint32)
	go func() {
		res, err := guest.ExportedFunction("call").Call(ctx, argvAddr, 1, retAddr)
		if err != nil {
			done <- StatusFailure
			return
		}
		done <- api.DecodeU32(res[0])
	}()

	select {
	case <-done:
		t.Fatal("guest call ran while the shared lock was held")
	case <-time.After(50 * time.Millisecond):
	}
	mu.Unlock()
	assert.Equal(t, StatusOK, <-done)
}

func TestHost_LogsStoredResult(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	host := newHost(t, WithLogger(zap.New(core)), WithAllocatorFactory(bumpFactory))
	guest := loadGuest(t, host, "explode")

	writeString(t, guest.Memory(), argvAddr, 2048, "ab")
	assert.Equal(t, StatusOK, callGuest(t, guest, 1))

	stored := logs.FilterMessage("result stored").All()
	require.Len(t, stored, 1)
	ctxMap := stored[0].ContextMap()
	assert.Equal(t, int64(3), ctxMap["allocations"])
	assert.Equal(t, uint64(2*abi.SlotSize+4), ctxMap["bytes"])
}

func TestHost_BadArguments(t *testing.T) {
	host := newHost(t)
	guest := loadGuest(t, host, "is_digit")

	require.True(t, guest.Memory().WriteUint32Le(argvAddr, 77))
	assert.Equal(t, StatusFailure, callGuest(t, guest, 1))
}

func TestHost_MissingImports(t *testing.T) {
	host := newHost(t)

	_, err := host.LoadGuest(context.Background(), "bad", guestModule(DefaultModuleName, "no_such_native"))
	require.Error(t, err)

	var missing *errors.MissingImportsError
	require.True(t, stderrors.As(err, &missing))
	require.Len(t, missing.Imports, 1)
	assert.Equal(t, "native", missing.Imports[0].Module)
	assert.Equal(t, "no_such_native", missing.Imports[0].Function)
}

func TestHost_ModuleName(t *testing.T) {
	ctx := context.Background()
	reg := native.NewRegistry()
	require.NoError(t, text.Register(reg))

	host, err := New(ctx, reg, native.NewModule("t", gc.New(gc.Config{})), Config{ModuleName: "env"})
	require.NoError(t, err)
	defer host.Close(ctx)
	assert.Equal(t, "env", host.ModuleName())

	_, err = host.LoadGuest(ctx, "g", guestModule("env", "is_digit"))
	assert.NoError(t, err)
}

func TestHost_MemoryLimit(t *testing.T) {
	ctx := context.Background()
	reg := native.NewRegistry()
	require.NoError(t, text.Register(reg))

	host, err := New(ctx, reg, native.NewModule("t", gc.New(gc.Config{})), Config{MemoryLimitPages: 1})
	require.NoError(t, err)
	defer host.Close(ctx)

	guest, err := host.LoadGuest(ctx, "g", guestModule(DefaultModuleName, "is_digit"))
	require.NoError(t, err)

	_, ok := NewMemory(guest.Memory()).Grow(1)
	assert.False(t, ok)
}

func TestNew_Errors(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, nil, native.NewModule("t", gc.New(gc.Config{})), Config{})
	assert.Error(t, err)
	_, err = New(ctx, native.NewRegistry(), nil, Config{})
	assert.Error(t, err)
}
