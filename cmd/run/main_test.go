package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/native"
	"github.com/wippyai/native-runtime/value"
	"github.com/wippyai/native-runtime/variant"
)

func TestConvertArg(t *testing.T) {
	h := gc.New(gc.Config{}).Handle()

	v, err := convertArg(h, "42", native.IntType)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v.Int())

	_, err = convertArg(h, "4x", native.IntType)
	assert.Error(t, err)

	v, err = convertArg(h, "[1]", native.StringType)
	require.NoError(t, err)
	assert.Equal(t, "[1]", v.Text(), "strings are taken verbatim")

	v, err = convertArg(h, `[1,"a"]`, nil)
	require.NoError(t, err)
	assert.Equal(t, `[1, "a"]`, v.String())

	_, err = convertArg(h, `{`, nil)
	assert.Error(t, err)
}

func TestConvertArgs_ExtraArgsUseJSON(t *testing.T) {
	h := gc.New(gc.Config{}).Handle()
	entry := &native.Entry{Name: "f", Sig: native.Signature{
		Params: []native.Param{{Name: "s", Type: native.StringType}},
	}}

	args, err := convertArgs(h, entry, []string{"7", "7"})
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.True(t, args[0].IsString())
	assert.True(t, args[1].IsInteger())

	_, err = convertArgs(h, entry, []string{"x", "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "argument 1")
}

func TestRun_Call(t *testing.T) {
	var out bytes.Buffer
	err := run(options{funcName: "str_split", args: argList{"a b  c", " "}, format: "text"}, &out)
	require.NoError(t, err)
	assert.Equal(t, `["a", "b", "c"]`+"\n", out.String())

	out.Reset()
	err = run(options{funcName: "ffi_to_int", args: argList{"  -12abc"}, format: "json", stats: true}, &out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "-12", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "heap: "), lines[1])
}

func TestRun_Errors(t *testing.T) {
	var out bytes.Buffer
	assert.Error(t, run(options{funcName: "nope"}, &out))
	assert.Error(t, run(options{funcName: "is_digit", args: argList{"12"}}, &out))
	assert.Error(t, run(options{funcName: "is_digit", args: argList{"1"}, format: "xml"}, &out))
	assert.Error(t, run(options{configFile: filepath.Join(t.TempDir(), "missing.toml"), list: true}, &out))
}

func TestRun_ListAndSchema(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(options{list: true}, &out))
	assert.Contains(t, out.String(), "str_index(s: string, i: s64) -> option<string>")

	out.Reset()
	require.NoError(t, run(options{schema: true}, &out))
	assert.Contains(t, out.String(), `"natives"`)
}

func TestRun_ConfigDisables(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"error\"\n[natives]\ndisabled = [\"which\"]\n"), 0o644))

	var out bytes.Buffer
	require.NoError(t, run(options{configFile: path, list: true}, &out))
	assert.NotContains(t, out.String(), "which")
	assert.Error(t, run(options{configFile: path, funcName: "which", args: argList{"x"}}, &out))
}

func TestPrinter_CBOR(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, newPrinter(&out, false).result(value.Integer(1), "cbor"))
	assert.Equal(t, "01\n", out.String())
}

func TestDescribe(t *testing.T) {
	h := gc.New(gc.Config{}).Handle()

	assert.Equal(t, "5", describe(value.Integer(5)))
	assert.True(t, strings.HasSuffix(describe(variant.EncodeNone(h)), "\n\nNone"))
	assert.True(t, strings.HasSuffix(describe(variant.EncodeSome(h, value.StringOf(h, "lo"))), `Some("lo")`))
}

func TestFormatStats(t *testing.T) {
	s := formatStats(gc.Stats{Allocs: 1200, Bytes: 2048, CallBytes: 10, Collections: 3})
	assert.Equal(t, "heap: 1,200 allocations, 2.0 kB total, 10 B in last call, 3 collections", s)
}
