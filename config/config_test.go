package config

import (
	"encoding/json"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/native-runtime/errors"
)

func isConfigErr(err error) bool {
	return stderrors.Is(err, &errors.Error{Phase: errors.PhaseConfig, Kind: errors.KindInvalidInput})
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "native", cfg.Wasm.ModuleName)
	assert.Zero(t, cfg.Heap.GC().CallBudget)
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[log]
level = "debug"

[heap]
call_budget = 4096
collect_threshold = 1024
max_alloc = 512

[wasm]
memory_limit_pages = 16

[natives]
disabled = ["which"]
`))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "native", cfg.Wasm.ModuleName, "defaults survive partial sections")

	g := cfg.Heap.GC()
	assert.Equal(t, uint64(4096), g.CallBudget)
	assert.Equal(t, uint64(1024), g.CollectThreshold)
	assert.Equal(t, uint64(512), g.MaxAlloc)

	h := cfg.Wasm.Host()
	assert.Equal(t, uint32(16), h.MemoryLimitPages)
	assert.Equal(t, "native", h.ModuleName)

	assert.True(t, cfg.IsDisabled("which"))
	assert.False(t, cfg.IsDisabled("explode"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"syntax", `[log`},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"too many pages", "[wasm]\nmemory_limit_pages = 70000"},
		{"empty module name", "[wasm]\nmodule_name = \"\""},
		{"empty disabled entry", "[natives]\ndisabled = [\"\"]"},
		{"unknown key", "[heap]\ncall_budgett = 1"},
		{"wrong type", "[heap]\ncall_budget = \"big\""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.in))
			require.Error(t, err)
			assert.True(t, isConfigErr(err), "got %v", err)
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "runtime.toml")
	require.NoError(t, os.WriteFile(path, []byte("[log]\nlevel = \"warn\"\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)

	_, err = Load(filepath.Join(dir, "missing.toml"))
	assert.True(t, isConfigErr(err))

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("[log]\nlevel = 3\n"), 0o644))
	_, err = Load(bad)
	require.Error(t, err)
	var e *errors.Error
	require.True(t, stderrors.As(err, &e))
	assert.Equal(t, []string{bad}, e.Path)
}

func TestCheckNatives(t *testing.T) {
	cfg := Default()
	cfg.Natives.Disabled = []string{"which", "nope"}

	err := cfg.CheckNatives([]string{"which", "explode"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
	assert.NotContains(t, err.Error(), "which,")

	cfg.Natives.Disabled = []string{"which"}
	assert.NoError(t, cfg.CheckNatives([]string{"which", "explode"}))
}

func TestLogConfig_Build(t *testing.T) {
	logger, err := LogConfig{Level: "warn"}.Build()
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))

	logger, err = LogConfig{Level: "debug", Development: true}.Build()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = LogConfig{Level: "chatty"}.Build()
	assert.Error(t, err)
}

func TestSchema(t *testing.T) {
	data, err := Schema()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	props, ok := doc["properties"].(map[string]any)
	require.True(t, ok, "schema has expanded properties")
	for _, key := range []string{"log", "heap", "wasm", "natives"} {
		assert.Contains(t, props, key)
	}
}
