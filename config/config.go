package config

import (
	"encoding/json"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
	"github.com/invopop/jsonschema"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/native-runtime/errors"
	"github.com/wippyai/native-runtime/gc"
	"github.com/wippyai/native-runtime/wasmhost"
)

// Config is the runtime configuration, usually read from a TOML file.
type Config struct {
	Log     LogConfig     `toml:"log" json:"log"`
	Heap    HeapConfig    `toml:"heap" json:"heap"`
	Wasm    WasmConfig    `toml:"wasm" json:"wasm"`
	Natives NativesConfig `toml:"natives" json:"natives"`
}

// LogConfig selects the zap logger.
type LogConfig struct {
	Level       string `toml:"level" json:"level" validate:"oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error,default=info"`
	Development bool   `toml:"development" json:"development" jsonschema:"description=human-readable console output"`
}

// HeapConfig bounds the allocator handle. Zero means unlimited.
type HeapConfig struct {
	CallBudget       uint64 `toml:"call_budget" json:"call_budget" jsonschema:"description=bytes one native call may allocate"`
	CollectThreshold uint64 `toml:"collect_threshold" json:"collect_threshold" jsonschema:"description=bytes allocated between collection passes"`
	MaxAlloc         uint64 `toml:"max_alloc" json:"max_alloc" jsonschema:"description=largest single allocation in bytes"`
}

// WasmConfig configures the guest host module.
type WasmConfig struct {
	ModuleName       string `toml:"module_name" json:"module_name" validate:"required,printascii" jsonschema:"default=native"`
	MemoryLimitPages uint32 `toml:"memory_limit_pages" json:"memory_limit_pages" validate:"lte=65536" jsonschema:"maximum=65536"`
}

// NativesConfig selects which natives are exposed.
type NativesConfig struct {
	Disabled []string `toml:"disabled" json:"disabled" validate:"dive,required" jsonschema:"description=natives left out of the registry"`
}

var validate = validator.New()

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log:  LogConfig{Level: "info"},
		Wasm: WasmConfig{ModuleName: wasmhost.DefaultModuleName},
	}
}

// Parse reads TOML over the defaults and validates the result. Unknown keys
// are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, errors.Config("parse toml", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.Config("unknown keys: "+strings.Join(keys, ", "), nil)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Config("read "+path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		if e, ok := err.(*errors.Error); ok {
			e.Path = []string{path}
		}
		return nil, err
	}
	return cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Config("invalid configuration", err)
	}
	return nil
}

// CheckNatives rejects disabled entries that name no known native.
func (c *Config) CheckNatives(known []string) error {
	var unknown []string
	for _, name := range c.Natives.Disabled {
		if !slices.Contains(known, name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return errors.Config("unknown natives in natives.disabled: "+strings.Join(unknown, ", "), nil)
	}
	return nil
}

// IsDisabled reports whether name is listed in natives.disabled.
func (c *Config) IsDisabled(name string) bool {
	return slices.Contains(c.Natives.Disabled, name)
}

// GC converts the heap section.
func (h HeapConfig) GC() gc.Config {
	return gc.Config{
		CallBudget:       h.CallBudget,
		CollectThreshold: h.CollectThreshold,
		MaxAlloc:         h.MaxAlloc,
	}
}

// Host converts the wasm section.
func (w WasmConfig) Host() wasmhost.Config {
	return wasmhost.Config{
		ModuleName:       w.ModuleName,
		MemoryLimitPages: w.MemoryLimitPages,
	}
}

// Build constructs the configured zap logger.
func (l LogConfig) Build() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(l.Level)
	if err != nil {
		return nil, errors.Config("log level", err)
	}

	var zc zap.Config
	if l.Development {
		zc = zap.NewDevelopmentConfig()
	} else {
		zc = zap.NewProductionConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}

	logger, err := zc.Build()
	if err != nil {
		return nil, errors.Config("build logger", err)
	}
	return logger, nil
}

// Schema returns the JSON schema of the configuration file.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		ExpandedStruct: true,
	}
	schema := reflector.Reflect(&Config{})

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, errors.Config("marshal schema", err)
	}
	return data, nil
}
