// Package config loads runtime configuration from TOML.
//
//	[log]
//	level = "debug"
//	development = true
//
//	[heap]
//	call_budget = 1048576
//	collect_threshold = 8388608
//	max_alloc = 65536
//
//	[wasm]
//	module_name = "native"
//	memory_limit_pages = 256
//
//	[natives]
//	disabled = ["which"]
//
// Missing sections keep their defaults. Schema returns a JSON schema for
// editors and tooling.
package config
