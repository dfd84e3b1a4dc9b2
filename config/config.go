// Package config loads callgen settings from callgen.toml and CALLGEN_*
// environment variables.
package config

// Config is the full callgen configuration.
type Config struct {
	Generate GenerateConfig `mapstructure:"generate"`
	Run      RunConfig      `mapstructure:"run"`
	Log      LogConfig      `mapstructure:"log"`
}

// GenerateConfig controls the stub generator.
type GenerateConfig struct {
	// Output directory for generated files
	Output string `mapstructure:"output"`
	// Package overrides the descriptor's Go package name
	Package string `mapstructure:"package"`
	// Languages lists emitters to run ("go", "markdown")
	Languages []string `mapstructure:"languages"`

	DefaultInputFormat  string `mapstructure:"default_input_format"`
	DefaultOutputFormat string `mapstructure:"default_output_format"`

	// WasmExports emits a wasip1 file with //go:wasmexport entry points
	WasmExports bool `mapstructure:"wasm_exports"`
	// CallOut emits outbound call helpers per method
	CallOut bool `mapstructure:"call_out"`
	// Parallelism bounds concurrent method generation; 0 = unbounded
	Parallelism int `mapstructure:"parallelism"`
	// PostHook runs after files are written, e.g. "gofmt -l ."
	PostHook string `mapstructure:"post_hook"`
	// FetchDir caches descriptors fetched from remote sources
	FetchDir string `mapstructure:"fetch_dir"`
}

// RunConfig controls the wasm host used by `callgen run`.
type RunConfig struct {
	StateDB          string `mapstructure:"state_db"`
	MemoryLimitPages uint32 `mapstructure:"memory_limit_pages"`
	TimeoutSeconds   int    `mapstructure:"timeout_seconds"`
}

// LogConfig controls logger output.
type LogConfig struct {
	JSON bool `mapstructure:"json"`
}
