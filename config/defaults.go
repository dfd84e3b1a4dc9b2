package config

import (
	"github.com/spf13/viper"
)

// ConfigFileName is searched for from the working directory upwards.
const ConfigFileName = "callgen.toml"

// SetDefaults configures default values for all configuration options
func SetDefaults(v *viper.Viper) {
	v.SetDefault("generate.output", "./generated")
	v.SetDefault("generate.languages", []string{"go"})
	v.SetDefault("generate.default_input_format", "json")
	v.SetDefault("generate.default_output_format", "json")
	v.SetDefault("generate.wasm_exports", false)
	v.SetDefault("generate.call_out", true)
	v.SetDefault("generate.parallelism", 0)
	v.SetDefault("generate.fetch_dir", ".callgen/fetch")

	v.SetDefault("run.state_db", ":memory:")
	v.SetDefault("run.memory_limit_pages", 256) // 16 MiB
	v.SetDefault("run.timeout_seconds", 10)

	v.SetDefault("log.json", false)
}
