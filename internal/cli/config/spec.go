package config

// CLIConfig is the configuration for sipkv-cli.
type CLIConfig struct {
	// Server is the default server address.
	Server string `yaml:"server"`

	// Output is the default output format: table, json or yaml.
	Output string `yaml:"output"`

	// Timeout is the per-request timeout, as a duration string.
	Timeout string `yaml:"timeout"`

	// Color controls REPL coloring: auto, always or never.
	Color string `yaml:"color"`

	// HistoryFile stores REPL history. Empty disables persistence.
	HistoryFile string `yaml:"history_file"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:  "127.0.0.1:1337",
		Output:  "table",
		Timeout: "5s",
		Color:   "auto",
	}
}
