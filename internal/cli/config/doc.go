// Package config holds sipkv-cli preferences read from ~/.sipkv/cli.yaml.
// Command-line flags and SIPKV_CLI_* environment variables take precedence.
package config
