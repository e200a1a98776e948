// Package output renders sipkv-cli results as a table, JSON or YAML, and
// colors REPL status lines when stdout is a terminal.
package output
