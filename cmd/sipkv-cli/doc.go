// Package main provides the entry point for sipkv-cli.
//
// sipkv-cli talks to a running sipkv-server, either one request at a time
// (exec) or interactively (repl). The local subcommand runs the same query
// language against a private in-process table without any server.
package main
