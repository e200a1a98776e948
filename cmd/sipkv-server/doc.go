// Package main provides the entry point for sipkv-server.
//
// sipkv-server keeps one in-memory table and serves it to TCP clients over a
// line-oriented text protocol:
//
//	insert <key> <type> <value>
//	select <key>
//	delete <key>
//	replace <key> <type> <value>
//
// The table is optionally restored from and persisted to one of the storage
// backends (file, snapshot, badger) around the lifetime of the listener.
//
// Usage:
//
//	sipkv-server [flags]
//	sipkv-server --config /etc/sipkv/server.yaml
package main
