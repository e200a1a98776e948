// Package command defines the sipkv-cli commands with urfave/cli/v2:
//
//   - exec: send requests to a server and print the replies
//   - repl: interactive session against a server
//   - local: interactive session against an in-process table
//   - inspect: list the records of a dump file
//   - version: print build information
package command
