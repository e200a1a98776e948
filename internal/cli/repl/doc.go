// Package repl provides the interactive loops of sipkv-cli.
//
// A remote REPL forwards each line to a server. A local REPL runs the same
// request grammar against an in-process table and adds meta-commands:
//
//	.save <file>   write the table as a text dump
//	.load <file>   add the entries of a text dump
//	.help          list commands
//	.q             exit
package repl
