// Package query turns request text into operations on a hashtable.Table and
// renders the plain-text replies.
//
// Grammar, one request per read:
//
//	insert <key> <type> <value>
//	select <key>
//	delete <key>
//	replace <key> <type> <value>
//
// Tokens are separated by runs of spaces. The value is everything after the
// single space that follows the type token, so text values may contain
// spaces. A trailing "\n" or "\r\n" is ignored.
//
// An Executor is not safe for concurrent use; it is driven by the server's
// single event loop.
package query
