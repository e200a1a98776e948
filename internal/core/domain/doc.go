// Package domain defines the request model and error codes shared by the
// sipkv dispatcher, server, and CLI.
//
//   - Verb and Request: a parsed client request
//   - Errors: coded outcomes for requests that did not succeed
//
// The package has no IO dependencies.
package domain
