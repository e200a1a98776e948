// Package connection is the sipkv-cli client for the server's line
// protocol. Each request is written with one write and answered by one
// unterminated reply, so the client reads a single chunk per request.
package connection
