// Package tests holds end-to-end tests that run the query listener, the
// executor, the CLI client and the storage engine together.
package tests
