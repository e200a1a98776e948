// Package buildinfo exposes version information injected at build time:
//
//	go build -ldflags "-X github.com/yndnr/sipkv/internal/infra/buildinfo.Version=v1.0.0"
//
// Commit falls back to the VCS revision recorded by the Go toolchain when
// not set through ldflags.
package buildinfo
