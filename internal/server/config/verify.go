package config

import (
	"errors"
	"fmt"
	"net"
	"slices"
)

var (
	validBackends   = []string{"none", "file", "snapshot", "badger"}
	validFormats    = []string{"text", "binary"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"json", "text", "console"}
)

// Verify validates the configuration.
func Verify(cfg *ServerConfig) error {
	if err := verifyServer(&cfg.Server); err != nil {
		return err
	}
	if err := verifyStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := verifyMetrics(&cfg.Metrics); err != nil {
		return err
	}
	return verifyLog(&cfg.Log)
}

func verifyServer(cfg *ServerSection) error {
	ip := net.ParseIP(cfg.Addr)
	if ip == nil || ip.To4() == nil {
		return fmt.Errorf("server.addr %q is not an IPv4 address", cfg.Addr)
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", cfg.Port)
	}
	if cfg.Backlog < 1 {
		return errors.New("server.backlog must be at least 1")
	}
	if cfg.MaxConns < 1 {
		return errors.New("server.max_conns must be at least 1")
	}
	if cfg.BufferSize < 1 {
		return errors.New("server.buffer_size must be at least 1")
	}
	return nil
}

func verifyStorage(cfg *StorageSection) error {
	if !slices.Contains(validBackends, cfg.Backend) {
		return fmt.Errorf("storage.backend %q must be one of %v", cfg.Backend, validBackends)
	}
	if cfg.Backend == "none" {
		return nil
	}
	if cfg.Path == "" {
		return fmt.Errorf("storage.path is required for backend %q", cfg.Backend)
	}
	if cfg.Backend == "file" && !slices.Contains(validFormats, cfg.Format) {
		return fmt.Errorf("storage.format %q must be one of %v", cfg.Format, validFormats)
	}
	if cfg.Backend == "snapshot" && cfg.SnapshotKeep < 1 {
		return errors.New("storage.snapshot_keep must be at least 1")
	}
	return nil
}

func verifyMetrics(cfg *MetricsSection) error {
	if !cfg.Enabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(cfg.Addr); err != nil {
		return fmt.Errorf("metrics.addr: %w", err)
	}
	return nil
}

func verifyLog(cfg *LogSection) error {
	if !slices.Contains(validLogLevels, cfg.Level) {
		return fmt.Errorf("log.level %q must be one of %v", cfg.Level, validLogLevels)
	}
	if !slices.Contains(validLogFormats, cfg.Format) {
		return fmt.Errorf("log.format %q must be one of %v", cfg.Format, validLogFormats)
	}
	return nil
}
