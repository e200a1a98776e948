package config

// ServerConfig is the root configuration for sipkv-server.
type ServerConfig struct {
	Server  ServerSection  `koanf:"server"`
	Storage StorageSection `koanf:"storage"`
	Metrics MetricsSection `koanf:"metrics"`
	Log     LogSection     `koanf:"log"`
}

// ServerSection configures the query listener.
type ServerSection struct {
	// Addr is the IPv4 address the listener binds to.
	Addr string `koanf:"addr"`

	Port int `koanf:"port"`

	// Backlog is the listen queue length.
	Backlog int `koanf:"backlog"`

	// MaxConns is the number of concurrently served clients. Further
	// connections are accepted and closed immediately.
	MaxConns int `koanf:"max_conns"`

	// BufferSize bounds the bytes read from a client per readiness event.
	BufferSize int `koanf:"buffer_size"`
}

// StorageSection configures table persistence.
type StorageSection struct {
	// Backend is one of none, file, snapshot, badger.
	Backend string `koanf:"backend"`

	// Path is the dump file (file) or directory (snapshot, badger).
	Path string `koanf:"path"`

	// Format is the codec used by the file backend: text or binary.
	Format string `koanf:"format"`

	LoadOnStart    bool `koanf:"load_on_start"`
	SaveOnShutdown bool `koanf:"save_on_shutdown"`

	SnapshotKeep int `koanf:"snapshot_keep"`
}

// MetricsSection configures the Prometheus endpoint.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`

	// File enables rotating file output instead of stderr.
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
	Compress   bool   `koanf:"compress"`
}
