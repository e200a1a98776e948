package config

// Default configuration values.
const (
	DefaultAddr       = "127.0.0.1"
	DefaultPort       = 1337
	DefaultBacklog    = 20
	DefaultMaxConns   = 20
	DefaultBufferSize = 1024

	DefaultStorageBackend = "none"
	DefaultStoragePath    = "sipkv.db"
	DefaultStorageFormat  = "binary"
	DefaultSnapshotKeep   = 5

	DefaultMetricsAddr = "127.0.0.1:9337"

	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
	DefaultLogMaxSizeMB  = 100
	DefaultLogMaxBackups = 3
	DefaultLogMaxAgeDays = 28
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Addr:       DefaultAddr,
			Port:       DefaultPort,
			Backlog:    DefaultBacklog,
			MaxConns:   DefaultMaxConns,
			BufferSize: DefaultBufferSize,
		},
		Storage: StorageSection{
			Backend:        DefaultStorageBackend,
			Path:           DefaultStoragePath,
			Format:         DefaultStorageFormat,
			LoadOnStart:    true,
			SaveOnShutdown: true,
			SnapshotKeep:   DefaultSnapshotKeep,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Addr:    DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:      DefaultLogLevel,
			Format:     DefaultLogFormat,
			MaxSizeMB:  DefaultLogMaxSizeMB,
			MaxBackups: DefaultLogMaxBackups,
			MaxAgeDays: DefaultLogMaxAgeDays,
		},
	}
}
