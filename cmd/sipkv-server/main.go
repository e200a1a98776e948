package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"sync/atomic"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/sipkv/internal/core/query"
	"github.com/yndnr/sipkv/internal/infra/buildinfo"
	"github.com/yndnr/sipkv/internal/infra/confloader"
	"github.com/yndnr/sipkv/internal/infra/shutdown"
	"github.com/yndnr/sipkv/internal/server/config"
	"github.com/yndnr/sipkv/internal/server/httpserver"
	"github.com/yndnr/sipkv/internal/server/pollserver"
	"github.com/yndnr/sipkv/internal/storage"
	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/internal/telemetry/metric"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "sipkv-server",
		Usage:   "In-memory key-value server",
		Version: buildinfo.String(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to configuration file",
				EnvVars: []string{"SIPKV_CONFIG"},
			},
			&cli.StringFlag{Name: "addr", Usage: "IPv4 address to listen on"},
			&cli.IntFlag{Name: "port", Aliases: []string{"p"}, Usage: "TCP port to listen on"},
			&cli.StringFlag{Name: "backend", Usage: "storage backend (none, file, snapshot, badger)"},
			&cli.StringFlag{Name: "data", Usage: "storage path"},
			&cli.StringFlag{Name: "log-level", Usage: "log level (debug, info, warn, error)"},
		},
		Action: run,
	}
}

// flagOverrides maps explicitly set flags to configuration keys.
func flagOverrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	if c.IsSet("addr") {
		out["server.addr"] = c.String("addr")
	}
	if c.IsSet("port") {
		out["server.port"] = c.Int("port")
	}
	if c.IsSet("backend") {
		out["storage.backend"] = c.String("backend")
	}
	if c.IsSet("data") {
		out["storage.path"] = c.String("data")
	}
	if c.IsSet("log-level") {
		out["log.level"] = c.String("log-level")
	}
	return out
}

func run(c *cli.Context) error {
	loader := confloader.NewLoader(
		confloader.WithConfigFile(c.String("config")),
		confloader.WithOverrides(flagOverrides(c)),
	)
	cfg, err := loadConfig(loader)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := initLogger(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer log.Sync()

	log.Info("starting sipkv-server",
		"version", buildinfo.Version,
		"commit", buildinfo.Commit,
		"config", loader.FilePath())

	reg := metric.NewRegistry()

	store, err := initStorage(cfg, log)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}
	if b := store.Badger(); b != nil && cfg.Metrics.Enabled {
		b.RegisterMetrics(reg.Prometheus())
	}

	table := hashtable.New()
	if cfg.Storage.LoadOnStart {
		if _, err := store.Restore(c.Context, table); err != nil {
			store.Close()
			return fmt.Errorf("restore table: %w", err)
		}
	}

	exec := query.NewExecutor(table, log, reg)
	srv, err := pollserver.New(pollserver.Config{
		Host:       cfg.Server.Addr,
		Port:       cfg.Server.Port,
		Backlog:    cfg.Server.Backlog,
		MaxConns:   cfg.Server.MaxConns,
		BufferSize: cfg.Server.BufferSize,
	}, func(conn *pollserver.Conn, data []byte, addr net.Addr) {
		exec.Handle(conn, data, addr)
	}, pollserver.WithLogger(log), pollserver.WithMetrics(reg))
	if err != nil {
		store.Close()
		return fmt.Errorf("init server: %w", err)
	}

	handler := shutdown.NewHandler(shutdownTimeout, log)

	var (
		ready       atomic.Bool
		adminServer *httpserver.Server
	)
	if cfg.Metrics.Enabled {
		routerCfg := httpserver.DefaultRouterConfig()
		routerCfg.Registry = reg
		routerCfg.Ready = ready.Load
		routerCfg.Logger = log
		adminServer = httpserver.New(cfg.Metrics.Addr, httpserver.NewRouter(routerCfg))
		go func() {
			log.Info("admin endpoint listening", "addr", adminServer.Addr())
			if err := adminServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("admin server error", "error", err)
			}
		}()
	}

	watcher := watchConfig(loader, log)

	// Hooks run in reverse registration order.
	if watcher != nil {
		handler.OnShutdown("config watcher", func(context.Context) error {
			return watcher.Stop()
		})
	}
	if adminServer != nil {
		handler.OnShutdown("admin server", adminServer.Shutdown)
	}
	handler.OnShutdown("storage", func(context.Context) error {
		return store.Close()
	})
	handler.OnShutdown("listener", func(context.Context) error {
		return srv.Close()
	})

	runErr := make(chan error, 1)
	handler.OnShutdown("table", func(ctx context.Context) error {
		ready.Store(false)
		srv.Stop()
		select {
		case err := <-runErr:
			if err != nil && !errors.Is(err, pollserver.ErrServerClosed) {
				log.Warn("event loop ended with error", "error", err)
			}
		case <-ctx.Done():
			return ctx.Err()
		}

		var err error
		if cfg.Storage.SaveOnShutdown {
			err = store.Persist(ctx, table)
		}
		table.Destroy()
		return err
	})

	ready.Store(true)
	go func() {
		err := srv.Run()
		runErr <- err
		if err != nil {
			log.Error("event loop failed", "error", err)
			handler.Trigger("event loop failed")
		}
	}()

	log.Info("server started, press Ctrl+C to stop", "addr", srv.Addr().String())
	if err := handler.Wait(); err != nil {
		log.Error("shutdown error", "error", err)
		return err
	}

	log.Info("server stopped gracefully")
	return nil
}

// loadConfig loads defaults, then the file, environment and flag overrides.
func loadConfig(loader *confloader.Loader) (*config.ServerConfig, error) {
	return decodeConfig(loader.Load)
}

func decodeConfig(load func(target any) error) (*config.ServerConfig, error) {
	cfg := config.Default()
	if err := load(cfg); err != nil {
		return nil, err
	}
	cfg = config.Sanitize(cfg)
	if err := config.Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func initLogger(cfg *config.ServerConfig) (logger.Logger, error) {
	log, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     os.Stderr,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, err
	}
	logger.SetDefault(log)
	return log, nil
}

func initStorage(cfg *config.ServerConfig, log logger.Logger) (*storage.Engine, error) {
	storageCfg := storage.DefaultConfig()
	storageCfg.Backend = cfg.Storage.Backend
	storageCfg.Path = cfg.Storage.Path
	storageCfg.SnapshotKeep = cfg.Storage.SnapshotKeep
	storageCfg.Logger = log

	if cfg.Storage.Backend == storage.BackendFile {
		format, err := codec.ParseFormat(cfg.Storage.Format)
		if err != nil {
			return nil, err
		}
		storageCfg.Format = format
	}
	return storage.New(storageCfg)
}

// watchConfig reapplies the log level whenever the config file changes. Other
// settings take effect on restart.
func watchConfig(loader *confloader.Loader, log logger.Logger) *confloader.Watcher {
	if loader.FilePath() == "" {
		return nil
	}
	w, err := confloader.NewWatcher(confloader.WithWatcherLogger(log))
	if err != nil {
		log.Warn("config watcher disabled", "error", err)
		return nil
	}
	if err := w.Watch(loader.FilePath()); err != nil {
		log.Warn("config watcher disabled", "error", err)
		w.Stop()
		return nil
	}
	w.OnChange(func(path string) {
		cfg, err := decodeConfig(loader.Reload)
		if err != nil {
			log.Warn("config reload rejected", "path", path, "error", err)
			return
		}
		if cfg.Log.Level != logger.GetLevel() {
			logger.SetLevel(cfg.Log.Level)
			log.Info("log level changed", "level", cfg.Log.Level)
		}
	})
	w.StartAsync()
	return w
}
