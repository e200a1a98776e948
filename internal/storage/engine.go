package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/internal/storage/snapshot"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

// Backend names.
const (
	BackendNone     = "none"
	BackendFile     = "file"
	BackendSnapshot = "snapshot"
	BackendBadger   = "badger"
)

// Backends lists the accepted backend names.
var Backends = []string{BackendNone, BackendFile, BackendSnapshot, BackendBadger}

// ErrUnknownBackend is returned by New for an unrecognized backend name.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Config configures the storage engine.
type Config struct {
	// Backend is one of Backends. Empty means none.
	Backend string

	// Path is the dump file (file) or directory (snapshot, badger).
	Path string

	// Format is the codec format of the file backend.
	Format codec.Format

	// SnapshotKeep is how many snapshots survive a Persist.
	SnapshotKeep int

	Badger BadgerConfig

	Logger logger.Logger
}

// DefaultConfig returns a configuration that persists nothing.
func DefaultConfig() Config {
	return Config{
		Backend:      BackendNone,
		Format:       codec.FormatBinary,
		SnapshotKeep: snapshot.DefaultRetentionCount,
		Badger:       DefaultBadgerConfig(),
	}
}

// backend moves a whole table to and from one kind of storage.
type backend interface {
	load(ctx context.Context, t *hashtable.Table) (codec.Stats, error)
	save(ctx context.Context, t *hashtable.Table) error
	close() error
}

// Engine restores a table before the server starts and persists it after the
// server stops. It is not safe for concurrent use.
type Engine struct {
	name    string
	backend backend
	badger  *BadgerEngine
	logger  logger.Logger
}

// New opens the configured backend.
func New(cfg Config) (*Engine, error) {
	log := logger.OrDefault(cfg.Logger).With("component", "storage")
	if cfg.Backend == "" {
		cfg.Backend = BackendNone
	}

	e := &Engine{name: cfg.Backend, logger: log}

	switch cfg.Backend {
	case BackendNone:
		e.backend = noneBackend{}

	case BackendFile:
		if cfg.Format == "" {
			cfg.Format = codec.FormatBinary
		}
		fs, err := NewFileStore(cfg.Path, cfg.Format)
		if err != nil {
			return nil, err
		}
		e.backend = fileBackend{fs}

	case BackendSnapshot:
		m, err := snapshot.NewManager(snapshot.Config{Dir: cfg.Path, RetentionCount: cfg.SnapshotKeep})
		if err != nil {
			return nil, err
		}
		e.backend = &snapshotBackend{manager: m, logger: log}

	case BackendBadger:
		b, err := NewBadgerEngine(cfg.Path, cfg.Badger, log)
		if err != nil {
			return nil, err
		}
		e.backend = badgerBackend{b}
		e.badger = b

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
	}

	return e, nil
}

// Backend returns the configured backend name.
func (e *Engine) Backend() string { return e.name }

// Badger returns the Badger engine, or nil for other backends.
func (e *Engine) Badger() *BadgerEngine { return e.badger }

// Restore adds the persisted entries to t and returns how many were added.
func (e *Engine) Restore(ctx context.Context, t *hashtable.Table) (int, error) {
	start := time.Now()
	st, err := e.backend.load(ctx, t)
	if err != nil {
		return st.Added, fmt.Errorf("storage: restore: %w", err)
	}
	if e.name != BackendNone {
		e.logger.Info("table restored",
			"backend", e.name,
			"records", st.Records,
			"added", st.Added,
			"duplicates", st.Duplicates,
			"elapsed", time.Since(start))
	}
	return st.Added, nil
}

// Persist writes every entry of t to the backend.
func (e *Engine) Persist(ctx context.Context, t *hashtable.Table) error {
	start := time.Now()
	if err := e.backend.save(ctx, t); err != nil {
		return fmt.Errorf("storage: persist: %w", err)
	}
	if e.name != BackendNone {
		e.logger.Info("table persisted",
			"backend", e.name,
			"entries", t.Len(),
			"elapsed", time.Since(start))
	}
	return nil
}

// Close releases the backend.
func (e *Engine) Close() error {
	return e.backend.close()
}

type noneBackend struct{}

func (noneBackend) load(context.Context, *hashtable.Table) (codec.Stats, error) {
	return codec.Stats{}, nil
}
func (noneBackend) save(context.Context, *hashtable.Table) error { return nil }
func (noneBackend) close() error                                 { return nil }

type fileBackend struct{ fs *FileStore }

func (b fileBackend) load(_ context.Context, t *hashtable.Table) (codec.Stats, error) {
	return b.fs.Load(t)
}
func (b fileBackend) save(_ context.Context, t *hashtable.Table) error { return b.fs.Save(t) }
func (b fileBackend) close() error                                    { return nil }

type snapshotBackend struct {
	manager *snapshot.Manager
	logger  logger.Logger
}

func (b *snapshotBackend) load(_ context.Context, t *hashtable.Table) (codec.Stats, error) {
	info, st, err := b.manager.Load(t)
	if errors.Is(err, snapshot.ErrNoSnapshots) {
		return codec.Stats{}, nil
	}
	if err != nil {
		return st, err
	}
	b.logger.Debug("snapshot loaded", "id", info.ID, "size", info.Size)
	return st, nil
}

func (b *snapshotBackend) save(_ context.Context, t *hashtable.Table) error {
	info, err := b.manager.Create(t)
	if err != nil {
		return err
	}
	b.logger.Debug("snapshot created", "id", info.ID, "size", info.Size, "checksum", info.Checksum)
	if err := b.manager.Prune(); err != nil {
		b.logger.Warn("snapshot prune failed", "error", err)
	}
	return nil
}

func (b *snapshotBackend) close() error { return nil }

type badgerBackend struct{ engine *BadgerEngine }

func (b badgerBackend) load(ctx context.Context, t *hashtable.Table) (codec.Stats, error) {
	return b.engine.Import(ctx, t)
}
func (b badgerBackend) save(ctx context.Context, t *hashtable.Table) error {
	return b.engine.Export(ctx, t)
}
func (b badgerBackend) close() error { return b.engine.Close() }
