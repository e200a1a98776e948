package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/yndnr/sipkv/internal/storage/codec"
	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

func TestEngine_Backends(t *testing.T) {
	tests := []struct {
		backend string
		path    func(dir string) string
		format  codec.Format
	}{
		{BackendFile, func(dir string) string { return filepath.Join(dir, "dump.txt") }, codec.FormatText},
		{BackendFile, func(dir string) string { return filepath.Join(dir, "dump.bin") }, codec.FormatBinary},
		{BackendSnapshot, func(dir string) string { return filepath.Join(dir, "snapshots") }, ""},
		{BackendBadger, func(dir string) string { return filepath.Join(dir, "badger") }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.backend+"/"+string(tt.format), func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Backend = tt.backend
			cfg.Path = tt.path(t.TempDir())
			if tt.format != "" {
				cfg.Format = tt.format
			}
			cfg.Badger.GCInterval = "1h"
			cfg.Logger = logger.NewNop()

			ctx := context.Background()

			e, err := New(cfg)
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if e.Backend() != tt.backend {
				t.Errorf("Backend() = %q, want %q", e.Backend(), tt.backend)
			}

			// Nothing persisted yet.
			n, err := e.Restore(ctx, hashtable.New())
			if err != nil || n != 0 {
				t.Fatalf("first Restore = %d, %v; want 0, nil", n, err)
			}

			src := testTable(40)
			src.Add([]byte("greeting"), hashtable.NewTextString("hello world"))
			if err := e.Persist(ctx, src); err != nil {
				t.Fatalf("Persist: %v", err)
			}
			if err := e.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			e, err = New(cfg)
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer e.Close()

			dst := hashtable.New()
			n, err = e.Restore(ctx, dst)
			if err != nil {
				t.Fatalf("Restore: %v", err)
			}
			if n != 41 || dst.Len() != 41 {
				t.Fatalf("Restore added %d (Len %d), want 41", n, dst.Len())
			}
			if got := dst.Find([]byte("greeting")); got.Text() != "hello world" {
				t.Errorf("greeting = %q", got.Text())
			}
		})
	}
}

func TestEngine_None(t *testing.T) {
	e, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	if e.Backend() != BackendNone {
		t.Errorf("Backend() = %q, want none", e.Backend())
	}
	if e.Badger() != nil {
		t.Error("Badger() should be nil for backend none")
	}
	ctx := context.Background()
	if err := e.Persist(ctx, testTable(3)); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	dst := hashtable.New()
	if n, err := e.Restore(ctx, dst); err != nil || n != 0 || dst.Len() != 0 {
		t.Errorf("Restore = %d, %v, Len %d; want empty", n, err, dst.Len())
	}
}

func TestEngine_UnknownBackend(t *testing.T) {
	_, err := New(Config{Backend: "s3"})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestEngine_SnapshotRetention(t *testing.T) {
	dir := t.TempDir()
	e, err := New(Config{Backend: BackendSnapshot, Path: dir, SnapshotKeep: 2, Logger: logger.NewNop()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer e.Close()

	for i := 1; i <= 4; i++ {
		if err := e.Persist(context.Background(), testTable(i)); err != nil {
			t.Fatalf("Persist %d: %v", i, err)
		}
	}

	matches, err := filepath.Glob(filepath.Join(dir, "snapshot-*.snap"))
	if err != nil {
		t.Fatal(err)
	}
	if len(matches) != 2 {
		t.Errorf("snapshots on disk = %d, want 2", len(matches))
	}

	dst := hashtable.New()
	if n, err := e.Restore(context.Background(), dst); err != nil || n != 4 {
		t.Errorf("Restore = %d, %v; want newest (4 entries)", n, err)
	}
}

func TestFileStore_CorruptDump(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dump.txt")
	if err := os.WriteFile(path, []byte("1 k 9 v\n"), 0600); err != nil {
		t.Fatal(err)
	}
	fs, err := NewFileStore(path, codec.FormatText)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fs.Load(hashtable.New()); err == nil {
		t.Error("Load of corrupt dump succeeded")
	}
}

func TestFileStore_SaveReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "dump.txt")
	fs, err := NewFileStore(path, codec.FormatText)
	if err != nil {
		t.Fatal(err)
	}

	if err := fs.Save(testTable(10)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := fs.Save(testTable(2)); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want only the dump", len(entries))
	}

	dst := hashtable.New()
	if _, err := fs.Load(dst); err != nil {
		t.Fatal(err)
	}
	if dst.Len() != 2 {
		t.Errorf("Len = %d, want 2", dst.Len())
	}
}

func TestNewFileStore_Validation(t *testing.T) {
	if _, err := NewFileStore("", codec.FormatText); err == nil {
		t.Error("expected error for empty path")
	}
	if _, err := NewFileStore("x", "xml"); !errors.Is(err, codec.ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}
