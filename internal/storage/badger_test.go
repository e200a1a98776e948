package storage

import (
	"context"
	"errors"
	"math"
	"strconv"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/yndnr/sipkv/internal/telemetry/logger"
	"github.com/yndnr/sipkv/pkg/hashtable"
)

func newTestBadger(t *testing.T, dir string) *BadgerEngine {
	t.Helper()
	cfg := DefaultBadgerConfig()
	cfg.GCInterval = "1h" // Disable auto GC for tests
	cfg.SyncWrites = false

	engine, err := NewBadgerEngine(dir, cfg, logger.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	return engine
}

func testTable(n int) *hashtable.Table {
	tbl := hashtable.New()
	for i := 0; i < n; i++ {
		tbl.Add([]byte("key-"+strconv.Itoa(i)), hashtable.NewInt(int64(i)))
	}
	return tbl
}

func TestBadgerEngine_ExportImport(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	defer engine.Close()

	ctx := context.Background()

	src := testTable(100)
	src.Add([]byte(""), hashtable.NewTextString("empty key"))
	src.Add([]byte("text"), hashtable.NewTextString("has spaces\nand a newline"))
	src.Add([]byte("max"), hashtable.NewUint(math.MaxUint64))
	src.Add([]byte("pi"), hashtable.NewFloat(3.14159))

	if err := engine.Export(ctx, src); err != nil {
		t.Fatal(err)
	}

	dst := hashtable.New()
	st, err := engine.Import(ctx, dst)
	if err != nil {
		t.Fatal(err)
	}
	if st.Added != src.Len() || st.Duplicates != 0 {
		t.Errorf("Stats = %+v, want %d added", st, src.Len())
	}

	src.Range(func(key []byte, want hashtable.Value) bool {
		if got := dst.Find(key); !got.Equal(want) {
			t.Errorf("key %q = %v, want %v", key, got, want)
		}
		return true
	})
}

func TestBadgerEngine_ExportReplacesPrevious(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	defer engine.Close()

	ctx := context.Background()

	if err := engine.Export(ctx, testTable(50)); err != nil {
		t.Fatal(err)
	}
	if err := engine.Export(ctx, testTable(5)); err != nil {
		t.Fatal(err)
	}

	dst := hashtable.New()
	if _, err := engine.Import(ctx, dst); err != nil {
		t.Fatal(err)
	}
	if dst.Len() != 5 {
		t.Errorf("expected 5 entries after re-export, got %d", dst.Len())
	}
}

func TestBadgerEngine_ReopenKeepsData(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	engine := newTestBadger(t, dir)
	if err := engine.Export(ctx, testTable(10)); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}

	engine = newTestBadger(t, dir)
	defer engine.Close()

	dst := hashtable.New()
	if _, err := engine.Import(ctx, dst); err != nil {
		t.Fatal(err)
	}
	if got := dst.Find([]byte("key-7")); got.Int() != 7 {
		t.Errorf("key-7 = %v, want 7", got)
	}
}

func TestBadgerEngine_ImportKeepsExisting(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Export(ctx, testTable(3)); err != nil {
		t.Fatal(err)
	}

	dst := hashtable.New()
	dst.Add([]byte("key-1"), hashtable.NewTextString("local"))

	st, err := engine.Import(ctx, dst)
	if err != nil {
		t.Fatal(err)
	}
	if st.Added != 2 || st.Duplicates != 1 {
		t.Errorf("Stats = %+v, want 2 added 1 duplicate", st)
	}
	if got := dst.Find([]byte("key-1")); got.Text() != "local" {
		t.Errorf("key-1 = %v, want existing value kept", got)
	}
}

func TestBadgerEngine_GC(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	defer engine.Close()

	ctx := context.Background()
	if err := engine.Export(ctx, testTable(10)); err != nil {
		t.Fatal(err)
	}

	if _, err := engine.GC(ctx); err != nil {
		t.Fatal(err)
	}

	stats, err := engine.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if stats.LastGCTime == 0 {
		t.Error("expected LastGCTime to be set after GC")
	}
	if stats.TotalKeys != 10 {
		t.Errorf("TotalKeys = %d, want 10", stats.TotalKeys)
	}
}

func TestBadgerEngine_Closed(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	if err := engine.Close(); err != nil {
		t.Fatal(err)
	}
	if err := engine.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}

	ctx := context.Background()
	if err := engine.Export(ctx, testTable(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Export after Close = %v, want ErrClosed", err)
	}
	if _, err := engine.Import(ctx, hashtable.New()); !errors.Is(err, ErrClosed) {
		t.Errorf("Import after Close = %v, want ErrClosed", err)
	}
	if _, err := engine.Stats(ctx); !errors.Is(err, ErrClosed) {
		t.Errorf("Stats after Close = %v, want ErrClosed", err)
	}
}

func TestBadgerEngine_RegisterMetrics(t *testing.T) {
	engine := newTestBadger(t, t.TempDir())
	defer engine.Close()

	reg := prometheus.NewRegistry()
	engine.RegisterMetrics(reg)

	if _, err := engine.GC(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(engine.metricsLastGCTime); got == 0 {
		t.Error("last gc timestamp not updated")
	}

	n, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatal(err)
	}
	if n != 5 {
		t.Errorf("registered series = %d, want 5", n)
	}
}

func TestNewBadgerEngine_RequiresDir(t *testing.T) {
	if _, err := NewBadgerEngine("", DefaultBadgerConfig(), nil); err == nil {
		t.Error("expected error for empty dir")
	}
}
