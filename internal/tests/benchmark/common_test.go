package benchmark

import (
	"fmt"
	"runtime"
	"strconv"
	"testing"

	"github.com/yndnr/sipkv/pkg/hashtable"
)

// EntryCounts defines the table sizes for benchmarking.
var EntryCounts = []int{1000, 10000, 100000, 500000}

// SmallEntryCounts for quick benchmarks.
var SmallEntryCounts = []int{1000, 10000}

func keyOf(i int) []byte {
	return []byte("key-" + strconv.Itoa(i))
}

// valueOf cycles through every storable kind.
func valueOf(i int) hashtable.Value {
	switch i % 4 {
	case 0:
		return hashtable.NewTextString("value-" + strconv.Itoa(i))
	case 1:
		return hashtable.NewUint(uint64(i))
	case 2:
		return hashtable.NewInt(-int64(i))
	default:
		return hashtable.NewFloat(float64(i) / 3)
	}
}

// prefillTable returns a table holding count entries.
func prefillTable(count int) *hashtable.Table {
	t := hashtable.New()
	for i := 0; i < count; i++ {
		t.Add(keyOf(i), valueOf(i))
	}
	return t
}

// reportMemory reports memory usage.
func reportMemory(b *testing.B, prefix string) {
	var m runtime.MemStats
	runtime.GC()
	runtime.ReadMemStats(&m)
	b.ReportMetric(float64(m.Alloc)/(1024*1024), prefix+"_MB")
	b.ReportMetric(float64(m.NumGC), prefix+"_GC")
}

// runWithEntryCounts runs a benchmark function with various table sizes.
func runWithEntryCounts(b *testing.B, counts []int, benchFn func(b *testing.B, count int)) {
	for _, count := range counts {
		b.Run(fmt.Sprintf("entries_%d", count), func(b *testing.B) {
			benchFn(b, count)
		})
	}
}
