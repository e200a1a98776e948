package hashtable

import (
	"fmt"
	"math/rand"
	"strconv"
	"testing"
)

func TestNew(t *testing.T) {
	tbl := New()
	if tbl == nil {
		t.Fatal("New() returned nil")
	}
	if tbl.Exponent() != DefaultExponent {
		t.Errorf("Exponent() = %d, want %d", tbl.Exponent(), DefaultExponent)
	}
	if tbl.Capacity() != 32 {
		t.Errorf("Capacity() = %d, want 32", tbl.Capacity())
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	for i, b := range tbl.buckets {
		if b != nil {
			t.Fatalf("bucket %d not empty", i)
		}
	}
}

func TestAddAndFind(t *testing.T) {
	tbl := New()

	tests := []struct {
		key   string
		value Value
	}{
		{"text", NewTextString("hello")},
		{"empty-text", NewTextString("")},
		{"uint", NewUint(18446744073709551615)},
		{"int", NewInt(-987453)},
		{"float", NewFloat(3.14159)},
		{"nul\x00key", NewTextString("embedded nul")},
	}

	for _, tt := range tests {
		if got := tbl.Add([]byte(tt.key), tt.value); got != Inserted {
			t.Fatalf("Add(%q) = %v, want Inserted", tt.key, got)
		}
	}
	if tbl.Len() != len(tests) {
		t.Fatalf("Len() = %d, want %d", tbl.Len(), len(tests))
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got := tbl.Find([]byte(tt.key))
			if !got.Equal(tt.value) {
				t.Errorf("Find(%q) = %v (%s), want %v (%s)", tt.key, got, got.Kind(), tt.value, tt.value.Kind())
			}
		})
	}
}

func TestFind_Miss(t *testing.T) {
	tbl := New()
	tbl.Add([]byte("abc"), NewInt(1))

	for _, key := range []string{"ab", "abcd", "xyz", "", "abc\x00"} {
		if got := tbl.Find([]byte(key)); !got.IsNone() {
			t.Errorf("Find(%q) = %v, want None", key, got)
		}
	}
}

func TestAdd_Duplicate(t *testing.T) {
	tbl := New()
	key := []byte("aKey")

	if got := tbl.Add(key, NewTextString("hello")); got != Inserted {
		t.Fatalf("first Add = %v, want Inserted", got)
	}
	if got := tbl.Add(key, NewTextString("world")); got != AlreadyExists {
		t.Fatalf("second Add = %v, want AlreadyExists", got)
	}
	if got := tbl.Find(key); got.Text() != "hello" {
		t.Errorf("Find = %q, want %q", got.Text(), "hello")
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestAdd_CopiesCallerMemory(t *testing.T) {
	tbl := New()
	key := []byte("key")
	payload := []byte("payload")

	tbl.Add(key, NewText(payload))
	key[0] = 'X'
	payload[0] = 'X'

	if got := tbl.Find([]byte("key")); got.Text() != "payload" {
		t.Errorf("Find = %q, want %q", got.Text(), "payload")
	}
	if got := tbl.Find(key); !got.IsNone() {
		t.Errorf("Find(mutated key) = %v, want None", got)
	}
}

func TestAdd_None(t *testing.T) {
	tbl := New()
	if got := tbl.Add([]byte("k"), None); got != AlreadyExists {
		t.Errorf("Add(None) = %v, want AlreadyExists", got)
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
}

func TestRemove(t *testing.T) {
	tbl := New()
	tbl.Add([]byte("a"), NewInt(1))
	tbl.Add([]byte("b"), NewInt(2))

	if got := tbl.Remove([]byte("a")); got != Removed {
		t.Fatalf("Remove(a) = %v, want Removed", got)
	}
	if got := tbl.Find([]byte("a")); !got.IsNone() {
		t.Errorf("Find(a) after remove = %v, want None", got)
	}
	if got := tbl.Find([]byte("b")); got.Int() != 2 {
		t.Errorf("Find(b) = %v, want 2", got)
	}
	if got := tbl.Remove([]byte("a")); got != NotFound {
		t.Errorf("second Remove(a) = %v, want NotFound", got)
	}
	if got := tbl.Remove([]byte("missing")); got != NotFound {
		t.Errorf("Remove(missing) = %v, want NotFound", got)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

// forceChain builds a table with a single bucket so every key collides.
func forceChain(keys ...string) *Table {
	tbl := &Table{buckets: make([]*entry, 1), exp: 0}
	for i, k := range keys {
		idx := tbl.index(hashString(k))
		tbl.buckets[idx] = &entry{key: k, value: NewInt(int64(i)), next: tbl.buckets[idx]}
		tbl.count++
	}
	return tbl
}

func TestRemove_ChainPositions(t *testing.T) {
	// Chain order is newest first: c -> b -> a.
	for _, victim := range []string{"a", "b", "c"} {
		t.Run(victim, func(t *testing.T) {
			tbl := forceChain("a", "b", "c")
			if got := tbl.Remove([]byte(victim)); got != Removed {
				t.Fatalf("Remove(%s) = %v, want Removed", victim, got)
			}
			for _, k := range []string{"a", "b", "c"} {
				found := !tbl.Find([]byte(k)).IsNone()
				if k == victim && found {
					t.Errorf("%s still present", k)
				}
				if k != victim && !found {
					t.Errorf("%s lost after removing %s", k, victim)
				}
			}
		})
	}
}

func TestChain_NewestAtHead(t *testing.T) {
	tbl := forceChain("first", "second")
	if tbl.buckets[0].key != "second" {
		t.Errorf("chain head = %q, want %q", tbl.buckets[0].key, "second")
	}
	if got := tbl.Find([]byte("first")); got.Int() != 0 {
		t.Errorf("Find(first) = %v, want 0", got)
	}
}

func TestReplace(t *testing.T) {
	t.Run("existing key", func(t *testing.T) {
		tbl := New()
		tbl.Add([]byte("k"), NewTextString("old"))
		tbl.Replace([]byte("k"), NewInt(-5))

		got := tbl.Find([]byte("k"))
		if got.Kind() != KindInt || got.Int() != -5 {
			t.Errorf("Find = %v (%s), want -5 (int)", got, got.Kind())
		}
		if tbl.Len() != 1 {
			t.Errorf("Len() = %d, want 1", tbl.Len())
		}
	})

	t.Run("missing key behaves as add", func(t *testing.T) {
		tbl := New()
		tbl.Replace([]byte("missingKey"), NewInt(-5))
		if got := tbl.Find([]byte("missingKey")); got.Int() != -5 {
			t.Errorf("Find = %v, want -5", got)
		}
		if tbl.Len() != 1 {
			t.Errorf("Len() = %d, want 1", tbl.Len())
		}
	})

	t.Run("latest upsert wins", func(t *testing.T) {
		tbl := New()
		for i := 0; i < 10; i++ {
			tbl.Replace([]byte("k"), NewUint(uint64(i)))
		}
		if got := tbl.Find([]byte("k")); got.Uint() != 9 {
			t.Errorf("Find = %v, want 9", got)
		}
	})
}

func TestGrowth_Boundary(t *testing.T) {
	tbl := New()
	for i := 0; i < 32; i++ {
		tbl.Add([]byte(strconv.Itoa(i)), NewInt(int64(i)))
	}
	if tbl.Exponent() != 5 {
		t.Fatalf("after 32 adds Exponent() = %d, want 5", tbl.Exponent())
	}
	if tbl.Grows() != 0 {
		t.Fatalf("after 32 adds Grows() = %d, want 0", tbl.Grows())
	}

	tbl.Add([]byte("32"), NewInt(32))
	if tbl.Exponent() != 6 {
		t.Fatalf("after 33 adds Exponent() = %d, want 6", tbl.Exponent())
	}
	if tbl.Capacity() != 64 {
		t.Errorf("Capacity() = %d, want 64", tbl.Capacity())
	}

	for i := 0; i <= 32; i++ {
		got := tbl.Find([]byte(strconv.Itoa(i)))
		if got.Kind() != KindInt || got.Int() != int64(i) {
			t.Errorf("Find(%d) = %v, want %d", i, got, i)
		}
	}
}

func TestGrowth_DuplicateDoesNotGrow(t *testing.T) {
	tbl := New()
	for i := 0; i < 32; i++ {
		tbl.Add([]byte(strconv.Itoa(i)), NewInt(int64(i)))
	}
	if got := tbl.Add([]byte("0"), NewInt(99)); got != AlreadyExists {
		t.Fatalf("Add(dup) = %v, want AlreadyExists", got)
	}
	if tbl.Exponent() != 5 {
		t.Errorf("Exponent() = %d, want 5", tbl.Exponent())
	}
}

func TestGrowth_CountNeverExceedsCapacity(t *testing.T) {
	tbl := New()
	rng := rand.New(rand.NewSource(42))
	want := make(map[string]int64)

	for i := 0; i < 5000; i++ {
		key := fmt.Sprintf("key-%d-%d", i, rng.Int63())
		tbl.Add([]byte(key), NewInt(int64(i)))
		want[key] = int64(i)

		if tbl.Len() != len(want) {
			t.Fatalf("Len() = %d, want %d", tbl.Len(), len(want))
		}
		if tbl.Len() > tbl.Capacity() {
			t.Fatalf("Len() %d > Capacity() %d", tbl.Len(), tbl.Capacity())
		}
		if tbl.Capacity() != 1<<tbl.Exponent() {
			t.Fatalf("Capacity() %d != 1<<%d", tbl.Capacity(), tbl.Exponent())
		}
	}

	for k, v := range want {
		if got := tbl.Find([]byte(k)); got.Int() != v {
			t.Fatalf("Find(%s) = %v, want %d", k, got, v)
		}
	}
}

func TestRemove_DoesNotShrink(t *testing.T) {
	tbl := New()
	for i := 0; i < 100; i++ {
		tbl.Add([]byte(strconv.Itoa(i)), NewInt(int64(i)))
	}
	exp := tbl.Exponent()
	for i := 0; i < 100; i++ {
		tbl.Remove([]byte(strconv.Itoa(i)))
	}
	if tbl.Len() != 0 {
		t.Errorf("Len() = %d, want 0", tbl.Len())
	}
	if tbl.Exponent() != exp {
		t.Errorf("Exponent() = %d, want %d", tbl.Exponent(), exp)
	}
}

func TestRange(t *testing.T) {
	tbl := New()
	want := map[string]int64{}
	for i := 0; i < 50; i++ {
		k := "k" + strconv.Itoa(i)
		tbl.Add([]byte(k), NewInt(int64(i)))
		want[k] = int64(i)
	}

	seen := map[string]int64{}
	tbl.Range(func(key []byte, v Value) bool {
		seen[string(key)] = v.Int()
		return true
	})
	if len(seen) != len(want) {
		t.Fatalf("Range visited %d entries, want %d", len(seen), len(want))
	}
	for k, v := range want {
		if seen[k] != v {
			t.Errorf("Range %s = %d, want %d", k, seen[k], v)
		}
	}

	visits := 0
	tbl.Range(func([]byte, Value) bool {
		visits++
		return visits < 3
	})
	if visits != 3 {
		t.Errorf("early stop visited %d, want 3", visits)
	}
}

func TestDestroy(t *testing.T) {
	tbl := New()
	tbl.Add([]byte("text"), NewTextString("v"))
	tbl.Add([]byte("int"), NewInt(1))
	tbl.Destroy()

	if tbl.buckets != nil {
		t.Error("buckets should be released")
	}
	tbl.Destroy() // idempotent

	defer func() {
		if recover() == nil {
			t.Error("Find on destroyed table should panic")
		}
	}()
	tbl.Find([]byte("text"))
}

func TestHash_Deterministic(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	if a != b {
		t.Fatalf("Hash not deterministic: %x != %x", a, b)
	}
	if Hash([]byte("hello")) == Hash([]byte("hellp")) {
		t.Error("distinct keys produced identical hashes")
	}
	if hashString("hello") != a {
		t.Error("hashString disagrees with Hash")
	}
}

func TestHash_KnownAnswers(t *testing.T) {
	tests := []struct {
		key  []byte
		want uint64
	}{
		{nil, 0x8f311eb6e523c5eb},
		{[]byte("hello"), 0x538c6c9f8ce40126},
	}
	for _, tt := range tests {
		if got := Hash(tt.key); got != tt.want {
			t.Errorf("Hash(%q) = %#x, want %#x", tt.key, got, tt.want)
		}
	}
}

func BenchmarkAdd(b *testing.B) {
	keys := make([][]byte, b.N)
	for i := range keys {
		keys[i] = []byte("bench-key-" + strconv.Itoa(i))
	}
	tbl := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Add(keys[i], NewInt(int64(i)))
	}
}

func BenchmarkFind(b *testing.B) {
	tbl := New()
	keys := make([][]byte, 10000)
	for i := range keys {
		keys[i] = []byte("bench-key-" + strconv.Itoa(i))
		tbl.Add(keys[i], NewInt(int64(i)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		tbl.Find(keys[i%len(keys)])
	}
}
