package hashtable

// DefaultExponent is the initial capacity exponent (2^5 = 32 buckets).
const DefaultExponent = 5

// AddResult reports the outcome of Table.Add.
type AddResult int

const (
	Inserted AddResult = iota
	AlreadyExists
)

func (r AddResult) String() string {
	if r == Inserted {
		return "inserted"
	}
	return "already_exists"
}

// RemoveResult reports the outcome of Table.Remove.
type RemoveResult int

const (
	Removed RemoveResult = iota
	NotFound
)

func (r RemoveResult) String() string {
	if r == Removed {
		return "removed"
	}
	return "not_found"
}

// entry is one chained association. Only forward links exist; the bucket
// array owns the chain heads and each entry owns its successor.
type entry struct {
	key   string
	value Value
	next  *entry
}

// Table is a chained hash table keyed by explicit-length byte strings.
//
// Invariants: len(buckets) == 1<<exp, count <= 1<<exp, and no two live
// entries share a key.
type Table struct {
	buckets []*entry
	count   uint64
	exp     uint8

	// grows counts expand-and-rehash passes, for metrics.
	grows uint64
}

// New creates an empty table with DefaultExponent.
func New() *Table {
	return &Table{
		buckets: make([]*entry, 1<<DefaultExponent),
		exp:     DefaultExponent,
	}
}

// Len returns the number of live entries.
func (t *Table) Len() int {
	t.mustLive()
	return int(t.count)
}

// Exponent returns the capacity exponent.
func (t *Table) Exponent() uint8 {
	t.mustLive()
	return t.exp
}

// Capacity returns the bucket count, 1<<Exponent().
func (t *Table) Capacity() int {
	t.mustLive()
	return len(t.buckets)
}

// Grows returns how many times the table has doubled.
func (t *Table) Grows() uint64 {
	return t.grows
}

func (t *Table) mustLive() {
	if t.buckets == nil {
		panic("hashtable: use of destroyed table")
	}
}

func (t *Table) index(h uint64) uint64 {
	return h & uint64(len(t.buckets)-1)
}

// findEntry scans the whole chain of key's bucket, comparing length first.
func (t *Table) findEntry(key []byte) *entry {
	for e := t.buckets[t.index(Hash(key))]; e != nil; e = e.next {
		if len(e.key) == len(key) && e.key == string(key) {
			return e
		}
	}
	return nil
}

// Find returns the value stored under key, or None on a miss.
func (t *Table) Find(key []byte) Value {
	t.mustLive()
	if e := t.findEntry(key); e != nil {
		return e.value
	}
	return None
}

// Add inserts key with value v unless key is already present, in which case
// the table is left untouched and AlreadyExists is returned.
//
// The table doubles before the insert when it already holds as many entries
// as it has buckets. Adding None is a no-op reported as AlreadyExists.
func (t *Table) Add(key []byte, v Value) AddResult {
	t.mustLive()
	if v.IsNone() || t.findEntry(key) != nil {
		return AlreadyExists
	}
	t.insert(string(key), v)
	return Inserted
}

// insert links a new entry at the head of its chain. The caller has checked
// that key is absent.
func (t *Table) insert(key string, v Value) {
	if t.count == uint64(len(t.buckets)) {
		t.expandAndRehash()
	}
	idx := t.index(hashString(key))
	t.buckets[idx] = &entry{key: key, value: v, next: t.buckets[idx]}
	t.count++
}

// Remove unlinks the entry for key, reporting NotFound if there is none.
func (t *Table) Remove(key []byte) RemoveResult {
	t.mustLive()
	idx := t.index(Hash(key))
	var prev *entry
	for e := t.buckets[idx]; e != nil; prev, e = e, e.next {
		if len(e.key) != len(key) || e.key != string(key) {
			continue
		}
		if prev == nil {
			t.buckets[idx] = e.next
		} else {
			prev.next = e.next
		}
		e.next = nil
		t.count--
		return Removed
	}
	return NotFound
}

// Replace upserts key: an existing entry has its value and key bytes
// overwritten in place, otherwise Replace behaves as Add. Replacing with
// None is ignored.
func (t *Table) Replace(key []byte, v Value) {
	t.mustLive()
	if v.IsNone() {
		return
	}
	if e := t.findEntry(key); e != nil {
		e.key = string(key)
		e.value = v
		return
	}
	t.insert(string(key), v)
}

// Range calls fn for every entry in bucket-then-chain order until fn returns
// false. fn must not mutate the table.
func (t *Table) Range(fn func(key []byte, v Value) bool) {
	t.mustLive()
	for _, head := range t.buckets {
		for e := head; e != nil; e = e.next {
			if !fn([]byte(e.key), e.value) {
				return
			}
		}
	}
}

// Destroy releases every entry and the bucket array. The table must not be
// used afterwards.
func (t *Table) Destroy() {
	if t.buckets == nil {
		return
	}
	for i, head := range t.buckets {
		for e := head; e != nil; {
			next := e.next
			e.next = nil
			e.value = Value{}
			e = next
		}
		t.buckets[i] = nil
	}
	t.buckets = nil
	t.count = 0
}

// expandAndRehash doubles the bucket array and relinks every entry under the
// new mask. Entries are moved, not copied.
func (t *Table) expandAndRehash() {
	next := make([]*entry, len(t.buckets)<<1)
	mask := uint64(len(next) - 1)
	for _, head := range t.buckets {
		for e := head; e != nil; {
			following := e.next
			idx := hashString(e.key) & mask
			e.next = next[idx]
			next[idx] = e
			e = following
		}
	}
	t.buckets = next
	t.exp++
	t.grows++
}
