// Package hashtable provides the keyed, resizable hash table behind sipkv.
//
// The table uses separate chaining with newest-first chains and doubles its
// bucket array before an insert would exceed the current capacity:
//
//   - Keys are explicit-length byte sequences (embedded NUL bytes are legal)
//   - Values are a closed set of typed payloads (see Value)
//   - Bucket indexes come from SipHash-2-4 keyed with a fixed 128-bit constant
//
// Usage:
//
//	t := hashtable.New()
//	t.Add([]byte("k"), hashtable.NewInt(-5))
//	v := t.Find([]byte("k"))
//
// Thread Safety:
//
// A Table performs no locking. Callers serialize access themselves; the
// server does so by driving the table from a single event loop.
package hashtable
