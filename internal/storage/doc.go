// Package storage exports and imports whole tables.
//
// The table itself lives in memory and is owned by the server's event loop.
// Persistence is an explicit whole-table operation that runs before the loop
// starts (Restore) and after it stops (Persist). Backends:
//
//   - none: nothing is loaded or saved
//   - file: a single codec dump, text or binary, replaced atomically
//   - snapshot: checksummed snapshot files with retention, see package snapshot
//   - badger: one Badger key per entry
package storage
