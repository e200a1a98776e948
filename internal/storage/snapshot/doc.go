// Package snapshot manages full-table snapshot files for sipkv.
//
// Snapshots are manual or shutdown-time exports of the whole table:
//
//	snapshot-<ulid>.snap
//	[magic:8 "SIPKSNAP"]
//	[HeaderLen:4][HeaderJSON:HeaderLen]
//	[DataLen:4][Data:DataLen]   (binary codec stream)
//	[checksum:32 SHA-256 of all bytes above]
//
// Loading picks the newest snapshot whose checksum verifies.
package snapshot
