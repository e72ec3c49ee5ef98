// Package replica provides the device-local persistence layer for the
// synchronized snippet collection.
//
// # Overview
//
// The package defines a Repository interface with two groups of operations:
// whole-state Load/Save used by the sync engine (Save replaces everything in
// one transaction, so a failed save never corrupts the previous state), and
// per-entity upsert/delete operations used for optimistic local edits.
// Deletions also write into the tombstone ledger so the merge can suppress
// the entity on other replicas.
//
// # Concurrency
//
// SQLiteRepository is safe for concurrent use when backed by a properly
// configured *sql.DB.
//
// Key Types
//
//   - type Repository        — interface used by the sync engine and services
//   - type SQLiteRepository  — SQLite implementation (goose-managed schema)
//
// Typical Usage
//
//	repo := replica.NewSQLiteRepository(db)
//	folders, tombstones, _ := repo.Load(ctx)
//	_ = repo.Save(ctx, mergedFolders, mergedTombstones)
//	_ = repo.DeleteSnippet(ctx, id, time.Now())
package replica
