// Package store is the in-memory repository for users, products and orders,
// persisted write-through to three flat files in a data directory.
//
// # Files
//
//   - users.json
//   - products.json
//   - orders.json (optional; absent means no orders)
//
// All three use the record format of package codec.
//
// # Lifecycle
//
// Open loads the files. When users.json or products.json is missing the
// store seeds the default accounts and catalog and writes all three files.
// When any file cannot be read or parsed, the unreadable files are moved
// aside with a .bak suffix, the partial state is discarded, and the store
// reseeds. Open fails only if the directory or the seed cannot be written.
//
// # Write-through
//
// Every mutation writes the collections it touched before returning. Each
// file is written to a temporary sibling and renamed over the target, so a
// crash leaves either the old or the new file. There is no atomicity across
// files. A failed write is returned as *FlushError; the in-memory change is
// kept.
//
// # Concurrency
//
// A single RWMutex guards the collections. Mutations hold the write lock
// across mutate and flush. Queries return live pointers into the store;
// callers must not modify them except through store methods.
package store
