// Package harness runs YAML order scenarios against a real store.
//
// A scenario seeds a fresh data directory, runs setup steps (which must
// succeed), then runs flow steps, recording each one in a trace with its
// outcome: "ok" or the error code it failed with. Assertions check the
// trace and the final state of products, orders, users and statistics.
//
// Every run uses a fake clock and sequential order ids (ORD00001, ...), so
// traces are deterministic and can be compared against golden files:
//
//	go test ./internal/harness -update
//
// The "reload" action closes the store and reopens it from disk, which lets
// a scenario check that state survives a restart.
package harness
