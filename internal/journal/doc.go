// Package journal keeps an append-only SQLite log of order events.
//
// Every placed order and every accepted status change is recorded with the
// time it happened. The flat data files stay the source of truth for current
// state; the journal answers "what happened to this order, and when".
//
// # Database Configuration
//
//   - WAL mode: readers do not block the single writer
//   - synchronous=NORMAL
//   - busy_timeout=5000
//
// Events are always returned in seq order.
package journal
