package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 1 - order_events table
const currentSchemaVersion = 1

// Kind identifies what happened to an order.
type Kind string

const (
	KindPlaced        Kind = "placed"
	KindStatusChanged Kind = "status_changed"
)

// Event is one journal row. Seq is assigned by the journal.
type Event struct {
	Seq     int64
	OrderID string
	Kind    Kind
	From    model.OrderStatus // empty for KindPlaced
	To      model.OrderStatus
	Actor   string
	Amount  decimal.Decimal
	At      time.Time
}

// Journal is an open event log.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal database at path.
// Applies pragmas and the schema; safe to call on an existing file.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to journal: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Journal{db: db}, nil
}

// Close closes the database connection.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records ev and returns its assigned sequence number.
func (j *Journal) Append(ctx context.Context, ev Event) (int64, error) {
	if ev.OrderID == "" {
		return 0, fmt.Errorf("append event: order id is required")
	}
	if ev.Kind != KindPlaced && ev.Kind != KindStatusChanged {
		return 0, fmt.Errorf("append event: unknown kind %q", ev.Kind)
	}

	res, err := j.db.ExecContext(ctx, `
		INSERT INTO order_events (order_id, kind, from_status, to_status, actor, amount, at_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, ev.OrderID, string(ev.Kind), string(ev.From), string(ev.To), ev.Actor, ev.Amount.String(), ev.At.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("insert event for order %s: %w", ev.OrderID, err)
	}

	seq, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read event seq: %w", err)
	}
	return seq, nil
}

// History returns every event for orderID in seq order.
// Returns an empty slice (not nil) when the order has no events.
func (j *Journal) History(ctx context.Context, orderID string) ([]Event, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT seq, order_id, kind, from_status, to_status, actor, amount, at_ms
		FROM order_events
		WHERE order_id = ?
		ORDER BY seq ASC
	`, orderID)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := []Event{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func scanEvent(rows *sql.Rows) (Event, error) {
	var (
		ev             Event
		kind, from, to string
		amount         string
		atMillis       int64
	)
	if err := rows.Scan(&ev.Seq, &ev.OrderID, &kind, &from, &to, &ev.Actor, &amount, &atMillis); err != nil {
		return Event{}, fmt.Errorf("scan event: %w", err)
	}

	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Event{}, fmt.Errorf("event %d: invalid amount %q: %w", ev.Seq, amount, err)
	}
	ev.Kind = Kind(kind)
	ev.From = model.OrderStatus(from)
	ev.To = model.OrderStatus(to)
	ev.Amount = d
	ev.At = time.UnixMilli(atMillis)
	return ev, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps user_version.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than supported version %d", version, currentSchemaVersion)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
