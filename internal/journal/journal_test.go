package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camellia/internal/model"
)

func openTestJournal(t *testing.T) (*Journal, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "journal.db")
	j, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j, path
}

func TestOpen_Pragmas(t *testing.T) {
	j, _ := openTestJournal(t)

	var mode string
	require.NoError(t, j.db.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var version int
	require.NoError(t, j.db.QueryRow("PRAGMA user_version").Scan(&version))
	assert.Equal(t, currentSchemaVersion, version)
}

func TestOpen_Reopen(t *testing.T) {
	j, path := openTestJournal(t)
	ctx := context.Background()

	_, err := j.Append(ctx, Event{OrderID: "AB12CD34", Kind: KindPlaced, To: model.StatusPending, At: time.UnixMilli(1)})
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j2, err := Open(path)
	require.NoError(t, err)
	defer j2.Close()

	events, err := j2.History(ctx, "AB12CD34")
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestAppendAndHistory(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()
	base := time.UnixMilli(1700000000000)

	seq1, err := j.Append(ctx, Event{
		OrderID: "AB12CD34",
		Kind:    KindPlaced,
		To:      model.StatusPending,
		Actor:   "buyer",
		Amount:  decimal.NewFromInt(30000),
		At:      base,
	})
	require.NoError(t, err)

	_, err = j.Append(ctx, Event{OrderID: "OTHER001", Kind: KindPlaced, To: model.StatusPending, At: base})
	require.NoError(t, err)

	seq3, err := j.Append(ctx, Event{
		OrderID: "AB12CD34",
		Kind:    KindStatusChanged,
		From:    model.StatusPending,
		To:      model.StatusPreparing,
		At:      base.Add(time.Minute),
	})
	require.NoError(t, err)
	assert.Greater(t, seq3, seq1)

	events, err := j.History(ctx, "AB12CD34")
	require.NoError(t, err)
	require.Len(t, events, 2)

	placed := events[0]
	assert.Equal(t, seq1, placed.Seq)
	assert.Equal(t, KindPlaced, placed.Kind)
	assert.Equal(t, model.OrderStatus(""), placed.From)
	assert.Equal(t, "buyer", placed.Actor)
	assert.True(t, decimal.NewFromInt(30000).Equal(placed.Amount))
	assert.Equal(t, base.UnixMilli(), placed.At.UnixMilli())

	changed := events[1]
	assert.Equal(t, KindStatusChanged, changed.Kind)
	assert.Equal(t, model.StatusPending, changed.From)
	assert.Equal(t, model.StatusPreparing, changed.To)
	assert.True(t, changed.Amount.IsZero())
}

func TestHistory_Empty(t *testing.T) {
	j, _ := openTestJournal(t)

	events, err := j.History(context.Background(), "NOPE0000")
	require.NoError(t, err)
	assert.NotNil(t, events)
	assert.Empty(t, events)
}

func TestAppend_Validation(t *testing.T) {
	j, _ := openTestJournal(t)
	ctx := context.Background()

	_, err := j.Append(ctx, Event{Kind: KindPlaced})
	assert.ErrorContains(t, err, "order id")

	_, err = j.Append(ctx, Event{OrderID: "X", Kind: "deleted"})
	assert.ErrorContains(t, err, "unknown kind")
}
