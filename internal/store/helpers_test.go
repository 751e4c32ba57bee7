package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/testutil"
)

// openTestStore opens a store in a fresh temp dir with a fake clock and
// sequential order ids.
func openTestStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	return openTestStoreIn(t, dir, opts...), dir
}

func openTestStoreIn(t *testing.T, dir string, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithLogger(testutil.DiscardLogger()),
		WithClock(testutil.NewFakeClock(time.Time{}, time.Second).Now),
		WithIDGenerator(&testutil.SequentialIDGenerator{}),
	}
	s, err := Open(dir, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func mustProduct(t *testing.T, s *Store, id string) *model.Product {
	t.Helper()
	p, ok := s.Product(id)
	require.True(t, ok, "product %s not found", id)
	return p
}

// recordingJournal captures appended events in memory.
type recordingJournal struct {
	mu     sync.Mutex
	events []journal.Event
	fail   bool
	closed bool
}

func (j *recordingJournal) Append(_ context.Context, ev journal.Event) (int64, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.fail {
		return 0, errors.New("journal unavailable")
	}
	j.events = append(j.events, ev)
	return int64(len(j.events)), nil
}

func (j *recordingJournal) Close() error {
	j.closed = true
	return nil
}

func (j *recordingJournal) Events() []journal.Event {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]journal.Event(nil), j.events...)
}
