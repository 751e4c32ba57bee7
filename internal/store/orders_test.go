package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
	"github.com/roach88/camellia/internal/testutil"
)

// TestCheckoutToDelivery walks one order from cart to delivered sale.
func TestCheckoutToDelivery(t *testing.T) {
	s, dir := openTestStore(t)

	buyer, ok := s.Authenticate("buyer", "buyer")
	require.True(t, ok)
	nasi := mustProduct(t, s, "P001")

	o, err := s.PlaceOrder(buyer.Username, "101", []model.CartItem{{Product: nasi, Quantity: 2}})
	require.NoError(t, err)

	assert.Equal(t, "ORD00001", o.ID)
	assert.True(t, decimal.NewFromInt(30000).Equal(o.TotalAmount))
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, int64(1700000000000), o.CreatedTime)
	assert.Equal(t, 18, nasi.Stock)
	assert.Equal(t, 1, s.PendingCount())

	require.NoError(t, s.TransitionOrder(o, model.StatusPreparing))
	require.NoError(t, s.TransitionOrder(o, model.StatusDelivered))

	assert.Equal(t, 1, s.DeliveredCount())
	assert.Equal(t, 0, s.PendingCount())
	assert.True(t, s.TotalSales().GreaterThanOrEqual(decimal.NewFromInt(30000)))

	reopened := openTestStoreIn(t, dir)
	got, ok := reopened.Order(o.ID)
	require.True(t, ok)
	assert.Equal(t, model.StatusDelivered, got.Status)
	assert.Equal(t, 18, mustProduct(t, reopened, "P001").Stock)
	assert.True(t, decimal.NewFromInt(30000).Equal(reopened.TotalSales()))
}

func TestPlaceOrder_Validation(t *testing.T) {
	s, _ := openTestStore(t)
	nasi := mustProduct(t, s, "P001")
	ghost := &model.Product{ID: "P404", Name: "Ghost", Price: decimal.NewFromInt(1)}

	tests := []struct {
		name  string
		buyer string
		room  string
		items []model.CartItem
		check func(error) bool
	}{
		{"empty cart", "buyer", "101", nil, IsEmptyOrder},
		{"no buyer", "", "101", []model.CartItem{{Product: nasi, Quantity: 1}}, IsInvalidField},
		{"no room", "buyer", "  ", []model.CartItem{{Product: nasi, Quantity: 1}}, IsInvalidField},
		{"zero quantity", "buyer", "101", []model.CartItem{{Product: nasi, Quantity: 0}}, IsInvalidField},
		{"nil product", "buyer", "101", []model.CartItem{{Quantity: 1}}, IsInvalidField},
		{"unknown product", "buyer", "101", []model.CartItem{{Product: ghost, Quantity: 1}}, IsNotFound},
		{"oversell", "buyer", "101", []model.CartItem{{Product: nasi, Quantity: 21}}, IsInsufficientStock},
		{
			"oversell across lines", "buyer", "101",
			[]model.CartItem{{Product: nasi, Quantity: 15}, {Product: nasi, Quantity: 6}},
			IsInsufficientStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := s.PlaceOrder(tt.buyer, tt.room, tt.items)
			require.Error(t, err)
			assert.Nil(t, o)
			assert.True(t, tt.check(err), "unexpected error: %v", err)

			assert.Equal(t, 20, nasi.Stock, "rejected checkout must not touch stock")
			assert.Empty(t, s.Orders())
		})
	}
}

func TestPlaceOrder_ResolvesToCatalogProduct(t *testing.T) {
	s, _ := openTestStore(t)
	live := mustProduct(t, s, "P004")

	// A detached copy, as a cart built from an earlier listing would hold.
	stale := *live
	stale.Price = decimal.NewFromInt(1)

	o, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: &stale, Quantity: 2}})
	require.NoError(t, err)
	assert.Same(t, live, o.Items[0].Product)
	assert.True(t, decimal.NewFromInt(10000).Equal(o.TotalAmount), "total uses the catalog price")
	assert.Equal(t, 48, live.Stock)
}

func TestPlaceOrder_MultipleLines(t *testing.T) {
	s, _ := openTestStore(t)
	nasi := mustProduct(t, s, "P001")
	teh := mustProduct(t, s, "P004")

	o, err := s.PlaceOrder("buyer", "Ruang Melati", []model.CartItem{
		{Product: nasi, Quantity: 1},
		{Product: teh, Quantity: 3},
		{Product: nasi, Quantity: 1},
	})
	require.NoError(t, err)

	assert.Len(t, o.Items, 3)
	assert.True(t, decimal.NewFromInt(45000).Equal(o.TotalAmount))
	assert.Equal(t, 18, nasi.Stock)
	assert.Equal(t, 47, teh.Stock)
}

func TestPlaceOrder_IDCollision(t *testing.T) {
	s, _ := openTestStore(t, WithIDGenerator(testutil.NewConstantIDGenerator("SAME0000")))
	nasi := mustProduct(t, s, "P001")

	_, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)

	_, err = s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.Error(t, err)
	assert.True(t, IsDuplicate(err))
	assert.Equal(t, 19, nasi.Stock)
	assert.Len(t, s.Orders(), 1)
}

func TestPlaceOrder_Concurrent(t *testing.T) {
	s, _ := openTestStore(t)
	teh := mustProduct(t, s, "P004")

	const buyers = 20
	var wg sync.WaitGroup
	errs := make(chan error, buyers)
	for i := 0; i < buyers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: teh, Quantity: 3}})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	placed, rejected := 0, 0
	for err := range errs {
		if err == nil {
			placed++
			continue
		}
		require.True(t, IsInsufficientStock(err), "unexpected error: %v", err)
		rejected++
	}

	// 50 in stock, 3 per order: 16 fit.
	assert.Equal(t, 16, placed)
	assert.Equal(t, 4, rejected)
	assert.Equal(t, 2, teh.Stock)
	assert.Len(t, s.Orders(), 16)
}

func TestAddOrder(t *testing.T) {
	s, _ := openTestStore(t)
	nasi := mustProduct(t, s, "P001")
	o := model.NewOrder("AB12CD34", "buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}}, time.UnixMilli(5))

	require.NoError(t, s.AddOrder(o))
	assert.Equal(t, 20, nasi.Stock, "AddOrder does not touch stock")

	err := s.AddOrder(o)
	assert.True(t, IsDuplicate(err))

	err = s.AddOrder(&model.Order{ID: "EMPTY000"})
	assert.True(t, IsEmptyOrder(err))

	err = s.AddOrder(&model.Order{Items: o.Items})
	assert.True(t, IsInvalidField(err))
}

func TestTransitionOrder_Rejected(t *testing.T) {
	s, _ := openTestStore(t)
	nasi := mustProduct(t, s, "P001")
	o, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)

	err = s.TransitionOrder(o, model.StatusDelivered)
	require.Error(t, err)
	assert.True(t, model.IsTransitionError(err))
	assert.Equal(t, model.StatusPending, o.Status)

	require.NoError(t, s.TransitionOrder(o, model.StatusCancelled))
	err = s.TransitionOrder(o, model.StatusPreparing)
	assert.ErrorContains(t, err, "is final")

	detached := model.NewOrder("NOTSTORE", "buyer", "101", o.Items, time.Now())
	assert.True(t, IsNotFound(s.TransitionOrder(detached, model.StatusPreparing)))
}

func TestOrderQueries(t *testing.T) {
	s, _ := openTestStore(t)
	require.NoError(t, s.AddUser(&model.User{Username: "siti", Password: "x", Role: model.RoleBuyer}))
	kopi := mustProduct(t, s, "P006")

	first, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: kopi, Quantity: 1}})
	require.NoError(t, err)
	_, err = s.PlaceOrder("siti", "102", []model.CartItem{{Product: kopi, Quantity: 2}})
	require.NoError(t, err)
	third, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: kopi, Quantity: 1}})
	require.NoError(t, err)

	mine := s.OrdersByBuyer("buyer")
	require.Len(t, mine, 2)
	assert.Same(t, first, mine[0])
	assert.Same(t, third, mine[1])
	assert.Empty(t, s.OrdersByBuyer("nobody"))

	got, ok := s.Order(third.ID)
	require.True(t, ok)
	assert.Same(t, third, got)
	_, ok = s.Order("MISSING0")
	assert.False(t, ok)

	assert.Less(t, first.CreatedTime, third.CreatedTime)
}

func TestStatusCounts(t *testing.T) {
	s, _ := openTestStore(t)
	counts := s.StatusCounts()
	require.Len(t, counts, len(model.Statuses))
	for _, st := range model.Statuses {
		assert.Equal(t, 0, counts[st])
	}

	nasi := mustProduct(t, s, "P001")
	a, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)
	b, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)
	_, err = s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, s.TransitionOrder(a, model.StatusPreparing))
	require.NoError(t, s.TransitionOrder(b, model.StatusCancelled))

	counts = s.StatusCounts()
	assert.Equal(t, 1, counts[model.StatusPending])
	assert.Equal(t, 1, counts[model.StatusPreparing])
	assert.Equal(t, 1, counts[model.StatusCancelled])
	assert.Equal(t, 0, counts[model.StatusDelivered])
	assert.True(t, s.TotalSales().IsZero(), "cancelled and open orders are not sales")
}

func TestJournal_RecordsEvents(t *testing.T) {
	j := &recordingJournal{}
	s, _ := openTestStore(t, WithJournal(j))
	nasi := mustProduct(t, s, "P001")

	o, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 2}})
	require.NoError(t, err)
	require.NoError(t, s.TransitionOrder(o, model.StatusPreparing))
	require.Error(t, s.TransitionOrder(o, model.StatusPending))

	events := j.Events()
	require.Len(t, events, 2, "rejected transitions are not journaled")

	assert.Equal(t, journal.KindPlaced, events[0].Kind)
	assert.Equal(t, o.ID, events[0].OrderID)
	assert.Equal(t, "buyer", events[0].Actor)
	assert.True(t, decimal.NewFromInt(30000).Equal(events[0].Amount))
	assert.Equal(t, o.CreatedTime, events[0].At.UnixMilli())

	assert.Equal(t, journal.KindStatusChanged, events[1].Kind)
	assert.Equal(t, model.StatusPending, events[1].From)
	assert.Equal(t, model.StatusPreparing, events[1].To)
}

func TestJournal_FailureDoesNotFailStore(t *testing.T) {
	j := &recordingJournal{fail: true}
	s, _ := openTestStore(t, WithJournal(j))
	nasi := mustProduct(t, s, "P001")

	o, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, s.TransitionOrder(o, model.StatusPreparing))
}

func TestJournal_SQLite(t *testing.T) {
	j, err := journal.Open(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)

	s, _ := openTestStore(t, WithJournal(j))
	t.Cleanup(func() { s.Close() })
	nasi := mustProduct(t, s, "P001")

	o, err := s.PlaceOrder("buyer", "101", []model.CartItem{{Product: nasi, Quantity: 1}})
	require.NoError(t, err)
	require.NoError(t, s.TransitionOrder(o, model.StatusCancelled))

	history, err := j.History(context.Background(), o.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, journal.KindPlaced, history[0].Kind)
	assert.Equal(t, model.StatusCancelled, history[1].To)
}
