package store

import (
	"slices"
	"strings"

	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
)

// maxIDAttempts bounds retries when a generated order id collides.
const maxIDAttempts = 8

// Orders returns every order, oldest first.
func (s *Store) Orders() []*model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.orders)
}

// OrdersByBuyer returns the orders placed by username.
func (s *Store) OrdersByBuyer(username string) []*model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Order
	for _, o := range s.orders {
		if o.BuyerUsername == username {
			out = append(out, o)
		}
	}
	return out
}

// Order returns the order with the given id.
func (s *Store) Order(id string) (*model.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.orderIndex(id)
	if i < 0 {
		return nil, false
	}
	return s.orders[i], true
}

func (s *Store) orderIndex(id string) int {
	return slices.IndexFunc(s.orders, func(o *model.Order) bool { return o.ID == id })
}

// AddOrder appends an already-built order. Stock is not touched; use
// PlaceOrder for a checkout.
func (s *Store) AddOrder(o *model.Order) error {
	switch {
	case o == nil:
		return invalidField("order", "order is required")
	case o.ID == "":
		return invalidField("orderId", "order id is required")
	case len(o.Items) == 0:
		return newError(ErrCodeEmptyOrder, map[string]string{"orderId": o.ID}, "order %s has no items", o.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.orderIndex(o.ID) >= 0 {
		return newError(ErrCodeDuplicate, map[string]string{"orderId": o.ID}, "order %s already exists", o.ID)
	}
	s.orders = append(s.orders, o)
	if err := s.flushOrders(); err != nil {
		return err
	}
	s.recordPlaced(o)
	return nil
}

// PlaceOrder checks out items for buyer: it validates every line against
// the live catalog, creates a PENDING order, and decrements stock. If any
// line fails, nothing changes.
func (s *Store) PlaceOrder(buyer, room string, items []model.CartItem) (*model.Order, error) {
	switch {
	case len(items) == 0:
		return nil, newError(ErrCodeEmptyOrder, nil, "cart is empty")
	case strings.TrimSpace(buyer) == "":
		return nil, invalidField("buyerUsername", "buyer is required")
	case strings.TrimSpace(room) == "":
		return nil, invalidField("roomName", "room name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Resolve lines to catalog products and total the demand per product.
	lines := make([]model.CartItem, 0, len(items))
	demand := make(map[*model.Product]int)
	for _, it := range items {
		if it.Product == nil {
			return nil, invalidField("productId", "cart item has no product")
		}
		if it.Quantity < 1 {
			return nil, invalidField("quantity", "quantity for %s must be at least 1, got %d", it.Product.ID, it.Quantity)
		}
		i := s.productIndex(it.Product.ID)
		if i < 0 {
			return nil, notFound("product", it.Product.ID)
		}
		p := s.products[i]
		demand[p] += it.Quantity
		lines = append(lines, model.CartItem{Product: p, Quantity: it.Quantity})
	}
	for _, it := range lines {
		if want := demand[it.Product]; it.Product.Stock < want {
			return nil, insufficientStock(it.Product, want)
		}
	}

	id, err := s.newOrderID()
	if err != nil {
		return nil, err
	}
	o := model.NewOrder(id, buyer, room, lines, s.now())

	for p, n := range demand {
		p.Stock -= n
	}
	s.orders = append(s.orders, o)

	if err := s.flushProducts(); err != nil {
		return o, err
	}
	if err := s.flushOrders(); err != nil {
		return o, err
	}
	s.log.Info("order placed", "order", o.ID, "buyer", buyer, "total", o.TotalAmount.String())
	s.recordPlaced(o)
	return o, nil
}

func (s *Store) newOrderID() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := s.ids.Generate()
		if s.orderIndex(id) < 0 {
			return id, nil
		}
	}
	return "", newError(ErrCodeDuplicate, nil, "could not generate a unique order id after %d attempts", maxIDAttempts)
}

// TransitionOrder moves o to next if the lifecycle allows it, then writes
// the orders file. o must be an order held by the store.
func (s *Store) TransitionOrder(o *model.Order, next model.OrderStatus) error {
	if o == nil {
		return invalidField("order", "order is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.orders, o) {
		return notFound("order", o.ID)
	}
	from := o.Status
	if err := o.TransitionTo(next); err != nil {
		return err
	}
	if err := s.flushOrders(); err != nil {
		return err
	}
	s.log.Info("order status changed", "order", o.ID, "from", from, "to", next)
	s.record(journal.Event{
		OrderID: o.ID,
		Kind:    journal.KindStatusChanged,
		From:    from,
		To:      next,
		At:      s.now(),
	})
	return nil
}

func (s *Store) recordPlaced(o *model.Order) {
	s.record(journal.Event{
		OrderID: o.ID,
		Kind:    journal.KindPlaced,
		To:      o.Status,
		Actor:   o.BuyerUsername,
		Amount:  o.TotalAmount,
		At:      o.Created(),
	})
}
