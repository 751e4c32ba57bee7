package store

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

// TotalSales returns the sum of TotalAmount over delivered orders.
func (s *Store) TotalSales() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, o := range s.orders {
		if o.Status == model.StatusDelivered {
			total = total.Add(o.TotalAmount)
		}
	}
	return total
}

// DeliveredCount returns the number of delivered orders.
func (s *Store) DeliveredCount() int {
	return s.countStatus(model.StatusDelivered)
}

// PendingCount returns the number of orders still waiting to be prepared.
func (s *Store) PendingCount() int {
	return s.countStatus(model.StatusPending)
}

// StatusCounts returns the number of orders in every status. Each status
// is present, zero or not.
func (s *Store) StatusCounts() map[model.OrderStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[model.OrderStatus]int, len(model.Statuses))
	for _, st := range model.Statuses {
		counts[st] = 0
	}
	for _, o := range s.orders {
		counts[o.Status]++
	}
	return counts
}

func (s *Store) countStatus(st model.OrderStatus) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, o := range s.orders {
		if o.Status == st {
			n++
		}
	}
	return n
}
