package model

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a placed checkout. Items and TotalAmount are fixed at creation;
// only Status changes afterwards.
type Order struct {
	ID            string
	BuyerUsername string
	RoomName      string
	Items         []CartItem
	TotalAmount   decimal.Decimal
	Status        OrderStatus
	CreatedTime   int64 // epoch milliseconds
}

// NewOrder creates a PENDING order and computes its total from items.
// The items slice is copied so later cart edits cannot reach the order.
func NewOrder(id, buyer, room string, items []CartItem, now time.Time) *Order {
	o := &Order{
		ID:            id,
		BuyerUsername: buyer,
		RoomName:      room,
		Items:         slices.Clone(items),
		Status:        StatusPending,
		CreatedTime:   now.UnixMilli(),
	}
	o.TotalAmount = SumItems(o.Items)
	return o
}

// SumItems returns the sum of item totals.
func SumItems(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.Total())
	}
	return total
}

// Created returns CreatedTime as a time.Time.
func (o *Order) Created() time.Time {
	return time.UnixMilli(o.CreatedTime)
}

// TransitionTo moves the order to next if the lifecycle allows it.
// On failure the order is left unchanged and a *TransitionError is returned.
func (o *Order) TransitionTo(next OrderStatus) error {
	if !CanTransition(o.Status, next) {
		return &TransitionError{OrderID: o.ID, From: o.Status, To: next}
	}
	o.Status = next
	return nil
}
