package model

import (
	"errors"
	"fmt"
)

// OrderStatus is a state in the order lifecycle.
type OrderStatus string

const (
	StatusPending   OrderStatus = "PENDING"
	StatusPreparing OrderStatus = "PREPARING"
	StatusDelivered OrderStatus = "DELIVERED"
	StatusCancelled OrderStatus = "CANCELLED"
)

// Statuses lists every status in declaration order.
var Statuses = []OrderStatus{StatusPending, StatusPreparing, StatusDelivered, StatusCancelled}

type statusMeta struct {
	label string
	color string
	icon  string
}

var statusInfo = map[OrderStatus]statusMeta{
	StatusPending:   {"Pending", "#ffc107", "[P]"},
	StatusPreparing: {"Preparing", "#17a2b8", "[K]"},
	StatusDelivered: {"Delivered", "#28a745", "[✓]"},
	StatusCancelled: {"Cancelled", "#dc3545", "[X]"},
}

// Label returns the display name.
func (s OrderStatus) Label() string {
	if m, ok := statusInfo[s]; ok {
		return m.label
	}
	return string(s)
}

// Color returns the presentation color tag.
func (s OrderStatus) Color() string {
	return statusInfo[s].color
}

// Icon returns the short marker used in order history listings.
func (s OrderStatus) Icon() string {
	if m, ok := statusInfo[s]; ok {
		return m.icon
	}
	return "[?]"
}

// ParseStatus returns the OrderStatus named by s.
func ParseStatus(s string) (OrderStatus, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown order status %q: must be one of %v", s, Statuses)
}

// validNext holds the allowed transitions. DELIVERED and CANCELLED are terminal.
var validNext = map[OrderStatus]map[OrderStatus]bool{
	StatusPending:   {StatusPreparing: true, StatusCancelled: true},
	StatusPreparing: {StatusDelivered: true},
	StatusDelivered: {},
	StatusCancelled: {},
}

// CanTransition reports whether an order may move from one status to another.
func CanTransition(from, to OrderStatus) bool {
	return validNext[from][to]
}

// IsTerminal reports whether no transition leaves s.
func (s OrderStatus) IsTerminal() bool {
	return len(validNext[s]) == 0
}

// TransitionError reports a status change the lifecycle does not allow.
type TransitionError struct {
	OrderID string
	From    OrderStatus
	To      OrderStatus
}

func (e *TransitionError) Error() string {
	if e.From.IsTerminal() {
		return fmt.Sprintf("order %s: cannot change status from %s to %s: %s is final", e.OrderID, e.From, e.To, e.From)
	}
	return fmt.Sprintf("order %s: cannot change status from %s to %s", e.OrderID, e.From, e.To)
}

// IsTransitionError returns true if err is or wraps a *TransitionError.
func IsTransitionError(err error) bool {
	var te *TransitionError
	return errors.As(err, &te)
}
