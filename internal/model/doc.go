// Package model provides the domain records of the café ordering system.
//
// This package contains plain value types plus the order status lifecycle.
// All other internal packages import model; model imports nothing internal.
//
// Key design constraints:
//   - Prices and totals are decimal.Decimal, never float64
//   - Enumerations are typed strings whose value is the symbolic name
//     written to the backing files (ADMIN, MAKANAN, PENDING, ...)
//   - An Order's TotalAmount is computed once by NewOrder and never recomputed
//   - Order.Status changes only through TransitionTo
package model
