package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Role is a user's access level.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleSeller Role = "SELLER"
	RoleBuyer  Role = "BUYER"
)

// Roles lists every role in declaration order.
var Roles = []Role{RoleAdmin, RoleSeller, RoleBuyer}

// ParseRole returns the Role named by s.
// Matching is exact on the symbolic name.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown role %q: must be one of %v", s, Roles)
}

// Category groups catalog products.
type Category string

const (
	CategoryMakanan Category = "MAKANAN"
	CategoryMinuman Category = "MINUMAN"
	CategorySnack   Category = "SNACK"
)

// DefaultCategory is assigned to placeholder products.
const DefaultCategory = CategoryMakanan

// Categories lists every category in declaration order.
var Categories = []Category{CategoryMakanan, CategoryMinuman, CategorySnack}

var categoryLabels = map[Category]string{
	CategoryMakanan: "Makanan",
	CategoryMinuman: "Minuman",
	CategorySnack:   "Snack",
}

// Label returns the display name of the category.
func (c Category) Label() string {
	if l, ok := categoryLabels[c]; ok {
		return l
	}
	return string(c)
}

// ParseCategory returns the Category named by s.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q: must be one of %v", s, Categories)
}

// User is an account that can sign in.
// Password is stored and compared as plaintext.
type User struct {
	Username string
	Password string
	Role     Role
}

// Product is a catalog entry. The store owns every *Product; orders only
// hold references to them.
type Product struct {
	ID          string
	Name        string
	Price       decimal.Decimal
	Description string
	Stock       int
	Category    Category
}

// NewPlaceholderProduct builds the stand-in used when an order item refers
// to a product that is no longer in the catalog.
func NewPlaceholderProduct(id, name string, price decimal.Decimal) *Product {
	return &Product{
		ID:       id,
		Name:     name,
		Price:    price,
		Stock:    0,
		Category: DefaultCategory,
	}
}

// ParsePrice parses a non-negative decimal price.
func ParsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid price %q: %w", s, err)
	}
	if d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid price %q: must not be negative", s)
	}
	return d, nil
}

// CartItem is a quantity of one product.
type CartItem struct {
	Product  *Product
	Quantity int
}

// Total returns price × quantity.
func (it CartItem) Total() decimal.Decimal {
	return it.Product.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// String renders the item the way the buyer cart shows it.
func (it CartItem) String() string {
	return fmt.Sprintf("%s x%d", it.Product.Name, it.Quantity)
}
