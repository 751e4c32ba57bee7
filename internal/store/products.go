package store

import (
	"slices"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/roach88/camellia/internal/model"
)

// Products returns every product in catalog order.
func (s *Store) Products() []*model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.products)
}

// ProductsByCategory returns the products in category c.
func (s *Store) ProductsByCategory(c model.Category) []*model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*model.Product
	for _, p := range s.products {
		if p.Category == c {
			out = append(out, p)
		}
	}
	return out
}

// SearchProducts returns products whose name or description contains
// keyword, ignoring case. An empty keyword matches everything.
func (s *Store) SearchProducts(keyword string) []*model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fold := cases.Fold()
	key := fold.String(norm.NFC.String(keyword))

	var out []*model.Product
	for _, p := range s.products {
		if strings.Contains(fold.String(norm.NFC.String(p.Name)), key) ||
			strings.Contains(fold.String(norm.NFC.String(p.Description)), key) {
			out = append(out, p)
		}
	}
	return out
}

// Product returns the product with the given id.
func (s *Store) Product(id string) (*model.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.productIndex(id)
	if i < 0 {
		return nil, false
	}
	return s.products[i], true
}

func (s *Store) productIndex(id string) int {
	return slices.IndexFunc(s.products, func(p *model.Product) bool { return p.ID == id })
}

// AddProduct appends p to the catalog. The store keeps the pointer.
func (s *Store) AddProduct(p *model.Product) error {
	if err := validateProduct(p); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.productIndex(p.ID) >= 0 {
		return newError(ErrCodeDuplicate, map[string]string{"id": p.ID}, "product %s already exists", p.ID)
	}
	s.products = append(s.products, p)
	return s.flushProducts()
}

// RemoveProduct deletes the product with the given id. Orders that
// reference it keep their item data.
func (s *Store) RemoveProduct(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return notFound("product", id)
	}
	s.products = slices.Delete(s.products, i, i+1)
	return s.flushProducts()
}

// UpdateProduct replaces the fields of product id with upd. The stored
// pointer is kept, so orders referencing the product see the new values;
// orders.json is rewritten too when any order does.
func (s *Store) UpdateProduct(id string, upd model.Product) error {
	if err := validateProduct(&upd); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(id)
	if i < 0 {
		return notFound("product", id)
	}
	if upd.ID != id && s.productIndex(upd.ID) >= 0 {
		return newError(ErrCodeDuplicate, map[string]string{"id": upd.ID}, "product %s already exists", upd.ID)
	}
	p := s.products[i]
	*p = upd
	if err := s.flushProducts(); err != nil {
		return err
	}
	if s.referenced(p) {
		return s.flushOrders()
	}
	return nil
}

// referenced reports whether any order item points at p.
func (s *Store) referenced(p *model.Product) bool {
	for _, o := range s.orders {
		for _, it := range o.Items {
			if it.Product == p {
				return true
			}
		}
	}
	return false
}

// UpdateStock subtracts quantitySold from the product's stock.
// A sale larger than the stock is rejected and nothing changes.
func (s *Store) UpdateStock(productID string, quantitySold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.productIndex(productID)
	if i < 0 {
		return notFound("product", productID)
	}
	if quantitySold < 1 {
		return invalidField("quantity", "quantity must be at least 1, got %d", quantitySold)
	}
	p := s.products[i]
	if p.Stock < quantitySold {
		return insufficientStock(p, quantitySold)
	}
	p.Stock -= quantitySold
	return s.flushProducts()
}

func validateProduct(p *model.Product) error {
	switch {
	case p == nil:
		return invalidField("product", "product is required")
	case strings.TrimSpace(p.ID) == "":
		return invalidField("id", "product id is required")
	case strings.TrimSpace(p.Name) == "":
		return invalidField("name", "product name is required")
	case p.Price.IsNegative():
		return invalidField("price", "price must not be negative, got %s", p.Price)
	case p.Stock < 0:
		return invalidField("stock", "stock must not be negative, got %d", p.Stock)
	}
	if _, err := model.ParseCategory(string(p.Category)); err != nil {
		return invalidField("category", "%v", err)
	}
	return nil
}

func notFound(kind, key string) *Error {
	return newError(ErrCodeNotFound, map[string]string{kind: key}, "%s %s not found", kind, key)
}

func invalidField(field, format string, args ...any) *Error {
	return newError(ErrCodeInvalidField, map[string]string{"field": field}, format, args...)
}

func insufficientStock(p *model.Product, want int) *Error {
	return newError(ErrCodeInsufficientStock,
		map[string]string{
			"id":        p.ID,
			"requested": strconv.Itoa(want),
			"available": strconv.Itoa(p.Stock),
		},
		"insufficient stock for %s (%s): requested %d, available %d", p.ID, p.Name, want, p.Stock)
}
