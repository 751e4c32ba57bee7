package store

import (
	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

// SeedUsers returns the default accounts, one per role.
func SeedUsers() []*model.User {
	return []*model.User{
		{Username: "admin", Password: "admin", Role: model.RoleAdmin},
		{Username: "seller", Password: "seller", Role: model.RoleSeller},
		{Username: "buyer", Password: "buyer", Role: model.RoleBuyer},
	}
}

// SeedProducts returns the default catalog.
func SeedProducts() []*model.Product {
	p := func(id, name string, price int64, desc string, stock int, cat model.Category) *model.Product {
		return &model.Product{
			ID:          id,
			Name:        name,
			Price:       decimal.NewFromInt(price),
			Description: desc,
			Stock:       stock,
			Category:    cat,
		}
	}
	return []*model.Product{
		p("P001", "Nasi Goreng", 15000, "Nasi goreng spesial dengan telur", 20, model.CategoryMakanan),
		p("P002", "Mie Goreng", 12000, "Mie goreng pedas manis", 15, model.CategoryMakanan),
		p("P003", "Ayam Bakar", 25000, "Ayam bakar bumbu rujak", 10, model.CategoryMakanan),
		p("P004", "Es Teh Manis", 5000, "Teh manis dingin segar", 50, model.CategoryMinuman),
		p("P005", "Es Jeruk", 7000, "Jeruk peras segar", 40, model.CategoryMinuman),
		p("P006", "Kopi Susu", 12000, "Kopi susu gula aren", 30, model.CategoryMinuman),
		p("P007", "Kentang Goreng", 10000, "Kentang goreng krispy", 25, model.CategorySnack),
		p("P008", "Pisang Goreng", 8000, "Pisang goreng keju coklat", 20, model.CategorySnack),
	}
}

func (s *Store) seed() {
	s.users = SeedUsers()
	s.products = SeedProducts()
	s.orders = []*model.Order{}
}
