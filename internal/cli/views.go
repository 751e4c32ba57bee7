package cli

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/journal"
	"github.com/roach88/camellia/internal/model"
)

// JSON payloads. Passwords are never included.

type productView struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	Stock       int             `json:"stock"`
	Category    model.Category  `json:"category"`
}

func newProductView(p *model.Product) productView {
	return productView{
		ID:          p.ID,
		Name:        p.Name,
		Price:       p.Price,
		Description: p.Description,
		Stock:       p.Stock,
		Category:    p.Category,
	}
}

func newProductViews(ps []*model.Product) []productView {
	views := make([]productView, 0, len(ps))
	for _, p := range ps {
		views = append(views, newProductView(p))
	}
	return views
}

type userView struct {
	Username string     `json:"username"`
	Role     model.Role `json:"role"`
}

type itemView struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Price       decimal.Decimal `json:"productPrice"`
	Quantity    int             `json:"quantity"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

type orderView struct {
	ID          string            `json:"id"`
	Buyer       string            `json:"buyerUsername"`
	Room        string            `json:"roomName"`
	Items       []itemView        `json:"items"`
	TotalAmount decimal.Decimal   `json:"totalAmount"`
	Status      model.OrderStatus `json:"status"`
	CreatedTime int64             `json:"createdTime"`
}

func newOrderView(o *model.Order) orderView {
	items := make([]itemView, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, itemView{
			ProductID:   it.Product.ID,
			ProductName: it.Product.Name,
			Price:       it.Product.Price,
			Quantity:    it.Quantity,
			Subtotal:    it.Total(),
		})
	}
	return orderView{
		ID:          o.ID,
		Buyer:       o.BuyerUsername,
		Room:        o.RoomName,
		Items:       items,
		TotalAmount: o.TotalAmount,
		Status:      o.Status,
		CreatedTime: o.CreatedTime,
	}
}

type eventView struct {
	Seq    int64             `json:"seq"`
	Kind   journal.Kind      `json:"kind"`
	From   model.OrderStatus `json:"from,omitempty"`
	To     model.OrderStatus `json:"to"`
	Actor  string            `json:"actor,omitempty"`
	Amount decimal.Decimal   `json:"amount"`
	At     time.Time         `json:"at"`
}

type statsView struct {
	TotalSales decimal.Decimal           `json:"totalSales"`
	Delivered  int                       `json:"delivered"`
	Pending    int                       `json:"pending"`
	Products   int                       `json:"products"`
	Users      int                       `json:"users"`
	ByStatus   map[model.OrderStatus]int `json:"byStatus"`
}

type importView struct {
	Files         int      `json:"files"`
	ProductsAdded []string `json:"productsAdded"`
	UsersAdded    []string `json:"usersAdded"`
	Skipped       []string `json:"skipped,omitempty"`
	Errors        []string `json:"errors,omitempty"`
}
