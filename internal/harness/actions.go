package harness

import (
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

type action func(h *Harness, args map[string]any) (map[string]any, error)

// actions maps step names to store operations.
var actions = map[string]action{
	"place_order":    placeOrder,
	"transition":     transition,
	"add_product":    addProduct,
	"update_product": updateProduct,
	"update_stock":   updateStock,
	"remove_product": removeProduct,
	"add_user":       addUser,
	"remove_user":    removeUser,
	"login":          login,
	"reload":         reload,
}

// place_order: buyer, room, items: [{product, quantity}]
func placeOrder(h *Harness, args map[string]any) (map[string]any, error) {
	buyer, err := argString(args, "buyer")
	if err != nil {
		return nil, err
	}
	room, err := argString(args, "room")
	if err != nil {
		return nil, err
	}
	rawItems, _ := args["items"].([]any)

	cart := make([]model.CartItem, 0, len(rawItems))
	for i, raw := range rawItems {
		item, ok := raw.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: items[%d] must be a mapping", errBadArgs, i)
		}
		id, err := argString(item, "product")
		if err != nil {
			return nil, err
		}
		qty, err := argInt(item, "quantity")
		if err != nil {
			return nil, err
		}
		p, ok := h.store.Product(id)
		if !ok {
			// Unknown ids reach the store so it reports NOT_FOUND.
			p = &model.Product{ID: id}
		}
		cart = append(cart, model.CartItem{Product: p, Quantity: qty})
	}

	o, err := h.store.PlaceOrder(buyer, room, cart)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":     o.ID,
		"status": string(o.Status),
		"total":  o.TotalAmount.String(),
	}, nil
}

// transition: order, status
func transition(h *Harness, args map[string]any) (map[string]any, error) {
	id, err := argString(args, "order")
	if err != nil {
		return nil, err
	}
	raw, err := argString(args, "status")
	if err != nil {
		return nil, err
	}
	next, err := model.ParseStatus(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadArgs, err)
	}

	o, ok := h.store.Order(id)
	if !ok {
		o = &model.Order{ID: id}
	}
	if err := h.store.TransitionOrder(o, next); err != nil {
		return nil, err
	}
	return map[string]any{"status": string(o.Status)}, nil
}

// add_product: id, name, price, description, stock, category
func addProduct(h *Harness, args map[string]any) (map[string]any, error) {
	p := &model.Product{}
	if err := applyProductArgs(p, args); err != nil {
		return nil, err
	}
	return nil, h.store.AddProduct(p)
}

// update_product: id plus any product fields to change; new_id renames.
func updateProduct(h *Harness, args map[string]any) (map[string]any, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}
	upd := model.Product{ID: id}
	if p, ok := h.store.Product(id); ok {
		upd = *p
	}
	if err := applyProductArgs(&upd, args); err != nil {
		return nil, err
	}
	if newID, ok := args["new_id"]; ok {
		upd.ID = fmt.Sprint(newID)
	}
	return nil, h.store.UpdateProduct(id, upd)
}

func applyProductArgs(p *model.Product, args map[string]any) error {
	if v, ok := args["id"]; ok {
		p.ID = fmt.Sprint(v)
	}
	if v, ok := args["name"]; ok {
		p.Name = fmt.Sprint(v)
	}
	if v, ok := args["description"]; ok {
		p.Description = fmt.Sprint(v)
	}
	if v, ok := args["category"]; ok {
		// Left unparsed so the store reports invalid categories.
		p.Category = model.Category(fmt.Sprint(v))
	}
	if _, ok := args["price"]; ok {
		price, err := argDecimal(args, "price")
		if err != nil {
			return err
		}
		p.Price = price
	}
	if _, ok := args["stock"]; ok {
		stock, err := argInt(args, "stock")
		if err != nil {
			return err
		}
		p.Stock = stock
	}
	return nil
}

// update_stock: product, sold
func updateStock(h *Harness, args map[string]any) (map[string]any, error) {
	id, err := argString(args, "product")
	if err != nil {
		return nil, err
	}
	sold, err := argInt(args, "sold")
	if err != nil {
		return nil, err
	}
	if err := h.store.UpdateStock(id, sold); err != nil {
		return nil, err
	}
	p, _ := h.store.Product(id)
	return map[string]any{"stock": p.Stock}, nil
}

// remove_product: id
func removeProduct(h *Harness, args map[string]any) (map[string]any, error) {
	id, err := argString(args, "id")
	if err != nil {
		return nil, err
	}
	return nil, h.store.RemoveProduct(id)
}

// add_user: username, password, role
func addUser(h *Harness, args map[string]any) (map[string]any, error) {
	u := &model.User{}
	var err error
	if u.Username, err = argString(args, "username"); err != nil {
		return nil, err
	}
	if u.Password, err = argString(args, "password"); err != nil {
		return nil, err
	}
	role, err := argString(args, "role")
	if err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return nil, h.store.AddUser(u)
}

// remove_user: username
func removeUser(h *Harness, args map[string]any) (map[string]any, error) {
	name, err := argString(args, "username")
	if err != nil {
		return nil, err
	}
	return nil, h.store.RemoveUser(name)
}

// login: username, password
func login(h *Harness, args map[string]any) (map[string]any, error) {
	name, err := argString(args, "username")
	if err != nil {
		return nil, err
	}
	password, err := argString(args, "password")
	if err != nil {
		return nil, err
	}
	u, ok := h.store.Authenticate(name, password)
	if !ok {
		return map[string]any{"authenticated": false}, nil
	}
	return map[string]any{"authenticated": true, "role": string(u.Role)}, nil
}

// reload: no args
func reload(h *Harness, _ map[string]any) (map[string]any, error) {
	return nil, h.reload()
}

func argString(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: %q is required", errBadArgs, key)
	}
	return fmt.Sprint(v), nil
}

func argInt(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("%w: %q is required", errBadArgs, key)
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case float64:
		if n == math.Trunc(n) {
			return int(n), nil
		}
	case string:
		if i, err := strconv.Atoi(n); err == nil {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %q must be an integer, got %v", errBadArgs, key, v)
}

func argDecimal(args map[string]any, key string) (decimal.Decimal, error) {
	v, ok := args[key]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %q is required", errBadArgs, key)
	}
	d, err := decimal.NewFromString(fmt.Sprint(v))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q must be a number: %v", errBadArgs, key, err)
	}
	return d, nil
}
