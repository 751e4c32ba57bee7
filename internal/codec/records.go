package codec

import (
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/roach88/camellia/internal/model"
)

// ProductLookup resolves a product id to the live catalog entry, or nil.
type ProductLookup func(id string) *model.Product

// EncodeUsers renders users in file form.
func EncodeUsers(users []*model.User) []byte {
	records := make([][]field, 0, len(users))
	for _, u := range users {
		records = append(records, []field{
			stringField("username", u.Username),
			stringField("password", u.Password),
			enumField("role", u.Role),
		})
	}
	return writeDocument(records)
}

// EncodeProducts renders products in file form.
func EncodeProducts(products []*model.Product) []byte {
	records := make([][]field, 0, len(products))
	for _, p := range products {
		records = append(records, []field{
			stringField("id", p.ID),
			stringField("name", p.Name),
			decimalField("price", p.Price),
			stringField("description", p.Description),
			intField("stock", int64(p.Stock)),
			enumField("category", p.Category),
		})
	}
	return writeDocument(records)
}

// EncodeOrders renders orders in file form. Each item stores the product's
// id, name and price at write time so it can be rebuilt if the product is
// later removed from the catalog.
func EncodeOrders(orders []*model.Order) []byte {
	records := make([][]field, 0, len(orders))
	for _, o := range orders {
		items := make([][]field, 0, len(o.Items))
		for _, it := range o.Items {
			items = append(items, []field{
				stringField("productId", it.Product.ID),
				stringField("productName", it.Product.Name),
				decimalField("productPrice", it.Product.Price),
				intField("quantity", int64(it.Quantity)),
			})
		}
		records = append(records, []field{
			stringField("orderId", o.ID),
			stringField("buyerUsername", o.BuyerUsername),
			stringField("roomName", o.RoomName),
			decimalField("totalAmount", o.TotalAmount),
			enumField("status", o.Status),
			intField("createdTime", o.CreatedTime),
			itemsField(ItemsKey, items),
		})
	}
	return writeDocument(records)
}

// DecodeUsers parses a users document.
func DecodeUsers(data []byte) ([]*model.User, error) {
	objs, err := Parse(data)
	if err != nil {
		return nil, err
	}

	users := make([]*model.User, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for i, obj := range objs {
		r := &recordReader{record: "user", index: i, obj: obj}
		u := &model.User{
			Username: r.str("username"),
			Password: r.str("password"),
		}
		u.Role = parseEnum(r, "role", model.ParseRole)
		if r.err != nil {
			return nil, r.err
		}
		if seen[u.Username] {
			return nil, r.fail("username", "duplicate username %q", u.Username)
		}
		seen[u.Username] = true
		users = append(users, u)
	}
	return users, nil
}

// DecodeProducts parses a products document.
func DecodeProducts(data []byte) ([]*model.Product, error) {
	objs, err := Parse(data)
	if err != nil {
		return nil, err
	}

	products := make([]*model.Product, 0, len(objs))
	seen := make(map[string]bool, len(objs))
	for i, obj := range objs {
		r := &recordReader{record: "product", index: i, obj: obj}
		p := &model.Product{
			ID:          r.str("id"),
			Name:        r.str("name"),
			Price:       r.price("price"),
			Description: r.str("description"),
			Stock:       r.stock("stock"),
		}
		p.Category = parseEnum(r, "category", model.ParseCategory)
		if r.err != nil {
			return nil, r.err
		}
		if seen[p.ID] {
			return nil, r.fail("id", "duplicate product id %q", p.ID)
		}
		seen[p.ID] = true
		products = append(products, p)
	}
	return products, nil
}

// DecodeOrders parses an orders document. Item products are resolved with
// lookup; ids it does not know become placeholder products built from the
// stored name and price. TotalAmount is taken from the file, not recomputed.
func DecodeOrders(data []byte, lookup ProductLookup) ([]*model.Order, error) {
	objs, err := Parse(data)
	if err != nil {
		return nil, err
	}

	orders := make([]*model.Order, 0, len(objs))
	for i, obj := range objs {
		r := &recordReader{record: "order", index: i, obj: obj}
		o := &model.Order{
			ID:            r.str("orderId"),
			BuyerUsername: r.str("buyerUsername"),
			RoomName:      r.str("roomName"),
			TotalAmount:   r.decimal("totalAmount"),
			CreatedTime:   r.millis("createdTime"),
		}
		o.Status = parseEnum(r, "status", model.ParseStatus)
		elems := r.array(ItemsKey)
		if r.err != nil {
			return nil, r.err
		}

		o.Items = make([]model.CartItem, 0, len(elems))
		for j, elem := range elems {
			item, err := decodeItem(j, elem, lookup)
			if err != nil {
				return nil, fmt.Errorf("order[%d] %s: %w", i, o.ID, err)
			}
			o.Items = append(o.Items, item)
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func decodeItem(index int, obj *Object, lookup ProductLookup) (model.CartItem, error) {
	r := &recordReader{record: "order item", index: index, obj: obj}
	id := r.str("productId")
	qty := r.integer("quantity")
	if r.err != nil {
		return model.CartItem{}, r.err
	}
	if qty < 1 {
		return model.CartItem{}, r.fail("quantity", "must be at least 1, got %d", qty)
	}

	var p *model.Product
	if lookup != nil {
		p = lookup(id)
	}
	if p == nil {
		name := r.optionalStr("productName", "")
		price := r.optionalDecimal("productPrice", decimal.Zero)
		if r.err != nil {
			return model.CartItem{}, r.err
		}
		p = model.NewPlaceholderProduct(id, name, price)
	}
	return model.CartItem{Product: p, Quantity: qty}, nil
}

// recordReader extracts typed fields from one object. The first failure is
// kept in err and later calls become no-ops.
type recordReader struct {
	record string
	index  int
	obj    *Object
	err    error
}

func (r *recordReader) fail(key, format string, args ...any) error {
	if r.err == nil {
		r.err = &FieldError{Record: r.record, Index: r.index, Field: key, Msg: fmt.Sprintf(format, args...)}
	}
	return r.err
}

func (r *recordReader) get(key string, kinds ...Kind) (Value, bool) {
	if r.err != nil {
		return Value{}, false
	}
	v, ok := r.obj.Lookup(key)
	if !ok {
		r.fail(key, "missing field")
		return Value{}, false
	}
	for _, k := range kinds {
		if v.Kind == k {
			return v, true
		}
	}
	r.fail(key, "expected %s, found %s", kinds[0], v.Kind)
	return Value{}, false
}

func (r *recordReader) str(key string) string {
	v, _ := r.get(key, KindString)
	return v.Text
}

func (r *recordReader) optionalStr(key, def string) string {
	if _, ok := r.obj.Lookup(key); !ok {
		return def
	}
	return r.str(key)
}

func (r *recordReader) decimal(key string) decimal.Decimal {
	v, ok := r.get(key, KindNumber)
	if !ok {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(v.Text)
	if err != nil {
		r.fail(key, "invalid number %q", v.Text)
		return decimal.Zero
	}
	return d
}

func (r *recordReader) optionalDecimal(key string, def decimal.Decimal) decimal.Decimal {
	if _, ok := r.obj.Lookup(key); !ok {
		return def
	}
	return r.decimal(key)
}

func (r *recordReader) price(key string) decimal.Decimal {
	d := r.decimal(key)
	if r.err == nil && d.IsNegative() {
		r.fail(key, "must not be negative, got %s", d)
	}
	return d
}

func (r *recordReader) millis(key string) int64 {
	v, ok := r.get(key, KindNumber)
	if !ok {
		return 0
	}
	n, err := strconv.ParseInt(v.Text, 10, 64)
	if err != nil {
		r.fail(key, "expected integer, found %q", v.Text)
		return 0
	}
	return n
}

func (r *recordReader) integer(key string) int {
	v, ok := r.get(key, KindNumber)
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(v.Text)
	if err != nil {
		r.fail(key, "expected integer, found %q", v.Text)
		return 0
	}
	return n
}

func (r *recordReader) stock(key string) int {
	n := r.integer(key)
	if r.err == nil && n < 0 {
		r.fail(key, "must not be negative, got %d", n)
	}
	return n
}

func (r *recordReader) array(key string) []*Object {
	v, _ := r.get(key, KindArray)
	return v.Objects
}

// parseEnum reads a symbolic name stored either quoted or bare.
func parseEnum[T any](r *recordReader, key string, parse func(string) (T, error)) T {
	var zero T
	v, ok := r.get(key, KindString, KindName)
	if !ok {
		return zero
	}
	out, err := parse(v.Text)
	if err != nil {
		r.fail(key, "%v", err)
		return zero
	}
	return out
}
