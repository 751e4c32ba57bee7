package codec

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/camellia/internal/model"
)

func newGoldie(t *testing.T) *goldie.Goldie {
	t.Helper()
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func sampleUsers() []*model.User {
	return []*model.User{
		{Username: "admin", Password: "admin", Role: model.RoleAdmin},
		{Username: "seller", Password: "seller", Role: model.RoleSeller},
		{Username: "buyer", Password: "buyer", Role: model.RoleBuyer},
	}
}

func sampleProducts() []*model.Product {
	return []*model.Product{
		{
			ID: "P001", Name: "Nasi Goreng", Price: decimal.NewFromInt(15000),
			Description: "Nasi goreng spesial dengan telur", Stock: 20, Category: model.CategoryMakanan,
		},
		{
			ID: "P009", Name: `Kopi "Tubruk"`, Price: decimal.RequireFromString("12500.50"),
			Description: "Line one\n\tC:\\kopi\r", Stock: 0, Category: model.CategoryMinuman,
		},
	}
}

func sampleOrders() []*model.Order {
	nasi := &model.Product{ID: "P001", Name: "Nasi Goreng", Price: decimal.NewFromInt(15000), Stock: 20, Category: model.CategoryMakanan}
	teh := &model.Product{ID: "P004", Name: "Es Teh Manis", Price: decimal.NewFromInt(5000), Stock: 50, Category: model.CategoryMinuman}
	return []*model.Order{
		{
			ID: "AB12CD34", BuyerUsername: "buyer", RoomName: "101",
			Items:       []model.CartItem{{Product: nasi, Quantity: 2}, {Product: teh, Quantity: 1}},
			TotalAmount: decimal.NewFromInt(35000), Status: model.StatusPending, CreatedTime: 1700000000000,
		},
		{
			ID: "EE00FF11", BuyerUsername: "buyer", RoomName: "Ruang Melati",
			TotalAmount: decimal.Zero, Status: model.StatusCancelled, CreatedTime: 1700000500000,
		},
	}
}

func TestEncodeUsers_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "users", EncodeUsers(sampleUsers()))
}

func TestEncodeProducts_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "products", EncodeProducts(sampleProducts()))
}

func TestEncodeOrders_Golden(t *testing.T) {
	newGoldie(t).Assert(t, "orders", EncodeOrders(sampleOrders()))
}

func TestEncodeEmpty_Golden(t *testing.T) {
	g := newGoldie(t)
	g.Assert(t, "empty", EncodeUsers(nil))
	g.Assert(t, "empty", EncodeProducts([]*model.Product{}))
	g.Assert(t, "empty", EncodeOrders(nil))
}

func TestEncode_Deterministic(t *testing.T) {
	orders := sampleOrders()
	assert.Equal(t, EncodeOrders(orders), EncodeOrders(orders))
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Run("users", func(t *testing.T) {
		users := sampleUsers()
		got, err := DecodeUsers(EncodeUsers(users))
		require.NoError(t, err)
		assert.Equal(t, users, got)
	})

	t.Run("products", func(t *testing.T) {
		products := sampleProducts()
		got, err := DecodeProducts(EncodeProducts(products))
		require.NoError(t, err)
		require.Len(t, got, len(products))
		for i := range products {
			assert.Equal(t, products[i].ID, got[i].ID)
			assert.Equal(t, products[i].Name, got[i].Name)
			assert.Equal(t, products[i].Description, got[i].Description)
			assert.Equal(t, products[i].Stock, got[i].Stock)
			assert.Equal(t, products[i].Category, got[i].Category)
			assert.True(t, products[i].Price.Equal(got[i].Price), "price %s != %s", products[i].Price, got[i].Price)
		}
		// Decoding then re-encoding is byte-stable.
		assert.Equal(t, EncodeProducts(products), EncodeProducts(got))
	})

	t.Run("orders", func(t *testing.T) {
		orders := sampleOrders()
		catalog := map[string]*model.Product{}
		for _, o := range orders {
			for _, it := range o.Items {
				catalog[it.Product.ID] = it.Product
			}
		}

		got, err := DecodeOrders(EncodeOrders(orders), func(id string) *model.Product { return catalog[id] })
		require.NoError(t, err)
		require.Len(t, got, 2)

		first := got[0]
		assert.Equal(t, "AB12CD34", first.ID)
		assert.Equal(t, "buyer", first.BuyerUsername)
		assert.Equal(t, "101", first.RoomName)
		assert.Equal(t, model.StatusPending, first.Status)
		assert.Equal(t, int64(1700000000000), first.CreatedTime)
		assert.True(t, decimal.NewFromInt(35000).Equal(first.TotalAmount))
		require.Len(t, first.Items, 2)
		assert.Same(t, catalog["P001"], first.Items[0].Product, "items must resolve to the live catalog product")
		assert.Equal(t, 2, first.Items[0].Quantity)

		assert.Empty(t, got[1].Items)
		assert.Equal(t, model.StatusCancelled, got[1].Status)

		assert.Equal(t, EncodeOrders(orders), EncodeOrders(got))
	})
}
