package checkout_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/checkout"
	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.Migrate(gdb); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return gdb
}

func seedProduct(t *testing.T, gdb *gorm.DB, name string, price float64, stock int) models.Product {
	t.Helper()

	category := models.Category{Name: "parts-" + name}
	if err := gdb.Create(&category).Error; err != nil {
		t.Fatalf("failed to seed category: %v", err)
	}
	product := models.Product{Name: name, Price: price, StockQuantity: stock, CategoryID: category.ID}
	if err := gdb.Create(&product).Error; err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

func TestPlaceOrder(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p1 := seedProduct(t, gdb, "Steel Widget Type A", 45.99, 10)
	p2 := seedProduct(t, gdb, "Steel Bracket Set", 10.00, 10)

	input := checkout.Input{
		IdempotencyKey: "order-key-1",
		Name:           "Acme Manufacturing Corp",
		Email:          "purchasing@acme.example",
		Lines: []checkout.Line{
			{ProductID: p1.ID, Quantity: 2, UnitPrice: 45.99},
			{ProductID: p2.ID, Quantity: 1, UnitPrice: 10.00},
		},
	}

	res, err := checkout.PlaceOrder(ctx, gdb, nil, input)
	assert.NoError(t, err)
	assert.False(t, res.Replayed)
	assert.Equal(t, models.OrderCompleted, res.Order.Status)
	assert.InDelta(t, 101.98, res.Order.Total, 0.001)

	// exactly one order, N items, one payment whose amount matches the total
	var orderCount, itemCount, paymentCount int64
	gdb.Model(&models.Order{}).Count(&orderCount)
	gdb.Model(&models.OrderItem{}).Where("order_id = ?", res.Order.ID).Count(&itemCount)
	gdb.Model(&models.Payment{}).Where("order_id = ?", res.Order.ID).Count(&paymentCount)
	assert.Equal(t, int64(1), orderCount)
	assert.Equal(t, int64(2), itemCount)
	assert.Equal(t, int64(1), paymentCount)
	assert.InDelta(t, res.Order.Total, res.Payment.Amount, 0.001)

	// stock decremented exactly once per line
	var fresh1, fresh2 models.Product
	gdb.First(&fresh1, p1.ID)
	gdb.First(&fresh2, p2.ID)
	assert.Equal(t, 8, fresh1.StockQuantity)
	assert.Equal(t, 9, fresh2.StockQuantity)
}

func TestPlaceOrderCapturesCartPrices(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Aluminum Heat Sink", 75.99, 5)

	input := checkout.Input{
		IdempotencyKey: "price-capture",
		Name:           "Jane Buyer",
		Email:          "jane@example.com",
		Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 75.99}},
	}

	res, err := checkout.PlaceOrder(ctx, gdb, nil, input)
	assert.NoError(t, err)

	// a later catalog price change must not rewrite the historical item price
	gdb.Model(&models.Product{}).Where("id = ?", p.ID).Update("price", 99.99)

	var item models.OrderItem
	gdb.Where("order_id = ?", res.Order.ID).First(&item)
	assert.InDelta(t, 75.99, item.Price, 0.001)
}

func TestPlaceOrderIdempotency(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Electronic Module D", 199.99, 10)

	input := checkout.Input{
		IdempotencyKey: "double-click",
		Name:           "Jane Buyer",
		Email:          "jane@example.com",
		Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 199.99}},
	}

	first, err := checkout.PlaceOrder(ctx, gdb, nil, input)
	assert.NoError(t, err)
	assert.False(t, first.Replayed)

	second, err := checkout.PlaceOrder(ctx, gdb, nil, input)
	assert.NoError(t, err)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Order.ID, second.Order.ID)

	var orderCount int64
	gdb.Model(&models.Order{}).Count(&orderCount)
	assert.Equal(t, int64(1), orderCount)

	// the replay must not decrement stock a second time
	var fresh models.Product
	gdb.First(&fresh, p.ID)
	assert.Equal(t, 9, fresh.StockQuantity)
}

func TestPlaceOrderStockGuard(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Steel Widget Type A", 89.99, 5)

	buy := func(key string) (*checkout.Result, error) {
		return checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: key,
			Name:           "Jane Buyer",
			Email:          "jane@example.com",
			Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 3, UnitPrice: 89.99}},
		})
	}

	// two submissions racing for 3 units each from a stock of 5: at most
	// one can win, and stock must never go negative
	_, err1 := buy("buyer-one")
	_, err2 := buy("buyer-two")

	if err1 == nil {
		assert.ErrorIs(t, err2, checkout.ErrInsufficientStock)
	} else {
		assert.NoError(t, err2)
	}

	var fresh models.Product
	gdb.First(&fresh, p.ID)
	assert.GreaterOrEqual(t, fresh.StockQuantity, 0)
	assert.Equal(t, 2, fresh.StockQuantity)

	// the failed submission must leave no partial order visible as completed
	var completed int64
	gdb.Model(&models.Order{}).Where("status = ?", models.OrderCompleted).Count(&completed)
	assert.Equal(t, int64(1), completed)
}

func TestPlaceOrderGuestCustomerReuse(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Plastic Assembly C", 45.99, 100)

	order := func(key string) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: key,
			Name:           "Guest Buyer",
			Email:          "guest@example.com",
			Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 45.99}},
		})
		assert.NoError(t, err)
	}

	order("guest-first")
	order("guest-second")

	var customers []models.Customer
	gdb.Where("email = ?", "guest@example.com").Find(&customers)
	assert.Len(t, customers, 1)
	assert.False(t, customers[0].Registered)

	var orderCount int64
	gdb.Model(&models.Order{}).Where("customer_id = ?", customers[0].ID).Count(&orderCount)
	assert.Equal(t, int64(2), orderCount)
}

func TestPlaceOrderLinksGuestToAccount(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Steel Bracket Set", 34.99, 50)

	// guest order first
	_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
		IdempotencyKey: "as-guest",
		Name:           "Jane Buyer",
		Email:          "jane@example.com",
		Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 34.99}},
	})
	assert.NoError(t, err)

	user := models.User{Name: "Jane Buyer", Email: "jane@example.com", PasswordHash: "x"}
	assert.NoError(t, gdb.Create(&user).Error)

	// same email, now signed in: the guest row is claimed, not duplicated
	_, err = checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
		IdempotencyKey: "as-account",
		Name:           "Jane Buyer",
		Email:          "jane@example.com",
		UserID:         &user.ID,
		Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 34.99}},
	})
	assert.NoError(t, err)

	var customers []models.Customer
	gdb.Where("email = ?", "jane@example.com").Find(&customers)
	assert.Len(t, customers, 1)
	assert.True(t, customers[0].Registered)
	if assert.NotNil(t, customers[0].UserID) {
		assert.Equal(t, user.ID, *customers[0].UserID)
	}
}

func TestPlaceOrderValidation(t *testing.T) {
	gdb := openTestDB(t)
	ctx := context.Background()

	p := seedProduct(t, gdb, "Steel Widget Type A", 89.99, 5)

	t.Run("empty cart", func(t *testing.T) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: "k1", Name: "A", Email: "a@b.c",
		})
		assert.ErrorIs(t, err, checkout.ErrEmptyCart)
	})

	t.Run("missing buyer", func(t *testing.T) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: "k2",
			Lines:          []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 1}},
		})
		assert.ErrorIs(t, err, checkout.ErrMissingBuyer)
	})

	t.Run("missing key", func(t *testing.T) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			Name: "A", Email: "a@b.c",
			Lines: []checkout.Line{{ProductID: p.ID, Quantity: 1, UnitPrice: 1}},
		})
		assert.ErrorIs(t, err, checkout.ErrMissingKey)
	})

	t.Run("zero quantity", func(t *testing.T) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: "k3", Name: "A", Email: "a@b.c",
			Lines: []checkout.Line{{ProductID: p.ID, Quantity: 0, UnitPrice: 1}},
		})
		assert.ErrorIs(t, err, checkout.ErrInvalidLine)
	})

	t.Run("unknown product", func(t *testing.T) {
		_, err := checkout.PlaceOrder(ctx, gdb, nil, checkout.Input{
			IdempotencyKey: "k4", Name: "A", Email: "a@b.c",
			Lines: []checkout.Line{{ProductID: 99999, Quantity: 1, UnitPrice: 1}},
		})
		assert.ErrorIs(t, err, checkout.ErrProductNotFound)
	})
}
