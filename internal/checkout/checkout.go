// Package checkout implements the order placement transaction: one
// customer resolution, one order, its items, one payment and the stock
// decrements, committed or rolled back as a unit.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrMissingBuyer      = errors.New("buyer name and email are required")
	ErrMissingKey        = errors.New("idempotency key is required")
	ErrInvalidLine       = errors.New("cart line has invalid quantity or price")
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Line is one cart entry. UnitPrice is the price shown to the buyer at
// cart time and is what the order item records, regardless of later
// catalog changes.
type Line struct {
	ProductID uint
	Quantity  int
	UnitPrice float64
}

type Input struct {
	// Client-generated token. Resubmitting with the same token returns the
	// order created by the first submission.
	IdempotencyKey string
	Name           string
	Email          string
	Phone          string
	// UserID links the order's customer to a signed-in account; nil means
	// guest checkout keyed by email.
	UserID        *uint
	PaymentMethod string
	Lines         []Line
}

type Result struct {
	Order    models.Order
	Customer models.Customer
	Payment  models.Payment
	// Replayed is true when the idempotency key matched an existing order
	// and nothing new was written.
	Replayed bool
}

func (in *Input) validate() error {
	if in.IdempotencyKey == "" {
		return ErrMissingKey
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return ErrMissingBuyer
	}
	if len(in.Lines) == 0 {
		return ErrEmptyCart
	}
	for _, l := range in.Lines {
		if l.Quantity < 1 || l.UnitPrice < 0 {
			return ErrInvalidLine
		}
	}
	return nil
}

func (in *Input) total() float64 {
	var total float64
	for _, l := range in.Lines {
		total += l.UnitPrice * float64(l.Quantity)
	}
	return total
}

// PlaceOrder runs the checkout transaction. On success the order is
// committed in completed state with its items, payment and stock
// decrements; any step failing rolls the whole unit back. hub may be nil
// in tests.
func PlaceOrder(ctx context.Context, gdb *gorm.DB, hub *events.Hub, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	gdb = gdb.WithContext(ctx)

	// Replay path: a previous submission with this token won.
	if res, ok, err := findExisting(gdb, in.IdempotencyKey); err != nil {
		return nil, err
	} else if ok {
		return res, nil
	}

	tx := gdb.Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("failed to start transaction: %w", tx.Error)
	}

	customer, err := resolveCustomer(tx, in)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	order := models.Order{
		CustomerID:     customer.ID,
		Status:         models.OrderPending,
		Total:          in.total(),
		IdempotencyKey: in.IdempotencyKey,
	}
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		// Concurrent submission with the same token beat us to the unique
		// index; return its order.
		if isDuplicateKey(err) {
			if res, ok, ferr := findExisting(gdb, in.IdempotencyKey); ferr == nil && ok {
				return res, nil
			}
		}
		return nil, err
	}

	items := make([]models.OrderItem, 0, len(in.Lines))
	for _, l := range in.Lines {
		items = append(items, models.OrderItem{
			OrderID:   order.ID,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.UnitPrice,
		})
	}
	if err := tx.CreateInBatches(&items, len(items)).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order items: %w", err)
	}

	payment := models.Payment{
		OrderID:     order.ID,
		Amount:      order.Total,
		Method:      paymentMethod(in.PaymentMethod),
		Status:      models.PaymentCompleted,
		ProcessedAt: time.Now(),
	}
	if err := tx.Create(&payment).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to record payment: %w", err)
	}

	// Conditional decrement: the WHERE clause is the stock guard. Zero rows
	// affected means either the product vanished or stock ran out between
	// cart and checkout.
	for _, l := range in.Lines {
		res := tx.Model(&models.Product{}).
			Where("id = ? AND stock_quantity >= ?", l.ProductID, l.Quantity).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity - ?", l.Quantity))
		if res.Error != nil {
			tx.Rollback()
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			var count int64
			gdb.Model(&models.Product{}).Where("id = ?", l.ProductID).Count(&count)
			if count == 0 {
				return nil, fmt.Errorf("%w: id %d", ErrProductNotFound, l.ProductID)
			}
			return nil, fmt.Errorf("%w: product %d", ErrInsufficientStock, l.ProductID)
		}
	}

	order.Status = models.OrderCompleted
	if err := tx.Model(&models.Order{}).Where("id = ?", order.ID).
		Update("status", models.OrderCompleted).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	order.Items = items
	order.Payment = &payment

	if hub != nil {
		hub.Publish(events.TableCustomers, events.ActionUpdate, customer.ID)
		hub.Publish(events.TableOrders, events.ActionInsert, order.ID)
		hub.Publish(events.TablePayments, events.ActionInsert, payment.ID)
		for _, l := range in.Lines {
			hub.Publish(events.TableProducts, events.ActionUpdate, l.ProductID)
		}
	}

	return &Result{Order: order, Customer: *customer, Payment: payment}, nil
}

// resolveCustomer finds or creates the buyer row: authenticated identity
// first, then email. An existing guest row is claimed by the signed-in
// account when the emails collide.
func resolveCustomer(tx *gorm.DB, in Input) (*models.Customer, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	var customer models.Customer

	if in.UserID != nil {
		err := tx.Where("user_id = ?", *in.UserID).First(&customer).Error
		if err == nil {
			return &customer, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	err := tx.Where("email = ?", email).First(&customer).Error
	if err == nil {
		if in.UserID != nil && customer.UserID == nil {
			customer.UserID = in.UserID
			customer.Registered = true
			if err := tx.Model(&customer).Updates(map[string]interface{}{
				"user_id":    *in.UserID,
				"registered": true,
			}).Error; err != nil {
				return nil, err
			}
		}
		return &customer, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	customer = models.Customer{
		Name:       strings.TrimSpace(in.Name),
		Email:      email,
		Phone:      strings.TrimSpace(in.Phone),
		UserID:     in.UserID,
		Registered: in.UserID != nil,
	}
	if err := tx.Create(&customer).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func findExisting(gdb *gorm.DB, key string) (*Result, bool, error) {
	var order models.Order
	err := gdb.Where("idempotency_key = ?", key).
		Preload("Items").Preload("Payment").Preload("Customer").
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}

	res := &Result{Order: order, Customer: order.Customer, Replayed: true}
	if order.Payment != nil {
		res.Payment = *order.Payment
	}
	return res, true, nil
}

func paymentMethod(m string) string {
	if m == "" {
		return "credit_card"
	}
	return m
}

func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "UNIQUE constraint") ||
		strings.Contains(msg, "duplicate key")
}
