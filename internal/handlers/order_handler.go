package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/SoyVutha/chroma-supply-chain/internal/auth"
	"github.com/SoyVutha/chroma-supply-chain/internal/checkout"
	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
	"github.com/SoyVutha/chroma-supply-chain/internal/notifier"
)

type CheckoutLineRequest struct {
	ProductID uint    `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required,gte=1"`
	UnitPrice float64 `json:"unit_price" binding:"gte=0"`
}

type CheckoutRequest struct {
	// Optional; generated server-side when the client sends none. Clients
	// that retry after a network failure should reuse their key.
	IdempotencyKey string `json:"idempotency_key"`
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Phone          string `json:"phone"`
	PaymentMethod  string `json:"payment_method"`
	// Explicit lines override the session cart; the SPA sends its
	// client-local cart this way.
	Lines []CheckoutLineRequest `json:"lines"`
}

// Checkout turns the cart plus buyer details into a completed order. Works
// for guests and signed-in users alike; a signed-in session links the
// customer record to the account.
func Checkout(c *gin.Context) {
	var req CheckoutRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	in := checkout.Input{
		IdempotencyKey: req.IdempotencyKey,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		PaymentMethod:  req.PaymentMethod,
	}
	if in.IdempotencyKey == "" {
		in.IdempotencyKey = uuid.New().String()
	}

	if user, ok := auth.CurrentUser(c); ok {
		in.UserID = &user.ID
	}

	sess := sessions.Default(c)

	usedSessionCart := len(req.Lines) == 0
	if usedSessionCart {
		lines, err := cartLines(c, getCart(sess))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		in.Lines = lines
	} else {
		for _, l := range req.Lines {
			in.Lines = append(in.Lines, checkout.Line{
				ProductID: l.ProductID,
				Quantity:  l.Quantity,
				UnitPrice: l.UnitPrice,
			})
		}
	}

	res, err := checkout.PlaceOrder(c.Request.Context(), db.DB, events.Default, in)
	if err != nil {
		switch {
		case errors.Is(err, checkout.ErrInsufficientStock):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, checkout.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, checkout.ErrEmptyCart),
			errors.Is(err, checkout.ErrMissingBuyer),
			errors.Is(err, checkout.ErrInvalidLine),
			errors.Is(err, checkout.ErrMissingKey):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	if usedSessionCart && !res.Replayed {
		sess.Set(CartSessionKey, make(map[uint]int))
		_ = sess.Save()
	}

	if !res.Replayed {
		customer := res.Customer
		order := res.Order

		go func() {
			if err := notifier.SendOrderEmail(customer.Email, customer.Name, order.ID, order.Total); err != nil {
				log.Printf("Failed to send email for order %d to %s: %v", order.ID, customer.Email, err)
			}
		}()

		if customer.Phone != "" {
			go func() {
				if err := notifier.SendOrderSMS(customer.Phone, order.ID, order.Total); err != nil {
					log.Printf("Failed to send SMS for order %d to %s: %v", order.ID, customer.Phone, err)
				}
			}()
		}
	}

	status := http.StatusCreated
	message := "order placed successfully"
	if res.Replayed {
		status = http.StatusOK
		message = "order already placed"
	}

	c.JSON(status, gin.H{
		"message":         message,
		"order":           res.Order,
		"idempotency_key": res.Order.IdempotencyKey,
	})
}

// MyOrders lists the signed-in user's orders, newest first.
func MyOrders(c *gin.Context) {
	user := c.MustGet("user").(*models.User)

	ctx := c.Request.Context()

	var customer models.Customer
	if err := db.DB.WithContext(ctx).Where("user_id = ?", user.ID).First(&customer).Error; err != nil {
		// No orders placed yet under this account.
		c.JSON(http.StatusOK, []models.Order{})
		return
	}

	var orders []models.Order
	err := db.DB.WithContext(ctx).
		Where("customer_id = ?", customer.ID).
		Preload("Items").Preload("Items.Product").Preload("Payment").
		Order("created_at desc").
		Find(&orders).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

// ListOrders is the staff order console: filter by status, search by
// customer name or email.
func ListOrders(c *gin.Context) {
	ctx := c.Request.Context()
	query := db.DB.WithContext(ctx).Model(&models.Order{}).
		Preload("Customer").Preload("Items").Preload("Payment")

	if status := c.Query("status"); status != "" {
		if !models.ValidOrderStatus(models.OrderStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Joins("JOIN customers ON customers.id = orders.customer_id").
			Where("LOWER(customers.name) LIKE ? OR LOWER(customers.email) LIKE ?", pattern, pattern)
	}

	var orders []models.Order
	if err := query.Order("orders.created_at desc").Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status" binding:"required"`
}

func UpdateOrderStatus(c *gin.Context) {
	var req UpdateOrderStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidOrderStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	ctx := c.Request.Context()

	var order models.Order
	if err := db.DB.WithContext(ctx).First(&order, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	if err := db.DB.WithContext(ctx).Model(&order).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableOrders, events.ActionUpdate, order.ID)

	c.JSON(http.StatusOK, order)
}
