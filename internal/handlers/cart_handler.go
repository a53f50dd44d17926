package handlers

import (
	"encoding/gob"
	"net/http"
	"sort"
	"strconv"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/SoyVutha/chroma-supply-chain/internal/checkout"
	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

const CartSessionKey = "shopping_cart"

func init() {
	// the cookie store gob-encodes session values
	gob.Register(map[uint]int{})
}

// CartItemView is one priced cart line as returned to the client.
type CartItemView struct {
	Product  models.Product `json:"product"`
	Quantity int            `json:"quantity"`
	Subtotal float64        `json:"subtotal"`
}

func getCart(sess sessions.Session) map[uint]int {
	if cart, ok := sess.Get(CartSessionKey).(map[uint]int); ok {
		return cart
	}
	return make(map[uint]int)
}

func cartCount(cart map[uint]int) int {
	total := 0
	for _, qty := range cart {
		total += qty
	}
	return total
}

// GetCart prices the session cart against the current catalog. Products
// that vanished since they were added are silently dropped.
func GetCart(c *gin.Context) {
	sess := sessions.Default(c)
	cart := getCart(sess)

	items, total, err := priceCart(c, cart)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": total, "count": cartCount(cart)})
}

// AddToCart puts one more unit of the product in the session cart, bounded
// by available stock.
func AddToCart(c *gin.Context) {
	productID, ok := parseID(c)
	if !ok {
		return
	}

	var product models.Product
	if err := db.DB.WithContext(c.Request.Context()).First(&product, productID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	sess := sessions.Default(c)
	cart := getCart(sess)

	if cart[productID]+1 > product.StockQuantity {
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock"})
		return
	}

	cart[productID]++
	sess.Set(CartSessionKey, cart)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item added", "count": cartCount(cart)})
}

// DecreaseCartItem removes one unit, dropping the line at zero.
func DecreaseCartItem(c *gin.Context) {
	productID, ok := parseID(c)
	if !ok {
		return
	}

	sess := sessions.Default(c)
	cart := getCart(sess)

	if qty, exists := cart[productID]; exists {
		if qty > 1 {
			cart[productID]--
		} else {
			delete(cart, productID)
		}
		sess.Set(CartSessionKey, cart)
		if err := sess.Save(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "quantity updated", "count": cartCount(cart)})
}

func RemoveCartItem(c *gin.Context) {
	productID, ok := parseID(c)
	if !ok {
		return
	}

	sess := sessions.Default(c)
	cart := getCart(sess)

	delete(cart, productID)
	sess.Set(CartSessionKey, cart)
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "item removed", "count": cartCount(cart)})
}

func ClearCart(c *gin.Context) {
	sess := sessions.Default(c)
	sess.Set(CartSessionKey, make(map[uint]int))
	if err := sess.Save(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear cart"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "cart cleared", "count": 0})
}

// priceCart resolves cart lines against the catalog, producing the view
// items and running total.
func priceCart(c *gin.Context, cart map[uint]int) ([]CartItemView, float64, error) {
	if len(cart) == 0 {
		return []CartItemView{}, 0, nil
	}

	ids := make([]uint, 0, len(cart))
	for id := range cart {
		ids = append(ids, id)
	}

	var products []models.Product
	err := db.DB.WithContext(c.Request.Context()).Where("id IN ?", ids).Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	var total float64
	items := make([]CartItemView, 0, len(products))
	for _, p := range products {
		qty := cart[p.ID]
		subtotal := p.Price * float64(qty)
		items = append(items, CartItemView{Product: p, Quantity: qty, Subtotal: subtotal})
		total += subtotal
	}

	sort.Slice(items, func(i, j int) bool {
		return items[i].Product.Name < items[j].Product.Name
	})

	return items, total, nil
}

// cartLines turns the session cart into checkout lines, capturing current
// catalog prices as the historical unit prices for the order.
func cartLines(c *gin.Context, cart map[uint]int) ([]checkout.Line, error) {
	items, _, err := priceCart(c, cart)
	if err != nil {
		return nil, err
	}

	lines := make([]checkout.Line, 0, len(items))
	for _, item := range items {
		lines = append(lines, checkout.Line{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.Price,
		})
	}
	return lines, nil
}

func parseID(c *gin.Context) (uint, bool) {
	id64, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return uint(id64), true
}
