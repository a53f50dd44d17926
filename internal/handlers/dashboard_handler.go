package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

const lowStockThreshold = 10

// Dashboard aggregates the counters shown on the ERP landing screen.
func Dashboard(c *gin.Context) {
	gdb := db.DB.WithContext(c.Request.Context())

	var (
		totalOrders   int64
		pendingOrders int64
		totalProducts int64
		customers     int64
		openTickets   int64
		pendingTasks  int64
		revenue       float64
	)

	counts := []func() error{
		func() error { return gdb.Model(&models.Order{}).Count(&totalOrders).Error },
		func() error {
			return gdb.Model(&models.Order{}).Where("status IN ?", []models.OrderStatus{models.OrderPending, models.OrderProcessing}).Count(&pendingOrders).Error
		},
		func() error { return gdb.Model(&models.Product{}).Count(&totalProducts).Error },
		func() error { return gdb.Model(&models.Customer{}).Count(&customers).Error },
		func() error {
			return gdb.Model(&models.SupportTicket{}).Where("status IN ?", []models.TicketStatus{models.TicketOpen, models.TicketInProgress}).Count(&openTickets).Error
		},
		func() error {
			return gdb.Model(&models.ProductionTask{}).Where("status <> ?", models.TaskCompleted).Count(&pendingTasks).Error
		},
	}
	for _, count := range counts {
		if err := count(); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
	}

	err := gdb.Model(&models.Payment{}).
		Where("status = ?", models.PaymentCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&revenue).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var lowStock []models.Product
	err = gdb.Where("stock_quantity < ?", lowStockThreshold).
		Order("stock_quantity asc").
		Limit(10).
		Find(&lowStock).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total_orders":   totalOrders,
		"pending_orders": pendingOrders,
		"total_products": totalProducts,
		"customers":      customers,
		"open_tickets":   openTickets,
		"pending_tasks":  pendingTasks,
		"revenue":        revenue,
		"low_stock":      lowStock,
	})
}
