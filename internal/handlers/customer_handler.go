package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

// ListCustomers is the staff customer console.
func ListCustomers(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.Customer{})

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}

	var customers []models.Customer
	if err := query.Order("created_at desc").Find(&customers).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, customers)
}

type CreateInteractionRequest struct {
	CustomerID      uint            `json:"customer_id" binding:"required"`
	InteractionType string          `json:"interaction_type" binding:"required"`
	Notes           string          `json:"notes"`
	Priority        models.Priority `json:"priority"`
}

func CreateInteraction(c *gin.Context) {
	var req CreateInteractionRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if !models.ValidPriority(req.Priority) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}

	ctx := c.Request.Context()

	var customer models.Customer
	if err := db.DB.WithContext(ctx).First(&customer, req.CustomerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "customer not found"})
		return
	}

	interaction := models.CustomerInteraction{
		CustomerID:      req.CustomerID,
		InteractionType: req.InteractionType,
		Notes:           req.Notes,
		Priority:        req.Priority,
	}

	if err := db.DB.WithContext(ctx).Create(&interaction).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, interaction)
}

func ListInteractions(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.CustomerInteraction{})

	if customerID := c.Query("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var interactions []models.CustomerInteraction
	if err := query.Order("created_at desc").Find(&interactions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, interactions)
}
