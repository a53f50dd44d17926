package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
	"github.com/SoyVutha/chroma-supply-chain/internal/utils"
)

type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Description   string  `json:"description"`
	Price         float64 `json:"price" binding:"required,gt=0"`
	StockQuantity int     `json:"stock_quantity" binding:"gte=0"`
	CategoryID    uint    `json:"category_id" binding:"required"`
}

func CreateProduct(c *gin.Context) {
	var req CreateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var category models.Category
	if err := db.DB.WithContext(c.Request.Context()).First(&category, req.CategoryID).Error; err != nil {

		errorMessage := fmt.Sprintf("Category not found with ID: %d", req.CategoryID)

		c.JSON(http.StatusNotFound, gin.H{"error": errorMessage})
		return
	}

	product := models.Product{
		Name:          req.Name,
		Description:   req.Description,
		Price:         req.Price,
		StockQuantity: req.StockQuantity,
		CategoryID:    req.CategoryID,
	}

	if err := db.DB.WithContext(c.Request.Context()).Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if err := db.DB.Preload("Category").First(&product, product.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retrieve product with category details"})
		return
	}

	events.Publish(events.TableProducts, events.ActionInsert, product.ID)

	c.JSON(http.StatusCreated, product)
}

type UpdateProductRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description string  `json:"description"`
	Price       float64 `json:"price" binding:"required,gt=0"`
	CategoryID  uint    `json:"category_id" binding:"required"`
}

// UpdateProduct edits catalog fields. Stock is deliberately not editable
// here; AdjustStock owns stock movements so they stay conditional.
func UpdateProduct(c *gin.Context) {
	var req UpdateProductRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	if err := db.DB.WithContext(ctx).First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	var category models.Category
	if err := db.DB.WithContext(ctx).First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Category not found with ID: %d", req.CategoryID)})
		return
	}

	updates := map[string]interface{}{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"category_id": req.CategoryID,
	}
	if err := db.DB.WithContext(ctx).Model(&product).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableProducts, events.ActionUpdate, product.ID)

	db.DB.Preload("Category").First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

type AdjustStockRequest struct {
	Delta int `json:"delta" binding:"required"`
}

// AdjustStock applies a signed stock movement. Negative adjustments are
// conditional on current stock so the quantity can never go below zero.
func AdjustStock(c *gin.Context) {
	var req AdjustStockRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var product models.Product
	if err := db.DB.WithContext(ctx).First(&product, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	query := db.DB.WithContext(ctx).Model(&models.Product{}).Where("id = ?", product.ID)
	if req.Delta < 0 {
		query = query.Where("stock_quantity >= ?", -req.Delta)
	}

	res := query.UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", req.Delta))
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": res.Error.Error()})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "insufficient stock for adjustment"})
		return
	}

	events.Publish(events.TableProducts, events.ActionUpdate, product.ID)

	db.DB.First(&product, product.ID)
	c.JSON(http.StatusOK, product)
}

// ListProducts serves both the storefront and the ERP inventory console.
// search: case-insensitive substring on name and description.
// category: a category id, matched against the whole subtree.
// in_stock=true: only purchasable rows (the storefront still lists
// zero-stock products as "out of stock" unless it passes this).
func ListProducts(c *gin.Context) {
	ctx := c.Request.Context()
	query := db.DB.WithContext(ctx).Model(&models.Product{}).Preload("Category")

	if search := strings.TrimSpace(c.Query("search")); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", pattern, pattern)
	}

	if categoryIDParam := c.Query("category"); categoryIDParam != "" {
		var categoryID uint
		if _, err := fmt.Sscan(categoryIDParam, &categoryID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}

		categoryIDs, err := utils.CollectCategoryIDs(ctx, categoryID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		query = query.Where("category_id IN ?", categoryIDs)
	}

	if c.Query("in_stock") == "true" {
		query = query.Where("stock_quantity > 0")
	}

	var products []models.Product
	if err := query.Order("name asc").Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, products)
}

func GetProduct(c *gin.Context) {
	var product models.Product
	err := db.DB.WithContext(c.Request.Context()).
		Preload("Category").First(&product, c.Param("id")).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}
	c.JSON(http.StatusOK, product)
}

func GetAveragePrice(c *gin.Context) {
	categoryIDParam := c.Query("category_id")
	if categoryIDParam == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "category_id is required"})
		return
	}

	var categoryID uint
	if _, err := fmt.Sscan(categoryIDParam, &categoryID); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category_id"})
		return
	}

	categoryIDs, err := utils.CollectCategoryIDs(c.Request.Context(), categoryID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var avg float64
	err = db.DB.WithContext(c.Request.Context()).
		Model(&models.Product{}).
		Where("category_id IN ?", categoryIDs).
		Select("COALESCE(AVG(price), 0)").
		Scan(&avg).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"category_id": categoryID, "average_price": avg})
}
