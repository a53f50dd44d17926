package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/handlers"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func setupProductTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to connect test database: %v", err)
	}
	if err := db.Migrate(testDB); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	originalDB := db.DB
	db.SetTestDB(testDB)
	t.Cleanup(func() {
		db.SetTestDB(originalDB)
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.GET("/api/products", handlers.ListProducts)
	r.GET("/api/products/:id", handlers.GetProduct)
	r.GET("/api/products/average", handlers.GetAveragePrice)
	r.POST("/api/erp/products", handlers.CreateProduct)

	return r, testDB
}

func listProducts(t *testing.T, router *gin.Engine, query string) []models.Product {
	t.Helper()

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/products"+query, nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var products []models.Product
	err := json.Unmarshal(recorder.Body.Bytes(), &products)
	assert.NoError(t, err)
	return products
}

func TestListProducts(t *testing.T) {
	router, testDB := setupProductTestRouter(t)

	metals := models.Category{Name: "metals"}
	testDB.Create(&metals)
	steel := models.Category{Name: "steel", ParentID: &metals.ID}
	testDB.Create(&steel)
	plastic := models.Category{Name: "plastic"}
	testDB.Create(&plastic)

	widget := models.Product{Name: "Steel Widget Type A", Description: "High-grade steel widget perfect for industrial applications", Price: 89.99, StockQuantity: 150, CategoryID: steel.ID}
	bracket := models.Product{Name: "Aluminum Bracket", Description: "Lightweight bracket for mounting", Price: 34.99, StockQuantity: 0, CategoryID: metals.ID}
	assembly := models.Product{Name: "Plastic Assembly C", Description: "Precision-molded plastic assembly", Price: 45.99, StockQuantity: 200, CategoryID: plastic.ID}
	testDB.Create(&widget)
	testDB.Create(&bracket)
	testDB.Create(&assembly)

	t.Run("returns everything without filters", func(t *testing.T) {
		products := listProducts(t, router, "")
		assert.Len(t, products, 3)
	})

	t.Run("search matches name and description, case-insensitive", func(t *testing.T) {
		products := listProducts(t, router, "?search=STEEL")
		assert.Len(t, products, 1)
		assert.Equal(t, "Steel Widget Type A", products[0].Name)
	})

	t.Run("search excludes products without the substring", func(t *testing.T) {
		products := listProducts(t, router, "?search=steel")
		for _, p := range products {
			assert.NotEqual(t, "Aluminum Bracket", p.Name)
		}
	})

	t.Run("category filter covers the subtree", func(t *testing.T) {
		products := listProducts(t, router, fmt.Sprintf("?category=%d", metals.ID))
		assert.Len(t, products, 2) // bracket in metals, widget in metals/steel
	})

	t.Run("in_stock excludes zero stock", func(t *testing.T) {
		products := listProducts(t, router, "?in_stock=true")
		assert.Len(t, products, 2)
		for _, p := range products {
			assert.Greater(t, p.StockQuantity, 0)
		}
	})

	t.Run("invalid category is rejected", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products?category=abc", nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestGetProduct(t *testing.T) {
	router, testDB := setupProductTestRouter(t)

	category := models.Category{Name: "steel"}
	testDB.Create(&category)
	product := models.Product{Name: "Steel Widget Type A", Price: 89.99, StockQuantity: 10, CategoryID: category.ID}
	testDB.Create(&product)

	t.Run("returns the product", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/%d", product.ID), nil)
		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)

		var got models.Product
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Equal(t, product.ID, got.ID)
		assert.Equal(t, "steel", got.Category.Name)
	})

	t.Run("404 for unknown id", func(t *testing.T) {
		recorder := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/api/products/99999", nil)
		router.ServeHTTP(recorder, req)
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})
}

func TestGetAveragePrice(t *testing.T) {
	router, testDB := setupProductTestRouter(t)

	metals := models.Category{Name: "metals"}
	testDB.Create(&metals)
	steel := models.Category{Name: "steel", ParentID: &metals.ID}
	testDB.Create(&steel)

	testDB.Create(&models.Product{Name: "Widget", Price: 10.00, CategoryID: metals.ID})
	testDB.Create(&models.Product{Name: "Bracket", Price: 30.00, CategoryID: steel.ID})

	recorder := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, fmt.Sprintf("/api/products/average?category_id=%d", metals.ID), nil)
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)

	var response struct {
		AveragePrice float64 `json:"average_price"`
	}
	assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	assert.InDelta(t, 20.00, response.AveragePrice, 0.001)
}

func TestCreateProduct(t *testing.T) {
	router, testDB := setupProductTestRouter(t)

	category := models.Category{Name: "steel"}
	testDB.Create(&category)

	t.Run("creates the product", func(t *testing.T) {
		recorder := performJSONRequest(router, http.MethodPost, "/api/erp/products", handlers.CreateProductRequest{
			Name:          "Steel Bracket Set",
			Description:   "Heavy-duty steel brackets",
			Price:         34.99,
			StockQuantity: 300,
			CategoryID:    category.ID,
		})

		assert.Equal(t, http.StatusCreated, recorder.Code)

		var got models.Product
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		assert.Greater(t, got.ID, uint(0))
		assert.Equal(t, 300, got.StockQuantity)
	})

	t.Run("404 for unknown category", func(t *testing.T) {
		recorder := performJSONRequest(router, http.MethodPost, "/api/erp/products", handlers.CreateProductRequest{
			Name:       "Mystery Part",
			Price:      1.00,
			CategoryID: 9999,
		})
		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("400 for missing fields", func(t *testing.T) {
		recorder := performJSONRequest(router, http.MethodPost, "/api/erp/products", map[string]interface{}{
			"name": "No Price",
		})
		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}
