package handlers_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/handlers"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func setupProductionTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
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

	r.GET("/api/erp/tasks", handlers.ListTasks)
	r.POST("/api/erp/tasks", handlers.CreateTask)
	r.PATCH("/api/erp/tasks/:id/status", handlers.UpdateTaskStatus)
	r.PATCH("/api/erp/tasks/:id/progress", handlers.UpdateTaskProgress)
	r.GET("/api/erp/production-logs", handlers.ListProductionLogs)

	return r, testDB
}

func seedTask(t *testing.T, testDB *gorm.DB, stock, target int) (*models.Product, *models.ProductionTask) {
	category := models.Category{Name: "steel-" + t.Name()}
	if err := testDB.Create(&category).Error; err != nil {
		t.Fatalf("failed to create category: %v", err)
	}
	product := models.Product{Name: "Steel Widget Type A", Price: 89.99, StockQuantity: stock, CategoryID: category.ID}
	if err := testDB.Create(&product).Error; err != nil {
		t.Fatalf("failed to create product: %v", err)
	}
	worker := models.Worker{Name: "John Smith", Role: "machinist"}
	if err := testDB.Create(&worker).Error; err != nil {
		t.Fatalf("failed to create worker: %v", err)
	}
	task := models.ProductionTask{
		ProductID: product.ID,
		Quantity:  target,
		Status:    models.TaskPending,
		Priority:  models.PriorityMedium,
		WorkerID:  &worker.ID,
	}
	if err := testDB.Create(&task).Error; err != nil {
		t.Fatalf("failed to create task: %v", err)
	}
	return &product, &task
}

func TestUpdateTaskProgress(t *testing.T) {
	router, testDB := setupProductionTestRouter(t)
	product, task := seedTask(t, testDB, 5, 10)

	progressPath := fmt.Sprintf("/api/erp/tasks/%d/progress", task.ID)

	t.Run("partial progress starts the task", func(t *testing.T) {
		rec := performJSONRequest(router, http.MethodPatch, progressPath,
			gin.H{"quantity_completed": 4})
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.ProductionTask
		assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, models.TaskInProgress, got.Status)
		assert.Equal(t, 4, got.QuantityCompleted)

		// no stock movement and no log until the task completes
		var fresh models.Product
		testDB.First(&fresh, product.ID)
		assert.Equal(t, 5, fresh.StockQuantity)

		var logCount int64
		testDB.Model(&models.ProductionLog{}).Count(&logCount)
		assert.Equal(t, int64(0), logCount)
	})

	t.Run("progress beyond the target rejected", func(t *testing.T) {
		rec := performJSONRequest(router, http.MethodPatch, progressPath,
			gin.H{"quantity_completed": 11})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("reaching the target completes the task", func(t *testing.T) {
		rec := performJSONRequest(router, http.MethodPatch, progressPath,
			gin.H{"quantity_completed": 10})
		assert.Equal(t, http.StatusOK, rec.Code)

		var got models.ProductionTask
		testDB.First(&got, task.ID)
		assert.Equal(t, models.TaskCompleted, got.Status)
		assert.Equal(t, 10, got.QuantityCompleted)

		var fresh models.Product
		testDB.First(&fresh, product.ID)
		assert.Equal(t, 15, fresh.StockQuantity)

		var plog models.ProductionLog
		assert.NoError(t, testDB.Where("product_id = ?", product.ID).First(&plog).Error)
		assert.Equal(t, 10, plog.QuantityProduced)
	})

	t.Run("completed task takes no further progress", func(t *testing.T) {
		rec := performJSONRequest(router, http.MethodPatch, progressPath,
			gin.H{"quantity_completed": 3})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestUpdateTaskStatusCompletion(t *testing.T) {
	router, testDB := setupProductionTestRouter(t)
	product, task := seedTask(t, testDB, 0, 25)

	statusPath := fmt.Sprintf("/api/erp/tasks/%d/status", task.ID)

	rec := performJSONRequest(router, http.MethodPatch, statusPath,
		gin.H{"status": "completed"})
	assert.Equal(t, http.StatusOK, rec.Code)

	// completing by status fills the progress counter and moves stock
	var got models.ProductionTask
	testDB.First(&got, task.ID)
	assert.Equal(t, models.TaskCompleted, got.Status)
	assert.Equal(t, 25, got.QuantityCompleted)

	var fresh models.Product
	testDB.First(&fresh, product.ID)
	assert.Equal(t, 25, fresh.StockQuantity)

	rec = performJSONRequest(router, http.MethodPatch, statusPath,
		gin.H{"status": "in_progress"})
	assert.Equal(t, http.StatusConflict, rec.Code)
}
