package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func ListTasks(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.ProductionTask{}).
		Preload("Product").Preload("Worker")

	if status := c.Query("status"); status != "" {
		if !models.ValidTaskStatus(models.TaskStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}

	var tasks []models.ProductionTask
	if err := query.Order("created_at desc").Find(&tasks).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tasks)
}

type CreateTaskRequest struct {
	ProductID uint            `json:"product_id" binding:"required"`
	Quantity  int             `json:"quantity" binding:"required,gte=1"`
	Priority  models.Priority `json:"priority"`
	WorkerID  *uint           `json:"worker_id"`
	DueDate   *time.Time      `json:"due_date"`
}

func CreateTask(c *gin.Context) {
	var req CreateTaskRequest

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

	var product models.Product
	if err := db.DB.WithContext(ctx).First(&product, req.ProductID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
		return
	}

	if req.WorkerID != nil {
		var worker models.Worker
		if err := db.DB.WithContext(ctx).First(&worker, *req.WorkerID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "worker not found"})
			return
		}
	}

	task := models.ProductionTask{
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Status:    models.TaskPending,
		Priority:  req.Priority,
		WorkerID:  req.WorkerID,
		DueDate:   req.DueDate,
	}

	if err := db.DB.WithContext(ctx).Create(&task).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTasks, events.ActionInsert, task.ID)

	db.DB.Preload("Product").Preload("Worker").First(&task, task.ID)
	c.JSON(http.StatusCreated, task)
}

type UpdateTaskStatusRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// UpdateTaskStatus moves a task through its lifecycle. Completing a task
// writes a production log and adds the produced quantity to stock, in the
// same transaction.
func UpdateTaskStatus(c *gin.Context) {
	var req UpdateTaskStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidTaskStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	ctx := c.Request.Context()

	var task models.ProductionTask
	if err := db.DB.WithContext(ctx).First(&task, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if task.Status == models.TaskCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		return
	}

	if req.Status == models.TaskCompleted {
		logID, err := finishTask(c, &task)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		events.Publish(events.TableTasks, events.ActionUpdate, task.ID)
		events.Publish(events.TableProductionLogs, events.ActionInsert, logID)
		events.Publish(events.TableProducts, events.ActionUpdate, task.ProductID)
		c.JSON(http.StatusOK, task)
		return
	}

	if err := db.DB.WithContext(ctx).Model(&task).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTasks, events.ActionUpdate, task.ID)

	c.JSON(http.StatusOK, task)
}

type UpdateTaskProgressRequest struct {
	QuantityCompleted int `json:"quantity_completed" binding:"gte=0"`
}

// UpdateTaskProgress records how many units of a task have been produced.
// Any progress moves a pending or scheduled task to in_progress; reaching
// the target quantity completes it, with the same log and stock effects as
// completing by status.
func UpdateTaskProgress(c *gin.Context) {
	var req UpdateTaskProgressRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var task models.ProductionTask
	if err := db.DB.WithContext(ctx).First(&task, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		return
	}

	if task.Status == models.TaskCompleted {
		c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		return
	}
	if req.QuantityCompleted > task.Quantity {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progress exceeds task quantity"})
		return
	}

	if req.QuantityCompleted == task.Quantity {
		logID, err := finishTask(c, &task)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		events.Publish(events.TableTasks, events.ActionUpdate, task.ID)
		events.Publish(events.TableProductionLogs, events.ActionInsert, logID)
		events.Publish(events.TableProducts, events.ActionUpdate, task.ProductID)
		c.JSON(http.StatusOK, task)
		return
	}

	updates := map[string]interface{}{"quantity_completed": req.QuantityCompleted}
	if req.QuantityCompleted > 0 &&
		(task.Status == models.TaskPending || task.Status == models.TaskScheduled) {
		updates["status"] = models.TaskInProgress
	}

	if err := db.DB.WithContext(ctx).Model(&task).Updates(updates).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTasks, events.ActionUpdate, task.ID)

	db.DB.WithContext(ctx).Preload("Product").Preload("Worker").First(&task, task.ID)
	c.JSON(http.StatusOK, task)
}

// finishTask completes a task in one transaction: status and progress to
// done, a production log written, and the produced quantity added to stock.
func finishTask(c *gin.Context, task *models.ProductionTask) (uint, error) {
	var logID uint
	err := db.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(task).Updates(map[string]interface{}{
			"status":             models.TaskCompleted,
			"quantity_completed": task.Quantity,
		}).Error
		if err != nil {
			return err
		}

		plog := models.ProductionLog{
			ProductID:        task.ProductID,
			WorkerID:         task.WorkerID,
			QuantityProduced: task.Quantity,
		}
		if err := tx.Create(&plog).Error; err != nil {
			return err
		}
		logID = plog.ID

		return tx.Model(&models.Product{}).
			Where("id = ?", task.ProductID).
			UpdateColumn("stock_quantity", gorm.Expr("stock_quantity + ?", task.Quantity)).Error
	})
	return logID, err
}

func ListProductionLogs(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.ProductionLog{})

	if productID := c.Query("product_id"); productID != "" {
		query = query.Where("product_id = ?", productID)
	}

	var logs []models.ProductionLog
	if err := query.Order("created_at desc").Find(&logs).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, logs)
}

func ListWorkers(c *gin.Context) {
	var workers []models.Worker
	err := db.DB.WithContext(c.Request.Context()).Order("name asc").Find(&workers).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, workers)
}

type CreateWorkerRequest struct {
	Name string `json:"name" binding:"required"`
	Role string `json:"role" binding:"required"`
}

func CreateWorker(c *gin.Context) {
	var req CreateWorkerRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	worker := models.Worker{Name: req.Name, Role: req.Role}
	if err := db.DB.WithContext(c.Request.Context()).Create(&worker).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableWorkers, events.ActionInsert, worker.ID)

	c.JSON(http.StatusCreated, worker)
}
