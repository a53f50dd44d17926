package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func ListTickets(c *gin.Context) {
	query := db.DB.WithContext(c.Request.Context()).Model(&models.SupportTicket{}).
		Preload("Customer")

	if status := c.Query("status"); status != "" {
		if !models.ValidTicketStatus(models.TicketStatus(status)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		query = query.Where("status = ?", status)
	}
	if priority := c.Query("priority"); priority != "" {
		if !models.ValidPriority(models.Priority(priority)) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		query = query.Where("priority = ?", priority)
	}

	var tickets []models.SupportTicket
	if err := query.Order("created_at desc").Find(&tickets).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, tickets)
}

type CreateTicketRequest struct {
	CustomerID uint            `json:"customer_id" binding:"required"`
	Issue      string          `json:"issue" binding:"required"`
	Priority   models.Priority `json:"priority"`
}

func CreateTicket(c *gin.Context) {
	var req CreateTicketRequest

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

	ticket := models.SupportTicket{
		CustomerID: req.CustomerID,
		Issue:      req.Issue,
		Status:     models.TicketOpen,
		Priority:   req.Priority,
	}

	if err := db.DB.WithContext(ctx).Create(&ticket).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTickets, events.ActionInsert, ticket.ID)

	c.JSON(http.StatusCreated, ticket)
}

type UpdateTicketStatusRequest struct {
	Status models.TicketStatus `json:"status" binding:"required"`
}

func UpdateTicketStatus(c *gin.Context) {
	var req UpdateTicketStatusRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if !models.ValidTicketStatus(req.Status) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	ctx := c.Request.Context()

	var ticket models.SupportTicket
	if err := db.DB.WithContext(ctx).First(&ticket, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}

	if err := db.DB.WithContext(ctx).Model(&ticket).Update("status", req.Status).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTickets, events.ActionUpdate, ticket.ID)

	c.JSON(http.StatusOK, ticket)
}

type AssignTicketRequest struct {
	WorkerID uint `json:"worker_id" binding:"required"`
}

func AssignTicket(c *gin.Context) {
	var req AssignTicketRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()

	var ticket models.SupportTicket
	if err := db.DB.WithContext(ctx).First(&ticket, c.Param("id")).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
		return
	}

	var worker models.Worker
	if err := db.DB.WithContext(ctx).First(&worker, req.WorkerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "worker not found"})
		return
	}

	if err := db.DB.WithContext(ctx).Model(&ticket).Update("assigned_worker_id", worker.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	events.Publish(events.TableTickets, events.ActionUpdate, ticket.ID)

	c.JSON(http.StatusOK, ticket)
}
