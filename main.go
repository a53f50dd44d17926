package main

import (
	"context"
	"log"
	"os"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	config "github.com/SoyVutha/chroma-supply-chain/configs"
	"github.com/SoyVutha/chroma-supply-chain/internal/auth"
	"github.com/SoyVutha/chroma-supply-chain/internal/db"
	"github.com/SoyVutha/chroma-supply-chain/internal/events"
	"github.com/SoyVutha/chroma-supply-chain/internal/handlers"
	"github.com/SoyVutha/chroma-supply-chain/internal/models"
)

func main() {

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using process environment")
	}

	db.Init()
	ssoEnabled := auth.InitOIDC()

	if kafkaCfg := config.LoadKafkaConfig(); len(kafkaCfg.Brokers) > 0 {
		go events.MirrorToKafka(context.Background(), events.Default, kafkaCfg.Brokers)
	}

	r := gin.Default()

	// ── session store ──
	store := cookie.NewStore([]byte(getEnv("SESSION_SECRET", "change-me")))
	r.Use(sessions.Sessions(auth.SessionName, store))

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })
	r.GET("/api/events", events.Stream)

	r.POST("/api/auth/register", auth.Register)
	r.POST("/api/auth/login", auth.Login)
	r.POST("/api/auth/logout", auth.Logout)
	r.GET("/api/auth/session", auth.Session)
	if ssoEnabled {
		r.GET("/auth/sso/login", auth.SSOLogin)
		r.GET("/auth/sso/callback", auth.SSOCallback)
	}

	// ── storefront ──
	r.GET("/api/products", handlers.ListProducts)
	r.GET("/api/products/:id", handlers.GetProduct)
	r.GET("/api/products/average", handlers.GetAveragePrice)
	r.GET("/api/categories", handlers.ListCategories)

	cart := r.Group("/api/cart")
	{
		cart.GET("", handlers.GetCart)
		cart.POST("/items/:id", handlers.AddToCart)
		cart.POST("/items/:id/decrease", handlers.DecreaseCartItem)
		cart.DELETE("/items/:id", handlers.RemoveCartItem)
		cart.DELETE("", handlers.ClearCart)
	}

	// Guests may check out; a signed-in session links the customer record.
	r.POST("/api/checkout", handlers.Checkout)

	my := r.Group("/api/my")
	my.Use(auth.RequireUser())
	{
		my.GET("/orders", handlers.MyOrders)
	}

	// ── ERP console ──
	r.POST("/api/erp/login", auth.StaffLogin)
	r.POST("/api/erp/logout", auth.Logout)

	erp := r.Group("/api/erp")
	erp.Use(auth.RequireStaff())
	{
		erp.GET("/session", auth.StaffSession)
		erp.GET("/dashboard", handlers.Dashboard)
		erp.GET("/orders", handlers.ListOrders)
		erp.PATCH("/orders/:id/status", handlers.UpdateOrderStatus)

		inventory := erp.Group("")
		inventory.Use(auth.RequireRole(models.RoleInventoryManager))
		{
			inventory.GET("/products", handlers.ListProducts)
			inventory.POST("/products", handlers.CreateProduct)
			inventory.PUT("/products/:id", handlers.UpdateProduct)
			inventory.PATCH("/products/:id/stock", handlers.AdjustStock)
			inventory.POST("/categories", handlers.CreateCategory)

			inventory.GET("/tasks", handlers.ListTasks)
			inventory.POST("/tasks", handlers.CreateTask)
			inventory.PATCH("/tasks/:id/status", handlers.UpdateTaskStatus)
			inventory.PATCH("/tasks/:id/progress", handlers.UpdateTaskProgress)
			inventory.GET("/production-logs", handlers.ListProductionLogs)
			inventory.GET("/workers", handlers.ListWorkers)
			inventory.POST("/workers", handlers.CreateWorker)
		}

		service := erp.Group("")
		service.Use(auth.RequireRole(models.RoleCustomerService))
		{
			service.GET("/customers", handlers.ListCustomers)
			service.GET("/interactions", handlers.ListInteractions)
			service.POST("/interactions", handlers.CreateInteraction)

			service.GET("/tickets", handlers.ListTickets)
			service.POST("/tickets", handlers.CreateTicket)
			service.PATCH("/tickets/:id/status", handlers.UpdateTicketStatus)
			service.PATCH("/tickets/:id/assign", handlers.AssignTicket)
		}
	}

	port := getEnv("PORT", "8080")
	log.Printf("Listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Server exited: %v", err)
	}
}

func getEnv(key, fallback string) string {

	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return fallback
}
