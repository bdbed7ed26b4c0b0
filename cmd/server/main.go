package main

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"eggstore-system/config"
	"eggstore-system/internal/database"
	"eggstore-system/internal/handlers"
	"eggstore-system/internal/middleware"
	"eggstore-system/internal/services/inventory"
	"eggstore-system/internal/services/ledger"
	"eggstore-system/internal/services/reports"
	"eggstore-system/internal/services/sales"
	"eggstore-system/internal/services/users"
)

func main() {
	cfg := config.LoadConfig()
	log := config.NewLogger()

	db, err := database.NewConnection(cfg.DB.DSN())
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = config.NewRedisClient(cfg.Redis)
	}

	userSvc := users.New(db, log)
	if err := userSvc.SeedDefaults(context.Background()); err != nil {
		log.Fatalf("user seeding failed: %v", err)
	}

	ledgerSvc := ledger.New(db, rdb, log)
	salesSvc := sales.New(db, rdb, log)
	inventorySvc := inventory.New(db, rdb, log, cfg.Store)
	reportSvc := reports.New(db, rdb, ledgerSvc, log, cfg.Store.LowStockThreshold)

	authHandler := handlers.NewAuthHandler(userSvc, cfg.Auth, log)
	customerHandler := handlers.NewCustomerHandler(inventorySvc, ledgerSvc, log)
	productHandler := handlers.NewProductHandler(inventorySvc, cfg.Store, log)
	saleHandler := handlers.NewSaleHandler(salesSvc, log)
	reportHandler := handlers.NewReportHandler(reportSvc, log)

	router := gin.Default()
	router.Use(middleware.CORS(cfg.Server.AllowedOrigins))
	router.Use(middleware.RateLimit(cfg.Server.RateLimit))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.POST("/login", authHandler.Login)
	if cfg.Server.RegistrationOpen {
		router.POST("/register", authHandler.Register)
	}

	api := router.Group("/api/v1")
	api.Use(middleware.JWTAuth([]byte(cfg.Auth.JWTSecret)))
	{
		api.POST("/auth/password", authHandler.ChangePassword)

		api.GET("/products", productHandler.List)
		api.POST("/products/damaged", productHandler.WriteOff)

		api.POST("/sales/fast", saleHandler.FastSell)
		api.GET("/sales/:id", saleHandler.Get)
	}

	admin := api.Group("")
	admin.Use(middleware.RequireAdmin())
	{
		admin.POST("/users", authHandler.Register)

		admin.POST("/sales", saleHandler.Create)

		admin.GET("/customers", customerHandler.List)
		admin.POST("/customers", customerHandler.Create)
		admin.PUT("/customers/:id", customerHandler.Update)
		admin.DELETE("/customers/:id", customerHandler.Delete)
		admin.GET("/customers/:id/ledger", customerHandler.Ledger)
		admin.POST("/customers/transactions", customerHandler.AddTransaction)
		admin.GET("/debts", customerHandler.AllDebts)

		admin.POST("/products", productHandler.Create)
		admin.PUT("/products/:id", productHandler.Update)
		admin.DELETE("/products/:id", productHandler.Delete)
		admin.POST("/products/unpack", productHandler.Unpack)
		admin.GET("/inventory", productHandler.Inventory)

		admin.GET("/reports/dashboard", reportHandler.Dashboard)
		admin.GET("/reports/daily-sales.xlsx", reportHandler.DailySalesExport)
		admin.GET("/reports/sales.xlsx", reportHandler.RangedSalesExport)
		admin.GET("/reports/debts.xlsx", reportHandler.DebtsExport)
		admin.GET("/reports/damaged.xlsx", reportHandler.DamagedExport)
	}

	log.Infof("listening on :%s", cfg.Server.Port)
	if err := router.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
