package main

import (
	"os"
	"strings"

	_ "pavestock/api/swagger" // swagger docs
	"pavestock/internal/database"
	"pavestock/internal/handler"
	"pavestock/internal/middleware"
	"pavestock/internal/repository"
	"pavestock/internal/service"
	"pavestock/internal/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           Finished Goods Stock API
// @version         1.0
// @description     Movement ledger, palletization reconciliation, FIFO production allocation and delivery fulfillment for a paver plant.
// @host            localhost:8080
// @BasePath        /
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("LOG_PRETTY") == "true" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	if err := godotenv.Load("configs/.env"); err != nil {
		log.Info().Msg("no configs/.env file found, using environment")
	}

	dbHost := envOr("DB_HOST", "localhost")
	dbPort := envOr("DB_PORT", "5432")
	dbUser := envOr("DB_USER", "postgres")
	dbPassword := envOr("DB_PASSWORD", "postgres")
	dbName := envOr("DB_NAME", "pavestock")
	dbSslMode := envOr("DB_SSLMODE", "disable")

	dsn := "postgres://" + dbUser + ":" + dbPassword + "@" + dbHost + ":" + dbPort + "/" + dbName + "?sslmode=" + dbSslMode

	db, err := database.NewConnection(dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	log.Info().Str("host", dbHost).Str("database", dbName).Msg("connected to postgres")

	wsHub := websocket.NewHub()
	go wsHub.Run()

	// Repositories
	txManager := repository.NewTransactionManager(db)
	seqRepo := repository.NewSequenceRepository(db)
	productRepo := repository.NewProductRepository(db)
	runRepo := repository.NewProductionRunRepository(db)
	movementRepo := repository.NewMovementRepository(db)
	looseRepo := repository.NewLooseBalanceRepository(db)
	palletizationRepo := repository.NewPalletizationRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	poRepo := repository.NewProductionOrderRepository(db)
	deliveryRepo := repository.NewDeliveryRepository(db)

	// Services
	stockService := service.NewStockService(movementRepo, productRepo, txManager, wsHub)
	catalogService := service.NewCatalogService(productRepo, runRepo)
	productionService := service.NewProductionService(poRepo, orderRepo, movementRepo, productRepo, seqRepo, txManager, wsHub)
	orderService := service.NewOrderService(orderRepo, poRepo, deliveryRepo, productRepo, seqRepo, productionService, txManager, wsHub)
	palletizationService := service.NewPalletizationService(palletizationRepo, runRepo, looseRepo, movementRepo, productRepo, stockService, productionService, txManager, wsHub)
	deliveryService := service.NewDeliveryService(deliveryRepo, orderRepo, movementRepo, seqRepo, stockService, orderService, productionService, txManager, wsHub)

	// Handlers
	stockHandler := handler.NewStockHandler(stockService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	palletizationHandler := handler.NewPalletizationHandler(palletizationService)
	orderHandler := handler.NewOrderHandler(orderService)
	productionHandler := handler.NewProductionHandler(productionService)
	deliveryHandler := handler.NewDeliveryHandler(deliveryService)

	gin.SetMode(envOr("GIN_MODE", gin.ReleaseMode))
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logger(), middleware.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(envOr("CORS_ORIGINS", "http://localhost:5173,http://127.0.0.1:5173"), ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c)
	})

	stockHandler.RegisterRoutes(router.Group(""))
	catalogHandler.RegisterRoutes(router.Group(""))
	palletizationHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	productionHandler.RegisterRoutes(router.Group(""))
	deliveryHandler.RegisterRoutes(router.Group(""))

	port := envOr("PORT", "8080")
	log.Info().Str("port", port).Msg("server listening")
	if err := router.Run(":" + port); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
