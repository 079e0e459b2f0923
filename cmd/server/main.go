package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/playrise/shopsim-warehouse-service/config"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/broker"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/cache"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/database"
	"github.com/playrise/shopsim-warehouse-service/internal/pkg/logger"
	"github.com/playrise/shopsim-warehouse-service/internal/server"
	"github.com/playrise/shopsim-warehouse-service/internal/simulation"

	fulfillmentRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/fulfillment/repository"
	fulfillmentUCPkg "github.com/playrise/shopsim-warehouse-service/internal/fulfillment/usecase"

	inventoryRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/inventory/repository"
	inventoryUCPkg "github.com/playrise/shopsim-warehouse-service/internal/inventory/usecase"

	ledgerRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/ledger/repository"
	ledgerUCPkg "github.com/playrise/shopsim-warehouse-service/internal/ledger/usecase"

	listingRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/listing/repository"
	listingUCPkg "github.com/playrise/shopsim-warehouse-service/internal/listing/usecase"

	pricingRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/pricing/repository"
	pricingUCPkg "github.com/playrise/shopsim-warehouse-service/internal/pricing/usecase"

	settlementListenerPkg "github.com/playrise/shopsim-warehouse-service/internal/settlement/listener"
	settlementRepoPkg "github.com/playrise/shopsim-warehouse-service/internal/settlement/repository"
	settlementUCPkg "github.com/playrise/shopsim-warehouse-service/internal/settlement/usecase"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          "json",
		Level:             "info",
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
		logConfig.Encoding = cfg.Logger.Encoding
		logConfig.Level = cfg.Logger.Level
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.New(&database.Config{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: time.Duration(cfg.Database.ConnMaxLifetime) * time.Second,
		ConnMaxIdleTime: time.Duration(cfg.Database.ConnMaxIdleTime) * time.Second,
	})
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		appLogger.Fatal("Could not apply schema", zap.Error(err))
	}
	appLogger.Info("Connected to database", zap.String("driver", cfg.Database.Driver))

	// 4. Initialize Redis (optional: the engine degrades to store-level
	// locking when absent)
	var redisClient *cache.RedisClient
	if cfg.Redis.Addr != "" {
		redisClient, err = cache.NewRedisClient(&cache.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			appLogger.Fatal("Could not connect to Redis", zap.Error(err))
		}
		defer redisClient.Close()
		appLogger.Info("Connected to Redis", zap.String("addr", cfg.Redis.Addr))
	}

	// 5. Initialize Repositories
	ledgerRepo := ledgerRepoPkg.NewSQLRepository(db)
	pricingRepo := pricingRepoPkg.NewSQLRepository(db)
	listingRepo := listingRepoPkg.NewSQLRepository(db)
	fulfillmentRepo := fulfillmentRepoPkg.NewSQLRepository(db)
	settlementRepo := settlementRepoPkg.NewSQLRepository(db)
	inventoryRepo := inventoryRepoPkg.NewSQLRepository(db)

	// 6. Initialize UseCases
	ledgerUC := ledgerUCPkg.NewLedgerUseCase(ledgerRepo, appLogger)
	pricingUC := pricingUCPkg.NewPricingUseCase(pricingRepo, appLogger)
	listingUC := listingUCPkg.NewListingUseCase(listingRepo, pricingUC, nil, cfg.Simulation.DefaultZoneMult, appLogger)
	fulfillmentUC := fulfillmentUCPkg.NewFulfillmentUseCase(fulfillmentRepo, redisClient, cfg.Simulation, appLogger)
	settlementUC := settlementUCPkg.NewSettlementUseCase(settlementRepo, cfg.Simulation.ReturnsNotifyTopN, appLogger)
	inventoryUC := inventoryUCPkg.NewInventoryUseCase(inventoryRepo, appLogger)

	advancer := simulation.NewAdvancer(listingUC, listingRepo, fulfillmentUC, settlementUC, appLogger)

	// 7. Initialize Kafka Listener for settlement close-outs
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	kafkaConsumer := broker.NewConsumer(&broker.Config{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	defer kafkaConsumer.Close()
	settlementListener := settlementListenerPkg.NewSettlementListener(kafkaConsumer, settlementUC, appLogger)
	go settlementListener.Start(ctx)
	appLogger.Info("Connected to Kafka Consumer", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))

	// 8. Start HTTP Server
	srv := &server.Server{
		Listings:     listingUC,
		Inventory:    inventoryUC,
		Fulfillments: fulfillmentUC,
		Settlements:  settlementUC,
		Ledger:       ledgerUC,
		Advancer:     advancer,
		Logger:       appLogger,
	}

	port := cfg.Server.HTTPPort
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}

	go func() {
		appLogger.Info("Starting HTTP server", zap.String("port", port))
		if err := srv.Start(port); err != nil {
			log.Printf("http server stopped: %v", err)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Shutdown error", zap.Error(err))
	}
	appLogger.Info("Server stopped")
}
