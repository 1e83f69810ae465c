package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	billingapp "github.com/vendra/backend/internal/application/billing"
	notifapp "github.com/vendra/backend/internal/application/notification"
	"github.com/vendra/backend/internal/infrastructure/config"
	"github.com/vendra/backend/internal/infrastructure/event"
	"github.com/vendra/backend/internal/infrastructure/logger"
	"github.com/vendra/backend/internal/infrastructure/persistence"
	"github.com/vendra/backend/internal/infrastructure/scheduler"
	"github.com/vendra/backend/internal/interfaces/http/dto"
	"github.com/vendra/backend/internal/interfaces/http/handler"
	"github.com/vendra/backend/internal/interfaces/http/router"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting installment ledger",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := persistence.Migrate(db.DB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}
	log.Info("Database ready", zap.String("driver", cfg.Database.Driver))

	// Repositories
	saleRepo := persistence.NewGormSaleRepository(db.DB)
	installmentRepo := persistence.NewGormInstallmentRepository(db.DB)
	txnRepo := persistence.NewGormPaymentTransactionRepository(db.DB)
	productRepo := persistence.NewGormProductRepository(db.DB)
	customerRepo := persistence.NewGormCustomerRepository(db.DB)
	notifRepo := persistence.NewGormNotificationRepository(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}
	defer func() {
		if err := eventBus.Stop(context.Background()); err != nil {
			log.Error("Error stopping event bus", zap.Error(err))
		}
	}()

	// SSE fan-out hub; the notification service pushes created records
	// through it to connected clients
	stream := handler.NewNotificationStream(log)
	defer stream.Close()

	// Application services
	notifService := notifapp.NewService(notifRepo, stream, log)
	ledgerService := billingapp.NewInstallmentLedgerService(
		saleRepo, installmentRepo, txnRepo, productRepo, eventBus, log,
	)

	scanner := notifapp.NewScanner(installmentRepo, productRepo, notifRepo, notifService, notifapp.ScannerConfig{
		UpcomingWindow:    cfg.Scheduler.UpcomingWindow,
		CleanupScanLimit:  cfg.Scheduler.CleanupScanLimit,
		LowStockThreshold: cfg.Notification.LowStockThreshold,
	}, log)

	// Low-stock checks run off recorded sales rather than a polling loop
	eventBus.Subscribe(scanner)
	log.Info("Event handlers registered", zap.Strings("scanner_events", scanner.EventTypes()))

	if cfg.Scheduler.Enabled {
		notifScheduler := scheduler.NewNotifierScheduler(cfg.Scheduler.Interval, scanner.Scan, nil, log)
		if err := notifScheduler.Start(context.Background()); err != nil {
			log.Fatal("Failed to start notifier scheduler", zap.Error(err))
		}
		defer func() {
			if err := notifScheduler.Stop(); err != nil {
				log.Error("Error stopping notifier scheduler", zap.Error(err))
			}
		}()
		log.Info("Notifier scheduler started", zap.Duration("interval", cfg.Scheduler.Interval))
	} else {
		log.Info("Notifier scheduler disabled")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	dto.SetupValidator()
	engine := gin.New()
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))

	billingHandler := handler.NewBillingHandler(ledgerService)
	notificationHandler := handler.NewNotificationHandler(notifService, stream)
	catalogHandler := handler.NewCatalogHandler(productRepo, customerRepo)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(billingHandler).Register(notificationHandler).Register(catalogHandler)
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
