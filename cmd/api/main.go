package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/pharmacy-api/internal/application/service"
	"github.com/sangkips/pharmacy-api/internal/config"
	"github.com/sangkips/pharmacy-api/internal/domain/entity"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/database"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/inventory"
	"github.com/sangkips/pharmacy-api/internal/infrastructure/repository"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/handler"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/middleware"
	"github.com/sangkips/pharmacy-api/internal/presentation/http/routes"
	"github.com/sangkips/pharmacy-api/pkg/printer"
)

func main() {
	cfg := config.Load()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	loc := cfg.App.Location()

	db, err := database.NewPostgresDB(&cfg.Database, cfg.App.Debug)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Repositories
	invoiceRepo := repository.NewInvoiceRepository(db)
	consultationRepo := repository.NewConsultationRepository(db)
	idempotencyRepo := repository.NewIdempotencyRepository(db)
	sessionRepo := repository.NewMemorySessionRepository(cfg.Billing.SessionTTL, cfg.Billing.CleanupInterval)
	defer sessionRepo.Close()

	// Remote pharmacy API
	pharmacyAPI := inventory.NewClient(cfg.Inventory.BaseURL, cfg.Inventory.Timeout)

	thermalPrinter, err := printer.New(printer.Config{
		Type:    cfg.Printer.Type,
		USBPath: cfg.Printer.USBPath,
		Address: cfg.Printer.Address,
	})
	if err != nil {
		log.Printf("Warning: Failed to initialize printer: %v", err)
		thermalPrinter = printer.NewNullPrinter()
	}
	defer thermalPrinter.Close()

	header := entity.ReceiptHeader{
		StoreName: cfg.App.StoreName,
		Address:   cfg.App.StoreAddress,
		Phone:     cfg.App.StorePhone,
	}

	// Services
	billingService := service.NewBillingService(sessionRepo, invoiceRepo, idempotencyRepo, pharmacyAPI, service.BillingOptions{
		InitialRows:   cfg.Billing.InitialRows,
		CountryCode:   cfg.Billing.CountryCode,
		AlertDuration: cfg.Billing.AlertDuration,
		Location:      loc,
	})
	exportService := service.NewExportService(header)
	printerService := service.NewPrinterService(thermalPrinter, cfg.Printer.Type, cfg.Printer.PaperWidth, header)
	reportService := service.NewReportService(pharmacyAPI, loc)
	medicineService := service.NewMedicineService(pharmacyAPI, loc)
	consultationService := service.NewConsultationService(consultationRepo, loc)
	registrationService := service.NewRegistrationService(pharmacyAPI)

	handlers := &routes.Handlers{
		Billing:      handler.NewBillingHandler(billingService, exportService, printerService),
		Report:       handler.NewReportHandler(reportService),
		Medicine:     handler.NewMedicineHandler(medicineService),
		Consultation: handler.NewConsultationHandler(consultationService),
		Registration: handler.NewRegistrationHandler(registrationService),
		Printer:      handler.NewPrinterHandler(printerService),
	}

	rateLimiter := middleware.NewClientRateLimiter(middleware.RateLimiterConfigFrom(cfg.RateLimit))
	defer rateLimiter.Close()

	router := routes.Setup(handlers, &routes.Deps{
		Cfg:             cfg,
		IdempotencyRepo: idempotencyRepo,
		RateLimiter:     rateLimiter,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go database.PurgeExpiredKeys(ctx, idempotencyRepo, time.Hour)

	port := cfg.App.Port
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting %s server on port %s...", cfg.App.Name, port)
		log.Printf("Environment: %s", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
