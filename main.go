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

	"github.com/joho/godotenv"

	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/metrics"
	"hotel-pms/routes"
	"hotel-pms/services"
	"hotel-pms/utils"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("info: .env not found; continuing with environment variables")
	}

	cfg, err := config.LoadAppConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, driver, err := config.ConnectDatabase()
	if err != nil {
		log.Fatalf("database connect failed: %v", err)
	}
	log.Printf("database ready driver=%s", driver)

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.New(cfg.Metrics.ServiceName)
		if sqlDB, err := db.DB(); err == nil {
			m.WatchDB(sqlDB, driver)
		}
		log.Printf("metrics enabled at %s", cfg.Metrics.Path)
	}

	clock := services.RealClock{}
	tokens := utils.NewTokenService(cfg.Auth.JWTSecret, cfg.TokenTTL())

	// Initialize services
	kardexService := services.NewKardexService(db, clock)
	kardexService.Metrics = m
	paymentService := services.NewPaymentService(db, clock)
	consumptionService := services.NewConsumptionService(db, kardexService, clock)
	consumptionService.Metrics = m
	bookingService := services.NewBookingService(db, kardexService, consumptionService, paymentService, clock)
	bookingService.Metrics = m
	bookingService.RemainingAlertMinutes = cfg.Billing.RemainingAlertMinutes
	authService := services.NewAuthService(db, tokens)

	// Initialize controllers
	ctl := routes.Controllers{
		Auth:         controllers.NewAuthController(authService),
		Booking:      controllers.NewBookingController(bookingService),
		Consumption:  controllers.NewConsumptionController(consumptionService),
		Room:         controllers.NewRoomController(services.NewRoomService(db, clock)),
		Catalog:      controllers.NewCatalogController(services.NewRoomTypeService(db)),
		Customer:     controllers.NewCustomerController(services.NewCustomerService(db)),
		Pricing:      controllers.NewPricingController(services.NewPricingService(db), clock),
		Inventory:    controllers.NewInventoryController(kardexService, services.NewProductService(db)),
		CashRegister: controllers.NewCashRegisterController(paymentService),
		Settings:     controllers.NewSettingsController(services.NewSettingsService(db)),
		Role:         controllers.NewRoleController(services.NewRoleService(db)),
		User:         controllers.NewUserController(services.NewUserService(db)),
	}

	router := routes.SetupRouter(ctl, routes.Options{
		CorsOrigins: cfg.Server.CorsOrigins,
		Tokens:      tokens,
		Permissions: authService,
		Metrics:     m,
		MetricsPath: cfg.Metrics.Path,
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received, shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Println("server stopped gracefully")
}
