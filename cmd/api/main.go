package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"dealership-service/configs"
	"dealership-service/internal/cache"
	"dealership-service/internal/handler"
	"dealership-service/internal/middleware"
	"dealership-service/internal/models"
	"dealership-service/internal/repository"
	"dealership-service/internal/service"
	"dealership-service/pkg/scheduler"
)

func main() {
	// Initialize logger
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)

	// Load configuration
	cfg, err := configs.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Unknown log level %q, using info", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	// Connect to database
	db, err := initDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	repos := repository.NewRepository(db)

	deps := service.Dependencies{
		Repos:  repos,
		Logger: log,
		Config: cfg,
	}

	// The quote cache is optional; without redis every quote is computed
	if cfg.Redis.Enabled {
		client := cache.NewRedisClient(cfg.Redis)
		quoteCache := cache.NewQuoteCache(client, cfg.Finance.QuoteCacheTTL)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := quoteCache.Ping(pingCtx)
		cancel()

		if err != nil {
			log.Warnf("Quote cache disabled: %v", err)
			_ = client.Close()
		} else {
			deps.Cache = quoteCache
			defer client.Close()
			log.Infof("Quote cache connected at %s", cfg.Redis.Address)
		}
	}

	services := service.NewService(deps)

	handlers := handler.NewHandler(handler.Dependencies{
		Services: services,
		Repos:    repos,
		Logger:   log,
		Config:   cfg,
	})

	router := mux.NewRouter()
	router.Use(middleware.LogMiddleware(log))
	router.Use(middleware.MetricsMiddleware)

	// Public routes
	router.HandleFunc("/register", handlers.Staff.Register).Methods(http.MethodPost)
	router.HandleFunc("/login", handlers.Staff.Login).Methods(http.MethodPost)
	router.HandleFunc("/health", handlers.Health.Check).Methods(http.MethodGet)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	// Protected routes
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	// Vehicle endpoints
	api.HandleFunc("/vehicles", handlers.Vehicle.Create).Methods(http.MethodPost)
	api.HandleFunc("/vehicles", handlers.Vehicle.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", handlers.Vehicle.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/vehicles/{id}", handlers.Vehicle.Update).Methods(http.MethodPatch)
	api.HandleFunc("/vehicles/{id}", handlers.Vehicle.Delete).Methods(http.MethodDelete)

	// Customer endpoints
	api.HandleFunc("/customers", handlers.Customer.Create).Methods(http.MethodPost)
	api.HandleFunc("/customers", handlers.Customer.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", handlers.Customer.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", handlers.Customer.Update).Methods(http.MethodPatch)
	api.HandleFunc("/customers/{id}", handlers.Customer.Delete).Methods(http.MethodDelete)

	// Staff endpoints; changing the roster is for managers and admins
	staffAdmin := middleware.RequireRole(models.RoleManager, models.RoleAdmin)
	api.Handle("/staff", staffAdmin(http.HandlerFunc(handlers.Staff.Create))).Methods(http.MethodPost)
	api.HandleFunc("/staff", handlers.Staff.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/staff/{id}", handlers.Staff.GetByID).Methods(http.MethodGet)
	api.Handle("/staff/{id}", staffAdmin(http.HandlerFunc(handlers.Staff.Update))).Methods(http.MethodPatch)
	api.Handle("/staff/{id}", staffAdmin(http.HandlerFunc(handlers.Staff.Delete))).Methods(http.MethodDelete)
	api.HandleFunc("/staff/{id}/attendance", handlers.Staff.MarkAttendance).Methods(http.MethodPost)

	// Parts endpoints; low-stock must be registered before {id}
	api.HandleFunc("/parts", handlers.Part.Create).Methods(http.MethodPost)
	api.HandleFunc("/parts", handlers.Part.GetAll).Methods(http.MethodGet)
	api.HandleFunc("/parts/low-stock", handlers.Part.GetLowStock).Methods(http.MethodGet)
	api.HandleFunc("/parts/{id}", handlers.Part.GetByID).Methods(http.MethodGet)
	api.HandleFunc("/parts/{id}", handlers.Part.Update).Methods(http.MethodPatch)
	api.HandleFunc("/parts/{id}/stock", handlers.Part.AdjustStock).Methods(http.MethodPatch)
	api.HandleFunc("/parts/{id}", handlers.Part.Delete).Methods(http.MethodDelete)

	// Finance endpoints
	api.HandleFunc("/finance/calculate", handlers.Finance.Calculate).Methods(http.MethodPost)
	api.HandleFunc("/finance/applications", handlers.Finance.CreateApplication).Methods(http.MethodPost)
	api.HandleFunc("/finance/applications", handlers.Finance.ListApplications).Methods(http.MethodGet)
	api.HandleFunc("/finance/applications/{id}", handlers.Finance.GetApplication).Methods(http.MethodGet)
	api.Handle("/finance/applications/{id}/status",
		middleware.RequireRole(models.RoleManager, models.RoleAdmin, models.RoleAccountant)(
			http.HandlerFunc(handlers.Finance.UpdateApplicationStatus),
		)).Methods(http.MethodPatch)

	// Start the parts reorder scheduler
	reorderScheduler := scheduler.NewScheduler(services.Part, log)
	reorderScheduler.Start(cfg.Inventory.ReorderScanInterval)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Second * 15,
		WriteTimeout: time.Second * 15,
		IdleTimeout:  time.Second * 60,
	}

	go func() {
		log.Infof("Starting server on port %d", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), time.Second*10)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server shutdown failed: %v", err)
	}

	reorderScheduler.Stop()
	// Let queued notification emails go out before the process exits
	services.Wait()

	log.Info("Server gracefully stopped")
}

func initDB(cfg *configs.Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err = db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
