package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crucial707/makerspace-access/internal/config"
	"github.com/crucial707/makerspace-access/internal/db"
	"github.com/crucial707/makerspace-access/internal/handlers"
	"github.com/crucial707/makerspace-access/internal/middleware"
	"github.com/crucial707/makerspace-access/internal/models"
	"github.com/crucial707/makerspace-access/internal/repo"
	"github.com/crucial707/makerspace-access/internal/scheduler"
	"github.com/crucial707/makerspace-access/internal/service"
)

func main() {
	cfg := config.Load()

	// Structured logging
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	} else {
		handler = slog.NewTextHandler(os.Stdout, nil)
	}
	slog.SetDefault(slog.New(handler))

	if cfg.Env == "prod" && cfg.JWTSecret == "supersecretkey" {
		slog.Error("JWT_SECRET must be set in prod")
		os.Exit(1)
	}

	handlers.DefaultPerPage = cfg.DefaultPerPage
	handlers.MaxPerPage = cfg.MaxPerPage

	// Connect to database FIRST
	database, err := db.Connect(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass,
		cfg.DBMaxOpenConns, cfg.DBMaxIdleConns)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()
	slog.Info("connected to database", "host", cfg.DBHost, "name", cfg.DBName)

	if err := db.Run(db.URL(cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBUser, cfg.DBPass)); err != nil {
		slog.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	// Repositories and services
	userRepo := repo.NewUserRepo(database)
	cardRepo := repo.NewAccessCardRepo(database)
	deviceRepo := repo.NewDeviceRepo(database)
	nodeRepo := repo.NewAccessNodeRepo(database)
	logRepo := repo.NewAuditLogRepo(database)
	reportRepo := repo.NewReportRepo(database)
	blocklistRepo := repo.NewTokenBlocklistRepo(database)

	assignments := service.NewAssignmentService(database)
	scans := service.NewScanService(database)

	secret := []byte(cfg.JWTSecret)
	userHandler := &handlers.UserHandler{Service: assignments, Repo: userRepo, Logs: logRepo}
	cardHandler := &handlers.AccessCardHandler{Service: assignments, Repo: cardRepo, Logs: logRepo}
	deviceHandler := &handlers.DeviceHandler{Service: assignments, Repo: deviceRepo}
	nodeHandler := &handlers.AccessNodeHandler{Scans: scans, Repo: nodeRepo}
	reportHandler := &handlers.ReportHandler{Repo: reportRepo}
	authHandler := &handlers.AuthHandler{
		Users:     userRepo,
		Blocklist: blocklistRepo,
		Logs:      logRepo,
		Secret:    secret,
		TokenTTL:  time.Duration(cfg.JWTExpireHours) * time.Hour,
	}

	auth := middleware.JWTMiddleware(secret, blocklistRepo)
	admin := middleware.RequireRole(models.RoleAdmin)
	editors := middleware.RequireRole(models.RoleAdmin, models.RoleEditor)
	readers := middleware.RequireRole(models.RoleAdmin, models.RoleEditor, models.RoleUser, models.RolePublicDisplay)

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestLog)
	r.Use(middleware.Prometheus)
	r.Use(middleware.SecurityHeaders(cfg.TLSCertFile != ""))
	r.Use(middleware.CORS(cfg.CORSAllowedOrigins))
	r.Use(middleware.MaxBytes(1 << 20))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	loginLimiter := middleware.AuthRateLimiter()
	r.Route("/api/auth", func(r chi.Router) {
		r.With(loginLimiter.Middleware).Post("/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Delete("/logout", authHandler.Logout)
			r.Get("/valid", authHandler.Valid)
		})
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(auth)
		r.With(admin).Post("/", userHandler.CreateUser)
		r.With(editors).Get("/", userHandler.ListUsers)
		r.With(editors).Get("/{id}", userHandler.GetUser)
		r.With(editors).Put("/{id}", userHandler.UpdateUser)
		r.With(admin).Delete("/{id}", userHandler.ArchiveUser)
		r.With(editors).Get("/{id}/editLogs", userHandler.UserEditLogs)
		r.With(editors).Get("/{id}/accessLogs", userHandler.UserAccessLogs)
	})

	r.Route("/api/accessCards", func(r chi.Router) {
		r.Use(auth)
		r.With(editors).Post("/", cardHandler.CreateCard)
		r.With(editors).Get("/", cardHandler.ListCards)
		r.With(editors).Post("/assign", cardHandler.AssignCard)
		r.With(editors).Post("/unassign", cardHandler.UnassignCard)
		r.With(editors).Get("/{id}", cardHandler.GetCard)
		r.With(editors).Put("/{id}", cardHandler.UpdateCard)
		r.With(admin).Delete("/{id}", cardHandler.ArchiveCard)
		r.With(editors).Get("/{id}/logs", cardHandler.CardLogs)
	})

	r.Route("/api/devices", func(r chi.Router) {
		r.Use(auth)
		r.With(editors).Post("/", deviceHandler.CreateDevice)
		r.With(readers).Get("/", deviceHandler.ListDevices)
		r.With(editors).Post("/assign", deviceHandler.AssignDevice)
		r.With(editors).Post("/unassign", deviceHandler.UnassignDevice)
		r.With(readers).Get("/{id}", deviceHandler.GetDevice)
		r.With(editors).Put("/{id}", deviceHandler.UpdateDevice)
		r.With(admin).Delete("/{id}", deviceHandler.ArchiveDevice)
	})

	r.Route("/api/accessNodes", func(r chi.Router) {
		r.Use(auth)
		r.With(editors).Post("/", nodeHandler.CreateNode)
		r.With(readers).Get("/", nodeHandler.ListNodes)
		r.With(readers).Get("/{id}", nodeHandler.GetNode)
		r.With(editors).Put("/{id}", nodeHandler.UpdateNode)
		r.With(admin).Delete("/{id}", nodeHandler.ArchiveNode)
		r.With(readers).Post("/{id}/scan", nodeHandler.Scan)
	})

	r.Route("/api/reports", func(r chi.Router) {
		r.Use(auth)
		r.With(editors).Get("/deviceAccess", reportHandler.DeviceAccess)
		r.With(editors).Get("/accessCardEdits", reportHandler.AccessCardEdits)
		r.With(editors).Get("/userEdits", reportHandler.UserEdits)
		r.With(editors).Get("/userAccess", reportHandler.UserAccess)
	})

	// Nightly blocklist prune
	cronJobs := scheduler.Run(blocklistRepo, cfg.TokenMaxAgeDays)
	defer cronJobs.Stop()

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("starting server", "port", cfg.Port, "tls", cfg.TLSCertFile != "")
		var err error
		if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(cfg.TLSCertFile, cfg.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			slog.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	slog.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("shutdown failed", "error", err)
	}
}
