package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/freightport/terminal-backend/api/routes"
	"github.com/freightport/terminal-backend/internal/announcements"
	"github.com/freightport/terminal-backend/internal/appointments"
	"github.com/freightport/terminal-backend/internal/audit"
	"github.com/freightport/terminal-backend/internal/auth"
	"github.com/freightport/terminal-backend/internal/cargo"
	"github.com/freightport/terminal-backend/internal/drivers"
	"github.com/freightport/terminal-backend/internal/halls"
	"github.com/freightport/terminal-backend/internal/notifications"
	"github.com/freightport/terminal-backend/internal/users"
	"github.com/freightport/terminal-backend/internal/waybills"
	"github.com/freightport/terminal-backend/pkg/auth/session"
	"github.com/freightport/terminal-backend/pkg/config"
	"github.com/freightport/terminal-backend/pkg/db"
	"github.com/freightport/terminal-backend/pkg/logger"
	"github.com/freightport/terminal-backend/pkg/metrics"
	"github.com/freightport/terminal-backend/pkg/migrate"
	"github.com/freightport/terminal-backend/pkg/redis"
	"github.com/freightport/terminal-backend/pkg/sms"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := metrics.NewRegistry()
	smsSender := sms.New(cfg.SMS, logg)
	auditor := audit.NewRecorder()

	notifier, err := notifications.NewService(dbClient.DB(), smsSender, logg, registry)
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	cargoRepo := cargo.NewRepository(dbClient.DB())
	announcementRepo := announcements.NewRepository(dbClient.DB())
	appointmentRepo := appointments.NewRepository(dbClient.DB())
	waybillRepo := waybills.NewRepository(dbClient.DB())
	hallRepo := halls.NewRepository(dbClient.DB())
	driverRepo := drivers.NewRepository(dbClient.DB())

	usersService, err := users.NewService(usersRepo, dbClient, auditor, cfg.Password)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:        usersRepo,
		ProfileResolver: usersService,
		SessionManager:  sessionManager,
		JWTConfig:       cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	cargoService, err := cargo.NewService(cargoRepo, dbClient, auditor, notifier, registry, cfg.Cargo.MaxTruckCount)
	if err != nil {
		logg.Error(context.Background(), "failed to create cargo service", err)
		os.Exit(1)
	}

	announcementService, err := announcements.NewService(announcementRepo, cargoRepo, cargoService, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create announcement service", err)
		os.Exit(1)
	}

	appointmentService, err := appointments.NewService(appointmentRepo, cargoRepo, cargoService, driverRepo, dbClient, auditor, notifier, cfg.Cargo.CancelBanDuration)
	if err != nil {
		logg.Error(context.Background(), "failed to create appointment service", err)
		os.Exit(1)
	}

	waybillService, err := waybills.NewService(waybillRepo, appointmentRepo, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create waybill service", err)
		os.Exit(1)
	}

	hallService, err := halls.NewService(hallRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create hall service", err)
		os.Exit(1)
	}

	driverService, err := drivers.NewService(driverRepo, dbClient, auditor)
	if err != nil {
		logg.Error(context.Background(), "failed to create driver service", err)
		os.Exit(1)
	}

	auditService, err := audit.NewService(dbClient.DB())
	if err != nil {
		logg.Error(context.Background(), "failed to create audit service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	handler := routes.NewRouter(cfg, logg, dbClient, redisClient, sessionManager, registry, routes.Services{
		Auth:          authService,
		Users:         usersService,
		Cargo:         cargoService,
		Announcements: announcementService,
		Appointments:  appointmentService,
		Waybills:      waybillService,
		Halls:         hallService,
		Drivers:       driverService,
		Audit:         auditService,
	})

	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	}()

	<-shutdown
	logg.Info(ctx, "shutting down api server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "graceful shutdown failed", err)
	}
}
