package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm/logger"

	"github.com/Tomlord1122/dashboard-backend/internal/auth"
	"github.com/Tomlord1122/dashboard-backend/internal/config"
	"github.com/Tomlord1122/dashboard-backend/internal/database"
	"github.com/Tomlord1122/dashboard-backend/internal/logging"
	"github.com/Tomlord1122/dashboard-backend/internal/repository"
	"github.com/Tomlord1122/dashboard-backend/internal/server"
	"github.com/Tomlord1122/dashboard-backend/internal/service"
	"github.com/Tomlord1122/dashboard-backend/internal/weather"
)

type repositories struct {
	todos  repository.TodoRepository
	events repository.EventRepository
	users  repository.UserRepository
}

// openStorage connects the configured backend and returns its repositories.
func openStorage(ctx context.Context, cfg *config.Config, log *logging.Logger) (database.Service, repositories, error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; data is lost on restart")
		return database.NewMemory(), repositories{
			todos:  repository.NewMemoryTodoRepository(),
			events: repository.NewMemoryEventRepository(),
			users:  repository.NewMemoryUserRepository(),
		}, nil
	}

	gormLevel := logger.Warn
	if logging.ParseLevel(cfg.Log.Level) == slog.LevelDebug {
		gormLevel = logger.Info
	}
	dbService, err := database.New(cfg.Database.DSN(), cfg.Database.Database, log, gormLevel)
	if err != nil {
		return nil, repositories{}, err
	}
	if err := dbService.Migrate(ctx); err != nil {
		_ = dbService.Close()
		return nil, repositories{}, err
	}

	db := dbService.GetDB()
	return dbService, repositories{
		todos:  repository.NewGormTodoRepository(db),
		events: repository.NewGormEventRepository(db),
		users:  repository.NewGormUserRepository(db),
	}, nil
}

func gracefulShutdown(apiServer *http.Server, dbService database.Service, refresher *weather.Refresher, log *logging.Logger, done chan bool) {
	// Create context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	log.Info("shutting down gracefully, press Ctrl+C again to force")
	stop()

	// The server has 5 seconds to finish the requests it is currently handling.
	ctxTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := apiServer.Shutdown(ctxTimeout); err != nil {
		log.Error("server forced to shutdown", "err", err)
	}

	if refresher != nil {
		if err := refresher.Stop(ctxTimeout); err != nil {
			log.Warn("weather refresher did not stop cleanly", "err", err)
		}
	}

	if err := dbService.Close(); err != nil {
		log.Error("closing storage", "err", err)
	}

	log.Info("server exiting")
	done <- true
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logging.New(cfg.Log)
	defer log.Close()
	slog.SetDefault(log.Logger)

	ctx := context.Background()
	dbService, repos, err := openStorage(ctx, cfg, log)
	if err != nil {
		return err
	}

	issuer, err := auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTExpiry)
	if err != nil {
		_ = dbService.Close()
		return err
	}

	todoService := service.NewTodoService(repos.todos, log.Logger)
	calendarService := service.NewCalendarService(repos.events, log.Logger)
	userService := service.NewUserService(repos.users, issuer, cfg.Auth.PasswordHashCost, log.Logger)

	if _, err := userService.EnsureAdmin(ctx, cfg.Admin); err != nil {
		_ = dbService.Close()
		return fmt.Errorf("seed administrator: %w", err)
	}

	deps := server.Deps{
		DB:       dbService,
		Todos:    todoService,
		Calendar: calendarService,
		Users:    userService,
		Issuer:   issuer,
		Logger:   log,
	}

	var refresher *weather.Refresher
	if cfg.Weather.Enabled() {
		client := weather.NewWeatherAPIClient(cfg.Weather.APIKey, cfg.Weather.City)
		cache := weather.NewCache(client, cfg.Weather.CacheTTL)
		deps.Weather = cache

		if cfg.Weather.RefreshSchedule != "" {
			refresher, err = weather.NewRefresher(cache, cfg.Weather.RefreshSchedule, log.Logger)
			if err != nil {
				_ = dbService.Close()
				return err
			}
			refresher.Start()
		}
	} else {
		log.Info("weather provider not configured")
	}

	apiServer := server.NewServer(cfg, deps)

	done := make(chan bool, 1)
	go gracefulShutdown(apiServer, dbService, refresher, log, done)

	log.Info("starting server", "addr", apiServer.Addr, "storage", cfg.StorageDriver)
	if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}

	<-done
	log.Info("graceful shutdown complete")
	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("api exited", "err", err)
		os.Exit(1)
	}
}
