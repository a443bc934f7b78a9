package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/Tomlord1122/dashboard-backend/internal/auth"
	"github.com/Tomlord1122/dashboard-backend/internal/config"
	"github.com/Tomlord1122/dashboard-backend/internal/database"
	"github.com/Tomlord1122/dashboard-backend/internal/logging"
	"github.com/Tomlord1122/dashboard-backend/internal/schema"
	"github.com/Tomlord1122/dashboard-backend/internal/service"
	"github.com/Tomlord1122/dashboard-backend/internal/weather"
)

// WeatherProvider serves the latest weather report. *weather.Cache satisfies it.
type WeatherProvider interface {
	Get(ctx context.Context, allowCached bool) (weather.Report, error)
}

// Deps are the collaborators the HTTP layer needs. Weather may be nil when
// no provider is configured.
type Deps struct {
	DB       database.Service
	Todos    service.TodoService
	Calendar service.CalendarService
	Users    service.UserService
	Weather  WeatherProvider
	Issuer   *auth.Issuer
	Logger   *logging.Logger
}

type Server struct {
	port           int
	requestTimeout time.Duration

	db              database.Service
	todoService     service.TodoService
	calendarService service.CalendarService
	userService     service.UserService
	weather         WeatherProvider
	issuer          *auth.Issuer
	validator       *schema.Validator
	limiter         *ipRateLimiter
	logger          *logging.Logger
}

// New builds the application server without binding a listener.
func New(cfg *config.Config, deps Deps) *Server {
	return &Server{
		port:            cfg.Port,
		requestTimeout:  cfg.RequestTimeout,
		db:              deps.DB,
		todoService:     deps.Todos,
		calendarService: deps.Calendar,
		userService:     deps.Users,
		weather:         deps.Weather,
		issuer:          deps.Issuer,
		validator:       schema.MustNew(),
		limiter:         newIPRateLimiter(rate.Limit(cfg.RateLimit.RequestsPerSecond), cfg.RateLimit.Burst),
		logger:          deps.Logger,
	}
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	s.limiter.Stop()
}

func NewServer(cfg *config.Config, deps Deps) *http.Server {
	appServer := New(cfg, deps)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", appServer.port),
		Handler:      appServer.RegisterRoutes(),
		ErrorLog:     deps.Logger.Std(slog.LevelError),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	server.RegisterOnShutdown(appServer.Close)

	return server
}
