package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/ecsetu/portal/docs"
	"github.com/ecsetu/portal/internal/api/handler"
	"github.com/ecsetu/portal/internal/core/ports"
)

// Dependencies are the collaborators the HTTP layer needs.
type Dependencies struct {
	Profiles ports.ProfileService
	Mongo    handler.MongoPinger
	Mailer   handler.MailerStatus
	Logger   zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
// It registers the HTTP metrics with the default Prometheus registry, so call
// it once per process.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(requestLogger(deps.Logger))
	e.Use(echoprometheus.NewMiddleware("portal"))

	// --- Dependencies ---
	profileHandler := handler.NewProfileHandler(deps.Profiles)
	userHandler := handler.NewUserHandler(deps.Profiles)

	// --- Profile routes ---
	e.GET("/api/profile", profileHandler.Get)
	e.PUT("/api/profile", profileHandler.Update)

	// --- User routes ---
	e.POST("/api/users", userHandler.Create)
	e.POST("/api/login", userHandler.Login)

	// --- Health probes ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Mailer)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Operations ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return echomiddleware.RequestLoggerWithConfig(echomiddleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v echomiddleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil {
				ev = log.Warn().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
