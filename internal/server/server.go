// Package server assembles the fiber application: middleware, metrics, API docs and routes.
package server

import (
	"strings"

	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"contextly/docs"
	"contextly/internal/config"
	handlers "contextly/internal/http/handler"
	"contextly/internal/http/middleware"
	"contextly/internal/service"
	"contextly/internal/validation"
)

// maxBodyBytes bounds multipart uploads.
const maxBodyBytes = 50 * 1024 * 1024

// Registry is what the server needs from a prometheus registry.
type Registry interface {
	prometheus.Registerer
	prometheus.Gatherer
}

// Deps are the components the HTTP layer serves.
type Deps struct {
	Sessions  service.SessionService
	Validator *validation.Validator
	Probe     handlers.HealthProbe
	Registry  Registry
	Logger    *zap.Logger
}

// New builds the fiber app.
func New(cfg *config.AppConfig, deps Deps) (*fiber.App, error) {
	promMiddleware, err := middleware.NewPrometheusMiddleware(deps.Registry)
	if err != nil {
		return nil, err
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    maxBodyBytes,
		Immutable:    true,
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  strings.Join(cfg.CORSOrigins, ","),
		AllowHeaders:  "Origin, Content-Type, Accept, " + middleware.RequestIDHeader,
		AllowMethods:  "GET, POST, DELETE, OPTIONS",
		ExposeHeaders: "Content-Disposition, X-Export-Pages, X-Export-URL, " + middleware.RequestIDHeader,
	}))
	app.Use(otelfiber.Middleware())
	app.Use(middleware.RequestID())
	app.Use(middleware.Logger(deps.Logger))
	app.Use(promMiddleware.Handler())

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{})))

	// Swagger UI with dynamic host and scheme
	app.Get("/swagger/*", func(c *fiber.Ctx) error {
		scheme := c.Protocol()
		if proto := c.Get("X-Forwarded-Proto"); proto != "" {
			scheme = strings.Split(proto, ",")[0]
		}

		docs.SwaggerInfo.Host = c.Get("Host")
		docs.SwaggerInfo.Schemes = []string{scheme}

		return swagger.HandlerDefault(c)
	})

	handlers.RegisterRoutes(app, deps.Sessions, deps.Validator, deps.Probe)
	return app, nil
}
