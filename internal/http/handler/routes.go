package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"propcatalog/docs"
	"propcatalog/internal/service"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Properties service.PropertyService
	Owners     service.OwnerService
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app. A nil
// gatherer leaves /metrics unregistered.
func RegisterRoutes(app *fiber.App, db Pinger, svc Services, gatherer prometheus.Gatherer) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	if gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

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

	app.Get("/properties", SearchProperties(svc.Properties))
	app.Get("/properties/:id", GetProperty(svc.Properties))
	app.Post("/owners", CreateOwner(svc.Owners))
}
