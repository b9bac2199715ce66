package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/maatchaa/maatchaa-backend/internal/http"
	httpH "github.com/maatchaa/maatchaa-backend/internal/http/handlers"
	httpMW "github.com/maatchaa/maatchaa-backend/internal/http/middleware"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Discovery *httpH.DiscoveryHandler
	Product   *httpH.ProductHandler
	Search    *httpH.SearchHandler
}

// wireHandlers binds triggered discovery to baseCtx so a pass keeps running
// after its HTTP request has returned 202.
func wireHandlers(baseCtx context.Context, log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(),
		Discovery: httpH.NewDiscoveryHandler(baseCtx, log, services.Worker),
		Product:   httpH.NewProductHandler(services.Products, services.Matches),
		Search:    httpH.NewSearchHandler(services.Search),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      cfg.OtelServiceName,
		CORSOrigins:      cfg.CORSOrigins,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		DiscoveryHandler: handlers.Discovery,
		ProductHandler:   handlers.Product,
		SearchHandler:    handlers.Search,
	})
}
