package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/maatchaa/maatchaa-backend/internal/http/handlers"
	httpMW "github.com/maatchaa/maatchaa-backend/internal/http/middleware"
	"github.com/maatchaa/maatchaa-backend/internal/observability"
	"github.com/maatchaa/maatchaa-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	ServiceName string
	CORSOrigins []string

	AuthMiddleware *httpMW.AuthMiddleware

	HealthHandler    *httpH.HealthHandler
	DiscoveryHandler *httpH.DiscoveryHandler
	ProductHandler   *httpH.ProductHandler
	SearchHandler    *httpH.SearchHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	protected := r.Group("/api")
	if cfg.AuthMiddleware != nil {
		protected.Use(cfg.AuthMiddleware.RequireAuth())
	}
	{
		// Discovery
		if cfg.DiscoveryHandler != nil {
			protected.POST("/discovery/trigger", cfg.DiscoveryHandler.Trigger)
			protected.GET("/discovery/tasks/:id", cfg.DiscoveryHandler.GetTask)
		}

		// Catalog
		if cfg.ProductHandler != nil {
			protected.GET("/products", cfg.ProductHandler.ListProducts)
			protected.GET("/products/:id/matches", cfg.ProductHandler.ListMatches)
		}

		// Similarity search
		if cfg.SearchHandler != nil {
			protected.POST("/search/text", cfg.SearchHandler.TextSearch)
			protected.DELETE("/videos/:video_id/vector", cfg.SearchHandler.RemoveVideo)
		}
	}

	return r
}
