package handlers

import (
	"time"

	"github.com/finbooks/ledger_engine/internal/core/services"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/finbooks/ledger_engine/internal/platform/config"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.ServiceContainer,
) {
	r.Use(cors.Default())

	// Add health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	setupAPIV1Routes(r, cfg, container)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	container *services.ServiceContainer,
) {
	v1 := r.Group("/api/v1")

	// Regeneration is expensive; one shared per-IP limiter covers every
	// endpoint that triggers it.
	rate := limiter.Rate{Period: time.Minute, Limit: 30}
	rateLimit := middleware.RateLimit(limiter.New(memory.NewStore(), rate))

	registerLedgerRoutes(v1, container.LedgerSvc, rateLimit)
	registerRateRoutes(v1, container.ResolverSvc, rateLimit)
}
