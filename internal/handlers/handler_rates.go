package handlers

import (
	"net/http"

	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

type rateHandler struct {
	resolverService portssvc.ResolverSvcFacade
}

// registerRateRoutes registers rate-cache maintenance routes. Invalidation is
// cheap but sits behind the limiter anyway since it forces refetches.
func registerRateRoutes(rg *gin.RouterGroup, resolverService portssvc.ResolverSvcFacade, rateLimit gin.HandlerFunc) {
	h := &rateHandler{resolverService: resolverService}
	rg.POST("/rates/invalidate-cache", rateLimit, h.invalidateCache)
}

// invalidateCache drops the in-memory rate cache, e.g. after correcting the
// rate table.
func (h *rateHandler) invalidateCache(c *gin.Context) {
	h.resolverService.InvalidateRates()
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Rate cache invalidated")
	c.JSON(http.StatusOK, gin.H{"status": "cache invalidated"})
}
