package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/finbooks/ledger_engine/internal/apperrors"
	portssvc "github.com/finbooks/ledger_engine/internal/core/ports/services"
	"github.com/finbooks/ledger_engine/internal/dto"
	"github.com/finbooks/ledger_engine/internal/middleware"
	"github.com/gin-gonic/gin"
)

// ledgerHandler handles HTTP requests related to ledger regeneration.
type ledgerHandler struct {
	ledgerService portssvc.LedgerSvcFacade
}

func newLedgerHandler(ls portssvc.LedgerSvcFacade) *ledgerHandler {
	return &ledgerHandler{ledgerService: ls}
}

// registerLedgerRoutes registers the ledger regeneration and read routes.
// Regeneration endpoints sit behind the shared rate limiter.
func registerLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvcFacade, rateLimit gin.HandlerFunc) {
	h := newLedgerHandler(ledgerService)

	charges := rg.Group("/charges")
	{
		charges.GET("/:chargeID/ledger", h.getLedgerRecords)
		charges.POST("/:chargeID/ledger/regenerate", rateLimit, h.regenerateLedger)
	}
	rg.POST("/ledger/regenerate-batch", rateLimit, h.regenerateBatch)
}

// regenerateLedger recomputes one charge's ledger and reconciles it against
// storage.
func (h *ledgerHandler) regenerateLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeID := c.Param("chargeID")

	var req dto.RegenerateLedgerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegenerateLedger", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	result, err := h.ledgerService.RegenerateLedger(c.Request.Context(), chargeID, req.UserID)
	if err != nil {
		respondLedgerError(c, logger, chargeID, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToRegenerationResponse(*result))
}

// regenerateBatch regenerates a batch of charges with per-charge isolation.
func (h *ledgerHandler) regenerateBatch(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RegenerateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegenerateBatch", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	results, failures := h.ledgerService.RegenerateMany(c.Request.Context(), req.ChargeIDs, req.UserID)

	response := dto.BatchRegenerationResponse{
		Results: make([]dto.RegenerationResponse, 0, len(results)),
	}
	for _, result := range results {
		response.Results = append(response.Results, dto.ToRegenerationResponse(result))
	}
	for _, failure := range failures {
		response.Errors = append(response.Errors, failure.Error())
	}

	// Partial success is still a success for the batch as a whole.
	status := http.StatusOK
	if len(response.Results) == 0 && len(response.Errors) > 0 {
		status = http.StatusUnprocessableEntity
	}
	c.JSON(status, response)
}

// getLedgerRecords returns the records currently stored for a charge.
func (h *ledgerHandler) getLedgerRecords(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	chargeID := c.Param("chargeID")

	records, err := h.ledgerService.GetLedgerRecords(c.Request.Context(), chargeID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
			return
		}
		logger.Error("Failed to get ledger records", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get ledger records"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"records": dto.ToLedgerRecordResponses(records)})
}

// respondLedgerError maps the generation error taxonomy to HTTP statuses:
// bad charge data and missing configuration are the client's to fix, an
// unresolved imbalance is a conflict with the books, and a provider failure
// is retryable.
func respondLedgerError(c *gin.Context, logger *slog.Logger, chargeID string, err error) {
	var validationErr *apperrors.ValidationError
	var resolutionErr *apperrors.ResolutionError
	var balanceErr *apperrors.BalanceError
	var lookupErr *apperrors.ExternalLookupError

	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Charge not found"})
	case errors.As(err, &validationErr):
		logger.Warn("Charge data failed validation", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &resolutionErr):
		logger.Warn("Charge references unconfigured concept", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.As(err, &balanceErr):
		logger.Warn("Generated entries do not balance", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "delta": balanceErr.Delta})
	case errors.As(err, &lookupErr):
		logger.Error("External lookup failed", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		logger.Error("Failed to regenerate ledger", slog.String("charge_id", chargeID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to regenerate ledger"})
	}
}
