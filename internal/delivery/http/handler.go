package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/veganscan/backend/internal/domain"
)

// AnalysisService is the use case the handlers delegate to
type AnalysisService interface {
	AnalyzeIngredients(ctx context.Context, request domain.AnalyzeRequest) (domain.ProductVerdict, error)
	AnalyzeText(ctx context.Context, request domain.TextAnalysisRequest) (*domain.TextAnalysis, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	service AnalysisService
	version string
}

// NewHandler creates a new HTTP handler. A nil service makes the analysis endpoints return 503.
func NewHandler(service AnalysisService, version string) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{service: service, version: version}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "veganscan-backend",
		"version": h.version,
	})
}

// AnalyzeIngredients classifies an explicit ingredient list.
// An empty list is valid and yields the low-confidence uncertain verdict.
func (h *Handler) AnalyzeIngredients(c *gin.Context) {
	if h.service == nil {
		respondError(c, http.StatusServiceUnavailable, "analysis service unavailable")
		return
	}

	var request domain.IngredientsAnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: ingredients must be a JSON array of strings")
		return
	}

	verdict, err := h.service.AnalyzeIngredients(c.Request.Context(), request.ToAnalyzeRequest())
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, verdict)
}

// AnalyzeText extracts ingredients from free text with the external classifier and analyzes them
func (h *Handler) AnalyzeText(c *gin.Context) {
	if h.service == nil {
		respondError(c, http.StatusServiceUnavailable, "analysis service unavailable")
		return
	}

	var request domain.TextAnalysisRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		respondError(c, http.StatusBadRequest, "invalid request: text is required")
		return
	}

	result, err := h.service.AnalyzeText(c.Request.Context(), request)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// handleError maps domain errors to HTTP status codes
func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrExtractorNotConfigured):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, domain.ErrNoIngredientsFound):
		respondError(c, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		respondError(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrExtractorFailure):
		respondError(c, http.StatusBadGateway, domain.ErrExtractorFailure.Error())
	default:
		respondError(c, http.StatusInternalServerError, "internal server error")
	}
}

// respondError writes the standard error body
func respondError(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"error": message})
}
