package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rayzhou/text-toolkit/internal/domain/analyzer"
	apperrors "github.com/rayzhou/text-toolkit/pkg/errors"
)

// AnalyzeHandler wires the HTTP transport to the analyzer domain.
type AnalyzeHandler struct {
	svc    analyzer.Service
	logger *slog.Logger
}

// NewAnalyzeHandler constructs the root HTTP handler.
func NewAnalyzeHandler(svc analyzer.Service, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		svc:    svc,
		logger: logger.With("component", "http.handler"),
	}
}

// Analyze handles POST /analyze.
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req analyzer.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.svc.Analyze(c.Request.Context(), req)
	if err != nil {
		status := http.StatusInternalServerError
		if apperrors.IsCode(err, "invalid_input") {
			status = http.StatusBadRequest
		}
		abortWithError(c, NewHTTPError(status, "analyze_failed", errMessage(err), err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health is a liveness probe.
func (h *AnalyzeHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
