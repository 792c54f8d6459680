package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/mindgarden/backend/internal/analysis"
	"github.com/mindgarden/backend/internal/db"
	"github.com/mindgarden/backend/internal/service"
)

type Handler struct {
	Store        *db.Store
	Orchestrator *service.Orchestrator
	Responder    analysis.Responder
	Validator    *validator.Validate
	Logger       zerolog.Logger
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// writeStoreError maps store failures onto the triage error contract:
// validation problems are 400, unknown ids 404, anything else a retryable
// 500.
func writeStoreError(c *gin.Context, err error) {
	var verr db.ValidationError
	switch {
	case errors.Is(err, db.ErrNotFound):
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Escalation not found", nil)
	case errors.As(err, &verr):
		writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Msg, nil)
	default:
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Operation failed, please retry", err.Error())
	}
}
