// internal/handlers/cycle/cycle_handler.go
package cycle

import (
	"net/http"
	"strconv"

	"carecycle-service/internal/domain/cycle"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	cycleUsecase "carecycle-service/internal/service/cycle"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type CycleHandler struct {
	cycleService *cycleUsecase.CycleService
	logger       *zap.Logger
}

func NewCycleHandler(cycleService *cycleUsecase.CycleService, logger *zap.Logger) *CycleHandler {
	return &CycleHandler{cycleService: cycleService, logger: logger}
}

// Log records a new cycle entry for the caller
func (h *CycleHandler) Log(c *gin.Context) {
	var req cycle.LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	entry, err := h.cycleService.LogEntry(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "invalid dates", err)
			return
		}
		h.logger.Error("cycle log failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to log entry", err)
		return
	}

	response.Success(c, http.StatusCreated, "entry logged", entry)
}

// History returns the caller's recent entries
func (h *CycleHandler) History(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "12"))

	entries, err := h.cycleService.History(c.Request.Context(), middleware.MustGetUserID(c), limit)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load history", err)
		return
	}

	response.Success(c, http.StatusOK, "entries", entries)
}

// Update edits one of the caller's entries
func (h *CycleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid entry id", err)
		return
	}

	var req cycle.LogEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	entry, err := h.cycleService.UpdateEntry(c.Request.Context(), id, middleware.MustGetUserID(c), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "entry not found")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "invalid dates", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update entry", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "entry updated", entry)
}

// Delete removes one of the caller's entries
func (h *CycleHandler) Delete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid entry id", err)
		return
	}

	if err := h.cycleService.DeleteEntry(c.Request.Context(), id, middleware.MustGetUserID(c)); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "entry not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to delete entry", err)
		return
	}

	response.Success(c, http.StatusOK, "entry deleted", nil)
}

// Predict estimates the caller's next cycle start
func (h *CycleHandler) Predict(c *gin.Context) {
	prediction, err := h.cycleService.Predict(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.Error(c, http.StatusUnprocessableEntity, "not enough history to predict", err)
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.Error(c, http.StatusUnprocessableEntity, "history too irregular to predict", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to predict", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "prediction", prediction)
}
