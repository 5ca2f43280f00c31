// internal/handlers/schedule/schedule_handler.go
package schedule

import (
	"net/http"
	"strconv"
	"time"

	"carecycle-service/internal/domain/schedule"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	"carecycle-service/internal/pkg/session"
	scheduleUsecase "carecycle-service/internal/service/schedule"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ScheduleHandler struct {
	scheduleService *scheduleUsecase.ScheduleService
	logger          *zap.Logger
}

func NewScheduleHandler(scheduleService *scheduleUsecase.ScheduleService, logger *zap.Logger) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: scheduleService, logger: logger}
}

// ListOpen returns bookable slots for customers
func (h *ScheduleHandler) ListOpen(c *gin.Context) {
	filter := &schedule.ListFilter{OpenOnly: true}

	if v := c.Query("consultant_id"); v != "" {
		filter.ConsultantID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("from"); v != "" {
		filter.From, _ = time.Parse(time.RFC3339, v)
	}
	if v := c.Query("to"); v != "" {
		filter.To, _ = time.Parse(time.RFC3339, v)
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	slots, total, err := h.scheduleService.ListSlots(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list slots", err)
		return
	}

	response.Success(c, http.StatusOK, "slots", gin.H{"slots": slots, "total": total})
}

// ========== Back office ==========

// Create opens a new slot. Consultants create their own; admins may pass
// consultant_id for someone else.
func (h *ScheduleHandler) Create(c *gin.Context) {
	var req schedule.CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	consultantID := middleware.MustGetUserID(c)
	if v := c.Query("consultant_id"); v != "" && !middleware.HasRole(c, session.RoleConsultant) {
		consultantID, _ = strconv.ParseInt(v, 10, 64)
	}

	slot, err := h.scheduleService.CreateSlot(c.Request.Context(), consultantID, &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "invalid slot window", err)
		case xerrors.Is(err, xerrors.ErrScheduleConflict):
			response.Error(c, http.StatusConflict, "slot overlaps an existing window", err)
		default:
			h.logger.Error("slot creation failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to create slot", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "slot created", slot)
}

// ListMine returns the consultant's own calendar
func (h *ScheduleHandler) ListMine(c *gin.Context) {
	filter := &schedule.ListFilter{ConsultantID: middleware.MustGetUserID(c)}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	slots, total, err := h.scheduleService.ListSlots(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list slots", err)
		return
	}

	response.Success(c, http.StatusOK, "slots", gin.H{"slots": slots, "total": total})
}

// Update edits a slot
func (h *ScheduleHandler) Update(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid slot id", err)
		return
	}

	var req schedule.UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	slot, err := h.scheduleService.UpdateSlot(c.Request.Context(), id, h.ownerScope(c), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "slot not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your slot")
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "invalid slot update", err)
		case xerrors.Is(err, xerrors.ErrScheduleConflict):
			response.Error(c, http.StatusConflict, "slot overlaps an existing window", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update slot", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "slot updated", slot)
}

// Cancel closes a slot to further bookings
func (h *ScheduleHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid slot id", err)
		return
	}

	if err := h.scheduleService.CancelSlot(c.Request.Context(), id, h.ownerScope(c)); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "slot not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your slot")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to cancel slot", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "slot cancelled", nil)
}

// ownerScope returns 0 for admins (no ownership check) and the caller's ID
// for consultants.
func (h *ScheduleHandler) ownerScope(c *gin.Context) int64 {
	if middleware.HasRole(c, session.RoleConsultant) {
		return middleware.MustGetUserID(c)
	}
	return 0
}
