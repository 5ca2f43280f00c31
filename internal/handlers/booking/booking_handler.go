// internal/handlers/booking/booking_handler.go
package booking

import (
	"net/http"
	"strconv"

	"carecycle-service/internal/domain/booking"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	bookingUsecase "carecycle-service/internal/service/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type BookingHandler struct {
	bookingService *bookingUsecase.BookingService
	logger         *zap.Logger
}

func NewBookingHandler(bookingService *bookingUsecase.BookingService, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{bookingService: bookingService, logger: logger}
}

// Create books the caller into a slot
func (h *BookingHandler) Create(c *gin.Context) {
	var req booking.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	b, err := h.bookingService.CreateBooking(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "slot not found")
		case xerrors.Is(err, xerrors.ErrSlotUnavailable):
			response.Error(c, http.StatusConflict, "slot is full or closed", err)
		default:
			h.logger.Error("booking failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to create booking", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "booking created", b)
}

// ListMine returns the caller's bookings
func (h *BookingHandler) ListMine(c *gin.Context) {
	filter := &booking.ListFilter{
		UserID: middleware.MustGetUserID(c),
		Status: c.Query("status"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list bookings", err)
		return
	}

	response.Success(c, http.StatusOK, "bookings", gin.H{"bookings": bookings, "total": total})
}

// Get returns one booking
func (h *BookingHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid booking id", err)
		return
	}

	b, err := h.bookingService.GetBooking(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsStaff(c))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "booking not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your booking")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to load booking", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "booking", b)
}

// Cancel cancels a booking and frees its seat
func (h *BookingHandler) Cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid booking id", err)
		return
	}

	if err := h.bookingService.CancelBooking(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsStaff(c)); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "booking not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your booking")
		case xerrors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "booking can no longer be cancelled", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to cancel booking", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "booking cancelled", nil)
}

// ========== Back office ==========

// ListAll returns bookings across users (staff only)
func (h *BookingHandler) ListAll(c *gin.Context) {
	filter := &booking.ListFilter{Status: c.Query("status")}
	if v := c.Query("user_id"); v != "" {
		filter.UserID, _ = strconv.ParseInt(v, 10, 64)
	}
	if v := c.Query("slot_id"); v != "" {
		filter.SlotID, _ = strconv.ParseInt(v, 10, 64)
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list bookings", err)
		return
	}

	response.Success(c, http.StatusOK, "bookings", gin.H{"bookings": bookings, "total": total})
}

// Complete marks a visit done (staff only)
func (h *BookingHandler) Complete(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid booking id", err)
		return
	}

	if err := h.bookingService.CompleteBooking(c.Request.Context(), id); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "booking not found")
		case xerrors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "booking is not in a completable state", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to complete booking", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "booking completed", nil)
}
