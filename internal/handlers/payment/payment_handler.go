// internal/handlers/payment/payment_handler.go
package payment

import (
	"net/http"
	"strconv"

	"carecycle-service/internal/domain/payment"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	paymentUsecase "carecycle-service/internal/service/payment"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type PaymentHandler struct {
	paymentService *paymentUsecase.PaymentService
	logger         *zap.Logger
}

func NewPaymentHandler(paymentService *paymentUsecase.PaymentService, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// Record captures a charge for the caller's booking or subscription
func (h *PaymentHandler) Record(c *gin.Context) {
	var req payment.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	p, err := h.paymentService.RecordPayment(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "payment needs a booking or subscription", err)
			return
		}
		h.logger.Error("payment recording failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "failed to record payment", err)
		return
	}

	response.Success(c, http.StatusCreated, "payment recorded", p)
}

// ListMine returns the caller's payments
func (h *PaymentHandler) ListMine(c *gin.Context) {
	filter := &payment.ListFilter{
		UserID: middleware.MustGetUserID(c),
		Status: c.Query("status"),
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments", gin.H{"payments": payments, "total": total})
}

// Get returns one payment
func (h *PaymentHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment id", err)
		return
	}

	p, err := h.paymentService.GetPayment(c.Request.Context(), id, middleware.MustGetUserID(c), middleware.IsStaff(c))
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case xerrors.Is(err, xerrors.ErrForbidden):
			response.Forbidden(c, "not your payment")
		default:
			response.Error(c, http.StatusInternalServerError, "failed to load payment", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "payment", p)
}

// ========== Back office ==========

// ListAll returns payments across users (staff only)
func (h *PaymentHandler) ListAll(c *gin.Context) {
	filter := &payment.ListFilter{Status: c.Query("status")}
	if v := c.Query("user_id"); v != "" {
		filter.UserID, _ = strconv.ParseInt(v, 10, 64)
	}
	filter.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	filter.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))

	payments, total, err := h.paymentService.ListPayments(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list payments", err)
		return
	}

	response.Success(c, http.StatusOK, "payments", gin.H{"payments": payments, "total": total})
}

// UpdateStatus moves a payment through its lifecycle (staff only)
func (h *PaymentHandler) UpdateStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid payment id", err)
		return
	}

	var req payment.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.paymentService.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "payment not found")
		case xerrors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "invalid status transition", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to update payment", err)
		}
		return
	}

	response.Success(c, http.StatusOK, "payment status updated", nil)
}
