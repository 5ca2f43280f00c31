// internal/handlers/subscription/subscription_handler.go
package subscription

import (
	"net/http"
	"strconv"

	"carecycle-service/internal/domain/subscription"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	subUsecase "carecycle-service/internal/service/subscription"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type SubscriptionHandler struct {
	subService *subUsecase.SubscriptionService
	logger     *zap.Logger
}

func NewSubscriptionHandler(subService *subUsecase.SubscriptionService, logger *zap.Logger) *SubscriptionHandler {
	return &SubscriptionHandler{subService: subService, logger: logger}
}

// ListPlans returns purchasable plans (public)
func (h *SubscriptionHandler) ListPlans(c *gin.Context) {
	activeOnly := !middleware.IsStaff(c)

	plans, err := h.subService.ListPlans(c.Request.Context(), activeOnly)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list plans", err)
		return
	}

	response.Success(c, http.StatusOK, "plans", plans)
}

// Subscribe enrolls the caller in a plan
func (h *SubscriptionHandler) Subscribe(c *gin.Context) {
	var req subscription.SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	sub, err := h.subService.Subscribe(c.Request.Context(), middleware.MustGetUserID(c), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrNotFound):
			response.NotFound(c, "plan not found")
		case xerrors.Is(err, xerrors.ErrConflict):
			response.Error(c, http.StatusConflict, "an active subscription already exists", err)
		default:
			h.logger.Error("subscription failed", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "failed to subscribe", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "subscribed", sub)
}

// Current returns the caller's active subscription
func (h *SubscriptionHandler) Current(c *gin.Context) {
	sub, err := h.subService.GetActive(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "no active subscription")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to load subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription", sub)
}

// History returns the caller's past subscriptions
func (h *SubscriptionHandler) History(c *gin.Context) {
	subs, err := h.subService.History(c.Request.Context(), middleware.MustGetUserID(c))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to load history", err)
		return
	}

	response.Success(c, http.StatusOK, "subscriptions", subs)
}

// Cancel stops the caller's active subscription
func (h *SubscriptionHandler) Cancel(c *gin.Context) {
	if err := h.subService.Cancel(c.Request.Context(), middleware.MustGetUserID(c)); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "no active subscription")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to cancel subscription", err)
		return
	}

	response.Success(c, http.StatusOK, "subscription cancelled", nil)
}

// ========== Back office ==========

// CreatePlan adds a plan (admin only)
func (h *SubscriptionHandler) CreatePlan(c *gin.Context) {
	var req subscription.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	plan, err := h.subService.CreatePlan(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "plan code already exists", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to create plan", err)
		return
	}

	response.Success(c, http.StatusCreated, "plan created", plan)
}

// UpdatePlan edits a plan (admin only)
func (h *SubscriptionHandler) UpdatePlan(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid plan id", err)
		return
	}

	var req subscription.UpdatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	plan, err := h.subService.UpdatePlan(c.Request.Context(), id, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "plan not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to update plan", err)
		return
	}

	response.Success(c, http.StatusOK, "plan updated", plan)
}
