// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"
	"strconv"
	"strings"

	"carecycle-service/internal/domain/auth"
	"carecycle-service/internal/middleware"
	xerrors "carecycle-service/internal/pkg/errors"
	"carecycle-service/internal/pkg/response"
	authUsecase "carecycle-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authUsecase.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(authService *authUsecase.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// ========== Registration ==========

// Register handles customer registration (public endpoint)
func (h *AuthHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrDuplicateEntry) {
			response.Error(c, http.StatusConflict, "email already registered", err)
			return
		}
		h.logger.Error("registration failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.Error(c, http.StatusBadRequest, "registration failed", err)
		return
	}

	h.setSessionCookie(c, loginResp.Token)
	response.Success(c, http.StatusCreated, "registration successful", loginResp)
}

// ========== Login ==========

// Login handles user login
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrAccountInactive) {
			response.Error(c, http.StatusForbidden, "account deactivated", err)
			return
		}
		h.logger.Warn("login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
		)
		response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
		return
	}

	h.setSessionCookie(c, loginResp.Token)
	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// Refresh exchanges a refresh token for a new token pair. Clients call this
// explicitly; an expired session is never refreshed behind a failed request.
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req auth.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	loginResp, err := h.authService.Refresh(c.Request.Context(), &req, currentSessionToken(c))
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "refresh failed", nil)
		return
	}

	h.setSessionCookie(c, loginResp.Token)
	response.Success(c, http.StatusOK, "token refreshed", loginResp)
}

// ========== Logout ==========

// Logout destroys the caller's session (requires auth)
func (h *AuthHandler) Logout(c *gin.Context) {
	token := middleware.MustGetSessionToken(c)

	if err := h.authService.Logout(c.Request.Context(), token); err != nil {
		h.logger.Error("logout failed", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "logout failed", err)
		return
	}

	h.clearSessionCookie(c)
	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Session ==========

// ExtendSession pushes the session window forward (requires auth)
func (h *AuthHandler) ExtendSession(c *gin.Context) {
	token := middleware.MustGetSessionToken(c)

	remaining, err := h.authService.ExtendSession(c.Request.Context(), token)
	if err != nil {
		response.Error(c, http.StatusUnauthorized, "session expired", err)
		return
	}

	response.Success(c, http.StatusOK, "session extended", gin.H{
		"remaining_ms": remaining.Milliseconds(),
	})
}

// ========== Profile ==========

// Me returns the caller's account (requires auth)
func (h *AuthHandler) Me(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	user, err := h.authService.GetProfile(c.Request.Context(), userID)
	if err != nil {
		response.NotFound(c, "user not found")
		return
	}

	response.Success(c, http.StatusOK, "profile", user)
}

// UpdateDetails applies profile edits (requires auth)
func (h *AuthHandler) UpdateDetails(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req auth.UpdateDetailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.authService.UpdateDetails(c.Request.Context(), userID, &req)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrInvalidInput) {
			response.ValidationError(c, "invalid details", err)
			return
		}
		response.Error(c, http.StatusInternalServerError, "update failed", err)
		return
	}

	response.Success(c, http.StatusOK, "details updated", user)
}

// ChangePassword rotates the caller's password (requires auth)
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	userID := middleware.MustGetUserID(c)

	var req auth.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	if err := h.authService.ChangePassword(c.Request.Context(), userID, &req); err != nil {
		if xerrors.Is(err, xerrors.ErrUnauthorized) {
			response.Error(c, http.StatusUnauthorized, "current password is wrong", nil)
			return
		}
		response.Error(c, http.StatusInternalServerError, "password change failed", err)
		return
	}

	response.Success(c, http.StatusOK, "password changed", nil)
}

// ========== Back-office account management ==========

// CreateStaff provisions a staff account (admin only)
func (h *AuthHandler) CreateStaff(c *gin.Context) {
	var req auth.CreateStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, "invalid request", err)
		return
	}

	user, err := h.authService.CreateStaff(c.Request.Context(), &req)
	if err != nil {
		switch {
		case xerrors.Is(err, xerrors.ErrInvalidInput):
			response.ValidationError(c, "invalid staff role", err)
		case xerrors.Is(err, xerrors.ErrDuplicateEntry):
			response.Error(c, http.StatusConflict, "email already registered", err)
		default:
			response.Error(c, http.StatusInternalServerError, "failed to create account", err)
		}
		return
	}

	response.Success(c, http.StatusCreated, "staff account created", user)
}

// ListUsers enumerates accounts (admin only)
func (h *AuthHandler) ListUsers(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	users, total, err := h.authService.ListUsers(
		c.Request.Context(),
		c.Query("role"),
		c.Query("search"),
		limit, offset,
	)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to list users", err)
		return
	}

	response.Success(c, http.StatusOK, "users", gin.H{
		"users": users,
		"total": total,
	})
}

// DeactivateUser blocks an account (admin only)
func (h *AuthHandler) DeactivateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid user id", err)
		return
	}

	if err := h.authService.DeactivateUser(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to deactivate user", err)
		return
	}

	response.Success(c, http.StatusOK, "user deactivated", nil)
}

// ReactivateUser restores an account (admin only)
func (h *AuthHandler) ReactivateUser(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.ValidationError(c, "invalid user id", err)
		return
	}

	if err := h.authService.ReactivateUser(c.Request.Context(), id); err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "failed to reactivate user", err)
		return
	}

	response.Success(c, http.StatusOK, "user reactivated", nil)
}

// setSessionCookie mirrors the bearer token into the browser session cookie
// so page navigation and the API share one session.
func (h *AuthHandler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.SessionCookie, token, 0, "/", "", false, true)
}

func (h *AuthHandler) clearSessionCookie(c *gin.Context) {
	c.SetCookie(middleware.SessionCookie, "", -1, "/", "", false, true)
}

func currentSessionToken(c *gin.Context) string {
	if cookie, err := c.Cookie(middleware.SessionCookie); err == nil && cookie != "" {
		return cookie
	}
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}
