package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/inkwell-labs/inkwell/internal/application"
	"github.com/inkwell-labs/inkwell/pkg/response"
	"github.com/inkwell-labs/inkwell/pkg/tokens"
	"github.com/inkwell-labs/inkwell/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.AuthService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.AuthService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required,email"`
}

type loginRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resendRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// dispatchMeta tells the caller whether the link email actually reached
// the queue, without conflating dispatch trouble with auth errors.
func dispatchMeta(dispatched bool) map[string]any {
	return map[string]any{"email_dispatched": dispatched}
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	dispatched, err := h.Svc.Register(c.Request.Context(), req.Name, req.Email)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification email sent", dispatchMeta(dispatched))
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	dispatched, err := h.Svc.RequestLogin(c.Request.Context(), req.Email)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "login link sent", dispatchMeta(dispatched))
}

// VerifyEmail GET /api/auth/verify-email?token=
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, "missing token", nil)
		return
	}

	already, err := h.Svc.VerifyEmail(c.Request.Context(), token)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	if already {
		response.Success[any](c, http.StatusOK, nil, "email already verified, please log in", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "email verified successfully, please log in", nil)
}

// VerifyLogin GET /api/auth/login/verify?token=
func (h *AuthHandler) VerifyLogin(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error[any](c, http.StatusBadRequest, "missing token", nil)
		return
	}

	sess, err := h.Svc.VerifyLogin(c.Request.Context(), token)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"session_token": sess.Token,
		"email":         sess.Email,
	}, "login successful", map[string]any{"expires_at": sess.ExpiresAt})
}

// ResendVerification POST /api/auth/verify/resend
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req resendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	already, dispatched, err := h.Svc.ResendVerification(c.Request.Context(), req.Email)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	if already {
		response.Success[any](c, http.StatusOK, nil, "email already verified, please log in", nil)
		return
	}
	response.Success[any](c, http.StatusOK, nil, "verification email sent", dispatchMeta(dispatched))
}

// writeAuthError maps service and codec errors onto the protocol
// surface. Token errors keep their specific reason so the caller knows
// whether to request a fresh link.
func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, application.ErrAlreadyRegistered):
		response.Error[any](c, http.StatusBadRequest, "already registered, please log in", nil)
	case errors.Is(err, application.ErrUserNotFound):
		response.Error[any](c, http.StatusNotFound, "user not found", nil)
	case errors.Is(err, application.ErrEmailNotVerified):
		response.Error[any](c, http.StatusBadRequest, "email not verified", nil)
	case errors.Is(err, tokens.ErrTokenExpired):
		response.Error[any](c, http.StatusBadRequest, "token expired", nil)
	case errors.Is(err, tokens.ErrPurposeMismatch):
		response.Error[any](c, http.StatusBadRequest, "token purpose mismatch", nil)
	case errors.Is(err, tokens.ErrTokenInvalid):
		response.Error[any](c, http.StatusBadRequest, "token invalid", nil)
	default:
		h.Logger.WithError(err).Error("auth operation failed")
		response.Error[any](c, http.StatusInternalServerError, "internal error", nil)
	}
}
