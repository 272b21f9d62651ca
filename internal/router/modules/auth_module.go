package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/container"
	handlers "github.com/inkwell-labs/inkwell/internal/interface/http"
	"github.com/inkwell-labs/inkwell/internal/interface/middleware"
)

type AuthModule struct {
	Handler *handlers.AuthHandler
}

func NewAuthModule(h *handlers.AuthHandler) *AuthModule {
	return &AuthModule{Handler: h}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	// All auth endpoints are public; link/register spam is contained by
	// per-IP rate limits.
	requestLimiter := middleware.RateLimit(container.GetRedis(), 5, time.Minute, middleware.KeyByIPAndPath(), nil)
	verifyLimiter := middleware.RateLimit(container.GetRedis(), 30, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/auth/register", requestLimiter, m.Handler.Register)
	rg.POST("/auth/login", requestLimiter, m.Handler.Login)
	rg.POST("/auth/verify/resend", requestLimiter, m.Handler.ResendVerification)

	// GET endpoints are the targets of the emailed links.
	rg.GET("/auth/verify-email", verifyLimiter, m.Handler.VerifyEmail)
	rg.GET("/auth/login/verify", verifyLimiter, m.Handler.VerifyLogin)
}
