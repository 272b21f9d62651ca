package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/internal/container"
	handlers "github.com/inkwell-labs/inkwell/internal/interface/http"
	"github.com/inkwell-labs/inkwell/internal/interface/middleware"
	"github.com/inkwell-labs/inkwell/pkg/tokens"
)

type ContentModule struct {
	Handler  *handlers.ContentHandler
	Sessions *tokens.SessionCodec
}

func NewContentModule(h *handlers.ContentHandler, sessions *tokens.SessionCodec) *ContentModule {
	return &ContentModule{Handler: h, Sessions: sessions}
}

func (m *ContentModule) Register(rg *gin.RouterGroup) {
	auth := rg.Group("/")
	auth.Use(middleware.Auth(m.Sessions))
	auth.Use(middleware.RateLimit(container.GetRedis(), 60, time.Minute, middleware.KeyBySubject(), nil))
	{
		auth.POST("/content/history", m.Handler.Save)
		auth.GET("/content/history", m.Handler.List)
		auth.GET("/content/search", m.Handler.Search)
	}
}
