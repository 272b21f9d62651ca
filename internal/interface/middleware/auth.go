package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/inkwell-labs/inkwell/pkg/response"
	"github.com/inkwell-labs/inkwell/pkg/tokens"
)

// CtxSubjectKey is the Gin context key holding the authenticated email.
const CtxSubjectKey = "subjectEmail"

// Auth validates the bearer session token and injects its subject into
// the context. Sessions are stateless: a structurally valid, unexpired,
// correctly signed token is the whole proof, there is no server-side
// session lookup.
func Auth(sessions *tokens.SessionCodec) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortError[any](c, http.StatusUnauthorized, "missing session token", nil)
			return
		}
		subject, err := sessions.Validate(token)
		if err != nil {
			msg := "session token invalid"
			if errors.Is(err, tokens.ErrTokenExpired) {
				msg = "session token expired"
			}
			response.AbortError[any](c, http.StatusUnauthorized, msg, nil)
			return
		}
		c.Set(CtxSubjectKey, subject)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if h == "" {
		return ""
	}
	parts := strings.SplitN(h, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
