package httpapi

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/finsight-app/finsight/internal/common"
	"github.com/finsight-app/finsight/internal/logging"
	"github.com/finsight-app/finsight/internal/server/services"
)

const (
	ctxUsername  = "username"
	ctxSessionID = "session_id"
)

// sessionToken extracts the opaque session token from the Authorization
// header, tolerating an optional Bearer prefix.
func sessionToken(c *gin.Context) string {
	token := c.GetHeader("Authorization")
	if strings.HasPrefix(token, "Bearer ") {
		token = token[len("Bearer "):]
	}
	return token
}

// sessionMiddleware gates a route group on a valid session. The token is
// resolved against the session store on every request; there is nothing to
// verify offline since tokens are opaque. Only a rejected token is an auth
// failure; a store that cannot be read is a server fault.
func sessionMiddleware(auth *services.AuthService, logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := sessionToken(c)
		if token == "" {
			respondError(c, http.StatusUnauthorized, "missing session token")
			c.Abort()
			return
		}

		username, err := auth.ValidateSession(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, common.ErrorSessionInvalid) {
				respondError(c, http.StatusUnauthorized, "invalid or expired session")
			} else {
				logger.Error(c.Request.Context(), "session lookup failed", "error", err)
				respondError(c, http.StatusInternalServerError, common.ErrorInternal.Error())
			}
			c.Abort()
			return
		}

		c.Set(ctxUsername, username)
		c.Set(ctxSessionID, token)
		c.Next()
	}
}

func requestLogger(logger logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info(c.Request.Context(), "http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start).String(),
		)
	}
}
