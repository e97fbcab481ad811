package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fleetglue/server/internal/auth"
	"github.com/fleetglue/server/internal/models"
)

const (
	// SessionCookieName is the cookie carrying the user session token.
	SessionCookieName = "auth_token"

	contextUserIDKey   = "userId"
	contextDeviceIDKey = "deviceId"
)

func abortUnauthorized(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
}

// AuthMiddleware authenticates browser sessions. A missing cookie and a
// failed verification produce the same response.
func AuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.VerifyUserToken(token)
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(contextUserIDKey, claims.UserID)
		c.Next()
	}
}

// DeviceAuthMiddleware authenticates devices from the Authorization
// header. Absence, a malformed header and a failed verification produce
// the same response.
func DeviceAuthMiddleware(tokens *auth.TokenService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortUnauthorized(c)
			return
		}

		claims, err := tokens.VerifyDeviceToken(parts[1])
		if err != nil {
			abortUnauthorized(c)
			return
		}

		c.Set(contextDeviceIDKey, claims.DeviceID)
		c.Next()
	}
}
