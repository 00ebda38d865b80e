package handler

import (
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the caller's id, set by the authenticating gateway.
const UserIDHeader = "X-User-ID"

const userIDKey = "userID"

// RequireUser rejects requests without a user id and attaches a
// user-scoped logger to the request context.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(UserIDHeader))
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody(http.StatusUnauthorized, "UNAUTHORIZED", "Missing "+UserIDHeader+" header", nil))
			return
		}
		c.Set(userIDKey, userID)

		logger := log.Default().With("user_id", userID, "path", c.FullPath())
		c.Request = c.Request.WithContext(log.WithContext(c.Request.Context(), logger))
		c.Next()
	}
}

func currentUser(c *gin.Context) string {
	return c.GetString(userIDKey)
}
