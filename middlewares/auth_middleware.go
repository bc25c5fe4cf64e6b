package middlewares

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/karaokehub/songbot/utils"
)

// AuthMiddleware gates the admin REST surface behind a bearer token issued
// by /login. Claims are stored on the context for the handlers.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Authorization header missing"))
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := utils.ParseToken(tokenString)
		if err != nil || claims == nil {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid or expired token"))
			c.Abort()
			return
		}

		if claims.AdminID == 0 {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("Invalid admin ID in token"))
			c.Abort()
			return
		}

		c.Set("adminID", claims.AdminID)
		c.Set("chatID", claims.ChatID)

		c.Next()
	}
}
