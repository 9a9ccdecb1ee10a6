package middleware

import (
	"github.com/gin-gonic/gin"

	"projecthub/api/utils"
)

// OptionalIdentity exposes the verified email of a logged-in caller to the
// tracking handlers without ever rejecting the request. Tracking must work
// for anonymous visitors; an absent, expired, or garbage token simply means
// the page view is recorded without attribution.
func OptionalIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := c.Cookie("jwt_token")
		if err != nil {
			tokenString = c.GetHeader("Authorization")
			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}
		}

		if tokenString != "" {
			if claims, err := utils.ValidateJWT(tokenString); err == nil {
				c.Set("user_id", claims.UserID)
				c.Set("user_email", claims.Email)
			}
		}

		c.Next()
	}
}
