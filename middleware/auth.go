package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"mariiahub/utils"
)

// CustomerIDKey is the gin context key carrying the authenticated customer id.
const CustomerIDKey = "customerID"

// JWTAuthCustomerMiddleware guards endpoints that belong to a signed-in
// customer. The token subject is the customer id.
func JWTAuthCustomerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		customerID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil || customerID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Insufficient authorization",
			})
			return
		}

		c.Set(CustomerIDKey, customerID)
		c.Next()
	}
}
