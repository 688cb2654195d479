package middleware

import (
	"net/http"
	"strings"

	"blop-post/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ContextUserID    = "user_id"
	ContextUserName  = "user_name"
	ContextUserEmail = "user_email"
	ContextUserImage = "user_image"
)

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"message": "Authorization header required"})
			c.Abort()
			return
		}

		if !authenticate(c, jwtService, authHeader) {
			return
		}

		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a token is present and
// lets anonymous requests through. A token that is present but invalid is
// still rejected.
func OptionalAuthMiddleware(jwtService *jwt.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || jwtService == nil {
			c.Next()
			return
		}

		if !authenticate(c, jwtService, authHeader) {
			return
		}

		c.Next()
	}
}

func authenticate(c *gin.Context, jwtService *jwt.Service, authHeader string) bool {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid authorization header format"})
		c.Abort()
		return false
	}

	claims, err := jwtService.ValidateToken(strings.TrimSpace(parts[1]))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
		c.Abort()
		return false
	}

	c.Set(ContextUserID, claims.UserID)
	c.Set(ContextUserName, claims.Name)
	c.Set(ContextUserEmail, claims.Email)
	c.Set(ContextUserImage, claims.Image)
	return true
}
