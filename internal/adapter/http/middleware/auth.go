package middleware

import (
	"net/http"
	"strings"

	"github.com/Sam2op/ProjectEase/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// Context keys populated by the auth middlewares.
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
	ContextEmail    = "email"
	ContextRole     = "role"
)

type principalClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

// parseToken verifies the bearer token signature and expiry. Token issuance
// belongs to the auth provider; we only verify and extract the principal.
func parseToken(tokenString string) (*principalClaims, error) {
	claims := &principalClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(config.AppConfig.JWTSecret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

func setPrincipal(c *gin.Context, claims *principalClaims) {
	c.Set(ContextUserID, claims.Subject)
	c.Set(ContextUsername, claims.Username)
	c.Set(ContextEmail, claims.Email)
	c.Set(ContextRole, claims.Role)
}

// RequireAuth rejects calls without a valid bearer token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
			return
		}

		claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		setPrincipal(c, claims)
		c.Next()
	}
}

// OptionalAuth populates the principal when a valid token is present but
// lets anonymous (guest) callers through.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			if claims, err := parseToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
				setPrincipal(c, claims)
			}
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextRole) != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		c.Next()
	}
}
