package middlewares

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

func parseToken(c *gin.Context) (jwt.MapClaims, error) {
	authHeader := c.Request.Header.Get("Authorization")
	tokenString := authHeader
	if strings.HasPrefix(authHeader, "Bearer ") {
		tokenString = authHeader[7:]
	}
	if tokenString == "" {
		// Fall back to the auth cookie set at login.
		if cookie, err := c.Cookie("auth_token"); err == nil {
			tokenString = cookie
		}
	}
	if tokenString == "" {
		return nil, fmt.Errorf("no authorization token provided")
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid authorization token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) bool {
	userID, exists := claims["user_id"]
	if !exists {
		return false
	}
	c.Set("user_id", userID)
	if role, ok := claims["role"]; ok {
		c.Set("role", role)
	}
	return true
}

// AuthMiddleware requires a valid token and stores user_id and role on the
// request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := parseToken(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			c.Abort()
			return
		}
		if !setIdentity(c, claims) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token claims"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// OptionalAuth stores the identity when a valid token is present but lets
// anonymous requests through. Report submission accepts both.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, err := parseToken(c); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// AdminOnly requires an authenticated request whose token carries the admin
// role. Must run after AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, _ := c.Get("role")
		if role != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
