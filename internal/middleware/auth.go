package middleware

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/config"
)

// AuthGuard validates the Bearer token and, when roles are given, requires the
// claim role to match one of them. On success the user id and role are stored
// in the gin context under "userId" and "role".
func AuthGuard(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or malformed authorization header"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.AppEnv.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			log.Println("[AUTH] [ERROR] Invalid token:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
			return
		}

		sub, _ := claims["sub"].(string)
		userID, err := primitive.ObjectIDFromHex(sub)
		if err != nil {
			log.Println("[AUTH] [ERROR] Invalid subject claim:", sub)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token subject"})
			return
		}
		role, _ := claims["role"].(string)

		if len(roles) > 0 {
			allowed := false
			for _, r := range roles {
				if role == r {
					allowed = true
					break
				}
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions"})
				return
			}
		}

		c.Set("userId", userID)
		c.Set("role", role)
		c.Next()
	}
}

// UserAuth requires any authenticated user.
func UserAuth() gin.HandlerFunc { return AuthGuard() }

// AdminAuth requires the admin role.
func AdminAuth() gin.HandlerFunc { return AuthGuard("admin") }

// OptionalAuth sets "userId" and "role" when a valid Bearer token is present
// but never rejects the request. Cart routes use this so guests and logged-in
// shoppers share the same handlers.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.Next()
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(config.AppEnv.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			c.Next()
			return
		}

		sub, _ := claims["sub"].(string)
		if userID, err := primitive.ObjectIDFromHex(sub); err == nil {
			c.Set("userId", userID)
			role, _ := claims["role"].(string)
			c.Set("role", role)
		}
		c.Next()
	}
}
