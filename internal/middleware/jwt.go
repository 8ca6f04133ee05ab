package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"route_dispatch/internal/models"
)

var secret = []byte(getJWTSecret())

func getJWTSecret() string {
	if val := os.Getenv("JWT_SECRET"); val != "" {
		return val
	}
	return "supersecret" // fallback
}

// LoginTTL is the token lifetime issued at login, 8h unless overridden via
// LOGIN_TOKEN_HOURS.
func LoginTTL() time.Duration {
	if val := os.Getenv("LOGIN_TOKEN_HOURS"); val != "" {
		if h, err := strconv.Atoi(val); err == nil && h > 0 {
			return time.Duration(h) * time.Hour
		}
	}
	return 8 * time.Hour
}

// RefreshTTL returns the refreshed-token lifetime for a role. Drivers get
// 12h so a session survives a full route; everyone else gets 2h.
func RefreshTTL(role string) time.Duration {
	if role == models.RoleDriver {
		return 12 * time.Hour
	}
	return 2 * time.Hour
}

// GenerateToken signs a bearer token carrying the user's id, username and
// role, expiring after ttl.
func GenerateToken(userID uint, username, role string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"user_id":  userID,
		"username": username,
		"role":     role,
		"exp":      time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func ValidateToken(tokenStr string) (*jwt.Token, error) {
	return jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
}

// RequireAuth ensures a valid JWT is present
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing or invalid Authorization header"})
			return
		}

		tokenString := strings.TrimPrefix(authHeader, "Bearer ")
		token, err := ValidateToken(tokenString)
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token"})
			return
		}

		// Store claims in context for downstream handlers
		if claims, ok := token.Claims.(jwt.MapClaims); ok {
			c.Set("user_id", claims["user_id"])
			c.Set("username", claims["username"])
			c.Set("role", claims["role"])
		} else {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token claims"})
			return
		}

		c.Next()
	}
}

// RequireAnyRole ensures the JWT is valid and the user holds one of the
// allowed roles. A valid identity with the wrong role is 403, never 401.
func RequireAnyRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		// First ensure basic auth
		req := RequireAuth()
		req(c)
		if c.IsAborted() {
			return
		}

		// Check role
		roleIfc, exists := c.Get("role")
		if !exists {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Role not found in token"})
			return
		}
		role, ok := roleIfc.(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
			return
		}
		for _, a := range allowed {
			if role == a {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Insufficient permissions"})
	}
}

// UserIDFromContext extracts the authenticated user id set by RequireAuth.
// JWT numeric claims decode as float64.
func UserIDFromContext(c *gin.Context) uint {
	return uint(c.MustGet("user_id").(float64))
}

// RoleFromContext extracts the authenticated role set by RequireAuth.
func RoleFromContext(c *gin.Context) string {
	return c.MustGet("role").(string)
}
