package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"route_dispatch/internal/tokenstore"
)

// CSRFTokenTTL bounds how long an issued CSRF token stays valid.
const CSRFTokenTTL = 4 * time.Hour

// IssueCSRFToken mints a random token for the authenticated user and stores
// it with a TTL. Expiry is handled by the store, not by soft delete.
func IssueCSRFToken(store tokenstore.Store, c *gin.Context) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	key := csrfKey(UserIDFromContext(c))
	if err := store.Set(c.Request.Context(), key, token, CSRFTokenTTL); err != nil {
		return "", err
	}
	return token, nil
}

// RequireCSRF rejects mutating requests whose X-CSRF-Token header does not
// match the token stored for the authenticated user. Safe methods pass
// through.
func RequireCSRF(store tokenstore.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}

		sent := c.GetHeader("X-CSRF-Token")
		if sent == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Missing CSRF token"})
			return
		}
		key := csrfKey(UserIDFromContext(c))
		stored, err := store.Get(c.Request.Context(), key)
		if err != nil || stored != sent {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Invalid CSRF token"})
			return
		}
		c.Next()
	}
}

func csrfKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}
