package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"route_dispatch/internal/models"
)

func tokenExpiry(t *testing.T, tokenStr string) time.Time {
	t.Helper()
	token, err := ValidateToken(tokenStr)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	claims := token.Claims.(jwt.MapClaims)
	exp, err := claims.GetExpirationTime()
	if err != nil {
		t.Fatalf("exp claim: %v", err)
	}
	return exp.Time
}

func expiresWithin(t *testing.T, tokenStr string, want time.Duration) {
	t.Helper()
	got := time.Until(tokenExpiry(t, tokenStr))
	if got > want || got < want-time.Minute {
		t.Errorf("token TTL = %v, want ~%v", got, want)
	}
}

func TestTokenLifetimes(t *testing.T) {
	login, err := GenerateToken(1, "jsmith", models.RoleDriver, LoginTTL())
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	expiresWithin(t, login, 8*time.Hour)

	driverRefresh, _ := GenerateToken(1, "jsmith", models.RoleDriver, RefreshTTL(models.RoleDriver))
	expiresWithin(t, driverRefresh, 12*time.Hour)

	adminRefresh, _ := GenerateToken(2, "boss", models.RoleAdmin, RefreshTTL(models.RoleAdmin))
	expiresWithin(t, adminRefresh, 2*time.Hour)

	superRefresh, _ := GenerateToken(3, "root", models.RoleSuperAdmin, RefreshTTL(models.RoleSuperAdmin))
	expiresWithin(t, superRefresh, 2*time.Hour)
}

func authedRequest(t *testing.T, engine *gin.Engine, token string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	engine.ServeHTTP(rr, req)
	return rr
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": UserIDFromContext(c), "role": RoleFromContext(c)})
	})

	if rr := authedRequest(t, r, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rr.Code)
	}
	if rr := authedRequest(t, r, "garbage"); rr.Code != http.StatusUnauthorized {
		t.Errorf("bad token: got %d, want 401", rr.Code)
	}

	expired, _ := GenerateToken(1, "jsmith", models.RoleDriver, -time.Minute)
	if rr := authedRequest(t, r, expired); rr.Code != http.StatusUnauthorized {
		t.Errorf("expired token: got %d, want 401", rr.Code)
	}

	good, _ := GenerateToken(1, "jsmith", models.RoleDriver, time.Hour)
	if rr := authedRequest(t, r, good); rr.Code != http.StatusOK {
		t.Errorf("valid token: got %d, want 200", rr.Code)
	}
}

func TestRequireAnyRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/probe", RequireAnyRole(models.RoleAdmin, models.RoleSuperAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	driverTok, _ := GenerateToken(1, "jsmith", models.RoleDriver, time.Hour)
	if rr := authedRequest(t, r, driverTok); rr.Code != http.StatusForbidden {
		t.Errorf("wrong role: got %d, want 403", rr.Code)
	}

	adminTok, _ := GenerateToken(2, "boss", models.RoleAdmin, time.Hour)
	if rr := authedRequest(t, r, adminTok); rr.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rr.Code)
	}

	superTok, _ := GenerateToken(3, "root", models.RoleSuperAdmin, time.Hour)
	if rr := authedRequest(t, r, superTok); rr.Code != http.StatusOK {
		t.Errorf("super admin: got %d, want 200", rr.Code)
	}

	if rr := authedRequest(t, r, ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("no token: got %d, want 401", rr.Code)
	}
}
