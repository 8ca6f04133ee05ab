package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"route_dispatch/internal/models"
	"route_dispatch/internal/tokenstore"
)

func csrfEngine(store tokenstore.Store) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	authed := r.Group("/", RequireAuth())
	authed.GET("/token", func(c *gin.Context) {
		tok, err := IssueCSRFToken(store, c)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"csrf_token": tok})
	})
	mutating := r.Group("/", RequireAuth(), RequireCSRF(store))
	mutating.POST("/mutate", func(c *gin.Context) { c.Status(http.StatusOK) })
	mutating.GET("/read", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCSRFRoundTrip(t *testing.T) {
	store := tokenstore.NewMemory()
	r := csrfEngine(store)
	bearer, _ := GenerateToken(5, "boss", models.RoleAdmin, time.Hour)

	// issue a token
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("issue: got %d", rr.Code)
	}
	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// mutation with the token passes
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-CSRF-Token", body.CSRFToken)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("mutate with token: got %d, want 200", rr.Code)
	}

	// mutation without the header is rejected
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("mutate without token: got %d, want 403", rr.Code)
	}

	// wrong token is rejected
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	req.Header.Set("X-CSRF-Token", "forged")
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("mutate with forged token: got %d, want 403", rr.Code)
	}

	// safe methods bypass the check
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/read", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("safe read: got %d, want 200", rr.Code)
	}
}

func TestCSRFTokenIsPerUser(t *testing.T) {
	store := tokenstore.NewMemory()
	r := csrfEngine(store)

	alice, _ := GenerateToken(1, "alice", models.RoleAdmin, time.Hour)
	bob, _ := GenerateToken(2, "bob", models.RoleAdmin, time.Hour)

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/token", nil)
	req.Header.Set("Authorization", "Bearer "+alice)
	r.ServeHTTP(rr, req)
	var body struct {
		CSRFToken string `json:"csrf_token"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	// alice's token does not work for bob
	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/mutate", nil)
	req.Header.Set("Authorization", "Bearer "+bob)
	req.Header.Set("X-CSRF-Token", body.CSRFToken)
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Errorf("cross-user token: got %d, want 403", rr.Code)
	}
}
