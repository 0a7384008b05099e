package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/FleetDesk/FleetDesk/internal/common/auth"
	"github.com/FleetDesk/FleetDesk/internal/common/config"
	"github.com/gin-gonic/gin"
)

func newTestRouter(authCfg config.AuthConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(JWTAuth(authCfg, nil))

	r.GET("/api/me", func(c *gin.Context) {
		p, ok := PrincipalFromContext(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no principal"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role})
	})

	admin := r.Group("/api/admin", RequireRole("admin"))
	admin.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestJWTAuthAndRoleGuard(t *testing.T) {
	authCfg := config.AuthConfig{
		Enabled:     true,
		JWTSecret:   "test-secret",
		Issuer:      "fleetdesk",
		Audience:    "fleetdesk",
		PublicPaths: []string{"/healthz"},
	}
	router := newTestRouter(authCfg)

	token, _, err := auth.GenerateAccessToken(authCfg, "u-1", "employee", "d-1", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}

	// public path needs no token
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("public path: got %d", w.Code)
	}

	// missing token is rejected
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/me", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d, want 401", w.Code)
	}

	// valid token passes and the principal reaches the handler
	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("valid token: got %d, body %s", w.Code, w.Body.String())
	}

	// employee role cannot reach admin routes
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("employee on admin route: got %d, want 403", w.Code)
	}

	// admin role passes
	adminToken, _, err := auth.GenerateAccessToken(authCfg, "u-2", "admin", "", time.Hour)
	if err != nil {
		t.Fatalf("GenerateAccessToken: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("admin on admin route: got %d", w.Code)
	}
}

func TestTokenBucketExhausts(t *testing.T) {
	tb := NewTokenBucket(2, 1)
	ctx := context.Background()

	if !tb.Allow(ctx) || !tb.Allow(ctx) {
		t.Fatalf("expected first two requests allowed")
	}
	if tb.Allow(ctx) {
		t.Fatalf("expected third request denied")
	}
}

func TestCircuitBreakerTripsAndRecovers(t *testing.T) {
	cb := NewCircuitBreaker("test", 2, 10*time.Millisecond)
	ctx := context.Background()

	fail := func() error { return http.ErrHandlerTimeout }
	ok := func() error { return nil }

	_ = cb.Call(ctx, fail)
	_ = cb.Call(ctx, fail)
	if cb.GetState() != StateOpen {
		t.Fatalf("expected open after max failures, got %v", cb.GetState())
	}
	if err := cb.Call(ctx, ok); err != ErrCircuitOpen {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}

	time.Sleep(15 * time.Millisecond)
	if err := cb.Call(ctx, ok); err != nil {
		t.Fatalf("expected half-open probe to pass: %v", err)
	}
	if cb.GetState() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %v", cb.GetState())
	}
}
