package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hitoshi/mailauth/internal/model"
	"github.com/hitoshi/mailauth/internal/token"
)

type mockHealthChecker struct {
	pingFn func(ctx context.Context) error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	if m.pingFn != nil {
		return m.pingFn(ctx)
	}
	return nil
}

var _ HealthChecker = (*mockHealthChecker)(nil)

func newTestRouter(t *testing.T, svc AuthServiceInterface, issuer *token.Issuer) http.Handler {
	t.Helper()
	if svc == nil {
		svc = &mockAuthService{}
	}
	return NewRouter(&RouterDeps{
		HealthChecker:     &mockHealthChecker{},
		TokenVerifier:     issuer,
		CORSAllowedOrigin: "http://localhost:3000",
		AuthService:       svc,
		AuthConfig: AuthHandlerConfig{
			TokenMaxAge: 3600,
		},
	})
}

func TestRouter_Health_ReturnsOK(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %q, want ok", body["status"])
	}
}

func TestRouter_Health_DBDown_Returns503(t *testing.T) {
	router := NewRouter(&RouterDeps{
		HealthChecker: &mockHealthChecker{
			pingFn: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
		},
		TokenVerifier:     token.NewIssuer("secret", time.Hour),
		CORSAllowedOrigin: "http://localhost:3000",
		AuthService:       &mockAuthService{},
	})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestRouter_SignupRoute_Registered(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	body := `{"name":"Taro","email":"taro@example.com","password":"secret"}`
	req := httptest.NewRequest(http.MethodPost, "/api/users/signup", strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_AllAuthRoutes_Registered(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	routes := []string{
		"/api/users/signup",
		"/api/users/verify-otp",
		"/api/users/resend-otp",
		"/api/users/login",
		"/api/users/logout",
	}

	for _, route := range routes {
		req := httptest.NewRequest(http.MethodPost, route, strings.NewReader(`{}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
			t.Errorf("POST %s returned %d, route should be registered", route, rec.Code)
		}
	}
}

func TestRouter_Me_WithValidToken_ReturnsUser(t *testing.T) {
	issuer := token.NewIssuer("secret", time.Hour)
	svc := &mockAuthService{
		getCurrentUserFn: func(ctx context.Context, userID string) (*model.User, error) {
			return &model.User{ID: userID, Name: "Taro", Email: "taro@example.com"}, nil
		},
	}
	router := newTestRouter(t, svc, issuer)

	tokenStr, err := issuer.Issue("user-1", "taro@example.com")
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+tokenStr)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200, body: %s", rec.Code, rec.Body.String())
	}

	var resp userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Email != "taro@example.com" {
		t.Errorf("email = %q", resp.Email)
	}
}

func TestRouter_Me_WithoutToken_Returns401(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRouter_Me_WithInvalidToken_Returns401(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer garbage-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestRouter_CORSPreflight_Returns204(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodOptions, "/api/users/signup", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRouter_SecurityHeaders_Present(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_Metrics_ServedWhenConfigured(t *testing.T) {
	router := NewRouter(&RouterDeps{
		HealthChecker:     &mockHealthChecker{},
		TokenVerifier:     token.NewIssuer("secret", time.Hour),
		CORSAllowedOrigin: "http://localhost:3000",
		AuthService:       &mockAuthService{},
		Metrics: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		}),
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_Metrics_NotServedByDefault(t *testing.T) {
	router := newTestRouter(t, nil, token.NewIssuer("secret", time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}
