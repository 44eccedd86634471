package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/olek/paywire/internal/domain"
	"github.com/olek/paywire/internal/infrastructure/auth"
)

func TestAuthMiddlewareAcceptsValidToken(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	token, err := jwtManager.Generate(&domain.Account{ID: 42, Email: "alice@example.com"})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var seen *Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = GetPrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	AuthMiddleware(jwtManager)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if seen == nil || seen.AccountID != 42 {
		t.Fatalf("expected principal 42, got %+v", seen)
	}
	if seen.Email != "alice@example.com" {
		t.Fatalf("expected email in principal, got %q", seen.Email)
	}
}

func TestAuthMiddlewareRejectsBadRequests(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)

	expired := auth.NewJWTManager("test-secret", -time.Hour)
	expiredToken, err := expired.Generate(&domain.Account{ID: 1})
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc123"},
		{"garbage token", "Bearer not.a.token"},
		{"expired token", "Bearer " + expiredToken},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler should not be called")
	})
	wrapped := AuthMiddleware(jwtManager)(next)

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			wrapped.ServeHTTP(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rec.Code)
			}
		})
	}
}
