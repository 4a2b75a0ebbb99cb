package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"quizbox-service/internal/domain"
)

func newTestService(t *testing.T, cfg Config) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	cfg.Username = "editor"
	cfg.PasswordHash = string(hash)
	cfg.Secret = "test-secret"
	svc, err := NewService(cfg)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestLoginIssuesParsableToken(t *testing.T) {
	svc := newTestService(t, Config{})

	token, err := svc.Login("editor", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "editor" {
		t.Fatalf("expected sub editor, got %q", claims.Sub)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t, Config{})
	if _, err := svc.Login("editor", "wrong"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login("someone", "s3cret"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestLoginRateLimited(t *testing.T) {
	svc := newTestService(t, Config{LoginRPS: 1})
	// burst is 2
	_, _ = svc.Login("editor", "wrong")
	_, _ = svc.Login("editor", "wrong")
	if _, err := svc.Login("editor", "s3cret"); !errors.Is(err, ErrRateLimited) {
		t.Fatalf("expected ErrRateLimited, got %v", err)
	}
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t, Config{TokenTTL: time.Minute})
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	token, err := svc.Issue("editor")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	svc.now = time.Now
	if _, err := svc.Parse(token); err == nil {
		t.Fatalf("expected expired token to fail")
	}
}

func TestMiddleware(t *testing.T) {
	svc := newTestService(t, Config{})
	var seen string
	handler := svc.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = Operator(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rec.Code)
	}

	token, _ := svc.Issue("editor")
	req = httptest.NewRequest(http.MethodGet, "/api/quizzes", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent || seen != "editor" {
		t.Fatalf("expected pass-through for editor, got %d %q", rec.Code, seen)
	}
}
