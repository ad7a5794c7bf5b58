package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

type stubAuthenticator struct {
	identity *auth.Identity
	err      error
	gotToken string
}

func (s *stubAuthenticator) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	s.gotToken = token
	return s.identity, s.err
}

func protected(t *testing.T, authn authenticator, seen *string) http.Handler {
	t.Helper()
	return AdminAuth(authn, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*seen = AdminFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAdminAuthRejectsMissingCookie(t *testing.T) {
	var seen string
	stub := &stubAuthenticator{}
	rec := httptest.NewRecorder()
	protected(t, stub, &seen).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/orders", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if stub.gotToken != "" {
		t.Fatal("authenticator should not be consulted without a cookie")
	}
}

func TestAdminAuthRejectsInvalidSession(t *testing.T) {
	var seen string
	stub := &stubAuthenticator{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized")}
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "stale"})
	rec := httptest.NewRecorder()
	protected(t, stub, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", rec.Code)
	}
	if stub.gotToken != "stale" {
		t.Fatalf("expected cookie value to be checked, got %q", stub.gotToken)
	}
}

func TestAdminAuthStoreFailureIsUnavailable(t *testing.T) {
	var seen string
	stub := &stubAuthenticator{err: pkgerrors.Wrap(pkgerrors.CodeDependency, errors.New("redis down"), "lookup session")}
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "token"})
	rec := httptest.NewRecorder()
	protected(t, stub, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", rec.Code)
	}
}

func TestAdminAuthAllowsValidSession(t *testing.T) {
	var seen string
	stub := &stubAuthenticator{identity: &auth.Identity{Username: "owner", SessionID: "s1"}}
	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.AddCookie(&http.Cookie{Name: AdminSessionCookie, Value: "token"})
	rec := httptest.NewRecorder()
	protected(t, stub, &seen).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if seen != "owner" {
		t.Fatalf("expected admin in context, got %q", seen)
	}
}
