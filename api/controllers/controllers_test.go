package controllers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/internal/auth"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/storage/gcs"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestHealthReadyReportsDownDependency(t *testing.T) {
	cfg := &config.Config{App: config.AppConfig{Env: "test"}}
	handler := HealthReady(cfg, nil, map[string]Pinger{
		"redis":    pingerFunc(func(context.Context) error { return nil }),
		"database": pingerFunc(func(context.Context) error { return errors.New("connection refused") }),
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "test", rec.Header().Get("X-Storefront-Env"))
	assert.JSONEq(t, `{"status":"unavailable","checks":{"redis":"ok","database":"down"}}`, rec.Body.String())
}

type stubMedia struct {
	objects map[string]string
}

func (s stubMedia) Download(_ context.Context, key string) (*gcs.Object, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "Not found")
	}
	return &gcs.Object{
		Body:        io.NopCloser(strings.NewReader(data)),
		ContentType: "image/jpeg",
		ETag:        `"v1"`,
		Size:        int64(len(data)),
	}, nil
}

func mediaRouter() http.Handler {
	r := chi.NewRouter()
	h := MediaGet(stubMedia{objects: map[string]string{"products/a/b.jpg": "jpeg-bytes"}}, nil)
	r.Get("/media/*", h)
	r.Head("/media/*", h)
	return r
}

func TestMediaGetServesNestedKeys(t *testing.T) {
	rec := httptest.NewRecorder()
	mediaRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/products/a/b.jpg", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/jpeg", rec.Header().Get("Content-Type"))
	assert.Equal(t, "10", rec.Header().Get("Content-Length"))
	assert.Equal(t, "jpeg-bytes", rec.Body.String())
}

func TestMediaGetHonoursIfNoneMatchAndHead(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/media/products/a/b.jpg", nil)
	req.Header.Set("If-None-Match", `"v1"`)
	rec := httptest.NewRecorder()
	mediaRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotModified, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	mediaRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodHead, "/media/products/a/b.jpg", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestMediaGetMissingObject(t *testing.T) {
	rec := httptest.NewRecorder()
	mediaRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/media/nope.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not found","code":"NOT_FOUND"}`, rec.Body.String())
}

type stubCarts struct {
	gets int
}

func (s *stubCarts) Get(context.Context, string) (*cart.Cart, error) {
	s.gets++
	return cart.New(), nil
}

func (s *stubCarts) AddItem(context.Context, string, cart.AddItemInput) (*cart.Cart, error) {
	return cart.New(), nil
}

func (s *stubCarts) RemoveItem(context.Context, string, string) (*cart.Cart, error) {
	return cart.New(), nil
}

func TestCartGetIssuesCookieOnFirstVisit(t *testing.T) {
	carts := &stubCarts{}
	session := config.SessionConfig{CartTTL: 7 * 24 * time.Hour, SecureOnly: true}
	handler := CartGet(carts, session, nil)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cart", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"items":[]}`, rec.Body.String())
	assert.Zero(t, carts.gets, "a brand new cart is not looked up")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]
	assert.Equal(t, CartCookie, ck.Name)
	assert.NotEmpty(t, ck.Value)
	assert.Equal(t, "/", ck.Path)
	assert.Equal(t, 604800, ck.MaxAge)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Equal(t, http.SameSiteLaxMode, ck.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/cart", nil)
	req.AddCookie(&http.Cookie{Name: CartCookie, Value: ck.Value})
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, 1, carts.gets)
	assert.Empty(t, rec.Result().Cookies(), "an existing cookie is reused")
}

type stubAuth struct {
	authErr error
}

func (s stubAuth) SetupAdmin(context.Context, auth.Credentials) error { return nil }

func (s stubAuth) Login(context.Context, auth.Credentials) (*auth.LoginResult, error) {
	return &auth.LoginResult{Token: "tok", ExpiresAt: time.Now().Add(time.Hour)}, nil
}

func (s stubAuth) Logout(context.Context, string) error { return nil }

func (s stubAuth) Authenticate(context.Context, string) (*auth.Identity, error) {
	if s.authErr != nil {
		return nil, s.authErr
	}
	return &auth.Identity{Username: "owner", SessionID: "sid"}, nil
}

func TestAuthMe(t *testing.T) {
	cases := []struct {
		name     string
		cookie   bool
		authErr  error
		wantCode int
		wantBody string
	}{
		{name: "no cookie", wantCode: http.StatusOK, wantBody: `{"authenticated":false}`},
		{name: "valid", cookie: true, wantCode: http.StatusOK, wantBody: `{"authenticated":true}`},
		{name: "expired", cookie: true, authErr: pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"), wantCode: http.StatusOK, wantBody: `{"authenticated":false}`},
		{name: "store down", cookie: true, authErr: pkgerrors.New(pkgerrors.CodeDependency, "session store unavailable"), wantCode: http.StatusServiceUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
			if tc.cookie {
				req.AddCookie(&http.Cookie{Name: "admin_session", Value: "tok"})
			}
			rec := httptest.NewRecorder()
			AuthMe(stubAuth{authErr: tc.authErr}, nil).ServeHTTP(rec, req)

			assert.Equal(t, tc.wantCode, rec.Code)
			if tc.wantBody != "" {
				assert.JSONEq(t, tc.wantBody, rec.Body.String())
			}
		})
	}
}

func TestAdminCookieIsAlwaysSecure(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"owner","password":"correct-horse"}`))
	AuthLogin(stubAuth{}, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "admin_session", cookies[0].Name)
	assert.Equal(t, "tok", cookies[0].Value)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, http.SameSiteStrictMode, cookies[0].SameSite)

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: "admin_session", Value: "tok"})
	AuthLogout(stubAuth{}, nil).ServeHTTP(rec, req)

	cookies = rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].Secure)
	assert.Equal(t, -1, cookies[0].MaxAge)
}

func TestSubscriptionPlans(t *testing.T) {
	rec := httptest.NewRecorder()
	SubscriptionPlans(config.PlansConfig{Five: "P-5"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/subscriptions/plans", nil))
	assert.JSONEq(t, `{"five":"P-5","ten":"","twenty":""}`, rec.Body.String())
}
