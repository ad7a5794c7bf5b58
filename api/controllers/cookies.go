package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/pkg/config"
)

// CartCookie holds the anonymous cart id.
const CartCookie = "cart_id"

func cartIDFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(CartCookie)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(cookie.Value)
}

// ensureCartID returns the caller's cart id, minting one and setting the
// cookie when absent. created reports whether a new id was issued.
func ensureCartID(w http.ResponseWriter, r *http.Request, session config.SessionConfig) (cartID string, created bool) {
	if id := cartIDFromRequest(r); id != "" {
		return id, false
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     CartCookie,
		Value:    id,
		Path:     "/",
		MaxAge:   int(session.CartTTL.Seconds()),
		HttpOnly: true,
		Secure:   session.SecureOnly,
		SameSite: http.SameSiteLaxMode,
	})
	return id, true
}

// setAdminCookie is Secure regardless of SessionConfig.SecureOnly, which only
// governs the cart cookie.
func setAdminCookie(w http.ResponseWriter, token string, expiresAt, now time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminSessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(expiresAt.Sub(now).Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func clearAdminCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AdminSessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

func adminToken(r *http.Request) string {
	cookie, err := r.Cookie(middleware.AdminSessionCookie)
	if err != nil {
		return ""
	}
	return cookie.Value
}
