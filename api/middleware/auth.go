package middleware

import (
	"context"
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// AdminSessionCookie carries the signed admin session token.
const AdminSessionCookie = "admin_session"

type authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.Identity, error)
}

// AdminAuth admits requests whose admin_session cookie maps to a live session.
func AdminAuth(authn authenticator, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(AdminSessionCookie)
			if err != nil || cookie.Value == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "Unauthorized"))
				return
			}

			identity, err := authn.Authenticate(r.Context(), cookie.Value)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			ctx := WithAdmin(r.Context(), identity.Username)
			if logg != nil {
				ctx = logg.WithAdmin(ctx, identity.Username)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
