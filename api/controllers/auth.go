package controllers

import (
	"net/http"
	"time"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/auth"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// AuthSetupAdmin creates the first admin when bootstrap is enabled.
func AuthSetupAdmin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, err := validators.DecodeAdminCredentials(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SetupAdmin(r.Context(), creds); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if logg != nil {
			logg.Info(logg.WithAdmin(r.Context(), creds.Username), "admin created")
		}
		responses.WriteOK(w, responses.Success{Success: true, Message: "Admin created"})
	}
}

// AuthLogin verifies credentials and sets the admin session cookie.
func AuthLogin(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds, err := validators.DecodeAdminCredentials(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), creds)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		setAdminCookie(w, result.Token, result.ExpiresAt, time.Now())
		responses.WriteOK(w, responses.Success{Success: true})
	}
}

// AuthLogout revokes the session, if any, and clears the cookie.
func AuthLogout(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), adminToken(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		clearAdminCookie(w)
		responses.WriteOK(w, responses.Success{Success: true})
	}
}

// AuthMe reports whether the caller holds a live admin session.
func AuthMe(svc auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := adminToken(r)
		if token == "" {
			responses.WriteOK(w, map[string]bool{"authenticated": false})
			return
		}
		_, err := svc.Authenticate(r.Context(), token)
		switch {
		case err == nil:
			responses.WriteOK(w, map[string]bool{"authenticated": true})
		case pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized):
			responses.WriteOK(w, map[string]bool{"authenticated": false})
		default:
			responses.WriteError(r.Context(), logg, w, err)
		}
	}
}
