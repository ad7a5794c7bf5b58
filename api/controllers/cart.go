package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/cart"
	"github.com/angelmondragon/storefront-backend/pkg/config"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
)

// CartGet returns the session cart. A first visit gets a cookie and an empty cart.
func CartGet(svc cart.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, created := ensureCartID(w, r, session)
		if created {
			responses.WriteOK(w, cart.New())
			return
		}

		c, err := svc.Get(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, c)
	}
}

// CartAdd adds a product line or increments the existing one.
func CartAdd(svc cart.Service, session config.SessionConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID, _ := ensureCartID(w, r, session)
		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithCartID(ctx, cartID)
		}

		input, err := validators.DecodeCartItem(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		c, err := svc.AddItem(ctx, cartID, input)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteOK(w, c)
	}
}

// CartRemove drops every line for the product. Without a cart cookie there
// is nothing to remove.
func CartRemove(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cartID := cartIDFromRequest(r)
		if cartID == "" {
			responses.WriteOK(w, cart.New())
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "Invalid productId"))
			return
		}

		c, err := svc.RemoveItem(r.Context(), cartID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, c)
	}
}
