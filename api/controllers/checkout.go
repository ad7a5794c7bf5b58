package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/api/validators"
	"github.com/angelmondragon/storefront-backend/internal/checkout"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/logger"
	"github.com/angelmondragon/storefront-backend/pkg/paypal"
)

const msgClientIDMissing = "PAYPAL_CLIENT_ID not configured"

// CheckoutCreateOrder opens a provider order for the session cart and hands
// the provider's order object back verbatim.
func CheckoutCreateOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		order, err := svc.CreateOrder(r.Context(), cartIDFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if len(order.Raw) == 0 {
			responses.WriteOK(w, order)
			return
		}
		responses.WriteRaw(w, http.StatusOK, order.Raw)
	}
}

// CheckoutCaptureOrder captures an approved provider order and records it.
func CheckoutCaptureOrder(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.DecodeCaptureOrder(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CaptureOrder(r.Context(), cartIDFromRequest(r), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteOK(w, result)
	}
}

// PayPalConfig exposes the public client id for the selected environment.
func PayPalConfig(resolve paypal.Resolver, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		creds := resolve()
		if creds.ClientID == "" {
			if logg != nil {
				logg.Error(logg.WithField(r.Context(), "sandbox", creds.Sandbox()), "paypal client id missing", pkgerrors.New(pkgerrors.CodeInternal, msgClientIDMissing))
			}
			responses.WriteJSON(w, http.StatusInternalServerError, responses.ErrorEnvelope{
				Error: msgClientIDMissing,
				Code:  string(pkgerrors.CodeInternal),
			})
			return
		}
		responses.WriteOK(w, map[string]string{"clientId": creds.ClientID})
	}
}
