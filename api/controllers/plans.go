package controllers

import (
	"net/http"

	"github.com/angelmondragon/storefront-backend/api/responses"
	"github.com/angelmondragon/storefront-backend/pkg/config"
)

func SubscriptionPlans(plans config.PlansConfig) http.HandlerFunc {
	body := map[string]string{
		"five":   plans.Five,
		"ten":    plans.Ten,
		"twenty": plans.Twenty,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteOK(w, body)
	}
}
