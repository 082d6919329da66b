package controllers

import (
	"net/http"
	"time"

	"github.com/oakmarket/storefront-backend/api/responses"
	"github.com/oakmarket/storefront-backend/api/validators"
	checkoutsvc "github.com/oakmarket/storefront-backend/internal/checkout"
	pkgerrors "github.com/oakmarket/storefront-backend/pkg/errors"
	"github.com/oakmarket/storefront-backend/pkg/logger"
)

type checkoutRequest struct {
	DeliveryDate *string `json:"delivery_date,omitempty"`
}

// Checkout turns the caller's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := actorUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload checkoutRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		var deliveryDate *time.Time
		if payload.DeliveryDate != nil && *payload.DeliveryDate != "" {
			parsed, err := time.Parse(time.RFC3339, *payload.DeliveryDate)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid delivery date"))
				return
			}
			deliveryDate = &parsed
		}

		result, err := svc.Checkout(r.Context(), userID, deliveryDate)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}
