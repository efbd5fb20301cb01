package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/api/middleware"
	"github.com/jordanhale/storefront-backend/api/responses"
	"github.com/jordanhale/storefront-backend/api/validators"
	checkoutsvc "github.com/jordanhale/storefront-backend/internal/checkout"
	"github.com/jordanhale/storefront-backend/pkg/enums"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
	"github.com/jordanhale/storefront-backend/pkg/logger"
	"github.com/jordanhale/storefront-backend/pkg/types"
)

// Checkout converts the shopper's cart into an order.
func Checkout(svc checkoutsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		owner := middleware.CartOwnerFromContext(r.Context())
		if owner == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart owner missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput(owner, middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Execute(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

type checkoutRequest struct {
	PaymentMethod   string         `json:"payment_method" validate:"required"`
	ShippingAddress types.Address  `json:"shipping_address" validate:"required"`
	BillingAddress  *types.Address `json:"billing_address,omitempty"`
}

func (r checkoutRequest) toInput(ownerKey, userID string) (checkoutsvc.Input, error) {
	method, err := enums.ParsePaymentMethod(strings.TrimSpace(r.PaymentMethod))
	if err != nil {
		return checkoutsvc.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	input := checkoutsvc.Input{
		OwnerKey:        ownerKey,
		PaymentMethod:   method,
		ShippingAddress: r.ShippingAddress,
		BillingAddress:  r.BillingAddress,
	}

	if userID != "" {
		uid, err := uuid.Parse(userID)
		if err != nil {
			return checkoutsvc.Input{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid user id")
		}
		input.UserID = &uid
	}

	return input, nil
}
