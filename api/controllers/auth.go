package controllers

import (
	"net/http"

	"github.com/jordanhale/storefront-backend/api/middleware"
	"github.com/jordanhale/storefront-backend/api/responses"
	"github.com/jordanhale/storefront-backend/api/validators"
	authsvc "github.com/jordanhale/storefront-backend/internal/auth"
	cartsvc "github.com/jordanhale/storefront-backend/internal/cart"
	pkgerrors "github.com/jordanhale/storefront-backend/pkg/errors"
	"github.com/jordanhale/storefront-backend/pkg/logger"
)

// Register creates a shopper account.
func Register(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload registerRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), authsvc.RegisterInput{
			Email:    payload.Email,
			Name:     payload.Name,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}

// Login exchanges credentials for an access token. A guest cart carried on
// the session cookie is folded into the account's cart on success; a merge
// failure is logged but never blocks the login.
func Login(svc authsvc.Service, carts cartsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), authsvc.LoginInput{
			Email:    payload.Email,
			Password: payload.Password,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if carts != nil {
			if cookie, cookieErr := r.Cookie(middleware.CartCookieName); cookieErr == nil && cookie.Value != "" {
				guestKey := middleware.GuestOwnerKey(cookie.Value)
				userKey := result.User.ID.String()
				if mergeErr := carts.MergeOnLogin(r.Context(), guestKey, userKey); mergeErr != nil && logg != nil {
					logg.Error(r.Context(), "cart.merge_on_login.failed", mergeErr)
				}
			}
		}

		responses.WriteSuccess(w, result)
	}
}

// Logout revokes the caller's server-side session.
func Logout(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		accessID := middleware.AccessIDFromContext(r.Context())
		if accessID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "session context missing"))
			return
		}

		if err := svc.Logout(r.Context(), accessID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
