package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/jordanhale/storefront-backend/pkg/logger"
)

// CartCookieName carries the anonymous shopper's cart identity.
const CartCookieName = "sf_cart"

const guestOwnerPrefix = "sess:"

// GuestOwnerKey converts a raw session cookie value into a cart owner key.
func GuestOwnerKey(sessionID string) string {
	return guestOwnerPrefix + sessionID
}

// CartSession resolves the cart owner for the request: the user ID when the
// request is authenticated, otherwise a session cookie minted on first touch.
// Run after the auth middleware so a signed-in shopper gets their user cart.
func CartSession(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			owner := UserIDFromContext(ctx)
			if owner == "" {
				sessionID := ""
				if cookie, err := r.Cookie(CartCookieName); err == nil {
					sessionID = cookie.Value
				}
				if sessionID == "" {
					sessionID = uuid.NewString()
					http.SetCookie(w, &http.Cookie{
						Name:     CartCookieName,
						Value:    sessionID,
						Path:     "/",
						HttpOnly: true,
						SameSite: http.SameSiteLaxMode,
					})
				}
				owner = GuestOwnerKey(sessionID)
			}

			ctx = WithCartOwner(ctx, owner)
			if logg != nil {
				ctx = logg.WithCartOwner(ctx, owner)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
