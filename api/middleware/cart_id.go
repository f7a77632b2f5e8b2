package middleware

import (
	"net/http"

	"github.com/freshbowl/storefront/pkg/logger"
)

// CartIDHeader carries the browser's cart identity. There are no accounts, so
// whoever holds the id owns the cart.
const CartIDHeader = "X-Cart-Id"

const maxCartIDLength = 128

// CartID resolves the cart for the request, minting a new id when the client
// has none, and echoes it back so the client can keep using it.
func CartID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cartID := headerID(r, CartIDHeader, maxCartIDLength)

			w.Header().Set(CartIDHeader, cartID)

			ctx := WithCartID(r.Context(), cartID)
			if logg != nil {
				ctx = logg.WithCartID(ctx, cartID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
