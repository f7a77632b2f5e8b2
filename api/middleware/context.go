package middleware

import "context"

type contextKey string

const ctxCartID contextKey = "cart_id"

// CartIDFromContext returns the cart id resolved by the CartID middleware.
func CartIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartID).(string); ok {
		return v
	}
	return ""
}

// WithCartID injects the cart identifier into the context for downstream handlers.
func WithCartID(ctx context.Context, cartID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartID, cartID)
}
