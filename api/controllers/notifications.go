package controllers

import (
	"net/http"

	"github.com/freshbowl/storefront/api/middleware"
	"github.com/freshbowl/storefront/api/responses"
	"github.com/freshbowl/storefront/internal/notifications"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
)

type NotificationsService interface {
	Visible(scope string) []notifications.Notification
	Dismiss(scope, id string) bool
}

// ListNotifications returns the notifications still visible for the cart,
// oldest first.
func ListNotifications(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		cartID := middleware.CartIDFromContext(r.Context())
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart id missing"))
			return
		}
		visible := svc.Visible(cartID)
		if visible == nil {
			visible = []notifications.Notification{}
		}
		responses.WriteSuccess(w, visible)
	}
}

func DismissNotification(svc NotificationsService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "notifications service unavailable"))
			return
		}
		cartID := middleware.CartIDFromContext(r.Context())
		id, err := urlParam(r, "notificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !svc.Dismiss(cartID, id) {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "notification not found"))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
