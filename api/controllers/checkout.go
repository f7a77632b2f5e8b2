package controllers

import (
	"context"
	"net/http"

	"github.com/freshbowl/storefront/api/middleware"
	"github.com/freshbowl/storefront/api/responses"
	"github.com/freshbowl/storefront/api/validators"
	"github.com/freshbowl/storefront/internal/checkout"
	"github.com/freshbowl/storefront/internal/handoff"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/types"
)

type CheckoutService interface {
	Checkout(ctx context.Context, cartID string, customer handoff.Customer) (checkout.Result, error)
}

// checkoutRequest is decoded as typed and only validated after sanitizing,
// by the checkout service.
type checkoutRequest struct {
	Name      string         `json:"name"`
	FirstName string         `json:"first_name"`
	LastName  string         `json:"last_name"`
	Email     string         `json:"email"`
	Phone     string         `json:"phone"`
	Address   addressRequest `json:"address"`
	Notes     string         `json:"notes"`
}

type addressRequest struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2"`
	Landmark   string `json:"landmark"`
	City       string `json:"city"`
	State      string `json:"state"`
	PostalCode string `json:"postal_code"`
}

func (req checkoutRequest) toCustomer() handoff.Customer {
	return handoff.Customer{
		Name:      validators.SanitizeString(req.Name, 120),
		FirstName: validators.SanitizeString(req.FirstName, 60),
		LastName:  validators.SanitizeString(req.LastName, 60),
		Email:     validators.SanitizeString(req.Email, 254),
		Phone:     validators.SanitizeString(req.Phone, 20),
		Address: types.Address{
			Line1:      validators.SanitizeString(req.Address.Line1, 200),
			Line2:      validators.SanitizeString(req.Address.Line2, 200),
			Landmark:   validators.SanitizeString(req.Address.Landmark, 120),
			City:       validators.SanitizeString(req.Address.City, 80),
			State:      validators.SanitizeString(req.Address.State, 80),
			PostalCode: validators.SanitizeString(req.Address.PostalCode, 10),
		},
		Notes: validators.SanitizeString(req.Notes, 500),
	}
}

// Checkout encodes the cart into an order message and hands back the deep
// link the browser should open. The link is returned even when dispatch
// fails so the client can retry opening it.
func Checkout(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}
		cartID := middleware.CartIDFromContext(r.Context())
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart id missing"))
			return
		}

		var payload checkoutRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.Checkout(r.Context(), cartID, payload.toCustomer())
		if err != nil {
			if res.State == enums.CheckoutStateEncoded {
				err = withLink(err, res.Link)
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checkoutResponse{
			Result:       res,
			DisplayTotal: handoff.FormatAmount(enums.CurrencyINR, res.Total),
		})
	}
}

func withLink(err error, link string) error {
	typed := pkgerrors.As(err)
	if typed == nil || link == "" {
		return err
	}
	return pkgerrors.Wrap(typed.Code(), err, typed.Message()).WithDetails(map[string]string{"link": link})
}
