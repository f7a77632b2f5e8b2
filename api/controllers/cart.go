package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freshbowl/storefront/api/middleware"
	"github.com/freshbowl/storefront/api/responses"
	"github.com/freshbowl/storefront/api/validators"
	"github.com/freshbowl/storefront/internal/cart"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
)

// CartService is the slice of cart.Service the HTTP layer drives.
type CartService interface {
	Snapshot(ctx context.Context, cartID string) (cart.Snapshot, error)
	AddProduct(ctx context.Context, cartID, productID string, qty int) (cart.Snapshot, error)
	AddCustomized(ctx context.Context, cartID, productID string, fruitIDs []string) (cart.Snapshot, error)
	SetQuantity(ctx context.Context, cartID, itemID string, qty int) (cart.Snapshot, error)
	Remove(ctx context.Context, cartID, itemID string) (cart.Snapshot, error)
	Clear(ctx context.Context, cartID string) (cart.Snapshot, error)
	QuantityForProduct(ctx context.Context, cartID, productID string) (int, error)
	DecrementProduct(ctx context.Context, cartID, productID string) (cart.Snapshot, bool, error)
}

type addItemRequest struct {
	ProductID string `json:"product_id" validate:"required,max=128"`
	Quantity  int    `json:"quantity" validate:"omitempty,min=1"`
}

type addCustomizedRequest struct {
	ProductID string   `json:"product_id" validate:"required,max=128"`
	FruitIDs  []string `json:"fruit_ids" validate:"required,min=1,dive,required,max=128"`
}

// Quantity is a pointer so an explicit 0 (remove) is distinguishable from a
// missing field.
type updateItemRequest struct {
	Quantity *int `json:"quantity" validate:"required"`
}

type decrementResponse struct {
	Cart    cartResponse `json:"cart"`
	Changed bool         `json:"changed"`
}

type quantityResponse struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// cartHandler resolves the cart id and service shared by every cart route.
func cartHandler(svc CartService, logg *logger.Logger, fn func(w http.ResponseWriter, r *http.Request, cartID string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "cart service unavailable"))
			return
		}
		cartID := middleware.CartIDFromContext(r.Context())
		if cartID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "cart id missing"))
			return
		}
		fn(w, r, cartID)
	}
}

func urlParam(r *http.Request, key string) (string, error) {
	v := strings.TrimSpace(chi.URLParam(r, key))
	if v == "" {
		return "", pkgerrors.Newf(pkgerrors.CodeValidation, "%s is required", key)
	}
	return v, nil
}

func CartFetch(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		snap, err := svc.Snapshot(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartID, snap))
	})
}

// CartAddItem adds a direct product, merging into an existing line.
func CartAddItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.AddProduct(r.Context(), cartID, payload.ProductID, payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cartID, snap))
	})
}

// CartAddCustomized builds a composed bowl from the chosen add-ons and adds it
// as a new line.
func CartAddCustomized(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		var payload addCustomizedRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.AddCustomized(r.Context(), cartID, payload.ProductID, payload.FruitIDs)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, newCartResponse(cartID, snap))
	})
}

func CartUpdateItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		itemID, err := urlParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.SetQuantity(r.Context(), cartID, itemID, *payload.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartID, snap))
	})
}

func CartRemoveItem(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		itemID, err := urlParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, err := svc.Remove(r.Context(), cartID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartID, snap))
	})
}

func CartClear(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		snap, err := svc.Clear(r.Context(), cartID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newCartResponse(cartID, snap))
	})
}

// CartProductQuantity reports how many units of a product the cart holds
// across its direct and composed lines.
func CartProductQuantity(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		productID, err := urlParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		qty, err := svc.QuantityForProduct(r.Context(), cartID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, quantityResponse{ProductID: productID, Quantity: qty})
	})
}

func CartDecrementProduct(svc CartService, logg *logger.Logger) http.HandlerFunc {
	return cartHandler(svc, logg, func(w http.ResponseWriter, r *http.Request, cartID string) {
		productID, err := urlParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		snap, changed, err := svc.DecrementProduct(r.Context(), cartID, productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, decrementResponse{Cart: newCartResponse(cartID, snap), Changed: changed})
	})
}
