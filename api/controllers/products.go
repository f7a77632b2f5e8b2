package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/freshbowl/storefront/api/responses"
	"github.com/freshbowl/storefront/api/validators"
	"github.com/freshbowl/storefront/internal/catalog"
	"github.com/freshbowl/storefront/pkg/enums"
	pkgerrors "github.com/freshbowl/storefront/pkg/errors"
	"github.com/freshbowl/storefront/pkg/logger"
	"github.com/freshbowl/storefront/pkg/pagination"
)

// ProductList returns a page of catalog products, optionally filtered by
// category, customizable, subscription and a name search.
func ProductList(svc catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		var filter catalog.Filter
		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			filter.Category = category
		}

		var err error
		if filter.Customizable, err = validators.ParseQueryBool(r, "customizable"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.Subscription, err = validators.ParseQueryBool(r, "subscription"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter.Search = validators.SanitizeString(r.URL.Query().Get("search"), 80)

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.FetchProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, next, err := pagination.Page(products, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		}, func(p catalog.Product) string { return p.ID })
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}

		out := productListResponse{
			Products:   make([]productResponse, 0, len(page)),
			NextCursor: next,
		}
		for _, p := range page {
			out.Products = append(out.Products, newProductResponse(p))
		}
		responses.WriteSuccess(w, out)
	}
}

func ProductDetail(svc catalog.Catalog, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog unavailable"))
			return
		}

		productID := strings.TrimSpace(chi.URLParam(r, "productId"))
		if productID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
			return
		}

		product, err := svc.GetProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newProductResponse(product))
	}
}
