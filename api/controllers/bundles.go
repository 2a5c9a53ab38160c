package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/cryptonite-hq/cryptonite-backend/api/responses"
	"github.com/cryptonite-hq/cryptonite-backend/api/validators"
	"github.com/cryptonite-hq/cryptonite-backend/internal/catalog"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/logger"
)

// ListBundles returns the active bundle catalog for the storefront.
func ListBundles(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		bundles, err := svc.ListBundles(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundles)
	}
}

// GetBundle returns one bundle by id.
func GetBundle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := pathID(r, "bundleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bundle, err := svc.GetBundle(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundle)
	}
}

type bundleRequest struct {
	Name            string   `json:"name" validate:"required"`
	Description     string   `json:"description"`
	Price           string   `json:"price" validate:"required"`
	HostingFeePerKW string   `json:"hosting_fee_per_kw" validate:"required"`
	TotalHashrate   string   `json:"total_hashrate"`
	TotalPower      string   `json:"total_power"`
	ProductIDs      []string `json:"product_ids,omitempty" validate:"omitempty,dive,uuid"`
	IsActive        *bool    `json:"is_active,omitempty"`
}

func (r bundleRequest) toInput() (catalog.BundleInput, error) {
	productIDs := make([]uuid.UUID, 0, len(r.ProductIDs))
	for _, raw := range r.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return catalog.BundleInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id")
		}
		productIDs = append(productIDs, id)
	}
	return catalog.BundleInput{
		Name:            r.Name,
		Description:     r.Description,
		Price:           r.Price,
		HostingFeePerKW: r.HostingFeePerKW,
		TotalHashrate:   r.TotalHashrate,
		TotalPower:      r.TotalPower,
		ProductIDs:      productIDs,
		IsActive:        r.IsActive,
	}, nil
}

// AdminCreateBundle registers a new bundle.
func AdminCreateBundle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		var payload bundleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bundle, err := svc.CreateBundle(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, bundle)
	}
}

// AdminUpdateBundle replaces a bundle's fields and membership.
func AdminUpdateBundle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := pathID(r, "bundleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var payload bundleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		bundle, err := svc.UpdateBundle(r.Context(), id, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, bundle)
	}
}

// AdminDeleteBundle retires a bundle from the catalog.
func AdminDeleteBundle(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}
		id, err := pathID(r, "bundleID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.DeleteBundle(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, nil)
	}
}
