package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/api/responses"
	"github.com/adoptly/adoptly-backend/internal/wishlist"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

// GetWishlist returns the caller's wishlist with joined pet details.
func GetWishlist(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.GetWishlist(ctx, userID, pageParams(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetWishlistIDs returns only the liked pet ids, for cheap client-side checks.
func GetWishlistIDs(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ids, err := svc.GetWishlistIDs(ctx, userID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, ids)
	}
}

// AddWishlistItem likes a pet. Re-liking an already liked pet is a no-op.
func AddWishlistItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		petID, err := uuid.Parse(chi.URLParam(r, "petID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pet id"))
			return
		}

		if err := svc.AddItem(ctx, userID, petID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{"pet_id": petID})
	}
}

// RemoveWishlistItem unlikes a pet.
func RemoveWishlistItem(svc wishlist.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "wishlist service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		petID, err := uuid.Parse(chi.URLParam(r, "petID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pet id"))
			return
		}

		if err := svc.RemoveItem(ctx, userID, petID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"pet_id": petID})
	}
}
