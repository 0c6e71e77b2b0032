package controllers

import (
	"net/http"

	"github.com/adoptly/adoptly-backend/api/responses"
	"github.com/adoptly/adoptly-backend/api/validators"
	"github.com/adoptly/adoptly-backend/internal/adoptions"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

// BeginAdoption opens a payment intent for a pet and returns the checkout
// parameters.
func BeginAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "adoptions service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req adoptions.BeginAdoptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.BeginAdoption(ctx, userID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, resp)
	}
}

// CompleteAdoption reconciles the payment completion notification posted by
// the checkout widget.
func CompleteAdoption(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "adoptions service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		var req adoptions.CompleteAdoptionRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		resp, err := svc.CompleteAdoption(ctx, userID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, resp)
	}
}

// ListOrders returns the caller's purchase history.
func ListOrders(svc adoptions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "adoptions service unavailable"))
			return
		}

		userID, err := callerID(r)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		page, err := svc.ListBuyerOrders(ctx, userID, pageParams(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
