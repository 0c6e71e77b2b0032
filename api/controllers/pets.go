package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/api/responses"
	"github.com/adoptly/adoptly-backend/internal/pets"
	"github.com/adoptly/adoptly-backend/pkg/enums"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/logger"
)

// ListPets serves the public catalog with optional species and availability
// filters plus cursor pagination.
func ListPets(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pets service unavailable"))
			return
		}

		var filters pets.ListFilters
		if raw := r.URL.Query().Get("species"); raw != "" {
			species, err := enums.ParsePetSpecies(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid species filter"))
				return
			}
			filters.Species = &species
		}
		if raw := r.URL.Query().Get("available"); raw != "" {
			available, err := strconv.ParseBool(raw)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid available filter"))
				return
			}
			filters.Available = &available
		}

		page, err := svc.ListPets(ctx, filters, pageParams(r))
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// GetPet serves a single catalog entry by id.
func GetPet(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pets service unavailable"))
			return
		}

		id, err := uuid.Parse(chi.URLParam(r, "petID"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pet id"))
			return
		}

		pet, err := svc.GetPet(ctx, id)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pet)
	}
}

// AdoptionGallery serves the most recently adopted pets.
func AdoptionGallery(svc pets.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if svc == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pets service unavailable"))
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if parsed, err := strconv.Atoi(raw); err == nil {
				limit = parsed
			}
		}

		items, err := svc.Gallery(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, items)
	}
}
