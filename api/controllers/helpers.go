package controllers

import (
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/adoptly/adoptly-backend/api/middleware"
	pkgerrors "github.com/adoptly/adoptly-backend/pkg/errors"
	"github.com/adoptly/adoptly-backend/pkg/pagination"
)

// callerID pulls the authenticated user id seeded by the auth middleware.
func callerID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "authentication required")
	}
	return id, nil
}

// pageParams reads limit and cursor query parameters.
func pageParams(r *http.Request) pagination.Params {
	params := pagination.Params{Cursor: r.URL.Query().Get("cursor")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil {
			params.Limit = limit
		}
	}
	return params
}
