package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/cryptonite-hq/cryptonite-backend/api/middleware"
	pkgerrors "github.com/cryptonite-hq/cryptonite-backend/pkg/errors"
	"github.com/cryptonite-hq/cryptonite-backend/pkg/pagination"
)

// currentUserID extracts the authenticated user from the request context.
func currentUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func isAdmin(r *http.Request) bool {
	return middleware.RoleFromContext(r.Context()) == "admin"
}

// pathID parses the named chi route parameter as a UUID.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	raw := chi.URLParam(r, name)
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

// pageParams reads the limit and cursor query parameters.
func pageParams(r *http.Request) (pagination.Params, error) {
	params := pagination.Params{
		Cursor: strings.TrimSpace(r.URL.Query().Get("cursor")),
	}
	limit, err := parsePositiveInt(r, "limit")
	if err != nil {
		return pagination.Params{}, err
	}
	params.Limit = limit
	return params, nil
}

func parsePositiveInt(r *http.Request, key string) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, key+" must be a positive integer")
	}
	return value, nil
}

// pagedResponse wraps a list page with the cursor for the next one.
type pagedResponse struct {
	Items      any     `json:"items"`
	NextCursor *string `json:"next_cursor,omitempty"`
}

func newPagedResponse(items any, next *pagination.Cursor) pagedResponse {
	resp := pagedResponse{Items: items}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		resp.NextCursor = &encoded
	}
	return resp
}
