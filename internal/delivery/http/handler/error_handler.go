package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/christinepetrosyan/Timebook/internal/delivery/http/middleware"
	"github.com/christinepetrosyan/Timebook/internal/domain/apperror"
	"github.com/christinepetrosyan/Timebook/internal/domain/entity"
	"github.com/christinepetrosyan/Timebook/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// writeError maps the error taxonomy onto HTTP statuses. Internal errors never
// leak their message.
func writeError(w http.ResponseWriter, err error, fallback string) {
	kind := apperror.KindOf(err)
	body := response.ErrorBody{Code: string(kind), Retryable: apperror.Retryable(err)}

	switch kind {
	case apperror.KindInvalidRange, apperror.KindValidation:
		response.Error(w, http.StatusBadRequest, err.Error(), body)
	case apperror.KindNotFound:
		response.Error(w, http.StatusNotFound, err.Error(), body)
	case apperror.KindForbidden:
		response.Error(w, http.StatusForbidden, err.Error(), body)
	case apperror.KindLocked, apperror.KindInvalidTransition:
		response.Error(w, http.StatusConflict, err.Error(), body)
	case apperror.KindConflict:
		response.Conflict(w, err.Error(), body.Code, body.Retryable)
	case apperror.KindTimeout:
		response.Error(w, http.StatusServiceUnavailable, "Storage is busy, try again", body)
	default:
		response.Error(w, http.StatusInternalServerError, fallback, body)
	}
}

// actorFrom writes 401 and returns false when the request carries no identity.
func actorFrom(w http.ResponseWriter, r *http.Request) (entity.Actor, bool) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "User not authenticated")
	}
	return actor, ok
}

func pathUUID(w http.ResponseWriter, r *http.Request, name, label string) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)[name])
	if err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid "+label, nil)
		return uuid.Nil, false
	}
	return id, true
}

var errBadQuery = errors.New("bad query parameter")

func queryUUID(r *http.Request, key string) (*uuid.UUID, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, errBadQuery
	}
	return &id, nil
}

// queryTime accepts RFC 3339 instants.
func queryTime(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errBadQuery
	}
	return &t, nil
}

func queryBool(r *http.Request, key string) (*bool, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, errBadQuery
	}
	return &b, nil
}
