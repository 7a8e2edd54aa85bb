// Package handlers provides HTTP request handlers for the API endpoints.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/lodge-admin/backend/internal/api/middleware"
	"github.com/lodge-admin/backend/internal/booking"
	"github.com/lodge-admin/backend/internal/storage"
)

var validate = validator.New()

// decodeBody reads a JSON request body into dst and validates its tags.
// It writes the 400 response itself and reports whether decoding succeeded.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrBadRequest, "Invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			middleware.WriteErrorWithDetails(w, http.StatusBadRequest, middleware.ErrValidation,
				"Request validation failed", fieldErrors(verrs))
			return false
		}
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
		return false
	}
	return true
}

func fieldErrors(verrs validator.ValidationErrors) map[string]string {
	out := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		msg := fe.Tag()
		if fe.Param() != "" {
			msg = fmt.Sprintf("%s=%s", fe.Tag(), fe.Param())
		}
		out[lowerFirst(fe.Field())] = msg
	}
	return out
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}

// writeServiceError maps domain and storage errors to responses. Anything
// unrecognized is logged and reported as a 500 with the fallback message.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, middleware.ErrNotFound, err.Error())
	case errors.Is(err, booking.ErrInvalidRange),
		errors.Is(err, booking.ErrInvalidStatus),
		errors.Is(err, booking.ErrTooManyGuests),
		errors.Is(err, booking.ErrStayLength):
		middleware.WriteError(w, http.StatusBadRequest, middleware.ErrValidation, err.Error())
	case errors.Is(err, booking.ErrCabinUnavailable),
		errors.Is(err, booking.ErrInvalidTransition),
		errors.Is(err, storage.ErrDiscountExceedsPrice),
		errors.Is(err, storage.ErrCabinInUse),
		errors.Is(err, storage.ErrDuplicate):
		middleware.WriteError(w, http.StatusConflict, middleware.ErrConflict, err.Error())
	default:
		logger.Error(fallback, zap.Error(err))
		middleware.WriteError(w, http.StatusInternalServerError, middleware.ErrInternalError, fallback)
	}
}
