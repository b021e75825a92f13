package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	err := NotFound("product", "prod-001")

	assert.Equal(t, "NOT_FOUND", err.Code)
	assert.Equal(t, http.StatusNotFound, err.Status)
	assert.Contains(t, err.Message, "product")
	assert.Contains(t, err.Message, "prod-001")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestOfferConflict(t *testing.T) {
	err := OfferConflict("an active offer already covers this product scope and window")

	assert.Equal(t, "OFFER_CONFLICT", err.Code)
	assert.Equal(t, http.StatusConflict, err.Status)
	assert.ErrorIs(t, err, ErrOfferConflict)
}

func TestInsufficientStock(t *testing.T) {
	err := InsufficientStock("Croissant Box", 5, 2)

	assert.Equal(t, "INSUFFICIENT_STOCK", err.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, err.Status)
	assert.Contains(t, err.Message, "Croissant Box")
	assert.Contains(t, err.Message, "requested 5")
	assert.Contains(t, err.Message, "available 2")
	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"not found", NotFound("offer", "x"), http.StatusNotFound},
		{"invalid input", InvalidInput("bad"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("no token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("nope"), http.StatusForbidden},
		{"offer conflict", OfferConflict("overlap"), http.StatusConflict},
		{"insufficient stock", InsufficientStock("cake", 2, 1), http.StatusUnprocessableEntity},
		{"unavailable", Unavailable(errors.New("conn refused")), http.StatusServiceUnavailable},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
		{"unknown", errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("create offer: %w", OfferConflict("overlap"))
	assert.Equal(t, http.StatusConflict, HTTPStatus(err))
}

func TestHTTPStatus_Sentinel(t *testing.T) {
	err := fmt.Errorf("load product: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))
}

func TestWrap(t *testing.T) {
	base := ErrInvalidInput
	wrapped := Wrap(base, "parse payload")

	assert.ErrorIs(t, wrapped, ErrInvalidInput)
	assert.Contains(t, wrapped.Error(), "parse payload")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("row scan failed")
	err := Internal(inner)

	assert.ErrorIs(t, err, inner)
}
