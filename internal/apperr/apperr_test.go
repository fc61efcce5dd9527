package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"validation", fmt.Errorf("%w: price must be positive", ErrValidation), http.StatusBadRequest},
		{"not found", fmt.Errorf("%w: lot", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusForbidden},
		{"conflict", fmt.Errorf("%w: spot occupied", ErrConflict), http.StatusConflict},
		{"already closed", ErrAlreadyClosed, http.StatusConflict},
		{"explicit http error", NewHTTPError(http.StatusTeapot, "teapot"), http.StatusTeapot},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	assert.Equal(t, "conflict", Kind(fmt.Errorf("wrapped: %w", ErrConflict)))
	assert.Equal(t, "already_closed", Kind(ErrAlreadyClosed))
	assert.Equal(t, "internal", Kind(errors.New("boom")))
}
