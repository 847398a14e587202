package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/wellspring-health/wellspring/internal/domain"
)

func TestWriteDomainError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrInvalidActivityType, http.StatusBadRequest},
		{domain.ErrMalformedMetadata, http.StatusBadRequest},
		{domain.ErrAccountExists, http.StatusConflict},
		{domain.ErrConcurrentUpdate, http.StatusServiceUnavailable},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		rec := httptest.NewRecorder()
		// Wrapped the way services surface sentinels.
		writeDomainError(rec, fmt.Errorf("award: %w", tc.err))
		if rec.Code != tc.want {
			t.Errorf("%v: status = %d, want %d", tc.err, rec.Code, tc.want)
		}
	}
}
