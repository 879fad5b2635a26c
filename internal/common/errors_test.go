package common

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestHTTPStatusFromError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil error", nil, http.StatusOK},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("room missing: %w", ErrNotFound), http.StatusNotFound},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("not your room: %w", ErrForbidden), http.StatusForbidden},
		{"bad request", ErrBadRequest, http.StatusBadRequest},
		{"validation", fmt.Errorf("name required: %w", ErrValidation), http.StatusBadRequest},
		{"conflict", fmt.Errorf("already joined: %w", ErrConflict), http.StatusConflict},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"job lock failed", ErrJobLockFailed, http.StatusConflict},
		{"unique violation", &pgconn.PgError{Code: "23505"}, http.StatusConflict},
		{"unknown error", fmt.Errorf("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := HTTPStatusFromError(tt.err); got != tt.want {
				t.Errorf("HTTPStatusFromError(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}
