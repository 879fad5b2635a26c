package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"reelcode/internal/domain/model"
)

func TestAdminOnly(t *testing.T) {
	t.Parallel()

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	gate := AdminOnly(next)

	tests := []struct {
		name string
		role string
		want int
	}{
		{"admin passes", model.RoleAdmin, http.StatusNoContent},
		{"plain user rejected", model.RoleUser, http.StatusForbidden},
		{"missing role rejected", "", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest("GET", "/admin/jobs/abc", nil)
			if tt.role != "" {
				r = r.WithContext(context.WithValue(r.Context(), UserRoleCtxKey, tt.role))
			}
			w := httptest.NewRecorder()
			gate.ServeHTTP(w, r)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestRoleContextRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.WithValue(context.Background(), UserRoleCtxKey, model.RoleAdmin)
	role, ok := GetUserRoleFromContext(ctx)
	if !ok || role != model.RoleAdmin {
		t.Errorf("GetUserRoleFromContext = (%q, %v), want (%q, true)", role, ok, model.RoleAdmin)
	}

	if _, ok := GetUserRoleFromContext(context.Background()); ok {
		t.Error("GetUserRoleFromContext reported a role on an empty context")
	}
}
