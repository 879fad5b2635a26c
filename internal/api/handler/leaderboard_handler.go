package handler

import (
	"net/http"

	"reelcode/internal/api/middleware"
	"reelcode/internal/app/service"
	"reelcode/internal/common"

	"github.com/go-chi/chi/v5"
)

type LeaderboardHandler struct {
	leaderboardService *service.LeaderboardService
}

func NewLeaderboardHandler(ls *service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardService: ls}
}

func (h *LeaderboardHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.global)
}

// RegisterRoomRoutes mounts the per-room standings under the rooms subtree.
func (h *LeaderboardHandler) RegisterRoomRoutes(r chi.Router) {
	r.Get("/{code}/leaderboard", h.room)
}

func (h *LeaderboardHandler) global(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	entries, err := h.leaderboardService.Global(r.Context(), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

func (h *LeaderboardHandler) room(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	entries, err := h.leaderboardService.Room(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}
