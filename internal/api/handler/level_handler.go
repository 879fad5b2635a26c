package handler

import (
	"net/http"

	"reelcode/internal/api/middleware"
	"reelcode/internal/app/service"
	"reelcode/internal/common"

	"github.com/go-chi/chi/v5"
)

type LevelHandler struct {
	levelService *service.LevelService
}

func NewLevelHandler(levelService *service.LevelService) *LevelHandler {
	return &LevelHandler{levelService: levelService}
}

func (h *LevelHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{levelID}", h.getLevel)
}

func (h *LevelHandler) getLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	level, err := h.levelService.GetLevel(r.Context(), userID, chi.URLParam(r, "levelID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, level)
}
