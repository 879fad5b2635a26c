package handler

import (
	"net/http"

	"reelcode/internal/api/middleware"
	"reelcode/internal/app/service"
	"reelcode/internal/common"

	"github.com/go-chi/chi/v5"
)

// AdminHandler exposes operational endpoints for room moderators running the
// backend. Everything here requires the admin role.
type AdminHandler struct {
	jobService *service.EvaluationJobService
}

func NewAdminHandler(jobService *service.EvaluationJobService) *AdminHandler {
	return &AdminHandler{jobService: jobService}
}

func (h *AdminHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Use(middleware.AdminOnly)
	r.Get("/jobs/{jobID}", h.getJob)
}

func (h *AdminHandler) getJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.GetJob(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, job)
}
