package handler

import (
	"encoding/json"
	"net/http"

	"reelcode/internal/app/service"
	"reelcode/internal/common"

	"github.com/go-chi/chi/v5"
)

type WebhookHandler struct {
	webhookService *service.WebhookService
}

func NewWebhookHandler(ws *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: ws}
}

func (h *WebhookHandler) RegisterRoutes(r chi.Router) {
	r.Post("/execution", h.executionResult)
	r.Post("/execution/failure", h.executionFailure)
}

func (h *WebhookHandler) executionResult(w http.ResponseWriter, r *http.Request) {
	var payload service.ExecutionResultPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload: "+err.Error())
		return
	}
	if payload.JobID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	if err := h.webhookService.HandleExecutionResult(r.Context(), payload); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "result processed"})
}

// executionFailure handles an executor that rejected the job outright and has
// no per-test-case results to report.
func (h *WebhookHandler) executionFailure(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		JobID  string `json:"job_id"`
		Reason string `json:"reason"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid webhook payload: "+err.Error())
		return
	}
	if payload.JobID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "job_id is required")
		return
	}

	if err := h.webhookService.MarkJobFailed(r.Context(), payload.JobID, payload.Reason); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "failure recorded"})
}
