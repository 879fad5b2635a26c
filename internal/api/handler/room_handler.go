package handler

import (
	"encoding/json"
	"net/http"

	"reelcode/internal/api/middleware"
	"reelcode/internal/app/service"
	"reelcode/internal/common"

	"github.com/go-chi/chi/v5"
)

type RoomHandler struct {
	roomService  *service.RoomService
	levelService *service.LevelService
}

func NewRoomHandler(roomService *service.RoomService, levelService *service.LevelService) *RoomHandler {
	return &RoomHandler{roomService: roomService, levelService: levelService}
}

func (h *RoomHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.createRoom)
	r.Get("/", h.listRooms)
	r.Get("/{code}", h.getRoom)
	r.Post("/{code}/join", h.joinRoom)
	r.Get("/{code}/participants", h.getParticipants)
	r.Get("/{code}/levels", h.getLevels)
	r.Post("/{code}/activate", h.activateRoom)
	r.Post("/{code}/deactivate", h.deactivateRoom)
	r.Post("/{code}/advance", h.advanceLevel)
}

func (h *RoomHandler) createRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req service.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	room, err := h.roomService.CreateRoom(r.Context(), userID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, room)
}

func (h *RoomHandler) listRooms(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)
	rooms, total, err := h.roomService.ListRooms(r.Context(), limit, offset)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listResponse{Data: rooms, Total: total, Limit: limit, Offset: offset})
}

func (h *RoomHandler) getRoom(w http.ResponseWriter, r *http.Request) {
	room, err := h.roomService.GetRoomByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) joinRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	participant, err := h.roomService.JoinRoom(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, participant)
}

func (h *RoomHandler) getParticipants(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	participants, err := h.roomService.GetParticipants(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, participants)
}

func (h *RoomHandler) getLevels(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	levels, err := h.levelService.GetRoomLevels(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, levels)
}

func (h *RoomHandler) activateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	room, err := h.roomService.Activate(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) deactivateRoom(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	room, err := h.roomService.Deactivate(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, room)
}

func (h *RoomHandler) advanceLevel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	if err := h.roomService.Advance(r.Context(), userID, chi.URLParam(r, "code")); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "level advanced"})
}
