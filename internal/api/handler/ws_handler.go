package handler

import (
	"log"
	"net/http"

	"reelcode/internal/api/middleware"
	"reelcode/internal/app/service"
	"reelcode/internal/common"
	"reelcode/internal/realtime"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The browser client connects from a different origin than the API.
		return true
	},
}

type WSHandler struct {
	hub         *realtime.Hub
	roomService *service.RoomService
}

func NewWSHandler(hub *realtime.Hub, roomService *service.RoomService) *WSHandler {
	return &WSHandler{hub: hub, roomService: roomService}
}

func (h *WSHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/rooms/{code}", h.roomEvents)
}

func (h *WSHandler) roomEvents(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	room, err := h.roomService.RequireMembership(r.Context(), userID, chi.URLParam(r, "code"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		log.Printf("WARN: websocket upgrade failed for user %s: %v", userID, err)
		return
	}

	realtime.NewClient(h.hub, room.ID, userID, conn).Start()
}
