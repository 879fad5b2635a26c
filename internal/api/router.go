package api

import (
	"net/http"
	"time"

	"reelcode/internal/api/handler"
	"reelcode/internal/app/service"
	"reelcode/internal/common/security"
	"reelcode/internal/realtime"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	roomService *service.RoomService,
	levelService *service.LevelService,
	submissionService *service.SubmissionService,
	leaderboardService *service.LeaderboardService,
	webhookService *service.WebhookService,
	jobService *service.EvaluationJobService,
	hub *realtime.Hub,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the JWT from "Authorization: Bearer T" and puts claims in context.
	// Route groups decide whether a valid token is actually required.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})
		v1.Group(func(protectedAuth chi.Router) {
			authHandler.RegisterProtectedRoutes(protectedAuth)
		})

		roomHandler := handler.NewRoomHandler(roomService, levelService)
		leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
		v1.Route("/rooms", func(rooms chi.Router) {
			roomHandler.RegisterRoutes(rooms)
			leaderboardHandler.RegisterRoomRoutes(rooms)
		})

		levelHandler := handler.NewLevelHandler(levelService)
		v1.Route("/levels", levelHandler.RegisterRoutes)

		submissionHandler := handler.NewSubmissionHandler(submissionService)
		v1.Route("/submissions", submissionHandler.RegisterRoutes)

		v1.Route("/leaderboard", leaderboardHandler.RegisterRoutes)

		// Called by the code executor, not by browsers. Should sit behind
		// network-level auth in production.
		webhookHandler := handler.NewWebhookHandler(webhookService)
		v1.Route("/webhook", webhookHandler.RegisterRoutes)

		adminHandler := handler.NewAdminHandler(jobService)
		v1.Route("/admin", adminHandler.RegisterRoutes)

		// Browsers cannot set headers on websocket requests, so this group
		// also accepts the token as a ?jwt= query parameter.
		wsHandler := handler.NewWSHandler(hub, roomService)
		v1.Route("/ws", func(ws chi.Router) {
			ws.Use(jwtauth.Verify(security.TokenAuth, jwtauth.TokenFromQuery, jwtauth.TokenFromHeader))
			wsHandler.RegisterRoutes(ws)
		})
	})

	return r
}
