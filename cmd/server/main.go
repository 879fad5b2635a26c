package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"reelcode/internal/api"
	"reelcode/internal/app/service"
	"reelcode/internal/app/worker"
	"reelcode/internal/common/security"
	"reelcode/internal/domain/repository"
	"reelcode/internal/platform/config"
	"reelcode/internal/platform/database"
	"reelcode/internal/platform/queue"
	"reelcode/internal/realtime"
)

func main() {
	// 1. Load Configuration
	config.Load()
	log.Println("INFO: Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	log.Println("INFO: JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	if err := database.Migrate(); err != nil {
		log.Fatalf("ERROR: Database migration failed: %v", err)
	}
	log.Println("INFO: Database connected and migrated.")

	// 4. Initialize Redis
	queue.ConnectRedis()
	defer queue.CloseRedis()
	log.Println("INFO: Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	roomRepo := repository.NewPgRoomRepository(database.DB)
	levelRepo := repository.NewPgLevelRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)
	jobRepo := repository.NewPgEvaluationJobRepository(database.DB)

	// 6. Realtime: local hub plus a Redis bridge so events reach clients
	// connected to other instances.
	hub := realtime.NewHub()
	publisher := realtime.NewRedisPublisher(queue.RDB)
	bridge := realtime.NewBridge(queue.RDB, hub)
	bridgeCtx, bridgeCancel := context.WithCancel(context.Background())
	defer bridgeCancel()
	go bridge.Run(bridgeCtx)
	log.Println("INFO: Realtime bridge started.")

	// 7. Initialize Services
	authService := service.NewAuthService(userRepo)
	jobService := service.NewEvaluationJobService(jobRepo, submissionRepo, queue.RDB, database.DB)
	roomService := service.NewRoomService(roomRepo, levelRepo, publisher, database.DB)
	levelService := service.NewLevelService(levelRepo, roomRepo)
	submissionService := service.NewSubmissionService(submissionRepo, levelRepo, roomRepo, jobService, database.DB)
	webhookService := service.NewWebhookService(submissionRepo, levelRepo, userRepo, jobRepo, publisher, database.DB)
	leaderboardService := service.NewLeaderboardService(submissionRepo, roomRepo)

	// 8. Initialize Evaluation Worker (as a goroutine)
	evaluationWorker := worker.NewEvaluationWorker(queue.RDB, jobRepo, levelRepo, submissionRepo)
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go evaluationWorker.Start(workerCtx)
	log.Println("INFO: Evaluation worker started.")

	// 9. Initialize Router & HTTP Server
	router := api.NewRouter(
		authService,
		roomService,
		levelService,
		submissionService,
		leaderboardService,
		webhookService,
		jobService,
		hub,
	)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 10. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("INFO: Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ERROR: Could not listen on %s: %v", config.AppConfig.APIPort, err)
		}
	}()

	<-stop // Wait for interrupt signal

	log.Println("INFO: Shutting down server...")
	workerCancel()
	bridgeCancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("ERROR: Server shutdown failed: %v", err)
	}

	log.Println("INFO: Server and worker stopped gracefully.")
}
