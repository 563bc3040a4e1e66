package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/blinkyapp/blinky-server/internal/ai"
	"github.com/blinkyapp/blinky-server/internal/assignments"
	"github.com/blinkyapp/blinky-server/internal/config"
	"github.com/blinkyapp/blinky-server/internal/database"
	"github.com/blinkyapp/blinky-server/internal/friends"
	"github.com/blinkyapp/blinky-server/internal/health"
	"github.com/blinkyapp/blinky-server/internal/insights"
	"github.com/blinkyapp/blinky-server/internal/logging"
	"github.com/blinkyapp/blinky-server/internal/notifications"
	"github.com/blinkyapp/blinky-server/internal/push"
	"github.com/blinkyapp/blinky-server/internal/screentime"
	"github.com/blinkyapp/blinky-server/internal/users"
	"github.com/blinkyapp/blinky-server/internal/worker"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func main() {
	cfg := config.Load()

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)

	db, err := database.Init(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err.Error())
		os.Exit(1)
	}
	defer database.Close(db)

	if err := database.RunMigrations(db); err != nil {
		logger.Error("Failed to run migrations", "error", err.Error())
		os.Exit(1)
	}

	aiClient := ai.NewClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIStubMode)
	pushClient := push.NewClient(cfg.ExpoPushURL)

	// Embedded worker + scheduler drive the reminder loop
	stopWorker, err := worker.Start(cfg, db, aiClient, pushClient)
	if err != nil {
		logger.Error("Failed to start worker", "error", err.Error())
		os.Exit(1)
	}
	defer stopWorker()

	stopScheduler, err := worker.StartScheduler(cfg)
	if err != nil {
		logger.Error("Failed to start scheduler", "error", err.Error())
		os.Exit(1)
	}
	defer stopScheduler()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(db, aiClient, pushClient)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Info("Server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed", "error", err.Error())
			os.Exit(1)
		}
	}()

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server shutdown failed", "error", err.Error())
	}
}

func newRouter(db *gorm.DB, aiClient *ai.Client, pushClient *push.Client) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", health.Handler)

	api := router.Group("/api")
	{
		api.POST("/register", users.RegisterHandler(db))
		api.POST("/toggle-notifications", users.ToggleNotificationsHandler(db))
		api.GET("/users", users.ListUsersHandler(db))

		api.POST("/assignments", assignments.StoreAssignmentsHandler(db))
		api.GET("/assignments", assignments.GetAssignmentsHandler(db))

		api.POST("/screentime", screentime.StoreScreentimeHandler(db))

		api.POST("/send-notification", notifications.SendNotificationHandler(db, pushClient))

		api.GET("/insights/:email", insights.GetInsightsHandler(db, aiClient))

		api.POST("/friends/add", friends.AddFriendHandler(db))
		api.POST("/friends/remove", friends.RemoveFriendHandler(db))
		api.GET("/friends/:email", friends.GetFriendsHandler(db))
		api.GET("/friends/leaderboard/:email", friends.GetLeaderboardHandler(db))
	}

	return router
}
