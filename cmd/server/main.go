package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	config "github.com/maheshrc27/instaflow/configs"
	"github.com/maheshrc27/instaflow/internal/api/handlers"
	"github.com/maheshrc27/instaflow/internal/api/middleware"
	job "github.com/maheshrc27/instaflow/internal/jobs"
	"github.com/maheshrc27/instaflow/internal/migrations"
	"github.com/maheshrc27/instaflow/internal/queue"
	"github.com/maheshrc27/instaflow/internal/repository"
	"github.com/maheshrc27/instaflow/internal/service"
	applog "github.com/maheshrc27/instaflow/pkg/logger"
	"github.com/maheshrc27/instaflow/pkg/utils"
	"github.com/robfig/cron"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	slog.SetDefault(applog.New(applog.Opts{Env: cfg.Env, SentryDSN: cfg.SentryDSN}))
	defer applog.Flush()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		applog.Fatal("Failed to connect to database", "error", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		applog.Fatal("Database is unreachable", "error", err)
	}

	if err := migrations.Up(db); err != nil {
		applog.Fatal("Failed to apply migrations", "error", err)
	}

	cipher, err := utils.NewTokenCipher([]byte(cfg.SecretKey))
	if err != nil {
		applog.Fatal("SECRET_KEY must be 16, 24 or 32 bytes", "error", err)
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("unhandled request error", "path", c.Path(), "error", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	accountRepo := repository.NewInstagramAccountRepository(db)
	postRepo := repository.NewScheduledPostRepository(db)
	performanceRepo := repository.NewPostPerformanceRepository(db)
	snapshotRepo := repository.NewAnalyticsSnapshotRepository(db)
	alertRepo := repository.NewAlertRepository(db)
	stateRepo := repository.NewOAuthStateRepository(db)

	graph := service.NewGraphClient(cfg.GraphAPIBaseURL, cfg.HTTPTimeout)
	igGraph := service.NewGraphClient(cfg.InstagramGraphURL, cfg.HTTPTimeout)
	mediaService, err := service.NewMediaService(context.Background(), *cfg)
	if err != nil {
		applog.Fatal("Failed to set up media storage", "error", err)
	}

	tokenService := service.NewTokenService(*cfg, accountRepo, stateRepo, graph, cipher)
	instagramService := service.NewInstagramService(graph, igGraph, mediaService, cipher)

	var publisher service.Publisher = instagramService
	var followers service.FollowerSource = instagramService
	if cfg.PublishMode == config.PublishModeSimulate {
		slog.Warn("publishing is simulated; no post will reach Instagram")
		publisher = service.NewSimulatedPublisher(time.Now().UnixNano())
		followers = nil
	}

	dispatchJob := job.NewDispatchJob(postRepo, accountRepo, performanceRepo, publisher, cfg.PublishTimeout)
	refreshTokenJob := job.NewTokenRefreshJob(accountRepo, tokenService)
	snapshotJob := job.NewSnapshotJob(accountRepo, performanceRepo, snapshotRepo, alertRepo, followers)

	authMiddleware := middleware.NewAuthMiddleware(*cfg)

	app.Get("/health", handlers.Health)

	platform := handlers.NewPlatformHandler(tokenService)
	app.Get("/auth/instagram", platform.ConnectInstagram)
	app.Post("/auth/instagram/exchange", platform.ExchangeInstagram)

	jobs := handlers.NewJobsHandler(dispatchJob, refreshTokenJob, snapshotJob)
	jobRoutes := app.Group("/jobs", authMiddleware.ServiceRole())
	jobRoutes.Post("/process-scheduled-posts", jobs.ProcessScheduledPosts)
	jobRoutes.Post("/refresh-instagram-tokens", jobs.RefreshInstagramTokens)
	jobRoutes.Post("/daily-analytics-snapshot", jobs.DailyAnalyticsSnapshot)

	stopScheduler := func() {}
	if cfg.Schedule.Enabled {
		if cfg.RedisURI != "" {
			stopScheduler = startAsynq(cfg, queue.NewQueue(dispatchJob, refreshTokenJob, snapshotJob))
		} else {
			stopScheduler = startCron(cfg, dispatchJob, refreshTokenJob, snapshotJob)
		}
	}

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			applog.Fatal("Failed to start server", "error", err)
		}
	}()
	slog.Info("Server is running", "port", cfg.Port, "publish_mode", cfg.PublishMode)

	gracefulShutdown(app, stopScheduler)
}

// startCron runs the jobs in process. Used when no Redis is configured.
func startCron(cfg *config.Config, dispatch *job.DispatchJob, refresh *job.TokenRefreshJob, snapshot *job.SnapshotJob) func() {
	c := cron.New()
	entries := []struct {
		spec string
		fn   func()
	}{
		{cfg.Schedule.Dispatch, dispatch.ProcessScheduledPosts},
		{cfg.Schedule.TokenRefresh, refresh.RefreshTokens},
		{cfg.Schedule.Snapshot, snapshot.DailySnapshot},
	}
	for _, e := range entries {
		if err := c.AddFunc(e.spec, e.fn); err != nil {
			applog.Fatal("Invalid schedule", "spec", e.spec, "error", err)
		}
	}
	c.Start()

	slog.Info("cron scheduler started")
	return c.Stop
}

// startAsynq registers the jobs as periodic Redis tasks so that only one
// replica runs each tick.
func startAsynq(cfg *config.Config, q *queue.Queue) func() {
	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}

	scheduler := asynq.NewScheduler(redisConn, &asynq.SchedulerOpts{Location: time.UTC})
	if err := queue.RegisterPeriodic(scheduler, cfg.Schedule); err != nil {
		applog.Fatal("Could not register periodic tasks", "error", err)
	}

	server := asynq.NewServer(redisConn, asynq.Config{
		Concurrency: 3,
	})

	slog.Info("Starting the Asynq scheduler...")
	if err := scheduler.Start(); err != nil {
		applog.Fatal("Could not start Asynq scheduler", "error", err)
	}

	slog.Info("Starting the Asynq server...")
	if err := server.Start(q.Mux()); err != nil {
		applog.Fatal("Could not start Asynq server", "error", err)
	}

	return func() {
		scheduler.Shutdown()
		server.Shutdown()
	}
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, stopScheduler func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	slog.Info("Shutting down server...")

	stopScheduler()

	if err := app.Shutdown(); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}

	slog.Info("Server shutdown complete.")
}
