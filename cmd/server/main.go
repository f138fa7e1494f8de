package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/redis/go-redis/v9"

	"github.com/ocrsdk/cloud-runner/internal/client"
	"github.com/ocrsdk/cloud-runner/internal/config"
	"github.com/ocrsdk/cloud-runner/internal/handler"
	"github.com/ocrsdk/cloud-runner/internal/middleware"
	"github.com/ocrsdk/cloud-runner/internal/service"
	ws "github.com/ocrsdk/cloud-runner/internal/websocket"
	"github.com/ocrsdk/cloud-runner/internal/worker"
	"github.com/ocrsdk/cloud-runner/pkg/response"
)

func main() {
	envFile := flag.String("env", ".env", "path to an optional env file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if !cfg.OCR.IsConfigured() {
		log.Printf("Warning: OCR_APPLICATION_ID / OCR_PASSWORD not set, jobs will be rejected by %s", cfg.OCR.Host)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
	}

	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Recognition pipeline
	ocrClient := client.NewOCRClient(&cfg.OCR)
	processor := service.NewProcessor(ocrClient, ocrClient, service.NewNotifier(), validate, nil)
	store := service.NewRedisTaskStore(redisClient)

	var mirror *worker.ArtifactMirror
	if cfg.R2.IsConfigured() {
		r2, err := client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: artifact mirror disabled: %v", err)
		} else {
			mirror = worker.NewArtifactMirror(r2)
		}
	}

	runner := worker.NewPipelineRunner(ctx, processor, store, hub, mirror)
	unsubscribe := processor.Notifier().Subscribe(runner)
	defer unsubscribe()

	if err := os.MkdirAll(cfg.Output.Dir, 0755); err != nil {
		log.Fatalf("Failed to create output dir: %v", err)
	}

	// Initialize handlers
	jobsHandler := handler.NewJobsHandler(runner, store, validate, handler.JobsConfig{
		OutputDir:     cfg.Output.Dir,
		TempDir:       cfg.Upload.TempDir,
		MaxUploadSize: int64(cfg.Upload.MaxSizeMB) * 1024 * 1024,
	})
	tasksHandler := handler.NewTasksHandler(processor)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	rateLimiter := middleware.NewRateLimiter(redisClient)

	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    (cfg.Upload.MaxSizeMB + 1) * 1024 * 1024,
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"service": "ocr-cloud-runner",
			"host":    cfg.OCR.Host,
			"kinds":   []string{"image", "textField", "barcodeField", "checkmarkField", "mrz", "businessCard"},
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	// API routes
	api := app.Group("/api", authMiddleware.Authenticate())

	jobs := api.Group("/jobs")
	jobs.Post("/", rateLimiter.JobsLimit(cfg.RateLimit.JobsPerHour), jobsHandler.Start)
	jobs.Get("/", jobsHandler.List)
	jobs.Get("/:taskId", jobsHandler.Get)
	jobs.Get("/:taskId/files/:format", jobsHandler.Download)

	api.Get("/remote-tasks", tasksHandler.List)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:taskId", websocket.New(func(c *websocket.Conn) {
		hub.HandleConnection(c, c.Params("taskId"))
	}))

	// Graceful shutdown
	go func() {
		<-ctx.Done()
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s (%s)", addr, cfg.Server.Env)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Waiting for running pipelines...")
	runner.Wait()
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	return response.Error(c, code, response.CodeServiceError, message, nil)
}
