package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"sitesync-media/internal/auth"
	"sitesync-media/internal/config"
	"sitesync-media/internal/handlers"
	"sitesync-media/internal/middleware"
	"sitesync-media/internal/repository"
	"sitesync-media/internal/routes"
	service "sitesync-media/internal/services"
	"sitesync-media/internal/storage"
	"sitesync-media/internal/utils"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(err)
	}
	dev := !cfg.IsProduction()

	logger, _ := utils.NewLogger(dev)
	defer func() { _ = logger.Sync() }()

	// Mongo
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	mc, err := repository.ConnectMongo(ctx, cfg.Mongo.URI, logger)
	cancel()
	if err != nil {
		logger.Fatalf("mongo connect: %v", err)
	}
	col := mc.Database(cfg.Mongo.Database).Collection(cfg.Mongo.Collection)
	repo := repository.NewCatalogRepo(col)

	// media store
	var store storage.MediaStore
	switch cfg.Storage.Backend {
	case "s3":
		store, err = storage.NewS3Store(context.Background(), cfg.S3.Region, cfg.S3.Bucket)
		if err != nil {
			logger.Fatalf("s3 init: %v", err)
		}
	default:
		store = storage.NewCloudinaryStore(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
	}

	if err := os.MkdirAll(cfg.App.UploadDir, 0o755); err != nil {
		logger.Fatalf("upload dir: %v", err)
	}

	// services
	uploader := service.NewUploader(store, repo, logger, cfg.Storage.CompensateOnFailure)
	catalog := service.NewCatalogService(repo)

	// auth
	gate := auth.NewGate(
		auth.Credentials{Email: cfg.Admin.Email, Password: cfg.Admin.Password},
		auth.Credentials{Email: cfg.Admin.SecondEmail, Password: cfg.Admin.SecondPassword},
	)
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.SessionTTL)

	// rate limiting: shared Redis counters when configured, else in-process
	var counters middleware.CounterStore
	if cfg.Redis.Addr != "" {
		rc := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		counters = middleware.NewRedisCounter(rc)
	} else {
		counters = middleware.NewMemoryCounter()
	}
	globalLimiter := middleware.NewRateLimiter(counters, "rl:global",
		cfg.RateLimit.GlobalLimit, cfg.GlobalWindow, "Too many requests, please try again later.")
	loginLimiter := middleware.NewRateLimiter(counters, "rl:login",
		cfg.RateLimit.LoginLimit, cfg.LoginWindow, "Too many login attempts, please try again later.")

	// fiber app & routes
	app := fiber.New(fiber.Config{
		BodyLimit:    cfg.App.BodyLimitMB * 1024 * 1024,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
		ErrorHandler: handlers.ErrorHandler(logger, cfg.IsProduction()),
	})
	routes.Setup(app, routes.Deps{
		Admin:         handlers.NewAdminHandler(gate, tokens, cfg.IsProduction()),
		Media:         handlers.NewMediaHandler(uploader, catalog, cfg.App.UploadDir, logger),
		Session:       middleware.Session(tokens, gate.PrimaryEmail()),
		GlobalLimiter: globalLimiter,
		LoginLimiter:  loginLimiter,
		CORSOrigins:   cfg.CORS.Origins,
		JSONLimit:     cfg.App.JSONLimitMB * 1024 * 1024,
	})

	go func() {
		addr := fmt.Sprintf(":%d", cfg.App.Port)
		logger.Infof("starting sitesync-media on %s (env=%s, storage=%s)", addr, cfg.App.Env, cfg.Storage.Backend)
		if err := app.Listen(addr); err != nil {
			logger.Fatalf("listen failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit
	logger.Info("shutdown requested")

	timeoutCtx, cancel2 := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel2()

	_ = app.Shutdown()
	_ = mc.Disconnect(timeoutCtx)
	logger.Info("shutdown completed")
}
