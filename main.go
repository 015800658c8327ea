package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"coursecatalog/internal/cache"
	"coursecatalog/internal/config"
	"coursecatalog/internal/handler"
	"coursecatalog/internal/middleware"
	"coursecatalog/internal/models"
	"coursecatalog/internal/repository"
	"coursecatalog/internal/server"
	"coursecatalog/internal/service"
)

func main() {
	cfgPath := flag.String("config", "configs/config.yml", "Path to the YAML config file")
	seed := flag.Bool("seed", false, "Insert the default course catalog and exit")
	flag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		panic(err)
	}

	logger := newLogger(cfg.Log.Production)
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Database connection
	db, err := repository.NewPostgresDB(ctx, cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := repository.MigrateDB(db, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to migrate database", zap.Error(err))
	}

	userRepo := repository.NewUserRepository(db, logger)
	courseRepo := repository.NewCourseRepository(db, logger)

	if *seed {
		inserted, err := courseRepo.SeedCourses(ctx, models.SeedCourseNames)
		if err != nil {
			logger.Fatal("Failed to seed courses", zap.Error(err))
		}
		logger.Info("Seed finished", zap.Int("inserted", len(inserted)))
		return
	}

	courseCache := newCourseCache(ctx, cfg, logger)

	tokens := service.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authService, err := service.NewAuthService(userRepo, tokens, cfg.Auth.BcryptCost, logger)
	if err != nil {
		logger.Fatal("Failed to initialize auth service", zap.Error(err))
	}
	courseService := service.NewCourseService(courseRepo, courseCache, logger)

	// Initialize and run the server
	srv := server.NewServer(server.Deps{
		Auth:    authService,
		Courses: courseService,
		Store:   courseRepo,
	}, server.Options{
		FrontendOrigins: cfg.Server.FrontendOrigins,
		StaticDir:       cfg.Server.StaticDir,
		Cookie: handler.CookieOptions{
			Name:        cfg.Auth.CookieName,
			MaxAge:      cfg.Auth.TokenTTL,
			Secure:      cfg.Auth.CookieSecure,
			TokenInBody: cfg.TokenInBodyEnabled(),
		},
		RateLimitRPS:   cfg.RateLimit.RequestsPerSecond,
		RateLimitBurst: cfg.RateLimit.Burst,
	}, logger, middleware.NewAccessLogger())

	if err := srv.Run(ctx, cfg.Server.Port); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
	logger.Info("Application stopped.")
}

func newLogger(production bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if production {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err) // Should not happen with the stock configs
	}
	return logger
}

func newCourseCache(ctx context.Context, cfg *config.Config, logger *zap.Logger) cache.Store {
	if cfg.Cache.Backend != "redis" {
		logger.Info("Using in-memory course cache",
			zap.Int("size", cfg.Cache.Size), zap.Duration("ttl", cfg.Cache.TTL))
		return cache.NewMemory(cfg.Cache.Size, cfg.Cache.TTL)
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unreachable at startup, cache lookups will miss until it recovers",
			zap.String("addr", cfg.Redis.Addr), zap.Error(err))
	} else {
		logger.Info("Using Redis course cache", zap.String("addr", cfg.Redis.Addr))
	}
	return cache.NewRedis(client, cfg.Redis.Prefix, cfg.Cache.TTL, logger)
}
