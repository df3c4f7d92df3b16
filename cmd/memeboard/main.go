package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/memeboard/memeboard/internal/auth/password"
	"github.com/memeboard/memeboard/internal/auth/policy"
	"github.com/memeboard/memeboard/internal/auth/service"
	"github.com/memeboard/memeboard/internal/auth/token"
	"github.com/memeboard/memeboard/internal/config"
	lg "github.com/memeboard/memeboard/internal/infra/log"
	"github.com/memeboard/memeboard/internal/infra/server"
	"github.com/memeboard/memeboard/internal/migrate"
	"github.com/memeboard/memeboard/internal/ratelimit"
	myPostgresRepo "github.com/memeboard/memeboard/internal/repo/postgres"
	myRedisRepo "github.com/memeboard/memeboard/internal/repo/redis"
	"github.com/memeboard/memeboard/internal/transport/httpapi"
	httpmw "github.com/memeboard/memeboard/internal/transport/httpapi/middleware"
)

func main() {
	zapLog := lg.Must(os.Getenv("LOG_LEVEL"))
	defer zapLog.Sync()

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("failed to load config", zap.Error(err))
	}

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		zapLog.Fatal("failed to connect to database", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLog.Fatal("db handle", zap.Error(err))
	}
	defer sqlDB.Close()
	if err := migrate.Up(sqlDB); err != nil {
		zapLog.Fatal("run migrations", zap.Error(err))
	}

	// The request window lives in Redis when an address is configured,
	// so every replica sees the same counts. Without Redis the limiter
	// still works, per process.
	var windowStore ratelimit.WindowStore = ratelimit.NewMemoryStore()
	if cfg.RedisAddress != "" {
		redisCli := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer redisCli.Close()
		windowStore = myRedisRepo.NewRedisWindowRepo(redisCli)
	} else {
		zapLog.Warn("REDIS_ADDRESS not set, rate limit windows are per-process")
	}
	limiter := ratelimit.New(windowStore, cfg.RateLimitWindow, cfg.RateLimitMax)

	codec, err := token.NewCodec([]byte(cfg.TokenSecret))
	if err != nil {
		zapLog.Fatal("failed to init token codec", zap.Error(err))
	}

	userRepo := myPostgresRepo.NewPostgresUserRepo(db)
	svc := service.NewAuthService(
		userRepo,
		codec,
		password.NewHasher(cfg.PasswordPepper),
		policy.New(),
		cfg.TokenTTL,
		cfg.HashWorkers,
	)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(httpmw.RequestLogger(zapLog))

	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{
			"Origin", "Content-Type", "Accept",
			"Authorization",
			"X-Requested-With",
		},
		ExposeHeaders: []string{"Content-Length", "Retry-After", "X-Request-Id"},
		MaxAge:        12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 {
		corsConfig.AllowAllOrigins = true
		corsConfig.AllowOrigins = nil
	}
	router.Use(cors.New(corsConfig))

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ipLimit := httpmw.NewRateLimitPerIP(cfg.IPRateLimitRPS, cfg.IPRateLimitBurst, 10_000, time.Hour)
	handler := httpapi.NewHandler(svc, limiter, zapLog)
	handler.Register(router, ipLimit)

	rootCtx, cancel := context.WithCancel(context.Background())
	g, ctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		return server.StartHTTPServer(ctx, cfg.HTTPAddress, router, zapLog)
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLog.Info("shutdown signal received")
	cancel()

	if err := g.Wait(); err != nil {
		zapLog.Error("server terminated", zap.Error(err))
	}
}
