package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cryptoboard/internal/bot"
	"cryptoboard/internal/cache"
	"cryptoboard/internal/config"
	"cryptoboard/internal/handler"
	"cryptoboard/internal/job"
	"cryptoboard/internal/progress"
	"cryptoboard/internal/provider"
	"cryptoboard/internal/service"
	"cryptoboard/pkg/tracing"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "cryptoboard/docs"
)

var (
	loadEnvFunc              = godotenv.Load
	loadConfigFunc           = config.Load
	initRedisFunc            = cache.InitRedis
	initTracerFunc           = tracing.InitTracer
	newCoinGeckoProviderFunc = func(tracer trace.Tracer, logger *log.Logger, opts provider.Options) service.Provider {
		return provider.NewCoinGeckoProvider(tracer, logger, opts)
	}
	startRefreshJobFunc    = func(j *job.RefreshJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Cryptoboard API
// @version         1.0
// @description     Ranked crypto assets and cached price history from CoinGecko.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           cfg.LogLevel,
		ReportTimestamp: true,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, "")
	if err != nil {
		logger.Fatal("failed to initialize tracer", "err", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("error shutting down tracer provider", "err", err)
		}
	}()

	var mirror service.Mirror
	redisClient, err := initRedisFunc(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("redis unavailable, continuing without mirror", "err", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
		mirror = cache.NewRedisMirror(redisClient, cfg.RedisTTL())
		logger.Info("redis mirror enabled", "ttl", cfg.RedisTTL())
	}

	cg := newCoinGeckoProviderFunc(tracer, logger, cfg.Provider())
	market, err := service.NewMarketDataService(tracer, logger, cg, cache.NewMarketCache(), mirror, cfg.Service())
	if err != nil {
		logger.Fatal("failed to create market data service", "err", err)
	}

	feed := progress.NewFeed(0)
	sink := progress.NewQueue(progress.Fanout{feed, progress.NewLogSink(logger)})
	defer sink.Close()
	market.SetProgressSink(sink)

	refresh := job.NewRefreshJob(tracer, logger, market, cfg.RefreshInterval())
	startRefreshJobFunc(refresh, ctx)

	if err := startTelegramBotFunc(ctx, cfg.TelegramBotToken, logger, market); err != nil {
		logger.Error("telegram bot failed to start", "err", err)
	}

	h := handler.New(tracer, logger, market, feed)

	r := newRouterFunc()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware(tracing.ServiceName))
	r.Use(handler.RequestLogger(logger))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: r,
	}

	go func() {
		logger.Info("listening", "addr", srv.Addr)
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	logger.Info("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "err", err)
	}

	logger.Info("server exiting")
}
