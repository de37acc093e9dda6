package handler

import (
	"context"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/progress"
	"cryptoboard/internal/service"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// MarketData is the subset of service.MarketDataService served over HTTP.
type MarketData interface {
	GetRankedList(ctx context.Context) []domain.Asset
	GetSeries(ctx context.Context, assetID, selector string) domain.Series
	HasSeries(assetID, selector string) bool
	SeriesCount() int
	FailedLoadCount() int
	FailedLoads() []service.FailedLoad
	IntervalCounts() map[string]int
	Preloading() bool
	StartPreload(ctx context.Context) bool
	ClearCache(ctx context.Context)
}

type ProgressFeed interface {
	Recent(limit int) []progress.Event
	Total() int
}

type Handler struct {
	tracer trace.Tracer
	logger *log.Logger
	market MarketData
	feed   ProgressFeed
}

// New builds the HTTP handlers. feed may be nil, in which case the progress
// endpoint returns an empty list.
func New(tracer trace.Tracer, logger *log.Logger, market MarketData, feed ProgressFeed) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{
		tracer: tracer,
		logger: logger.WithPrefix("http"),
		market: market,
		feed:   feed,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/assets", h.ListAssets)
	api.GET("/assets/:id/series", h.GetSeries)
	api.GET("/status", h.Status)
	api.GET("/progress", h.Progress)
	api.POST("/preload", h.StartPreload)
	api.DELETE("/cache", h.ClearCache)
}
