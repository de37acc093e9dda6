package handler

import (
	"context"
	"net/http"
	"strconv"

	"cryptoboard/internal/progress"
	"cryptoboard/internal/service"

	"github.com/gin-gonic/gin"
)

type statusResponse struct {
	SeriesCount     int                  `json:"series_count"`
	FailedLoadCount int                  `json:"failed_load_count"`
	FailedLoads     []service.FailedLoad `json:"failed_loads"`
	IntervalCounts  map[string]int       `json:"interval_counts"`
	Preloading      bool                 `json:"preloading"`
}

// Status godoc
// @Summary      Cache and preload diagnostics
// @Tags         status
// @Produce      json
// @Success      200  {object}  statusResponse
// @Router       /api/status [get]
func (h *Handler) Status(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.status")
	defer span.End()

	c.JSON(http.StatusOK, statusResponse{
		SeriesCount:     h.market.SeriesCount(),
		FailedLoadCount: h.market.FailedLoadCount(),
		FailedLoads:     h.market.FailedLoads(),
		IntervalCounts:  h.market.IntervalCounts(),
		Preloading:      h.market.Preloading(),
	})
}

// Progress godoc
// @Summary      Recent preload progress events
// @Description  Returns the most recent events and the number recorded since startup
// @Tags         status
// @Produce      json
// @Param        limit  query  int  false  "Maximum number of events (default 50)"  default(50)
// @Success      200  {object}  map[string]interface{}
// @Router       /api/progress [get]
func (h *Handler) Progress(c *gin.Context) {
	limit := 50
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 1000 {
			limit = n
		}
	}

	events := []progress.Event{}
	total := 0
	if h.feed != nil {
		events = h.feed.Recent(limit)
		total = h.feed.Total()
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": total})
}

// StartPreload godoc
// @Summary      Start a background preload
// @Description  Fetches every interval for every ranked asset. Returns 409 if a preload is already running.
// @Tags         status
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /api/preload [post]
func (h *Handler) StartPreload(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.start-preload")
	defer span.End()

	if !h.market.StartPreload(context.WithoutCancel(ctx)) {
		c.JSON(http.StatusConflict, gin.H{"error": "preload already running"})
		return
	}
	h.logger.Info("preload started")
	c.JSON(http.StatusAccepted, gin.H{"status": "started"})
}

// ClearCache godoc
// @Summary      Clear cached market data
// @Tags         status
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /api/cache [delete]
func (h *Handler) ClearCache(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.clear-cache")
	defer span.End()

	h.market.ClearCache(ctx)
	c.JSON(http.StatusOK, gin.H{"status": "cleared"})
}
