package handler

import (
	"net/http"
	"strconv"
	"strings"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/ta"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type assetView struct {
	domain.Asset
	PriceFormatted  string `json:"price_formatted"`
	ChangeFormatted string `json:"change_formatted"`
}

type seriesResponse struct {
	ID       string        `json:"id"`
	Interval string        `json:"interval"`
	Selector string        `json:"selector"`
	Cached   bool          `json:"cached"`
	Points   domain.Series `json:"points"`
	Stats    *seriesStats  `json:"stats,omitempty"`
}

type seriesStats struct {
	Low       float64        `json:"low"`
	High      float64        `json:"high"`
	ChangePct float64        `json:"change_pct"`
	Mean      float64        `json:"mean"`
	StdDev    float64        `json:"stddev"`
	EMA       float64        `json:"ema"`
	RSI       domain.Measure `json:"rsi"`
}

func statsFor(series domain.Series) *seriesStats {
	sum, ok := ta.Summarize(series)
	if !ok {
		return nil
	}
	return &seriesStats{
		Low:       sum.Low,
		High:      sum.High,
		ChangePct: sum.ChangePct,
		Mean:      sum.Mean,
		StdDev:    sum.StdDev,
		EMA:       sum.EMA,
		RSI:       sum.RSI,
	}
}

// ListAssets godoc
// @Summary      List ranked assets
// @Description  Returns the ranked asset list by market cap, fetching it on first use
// @Tags         assets
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/assets [get]
func (h *Handler) ListAssets(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-assets")
	defer span.End()

	assets := h.market.GetRankedList(ctx)
	views := make([]assetView, 0, len(assets))
	for _, a := range assets {
		views = append(views, assetView{
			Asset:           a,
			PriceFormatted:  a.PriceFormatted(),
			ChangeFormatted: a.ChangeFormatted(),
		})
	}
	span.SetAttributes(attribute.Int("assets", len(views)))

	c.JSON(http.StatusOK, gin.H{"assets": views})
}

// GetSeries godoc
// @Summary      Get price history for an asset
// @Description  Returns price and volume samples for one interval. Missing values are null.
// @Tags         assets
// @Produce      json
// @Param        id        path   string  true   "Asset id (e.g., bitcoin)"
// @Param        interval  query  string  false  "Interval name (1D, 1W, 1M, 3M, 1Y) or a day count"  default(1D)
// @Success      200  {object}  seriesResponse
// @Failure      400  {object}  map[string]interface{}
// @Router       /api/assets/{id}/series [get]
func (h *Handler) GetSeries(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-series")
	defer span.End()

	id := strings.TrimSpace(c.Param("id"))
	raw := strings.TrimSpace(c.DefaultQuery("interval", "1D"))
	span.SetAttributes(attribute.String("asset", id), attribute.String("interval", raw))

	iv, ok := resolveInterval(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":               "unsupported interval: " + raw,
			"supported_intervals": domain.Intervals,
		})
		return
	}

	cached := h.market.HasSeries(id, iv.Selector)
	points := h.market.GetSeries(ctx, id, iv.Selector)
	c.JSON(http.StatusOK, seriesResponse{
		ID:       id,
		Interval: iv.Name,
		Selector: iv.Selector,
		Cached:   cached,
		Points:   points,
		Stats:    statsFor(points),
	})
}

func resolveInterval(v string) (domain.Interval, bool) {
	if iv, ok := domain.IntervalByName(strings.ToUpper(v)); ok {
		return iv, true
	}
	if iv, ok := domain.IntervalBySelector(v); ok {
		return iv, true
	}
	// any other day count goes to the provider as is
	if n, err := strconv.Atoi(v); err == nil && n > 0 {
		return domain.Interval{Name: v, Selector: v}, true
	}
	return domain.Interval{}, false
}
