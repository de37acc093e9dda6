package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cryptoboard/internal/domain"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultBaseURL = "https://api.coingecko.com/api/v3"
	apiKeyHeader   = "x-cg-demo-api-key"
)

// Options configures a CoinGeckoProvider. Zero values fall back to the
// public endpoint, no API key and no client-side throttling.
type Options struct {
	BaseURL        string
	APIKey         string
	RequestsPerMin int
	Timeout        time.Duration
}

// CoinGeckoProvider fetches the ranked market list and per-asset history
// from the CoinGecko REST API. It performs a single attempt per call.
type CoinGeckoProvider struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	tracer   trace.Tracer
	logger   *log.Logger
	throttle *Throttle
}

func NewCoinGeckoProvider(tracer trace.Tracer, logger *log.Logger, opts Options) *CoinGeckoProvider {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = log.Default()
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CoinGeckoProvider{
		client:   &http.Client{Timeout: timeout},
		baseURL:  baseURL,
		apiKey:   strings.TrimSpace(opts.APIKey),
		tracer:   tracer,
		logger:   logger.WithPrefix("coingecko"),
		throttle: NewThrottle(opts.RequestsPerMin),
	}
}

// FetchRankedList returns up to limit assets ordered by market cap. A
// response that is not a JSON array yields an empty list and no error.
func (p *CoinGeckoProvider) FetchRankedList(ctx context.Context, limit int) ([]domain.Asset, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-ranked-list")
	defer span.End()
	span.SetAttributes(attribute.Int("limit", limit))

	endpoint := fmt.Sprintf("%s/coins/markets?vs_currency=usd&order=market_cap_desc&per_page=%d&page=1&sparkline=false&price_change_percentage=24h",
		p.baseURL, limit)

	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch ranked list")
		return nil, err
	}

	assets := parseMarkets(body)
	if assets == nil {
		p.logger.Warn("markets response is not an array", "bytes", len(body))
		return []domain.Asset{}, nil
	}
	p.logger.Debug("parsed markets", "count", len(assets))
	span.SetAttributes(attribute.Int("assets", len(assets)))
	return assets, nil
}

// FetchSeries returns the price/volume history of assetID for the given
// days selector. A response without a prices array yields an empty series
// and no error.
func (p *CoinGeckoProvider) FetchSeries(ctx context.Context, assetID, selector string) (domain.Series, error) {
	ctx, span := p.tracer.Start(ctx, "coingecko.fetch-series")
	defer span.End()
	span.SetAttributes(attribute.String("asset", assetID), attribute.String("days", selector))

	endpoint := fmt.Sprintf("%s/coins/%s/market_chart?vs_currency=usd&days=%s",
		p.baseURL, url.PathEscape(assetID), url.QueryEscape(selector))

	body, err := p.doRequest(ctx, endpoint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "fetch series")
		return nil, err
	}

	series := parseMarketChart(body)
	span.SetAttributes(attribute.Int("points", len(series)))
	return series, nil
}

func (p *CoinGeckoProvider) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if err := p.throttle.Wait(ctx); err != nil {
		return nil, fmt.Errorf("throttle wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set(apiKeyHeader, p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, transportFailure(endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportFailure(endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusFailure(endpoint, resp.StatusCode, string(body))
	}
	return body, nil
}

// parseMarkets returns nil when the payload is not a JSON array.
func parseMarkets(body []byte) []domain.Asset {
	var raw []any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil
	}

	assets := make([]domain.Asset, 0, len(raw))
	for _, el := range raw {
		node, _ := el.(map[string]any)
		assets = append(assets, domain.Asset{
			ID:                asString(node["id"]),
			Name:              asString(node["name"]),
			Symbol:            domain.NormalizeSymbol(asString(node["symbol"])),
			Price:             asFloat(node["current_price"]),
			Change24h:         asFloat(node["price_change_percentage_24h"]),
			MarketCap:         domain.FormatMoneyShort(asFloat(node["market_cap"])),
			Volume:            domain.FormatMoneyShort(asFloat(node["total_volume"])),
			CirculatingSupply: domain.FormatNumberShort(asFloat(node["circulating_supply"])),
		})
	}
	return assets
}

// parseMarketChart pairs prices[i] with total_volumes[i]. Malformed entries
// are skipped individually.
func parseMarketChart(body []byte) domain.Series {
	var root map[string]any
	if err := json.Unmarshal(body, &root); err != nil {
		return domain.Series{}
	}
	prices, ok := root["prices"].([]any)
	if !ok {
		return domain.Series{}
	}
	volumes, _ := root["total_volumes"].([]any)

	series := make(domain.Series, 0, len(prices))
	for i, el := range prices {
		pair, ok := el.([]any)
		if !ok || len(pair) < 2 {
			continue
		}
		ts, ok := epochMillis(pair[0])
		if !ok {
			continue
		}

		var volume domain.Measure
		if i < len(volumes) {
			if vp, ok := volumes[i].([]any); ok && len(vp) >= 2 {
				volume = measure(vp[1])
			}
		}
		series = append(series, domain.NewSamplePoint(ts, measure(pair[1]), volume))
	}
	return series
}

func measure(v any) domain.Measure {
	if n, ok := floatValue(v); ok {
		return domain.Present(n)
	}
	return domain.Measure{}
}
