package provider

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/trace"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(bytes.NewReader([]byte(body))),
		Header:     make(http.Header),
	}
}

func newTestProvider(opts Options, rt roundTripFunc) *CoinGeckoProvider {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://example"
	}
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), log.New(io.Discard), opts)
	p.client = &http.Client{Transport: rt}
	return p
}

func TestCoinGeckoProviderFetchRankedList(t *testing.T) {
	t.Parallel()

	provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/coins/markets" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		q := req.URL.Query()
		if q.Get("per_page") != "5" || q.Get("order") != "market_cap_desc" || q.Get("vs_currency") != "usd" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if q.Get("price_change_percentage") != "24h" || q.Get("sparkline") != "false" || q.Get("page") != "1" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		if req.Header.Get(apiKeyHeader) != "" {
			t.Fatalf("api key header should be absent")
		}
		return jsonResponse(http.StatusOK, `[
			{"id":"bitcoin","name":"Bitcoin","symbol":"btc","current_price":50000,
			 "price_change_percentage_24h":2.5,"market_cap":1000000000000,
			 "total_volume":50000000000,"circulating_supply":19000000},
			{"id":"ethereum","name":"Ethereum","symbol":"eth","current_price":"3000.5"}
		]`), nil
	})

	assets, err := provider.FetchRankedList(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(assets) != 2 {
		t.Fatalf("expected 2 assets, got %d", len(assets))
	}

	btc := assets[0]
	if btc.ID != "bitcoin" || btc.Symbol != "BTC" || btc.Price != 50000 || btc.Change24h != 2.5 {
		t.Fatalf("unexpected bitcoin: %+v", btc)
	}
	if btc.MarketCap != "$1T" || btc.Volume != "$50B" || btc.CirculatingSupply != "19M" {
		t.Fatalf("unexpected formatted fields: %+v", btc)
	}

	eth := assets[1]
	if eth.Price != 3000.5 || eth.Change24h != 0 || eth.MarketCap != "$0" || eth.CirculatingSupply != "0" {
		t.Fatalf("missing fields should default: %+v", eth)
	}
}

func TestCoinGeckoProviderSendsAPIKey(t *testing.T) {
	t.Parallel()

	provider := newTestProvider(Options{APIKey: " secret "}, func(req *http.Request) (*http.Response, error) {
		if got := req.Header.Get(apiKeyHeader); got != "secret" {
			t.Fatalf("expected api key header, got %q", got)
		}
		return jsonResponse(http.StatusOK, `[]`), nil
	})

	assets, err := provider.FetchRankedList(context.Background(), 5)
	if err != nil || len(assets) != 0 {
		t.Fatalf("unexpected result: %v %v", assets, err)
	}
}

func TestCoinGeckoProviderMalformedMarkets(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"error":"nope"}`, `not json`, `null`} {
		provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		})
		assets, err := provider.FetchRankedList(context.Background(), 5)
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", body, err)
		}
		if assets == nil || len(assets) != 0 {
			t.Fatalf("%q: expected empty list, got %#v", body, assets)
		}
	}
}

func TestCoinGeckoProviderFetchSeries(t *testing.T) {
	t.Parallel()

	provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
		if req.URL.Path != "/coins/bitcoin/market_chart" {
			t.Fatalf("unexpected path: %s", req.URL.Path)
		}
		if req.URL.Query().Get("days") != "7" || req.URL.Query().Get("vs_currency") != "usd" {
			t.Fatalf("unexpected query: %s", req.URL.RawQuery)
		}
		return jsonResponse(http.StatusOK, `{
			"prices": [[1700000000000, 100], [1700000060000, null], [1700000120000], "bad", ["x", 5], [1700000180000, "103.5"]],
			"total_volumes": [[1700000000000, 10], [1700000060000, 11]]
		}`), nil
	})

	series, err := provider.FetchSeries(context.Background(), "bitcoin", "7")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("expected 3 points, got %d: %+v", len(series), series)
	}

	if series[0].Time.UnixMilli() != 1700000000000 || series[0].Price.Value != 100 || series[0].Volume.Value != 10 {
		t.Fatalf("unexpected first point: %+v", series[0])
	}
	if series[1].Price.Valid || !series[1].Volume.Valid || series[1].Volume.Value != 11 {
		t.Fatalf("null price should be absent, volume paired: %+v", series[1])
	}
	if series[2].Price.Value != 103.5 || series[2].Volume.Valid {
		t.Fatalf("volume past the end should be absent: %+v", series[2])
	}
	if series[2].Time.Location().String() != "UTC" {
		t.Fatalf("expected UTC timestamps")
	}
}

func TestCoinGeckoProviderFetchSeriesWithoutPrices(t *testing.T) {
	t.Parallel()

	for _, body := range []string{`{"total_volumes":[[1,2]]}`, `[]`, `garbage`, `{"prices":{}}`} {
		provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(http.StatusOK, body), nil
		})
		series, err := provider.FetchSeries(context.Background(), "bitcoin", "1")
		if err != nil {
			t.Fatalf("%q: unexpected error: %v", body, err)
		}
		if series == nil || len(series) != 0 {
			t.Fatalf("%q: expected empty series, got %#v", body, series)
		}
	}
}

func TestCoinGeckoProviderClassifiesFailures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status    int
		kind      FailureKind
		retryable bool
	}{
		{http.StatusTooManyRequests, FailureRateLimited, true},
		{http.StatusInternalServerError, FailureTransient, true},
		{http.StatusBadGateway, FailureTransient, true},
		{http.StatusNotFound, FailureStatus, false},
		{http.StatusUnauthorized, FailureStatus, false},
	}
	for _, tt := range tests {
		provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
			return jsonResponse(tt.status, `{"status":"error"}`), nil
		})
		_, err := provider.FetchSeries(context.Background(), "bitcoin", "1")

		var failure *RemoteFailure
		if !errors.As(err, &failure) {
			t.Fatalf("%d: expected RemoteFailure, got %v", tt.status, err)
		}
		if failure.Kind != tt.kind || failure.StatusCode != tt.status || failure.Retryable() != tt.retryable {
			t.Fatalf("%d: unexpected failure %+v", tt.status, failure)
		}
		if !strings.Contains(failure.Endpoint, "/coins/bitcoin/market_chart") {
			t.Fatalf("unexpected endpoint: %s", failure.Endpoint)
		}
	}
}

func TestCoinGeckoProviderTransportError(t *testing.T) {
	t.Parallel()

	boom := errors.New("connection reset")
	provider := newTestProvider(Options{}, func(req *http.Request) (*http.Response, error) {
		return nil, boom
	})

	_, err := provider.FetchRankedList(context.Background(), 5)
	var failure *RemoteFailure
	if !errors.As(err, &failure) {
		t.Fatalf("expected RemoteFailure, got %v", err)
	}
	if failure.Kind != FailureTransient || !failure.Retryable() {
		t.Fatalf("unexpected failure: %+v", failure)
	}
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped transport error")
	}
}

func TestCoinGeckoProviderDefaults(t *testing.T) {
	p := NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, Options{BaseURL: "http://x/api/"})
	if p.baseURL != "http://x/api" {
		t.Fatalf("expected trailing slash trimmed, got %s", p.baseURL)
	}
	if p.throttle.Enabled() {
		t.Fatal("throttle should be off by default")
	}

	p = NewCoinGeckoProvider(trace.NewNoopTracerProvider().Tracer("test"), nil, Options{})
	if p.baseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %s", p.baseURL)
	}
}
