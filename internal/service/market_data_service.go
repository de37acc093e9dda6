package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/retry"

	"github.com/charmbracelet/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

var (
	ErrNilProvider = errors.New("market data service: provider is required")
	ErrNilStore    = errors.New("market data service: store is required")
)

// Provider performs single, unretried requests against the remote source.
type Provider interface {
	FetchRankedList(ctx context.Context, limit int) ([]domain.Asset, error)
	FetchSeries(ctx context.Context, assetID, selector string) (domain.Series, error)
}

// Store is the in-process cache the service reads through.
type Store interface {
	HasRankedList() bool
	RankedList() []domain.Asset
	SetRankedList(assets []domain.Asset)
	RankedAsset(id string) (domain.Asset, bool)
	HasSeries(assetID, selector string) bool
	Series(assetID, selector string) domain.Series
	PutSeries(assetID, selector string, s domain.Series)
	SeriesCount() int
	Clear()
}

// Mirror is an optional shared tier consulted on a Store miss.
type Mirror interface {
	LoadRankedList(ctx context.Context) ([]domain.Asset, error)
	StoreRankedList(ctx context.Context, assets []domain.Asset) error
	LoadSeries(ctx context.Context, assetID, selector string) (domain.Series, error)
	StoreSeries(ctx context.Context, assetID, selector string, s domain.Series) error
	Clear(ctx context.Context) error
}

// ProgressSink receives preload notifications. Calls are made from the
// preload goroutine after the matching cache write; implementations must
// return promptly (see progress.Queue).
type ProgressSink interface {
	// AssetReady reports the default-interval series of one asset.
	AssetReady(assetID string, ok bool)
	// IntervalReady reports that every asset's series for the interval is
	// cached (ok) or that the pass ended with some of them missing.
	IntervalReady(interval string, ok bool)
}

type Config struct {
	TopN           int
	RetryDelays    []time.Duration
	BatchSize      int
	RecoveryRounds int
	BatchDelay     time.Duration
	RoundDelay     time.Duration
	// Concurrency caps the initial preload fan-out; 0 means unbounded.
	Concurrency int
	Intervals   []domain.Interval
}

func DefaultConfig() Config {
	return Config{
		TopN:           5,
		RetryDelays:    retry.DefaultDelays(),
		BatchSize:      5,
		RecoveryRounds: 3,
		BatchDelay:     5 * time.Second,
		RoundDelay:     5 * time.Second,
		Concurrency:    25,
		Intervals:      domain.Intervals,
	}
}

// FailedLoad is a preload task that was still failing after recovery.
type FailedLoad struct {
	AssetID  string `json:"asset_id"`
	Selector string `json:"selector"`
	Interval string `json:"interval"`
}

type MarketDataService struct {
	tracer   trace.Tracer
	logger   *log.Logger
	provider Provider
	store    Store
	mirror   Mirror
	retry    *retry.Policy
	cfg      Config

	flights   singleflight.Group
	preloadMu sync.Mutex
	running   atomic.Bool

	mu             sync.Mutex
	sink           ProgressSink
	failed         []FailedLoad
	intervalCounts map[string]int
}

// NewMarketDataService wires the orchestrator. mirror may be nil.
func NewMarketDataService(
	tracer trace.Tracer,
	logger *log.Logger,
	provider Provider,
	store Store,
	mirror Mirror,
	cfg Config,
) (*MarketDataService, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if store == nil {
		return nil, ErrNilStore
	}
	if logger == nil {
		logger = log.Default()
	}

	def := DefaultConfig()
	if cfg.TopN <= 0 {
		cfg.TopN = def.TopN
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = def.BatchSize
	}
	if cfg.RecoveryRounds < 0 {
		cfg.RecoveryRounds = 0
	}
	if cfg.Concurrency < 0 {
		cfg.Concurrency = 0
	}
	if len(cfg.Intervals) == 0 {
		cfg.Intervals = def.Intervals
	}

	policy := retry.New(cfg.RetryDelays, logger)
	logger = logger.WithPrefix("market-data")
	logger.Debug("retry policy", "attempts", policy.Attempts(), "delays", policy.Delays())

	return &MarketDataService{
		tracer:         tracer,
		logger:         logger,
		provider:       provider,
		store:          store,
		mirror:         mirror,
		retry:          policy,
		cfg:            cfg,
		intervalCounts: make(map[string]int),
	}, nil
}

func (s *MarketDataService) Config() Config {
	return s.cfg
}

// GetRankedList returns the cached ranked list, fetching it once on a miss.
// Concurrent callers share one fetch. A failed fetch is not cached.
func (s *MarketDataService) GetRankedList(ctx context.Context) []domain.Asset {
	if s.store.HasRankedList() {
		return s.store.RankedList()
	}

	ctx, span := s.tracer.Start(ctx, "market-data.get-ranked-list")
	defer span.End()

	_, _, shared := s.flights.Do("ranked", func() (any, error) {
		if s.store.HasRankedList() {
			return nil, nil
		}

		if s.mirror != nil {
			assets, err := s.mirror.LoadRankedList(ctx)
			if err != nil {
				s.logger.Warn("mirror read failed", "key", "ranked", "err", err)
			}
			if len(assets) > 0 {
				s.store.SetRankedList(assets)
				return nil, nil
			}
		}

		assets, err := retry.Do(ctx, s.retry, "ranked-list", func(ctx context.Context) ([]domain.Asset, error) {
			return s.provider.FetchRankedList(ctx, s.cfg.TopN)
		})
		if err != nil {
			span.RecordError(err)
			s.logger.Error("ranked list unavailable", "err", err)
			return nil, nil
		}
		if len(assets) == 0 {
			s.logger.Warn("provider returned an empty ranked list")
			return nil, nil
		}

		s.store.SetRankedList(assets)
		if s.mirror != nil {
			if err := s.mirror.StoreRankedList(ctx, assets); err != nil {
				s.logger.Warn("mirror write failed", "key", "ranked", "err", err)
			}
		}
		s.logger.Info("ranked list loaded", "count", len(assets))
		return nil, nil
	})
	span.SetAttributes(attribute.Bool("shared", shared))

	return s.store.RankedList()
}

// RankedAsset looks up an asset in the cached ranked list without fetching.
func (s *MarketDataService) RankedAsset(assetID string) (domain.Asset, bool) {
	if isBlank(assetID) {
		return domain.Asset{}, false
	}
	return s.store.RankedAsset(strings.TrimSpace(assetID))
}

// HasSeries reports whether the series is cached. Blank inputs are never cached.
func (s *MarketDataService) HasSeries(assetID, selector string) bool {
	if isBlank(assetID) || isBlank(selector) {
		return false
	}
	return s.store.HasSeries(assetID, selector)
}

// GetSeries returns the cached series for (assetID, selector), fetching it
// with retries on a miss. A blank selector means the default window. The
// result may be empty when the provider has nothing or is unavailable.
func (s *MarketDataService) GetSeries(ctx context.Context, assetID, selector string) domain.Series {
	if isBlank(assetID) {
		return domain.Series{}
	}
	if isBlank(selector) {
		selector = domain.DefaultSelector
	}
	if s.store.HasSeries(assetID, selector) {
		return s.store.Series(assetID, selector)
	}

	ctx, span := s.tracer.Start(ctx, "market-data.get-series")
	defer span.End()
	span.SetAttributes(attribute.String("asset", assetID), attribute.String("selector", selector))

	v, _, _ := s.flights.Do("series:"+assetID+":"+selector, func() (any, error) {
		if s.store.HasSeries(assetID, selector) {
			return s.store.Series(assetID, selector), nil
		}

		if s.mirror != nil {
			series, err := s.mirror.LoadSeries(ctx, assetID, selector)
			if err != nil {
				s.logger.Warn("mirror read failed", "asset", assetID, "selector", selector, "err", err)
			}
			if len(series) > 0 {
				s.store.PutSeries(assetID, selector, series)
				return series, nil
			}
		}

		series, err := retry.Do(ctx, s.retry, "series "+assetID+"/"+selector, func(ctx context.Context) (domain.Series, error) {
			return s.provider.FetchSeries(ctx, assetID, selector)
		})
		if err != nil {
			span.RecordError(err)
			s.logger.Error("series unavailable", "asset", assetID, "selector", selector, "err", err)
			return domain.Series{}, nil
		}
		if len(series) > 0 {
			s.putSeries(ctx, assetID, selector, series)
		}
		return series, nil
	})

	series, _ := v.(domain.Series)
	return series.Clone()
}

// SetProgressSink registers the collaborator notified during preloads. A nil
// sink disables notifications.
func (s *MarketDataService) SetProgressSink(sink ProgressSink) {
	s.mu.Lock()
	s.sink = sink
	s.mu.Unlock()
}

// FailedLoadCount is the number of permanently failed preload tasks since
// the last ClearCache.
func (s *MarketDataService) FailedLoadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.failed)
}

func (s *MarketDataService) FailedLoads() []FailedLoad {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]FailedLoad, len(s.failed))
	copy(out, s.failed)
	return out
}

// IntervalCounts returns the per-interval success counters of the latest preload.
func (s *MarketDataService) IntervalCounts() map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]int, len(s.intervalCounts))
	for k, v := range s.intervalCounts {
		out[k] = v
	}
	return out
}

func (s *MarketDataService) SeriesCount() int {
	return s.store.SeriesCount()
}

func (s *MarketDataService) Preloading() bool {
	return s.running.Load()
}

// ClearCache empties the cache and mirror and resets preload diagnostics.
func (s *MarketDataService) ClearCache(ctx context.Context) {
	ctx, span := s.tracer.Start(ctx, "market-data.clear-cache")
	defer span.End()

	s.store.Clear()
	if s.mirror != nil {
		if err := s.mirror.Clear(ctx); err != nil {
			s.logger.Warn("mirror clear failed", "err", err)
		}
	}

	s.mu.Lock()
	s.failed = nil
	s.intervalCounts = make(map[string]int)
	s.mu.Unlock()
	s.logger.Info("cache cleared")
}

func (s *MarketDataService) putSeries(ctx context.Context, assetID, selector string, series domain.Series) {
	s.store.PutSeries(assetID, selector, series)
	if s.mirror != nil {
		if err := s.mirror.StoreSeries(ctx, assetID, selector, series); err != nil {
			s.logger.Warn("mirror write failed", "asset", assetID, "selector", selector, "err", err)
		}
	}
}

func (s *MarketDataService) currentSink() ProgressSink {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sink
}

func isBlank(v string) bool {
	return strings.TrimSpace(v) == ""
}
