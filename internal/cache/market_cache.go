package cache

import (
	"sync"

	"cryptoboard/internal/domain"
)

type seriesKey struct {
	assetID  string
	selector string
}

// MarketCache holds the current ranked-asset snapshot and the fetched series
// keyed by (asset id, interval selector). It is safe for concurrent use and
// never hands out references to its internal collections.
type MarketCache struct {
	mu     sync.RWMutex
	ranked []domain.Asset
	series map[seriesKey]domain.Series
}

func NewMarketCache() *MarketCache {
	return &MarketCache{series: make(map[seriesKey]domain.Series)}
}

func (c *MarketCache) HasRankedList() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.ranked) > 0
}

// RankedList returns a copy of the snapshot, or an empty slice if none is stored.
func (c *MarketCache) RankedList() []domain.Asset {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Asset, len(c.ranked))
	copy(out, c.ranked)
	return out
}

// SetRankedList replaces the snapshot. An empty list clears the slot rather
// than storing an empty snapshot.
func (c *MarketCache) SetRankedList(assets []domain.Asset) {
	var snapshot []domain.Asset
	if len(assets) > 0 {
		snapshot = make([]domain.Asset, len(assets))
		copy(snapshot, assets)
	}

	c.mu.Lock()
	c.ranked = snapshot
	c.mu.Unlock()
}

// RankedAsset finds an asset in the snapshot by identity.
func (c *MarketCache) RankedAsset(id string) (domain.Asset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, a := range c.ranked {
		if a.Key() == id {
			return a, true
		}
	}
	return domain.Asset{}, false
}

func (c *MarketCache) HasSeries(assetID, selector string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.series[seriesKey{assetID, selector}]
	return ok
}

// Series returns a copy of the stored series, empty if the key is absent.
func (c *MarketCache) Series(assetID, selector string) domain.Series {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.series[seriesKey{assetID, selector}].Clone()
}

func (c *MarketCache) PutSeries(assetID, selector string, s domain.Series) {
	stored := s.Clone()

	c.mu.Lock()
	c.series[seriesKey{assetID, selector}] = stored
	c.mu.Unlock()
}

// SeriesCount is the number of distinct (asset, selector) keys stored.
func (c *MarketCache) SeriesCount() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.series)
}

func (c *MarketCache) Clear() {
	c.mu.Lock()
	c.ranked = nil
	c.series = make(map[seriesKey]domain.Series)
	c.mu.Unlock()
}
