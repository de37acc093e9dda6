package domain

import (
	"encoding/json"
	"time"
)

// Measure is a float value the provider may omit.
type Measure struct {
	Value float64
	Valid bool
}

// Present wraps v as a present measure.
func Present(v float64) Measure {
	return Measure{Value: v, Valid: true}
}

func (m Measure) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

func (m *Measure) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Measure{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Present(v)
	return nil
}

// SamplePoint is a single observation of an asset's price and volume.
type SamplePoint struct {
	Time   time.Time `json:"time"`
	Price  Measure   `json:"price"`
	Volume Measure   `json:"volume"`
}

// NewSamplePoint builds a point from a provider timestamp in epoch milliseconds.
func NewSamplePoint(epochMillis int64, price, volume Measure) SamplePoint {
	return SamplePoint{
		Time:   time.UnixMilli(epochMillis).UTC(),
		Price:  price,
		Volume: volume,
	}
}

// Series is an asset's history for one interval, in the order the provider
// delivered it.
type Series []SamplePoint

// Clone returns a copy that shares no memory with s.
func (s Series) Clone() Series {
	if s == nil {
		return Series{}
	}
	out := make(Series, len(s))
	copy(out, s)
	return out
}

// Interval maps a display window to the selector string sent to the provider.
type Interval struct {
	Name     string `json:"name"`
	Selector string `json:"selector"`
}

// DefaultSelector is the shortest window; blank selectors resolve to it.
const DefaultSelector = "1"

// Intervals is the ordered catalog of windows preloaded for every asset.
var Intervals = []Interval{
	{Name: "1D", Selector: "1"},
	{Name: "1W", Selector: "7"},
	{Name: "1M", Selector: "30"},
	{Name: "3M", Selector: "90"},
	{Name: "1Y", Selector: "365"},
}

// IntervalByName looks up a catalog entry by display name ("1W").
func IntervalByName(name string) (Interval, bool) {
	for _, iv := range Intervals {
		if iv.Name == name {
			return iv, true
		}
	}
	return Interval{}, false
}

// IntervalBySelector looks up a catalog entry by provider selector ("7").
func IntervalBySelector(selector string) (Interval, bool) {
	for _, iv := range Intervals {
		if iv.Selector == selector {
			return iv, true
		}
	}
	return Interval{}, false
}
