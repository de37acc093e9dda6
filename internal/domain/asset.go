package domain

import (
	"fmt"
	"math"
	"strings"

	"github.com/dustin/go-humanize"
)

// Asset is one entry of the ranked market list. Two assets are the same
// asset when their IDs match, regardless of the other fields.
type Asset struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Symbol            string  `json:"symbol"`
	Price             float64 `json:"price"`
	Change24h         float64 `json:"change_24h_pct"`
	MarketCap         string  `json:"market_cap"`
	Volume            string  `json:"volume"`
	CirculatingSupply string  `json:"circulating_supply"`
}

// Key returns the identity of the asset, suitable as a map key.
func (a Asset) Key() string {
	return a.ID
}

// Equal reports whether a and other identify the same asset.
func (a Asset) Equal(other Asset) bool {
	return a.ID == other.ID
}

// PriceFormatted renders the price as "$50,000.00".
func (a Asset) PriceFormatted() string {
	return "$" + humanize.FormatFloat("#,###.##", a.Price)
}

// ChangeFormatted renders the 24h change with a direction marker, e.g. "▲2.50%".
func (a Asset) ChangeFormatted() string {
	marker := "▲"
	if a.Change24h < 0 {
		marker = "▼"
	}
	return fmt.Sprintf("%s%.2f%%", marker, math.Abs(a.Change24h))
}

var magnitudes = []struct {
	threshold float64
	suffix    string
}{
	{1e12, "T"},
	{1e9, "B"},
	{1e6, "M"},
	{1e3, "K"},
}

// FormatMoneyShort abbreviates a currency amount: 1_000_000_000_000 -> "$1T",
// 1_234_567 -> "$1.23M". Non-positive or non-finite values render as "$0".
func FormatMoneyShort(v float64) string {
	return "$" + FormatNumberShort(v)
}

// FormatNumberShort abbreviates a count with a K/M/B/T suffix and at most two
// decimals. Non-positive or non-finite values render as "0".
func FormatNumberShort(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return "0"
	}
	for _, m := range magnitudes {
		if v >= m.threshold {
			return humanize.CommafWithDigits(round2(v/m.threshold), 2) + m.suffix
		}
	}
	return humanize.CommafWithDigits(round2(v), 2)
}

// CommafWithDigits truncates, so round first.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// NormalizeSymbol upper-cases a ticker symbol as delivered by the provider.
func NormalizeSymbol(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
