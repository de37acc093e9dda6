package tui

import (
	"strings"
	"testing"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/service"
)

func TestAssetTable(t *testing.T) {
	t.Parallel()

	out := AssetTable([]domain.Asset{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC", Price: 50000, Change24h: 2.5, MarketCap: "$1T"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH", Price: 3000, Change24h: -1.25},
	})
	for _, want := range []string{"NAME", "Bitcoin", "BTC", "$50,000.00", "▲2.50%", "▼1.25%", "$1T", "Ethereum"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected table to contain %q", want)
		}
	}
}

func TestFailureSummary(t *testing.T) {
	t.Parallel()

	if out := FailureSummary(nil); !strings.Contains(out, "All series loaded") {
		t.Fatalf("unexpected summary %q", out)
	}

	out := FailureSummary([]service.FailedLoad{
		{AssetID: "bitcoin", Selector: "7", Interval: "1W"},
	})
	if !strings.Contains(out, "1 series") || !strings.Contains(out, "bitcoin 1W") {
		t.Fatalf("unexpected summary %q", out)
	}
}
