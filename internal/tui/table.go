package tui

import (
	"fmt"
	"strconv"
	"strings"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/service"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	upStyle     = cellStyle.Foreground(lipgloss.Color("42"))
	downStyle   = cellStyle.Foreground(lipgloss.Color("196"))
)

const changeColumn = 4

// AssetTable renders the ranked list as a bordered table.
func AssetTable(assets []domain.Asset) string {
	rows := make([][]string, 0, len(assets))
	for i, a := range assets {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			a.Name,
			a.Symbol,
			a.PriceFormatted(),
			a.ChangeFormatted(),
			a.MarketCap,
			a.Volume,
			a.CirculatingSupply,
		})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		Headers("#", "NAME", "SYMBOL", "PRICE", "24H", "MARKET CAP", "VOLUME", "SUPPLY").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == changeColumn && row >= 0 && row < len(assets) {
				if assets[row].Change24h < 0 {
					return downStyle
				}
				return upStyle
			}
			return cellStyle
		})
	return t.Render()
}

// FailureSummary lists permanently failed loads, or reports that none failed.
func FailureSummary(failed []service.FailedLoad) string {
	if len(failed) == 0 {
		return readyStyle.Render("All series loaded.")
	}
	var sb strings.Builder
	sb.WriteString(failedStyle.Render(fmt.Sprintf("%d series could not be loaded:", len(failed))))
	for _, f := range failed {
		fmt.Fprintf(&sb, "\n  %s %s", f.AssetID, f.Interval)
	}
	return sb.String()
}
