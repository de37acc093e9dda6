// Package tui renders preload progress and the ranked asset table in a terminal.
package tui

import (
	"fmt"
	"strings"
	"time"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/service"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type AssetReadyMsg struct {
	ID string
	OK bool
}

type IntervalReadyMsg struct {
	Name string
	OK   bool
}

type PreloadDoneMsg struct {
	Report service.PreloadReport
}

type state int

const (
	statePending state = iota
	stateReady
	stateFailed
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	readyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Italic(true)
)

// PreloadModel shows which assets and intervals have been loaded.
type PreloadModel struct {
	assets    []domain.Asset
	intervals []domain.Interval
	assetSt   map[string]state
	ivSt      map[string]state
	bar       progress.Model
	started   time.Time
	report    *service.PreloadReport
	aborted   bool
}

func NewPreloadModel(assets []domain.Asset, intervals []domain.Interval) PreloadModel {
	m := PreloadModel{
		assets:    assets,
		intervals: intervals,
		assetSt:   make(map[string]state, len(assets)),
		ivSt:      make(map[string]state, len(intervals)),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(40)),
		started:   time.Now(),
	}
	return m
}

func (m PreloadModel) Init() tea.Cmd {
	return nil
}

func (m PreloadModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.bar.Width = min(max(msg.Width-4, 10), 80)
	case AssetReadyMsg:
		m.assetSt[msg.ID] = resolve(msg.OK)
	case IntervalReadyMsg:
		m.ivSt[msg.Name] = resolve(msg.OK)
	case PreloadDoneMsg:
		report := msg.Report
		m.report = &report
		return m, tea.Quit
	}
	return m, nil
}

func resolve(ok bool) state {
	if ok {
		return stateReady
	}
	return stateFailed
}

// Percent is the share of assets and intervals that reached a final state.
func (m PreloadModel) Percent() float64 {
	total := len(m.assets) + len(m.intervals)
	if total == 0 {
		return 1
	}
	if m.report != nil {
		return 1
	}
	done := 0
	for _, s := range m.assetSt {
		if s != statePending {
			done++
		}
	}
	for _, s := range m.ivSt {
		if s != statePending {
			done++
		}
	}
	return min(float64(done)/float64(total), 1)
}

func (m PreloadModel) Aborted() bool {
	return m.aborted
}

func (m PreloadModel) View() string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Preloading market data"))
	sb.WriteString("\n\n")
	sb.WriteString(m.bar.ViewAs(m.Percent()))
	sb.WriteString("\n\n")

	for _, a := range m.assets {
		fmt.Fprintf(&sb, "  %s %s\n", marker(m.assetSt[a.ID]), a.Name)
	}
	sb.WriteString("\n  ")
	for _, iv := range m.intervals {
		fmt.Fprintf(&sb, "%s %s  ", marker(m.ivSt[iv.Name]), iv.Name)
	}
	sb.WriteString("\n\n")

	if m.report != nil {
		fmt.Fprintf(&sb, "  done in %s\n", m.report.Elapsed.Round(time.Millisecond))
	} else {
		fmt.Fprintf(&sb, "  %s\n", helpStyle.Render(fmt.Sprintf("elapsed %s, q to abort", time.Since(m.started).Round(time.Second))))
	}
	return sb.String()
}

func marker(s state) string {
	switch s {
	case stateReady:
		return readyStyle.Render("✓")
	case stateFailed:
		return failedStyle.Render("✗")
	default:
		return pendingStyle.Render("·")
	}
}
