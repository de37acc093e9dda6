package tui

import (
	"strings"
	"testing"
	"time"

	"cryptoboard/internal/domain"
	"cryptoboard/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

func testModel() PreloadModel {
	assets := []domain.Asset{
		{ID: "bitcoin", Name: "Bitcoin", Symbol: "BTC"},
		{ID: "ethereum", Name: "Ethereum", Symbol: "ETH"},
	}
	intervals := []domain.Interval{{Name: "1D", Selector: "1"}, {Name: "1W", Selector: "7"}}
	return NewPreloadModel(assets, intervals)
}

func update(t *testing.T, m PreloadModel, msg tea.Msg) (PreloadModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	pm, ok := next.(PreloadModel)
	if !ok {
		t.Fatalf("unexpected model type %T", next)
	}
	return pm, cmd
}

func TestPreloadModelTracksProgress(t *testing.T) {
	t.Parallel()

	m := testModel()
	if got := m.Percent(); got != 0 {
		t.Fatalf("expected 0%%, got %v", got)
	}

	m, _ = update(t, m, AssetReadyMsg{ID: "bitcoin", OK: true})
	m, _ = update(t, m, AssetReadyMsg{ID: "ethereum", OK: false})
	if got := m.Percent(); got != 0.5 {
		t.Fatalf("expected 50%%, got %v", got)
	}

	m, _ = update(t, m, IntervalReadyMsg{Name: "1D", OK: true})
	if got := m.Percent(); got != 0.75 {
		t.Fatalf("expected 75%%, got %v", got)
	}

	view := m.View()
	for _, want := range []string{"Bitcoin", "Ethereum", "1D", "1W", "✓", "✗"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestPreloadModelRepeatedEventsCountOnce(t *testing.T) {
	t.Parallel()

	m := testModel()
	for i := 0; i < 3; i++ {
		m, _ = update(t, m, AssetReadyMsg{ID: "bitcoin", OK: true})
	}
	if got := m.Percent(); got != 0.25 {
		t.Fatalf("expected 25%%, got %v", got)
	}
}

func TestPreloadModelQuitsWhenDone(t *testing.T) {
	t.Parallel()

	m := testModel()
	m, cmd := update(t, m, PreloadDoneMsg{Report: service.PreloadReport{Elapsed: 1500 * time.Millisecond}})
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("expected QuitMsg")
	}
	if m.Percent() != 1 {
		t.Fatalf("expected complete bar after done")
	}
	if !strings.Contains(m.View(), "done in 1.5s") {
		t.Fatalf("expected elapsed time in view, got:\n%s", m.View())
	}
	if m.Aborted() {
		t.Fatalf("done should not count as aborted")
	}
}

func TestPreloadModelAbortKey(t *testing.T) {
	t.Parallel()

	m := testModel()
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil || !m.Aborted() {
		t.Fatalf("expected q to abort")
	}

	m = testModel()
	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	if cmd != nil || m.Aborted() {
		t.Fatalf("unexpected abort on other key")
	}
}

func TestPreloadModelEmpty(t *testing.T) {
	t.Parallel()

	m := NewPreloadModel(nil, nil)
	if m.Percent() != 1 {
		t.Fatalf("empty model should be complete")
	}
}

func TestProgramSinkSendsMessages(t *testing.T) {
	t.Parallel()

	var got []tea.Msg
	sink := &ProgramSink{send: func(msg tea.Msg) { got = append(got, msg) }}
	sink.AssetReady("bitcoin", true)
	sink.IntervalReady("1W", false)

	if len(got) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(got))
	}
	if msg, ok := got[0].(AssetReadyMsg); !ok || msg.ID != "bitcoin" || !msg.OK {
		t.Fatalf("unexpected first message %#v", got[0])
	}
	if msg, ok := got[1].(IntervalReadyMsg); !ok || msg.Name != "1W" || msg.OK {
		t.Fatalf("unexpected second message %#v", got[1])
	}
}
