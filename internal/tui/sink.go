package tui

import tea "github.com/charmbracelet/bubbletea"

// ProgramSink turns progress notifications into messages for a running
// program. tea.Program.Send blocks while the program is busy, so callers
// should put a progress.Queue in front of it.
type ProgramSink struct {
	send func(tea.Msg)
}

// Sender is satisfied by *tea.Program.
type Sender interface {
	Send(msg tea.Msg)
}

func NewProgramSink(p Sender) *ProgramSink {
	return &ProgramSink{send: p.Send}
}

func (s *ProgramSink) AssetReady(assetID string, ok bool) {
	s.send(AssetReadyMsg{ID: assetID, OK: ok})
}

func (s *ProgramSink) IntervalReady(interval string, ok bool) {
	s.send(IntervalReadyMsg{Name: interval, OK: ok})
}
