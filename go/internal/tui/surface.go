package tui

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcdev12/workshop/go/internal/render"
)

type showMsg struct{ screen render.Screen }

type textMsg struct {
	field render.Field
	value string
}

type listMsg struct {
	field render.Field
	items []string
}

// fields the model draws
var knownFields = map[render.Field]bool{
	render.FieldLobbyMessage:      true,
	render.FieldPrepTimer:         true,
	render.FieldMyTeamName:        true,
	render.FieldMyContext:         true,
	render.FieldMyTeammates:       true,
	render.FieldSpeakerTimer:      true,
	render.FieldPresentingTeam:    true,
	render.FieldPresentingContext: true,
	render.FieldVoteValue:         true,
	render.FieldFinalScores:       true,
	render.FieldWinner:            true,
	render.FieldHostPhase:         true,
	render.FieldHostTimer:         true,
	render.FieldHostPresenting:    true,
	render.FieldHostParticipants:  true,
	render.FieldHostPresented:     true,
	render.FieldHostStandings:     true,
}

// Surface forwards render calls into the bubbletea program as messages.
type Surface struct {
	send func(tea.Msg)
}

// NewSurface creates a Surface that delivers messages through send, usually tea.Program.Send.
func NewSurface(send func(tea.Msg)) *Surface {
	return &Surface{send: send}
}

func (s *Surface) Show(screen render.Screen) {
	s.send(showMsg{screen: screen})
}

func (s *Surface) SetText(field render.Field, value string) error {
	if !knownFields[field] {
		return render.ErrNoTarget
	}
	s.send(textMsg{field: field, value: value})
	return nil
}

func (s *Surface) SetList(field render.Field, items []string) error {
	if !knownFields[field] {
		return render.ErrNoTarget
	}
	s.send(listMsg{field: field, items: slices.Clone(items)})
	return nil
}
