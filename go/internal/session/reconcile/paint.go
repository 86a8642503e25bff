package reconcile

import (
	"strconv"

	"github.com/mcdev12/workshop/go/internal/render"
)

// Paint shows the view's screen and writes its bound data. Writes to missing
// targets are skipped. The countdown fields are left to the extrapolator.
func Paint(s render.Surface, v View) {
	s.Show(v.Screen)

	switch v.Screen {
	case render.ScreenLobby:
		setText(s, render.FieldLobbyMessage, v.Message)

	case render.ScreenPrep:
		// no team yet: leave the screen's placeholders alone
		if v.TeamName != "" {
			setText(s, render.FieldMyTeamName, v.TeamName)
			setText(s, render.FieldMyContext, v.TeamContext)
			setList(s, render.FieldMyTeammates, v.Members)
		}

	case render.ScreenAudience:
		if v.TeamName != "" {
			setText(s, render.FieldPresentingTeam, v.TeamName)
			setText(s, render.FieldPresentingContext, v.TeamContext)
		}

	case render.ScreenVoting:
		if v.TeamName != "" {
			setText(s, render.FieldPresentingTeam, v.TeamName)
		}
		if v.ResetVote {
			setText(s, render.FieldVoteValue, strconv.Itoa(DefaultVote))
		}

	case render.ScreenLeaderboard:
		setList(s, render.FieldFinalScores, standingLines(v.Standings))
		if len(v.Standings) > 0 {
			setText(s, render.FieldWinner, v.Standings[0].Name)
		}

	case render.ScreenHost:
		setText(s, render.FieldHostPhase, v.Message)
		setText(s, render.FieldHostPresenting, v.TeamName)
		setText(s, render.FieldHostParticipants, strconv.Itoa(v.Connected)+"/"+strconv.Itoa(v.Participants))
		setText(s, render.FieldHostPresented, strconv.Itoa(v.Presented)+"/"+strconv.Itoa(v.Teams))
		setList(s, render.FieldHostStandings, standingLines(v.Standings))
	}
}

func standingLines(standings []Standing) []string {
	lines := make([]string, len(standings))
	for i, st := range standings {
		lines[i] = st.Line()
	}
	return lines
}

func setText(s render.Surface, field render.Field, value string) {
	if err := s.SetText(field, value); err != nil {
		logWriteError(field, err)
	}
}

func setList(s render.Surface, field render.Field, items []string) {
	if err := s.SetList(field, items); err != nil {
		logWriteError(field, err)
	}
}
