package reconcile

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mcdev12/workshop/go/internal/models"
	"github.com/mcdev12/workshop/go/internal/render"
)

// Lobby messages
const (
	MessageWaiting        = "Waiting for the host..."
	MessageAudienceVoting = "Audience is voting..."
	MessageVoteSent       = "Vote Sent. Waiting..."
)

// DefaultVote is the position the vote input resets to when a round opens.
const DefaultVote = 5

// RouteInput is everything the router reads.
type RouteInput struct {
	Snapshot      models.Snapshot
	Identity      models.Identity
	Role          Role
	PreviousPhase models.Phase
	HadPrevious   bool
	HasVoted      bool
}

// View is the selected screen plus the data bound to it.
type View struct {
	Screen  render.Screen
	Message string

	TeamName    string
	TeamContext string
	Members     []string

	// TimerFields are the countdown targets for this screen.
	TimerFields []render.Field

	// ResetVote is set on first entry into a voting round.
	ResetVote bool

	Standings []Standing

	// host only
	Participants int
	Connected    int
	Presented    int
	Teams        int
}

// Standing is one leaderboard row.
type Standing struct {
	TeamID string
	Name   string
	Score  float64
	Winner bool
}

// Line formats a standing for a list display.
func (s Standing) Line() string {
	return fmt.Sprintf("%s: %.1f pts", s.Name, s.Score)
}

// Route selects the single view for the local device.
func Route(in RouteInput) View {
	if in.Role == RoleHost {
		return routeHost(in.Snapshot)
	}

	snap := in.Snapshot
	me, ok := snap.User(in.Identity.UserID)
	if in.Identity.IsZero() || !ok {
		return View{Screen: render.ScreenLogin}
	}

	switch snap.Phase {
	case models.PhaseLobby:
		return View{Screen: render.ScreenLobby, Message: MessageWaiting}

	case models.PhasePrep:
		v := View{Screen: render.ScreenPrep, TimerFields: []render.Field{render.FieldPrepTimer}}
		if team, ok := snap.Team(me.TeamID); ok {
			v.TeamName = team.Name
			v.TeamContext = team.Context
			v.Members = memberNames(snap, team)
		}
		return v

	case models.PhasePresenting:
		if me.TeamID != "" && me.TeamID == snap.PresentingTeamID {
			return View{Screen: render.ScreenSpeaker, TimerFields: []render.Field{render.FieldSpeakerTimer}}
		}
		v := View{Screen: render.ScreenAudience}
		if team, ok := snap.PresentingTeam(); ok {
			v.TeamName = team.Name
			v.TeamContext = team.Context
		}
		return v

	case models.PhaseVoting:
		if me.TeamID != "" && me.TeamID == snap.PresentingTeamID {
			return View{Screen: render.ScreenLobby, Message: MessageAudienceVoting}
		}
		if in.HasVoted {
			return View{Screen: render.ScreenLobby, Message: MessageVoteSent}
		}
		v := View{
			Screen:    render.ScreenVoting,
			ResetVote: !in.HadPrevious || in.PreviousPhase != models.PhaseVoting,
		}
		if team, ok := snap.PresentingTeam(); ok {
			v.TeamName = team.Name
		}
		return v

	case models.PhaseLeaderboard:
		return View{Screen: render.ScreenLeaderboard, Standings: RankTeams(snap.Teams)}
	}

	// Validate keeps unknown phases out; show the lobby rather than nothing.
	return View{Screen: render.ScreenLobby, Message: MessageWaiting}
}

func routeHost(snap models.Snapshot) View {
	v := View{
		Screen:       render.ScreenHost,
		Message:      string(snap.Phase),
		TimerFields:  []render.Field{render.FieldHostTimer},
		Standings:    RankTeams(snap.Teams),
		Participants: len(snap.Users),
		Teams:        len(snap.Teams),
	}
	for _, u := range snap.Users {
		if u.Connected {
			v.Connected++
		}
	}
	// ids of deleted teams do not count
	seen := make(map[string]bool, len(snap.PresentedTeams))
	for _, id := range snap.PresentedTeams {
		if _, ok := snap.Team(id); ok && !seen[id] {
			seen[id] = true
			v.Presented++
		}
	}
	if team, ok := snap.PresentingTeam(); ok {
		v.TeamName = team.Name
		v.TeamContext = team.Context
	}
	return v
}

// memberNames resolves member ids in team order, skipping ids with no user.
func memberNames(snap models.Snapshot, team models.Team) []string {
	names := make([]string, 0, len(team.Members))
	for _, id := range team.Members {
		if u, ok := snap.User(id); ok {
			names = append(names, u.Name)
		}
	}
	return names
}

// RankTeams orders teams by score, highest first. Equal scores are ordered by
// team name, then id, so every device shows the same order. The first row is
// the winner.
func RankTeams(teams map[string]models.Team) []Standing {
	standings := make([]Standing, 0, len(teams))
	for id, t := range teams {
		if t.ID != "" {
			id = t.ID
		}
		standings = append(standings, Standing{TeamID: id, Name: t.Name, Score: t.Score})
	}

	slices.SortStableFunc(standings, func(a, b Standing) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.TeamID, b.TeamID)
	})

	if len(standings) > 0 {
		standings[0].Winner = true
	}
	return standings
}
