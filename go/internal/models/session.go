package models

// Phase defines the stage the session is in.
type Phase string

const (
	PhaseLobby       Phase = "LOBBY"
	PhasePrep        Phase = "PREP"
	PhasePresenting  Phase = "PRESENTING"
	PhaseVoting      Phase = "VOTING"
	PhaseLeaderboard Phase = "LEADERBOARD"
)

// Valid reports whether p is one of the known phases.
func (p Phase) Valid() bool {
	switch p {
	case PhaseLobby, PhasePrep, PhasePresenting, PhaseVoting, PhaseLeaderboard:
		return true
	}
	return false
}

// RequiresPresenter reports whether snapshots in this phase must name a presenting team.
func (p Phase) RequiresPresenter() bool {
	return p == PhasePresenting || p == PhaseVoting
}

// Snapshot is the complete session state pushed by the coordinator.
// Seq is optional; zero means the coordinator did not number the snapshot.
type Snapshot struct {
	Seq              uint64          `json:"seq,omitempty"`
	Phase            Phase           `json:"phase"`
	TimerSeconds     int             `json:"timer"`
	Users            map[string]User `json:"users"`
	Teams            map[string]Team `json:"teams"`
	PresentingTeamID string          `json:"presenting_team_id,omitempty"`
	PresentedTeams   []string        `json:"presented_teams,omitempty"`
}

// User looks up a user by id.
func (s Snapshot) User(id string) (User, bool) {
	u, ok := s.Users[id]
	return u, ok
}

// Team looks up a team by id. An empty id never matches.
func (s Snapshot) Team(id string) (Team, bool) {
	if id == "" {
		return Team{}, false
	}
	t, ok := s.Teams[id]
	return t, ok
}

// PresentingTeam returns the team currently on stage, if any.
func (s Snapshot) PresentingTeam() (Team, bool) {
	return s.Team(s.PresentingTeamID)
}
