// Package render defines the narrow capability the reconciliation engine
// draws through. Platforms implement Surface; the engine never touches
// concrete widgets.
package render

import "errors"

// ErrNoTarget is returned when a surface has no element for a field.
// Callers treat it as a no-op.
var ErrNoTarget = errors.New("render: no such target")

// Screen names one of the mutually exclusive views.
type Screen string

const (
	ScreenLogin       Screen = "login"
	ScreenLobby       Screen = "lobby"
	ScreenPrep        Screen = "prep"
	ScreenSpeaker     Screen = "speaker"
	ScreenAudience    Screen = "audience"
	ScreenVoting      Screen = "voting"
	ScreenLeaderboard Screen = "leaderboard"
	ScreenHost        Screen = "host"
)

// Field names a writable region on a screen.
type Field string

const (
	FieldLobbyMessage      Field = "lobby-msg"
	FieldPrepTimer         Field = "prep-timer"
	FieldMyTeamName        Field = "my-team-name"
	FieldMyContext         Field = "my-context"
	FieldMyTeammates       Field = "my-teammates"
	FieldSpeakerTimer      Field = "speaker-timer"
	FieldPresentingTeam    Field = "presenting-team"
	FieldPresentingContext Field = "presenting-context"
	FieldVoteValue         Field = "vote-val"
	FieldFinalScores       Field = "final-scores"
	FieldWinner            Field = "winner"
	FieldHostPhase         Field = "host-phase"
	FieldHostTimer         Field = "timer-display"
	FieldHostPresenting    Field = "host-presenting"
	FieldHostParticipants  Field = "host-participants"
	FieldHostPresented     Field = "host-presented"
	FieldHostStandings     Field = "host-standings"
)

// Surface is implemented per target platform.
type Surface interface {
	// Show makes screen the only visible screen.
	Show(screen Screen)
	// SetText writes value into field. Returns ErrNoTarget when the field does not exist.
	SetText(field Field, value string) error
	// SetList replaces the items of a list field. Returns ErrNoTarget when the field does not exist.
	SetList(field Field, items []string) error
}
