package reconcile

import "github.com/mcdev12/workshop/go/internal/models"

// Outcome is the result of a vote attempt.
type Outcome string

const (
	OutcomeAccepted        Outcome = "accepted"
	OutcomeAlreadyConsumed Outcome = "already_consumed"
	OutcomeClosed          Outcome = "closed"
)

// Epoch identifies a phase instance; a voting round is (VOTING, presenting team).
type Epoch struct {
	Phase            models.Phase
	PresentingTeamID string
}

// EpochOf returns the epoch a snapshot belongs to.
func EpochOf(snap models.Snapshot) Epoch {
	return Epoch{Phase: snap.Phase, PresentingTeamID: snap.PresentingTeamID}
}

// Voting reports whether the epoch is an open voting round.
func (e Epoch) Voting() bool {
	return e.Phase == models.PhaseVoting && e.PresentingTeamID != ""
}

// Guard accepts at most one vote per voting round. Re-renders and repeated
// snapshots of the same round never clear it; only an epoch change does.
type Guard struct {
	epoch Epoch
	voted bool
}

// Observe records the epoch of an applied snapshot, clearing the vote flag if it changed.
// It reports whether the epoch changed.
func (g *Guard) Observe(snap models.Snapshot) bool {
	next := EpochOf(snap)
	if next == g.epoch {
		return false
	}
	g.epoch = next
	g.voted = false
	return true
}

// TryConsume claims the vote for the current round.
func (g *Guard) TryConsume() Outcome {
	if !g.epoch.Voting() {
		return OutcomeClosed
	}
	if g.voted {
		return OutcomeAlreadyConsumed
	}
	g.voted = true
	return OutcomeAccepted
}

// Release undoes an accepted claim whose message never left the device.
func (g *Guard) Release() {
	g.voted = false
}

// HasVoted reports whether the current round's vote was accepted.
func (g *Guard) HasVoted() bool {
	return g.voted
}

// Epoch returns the epoch last observed.
func (g *Guard) Epoch() Epoch {
	return g.epoch
}

// Reset forgets the observed epoch.
func (g *Guard) Reset() {
	*g = Guard{}
}
