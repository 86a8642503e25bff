package reconcile

import (
	"errors"

	"github.com/mcdev12/workshop/go/internal/models"
)

// ErrStaleSnapshot is returned when a numbered snapshot is older than the one already applied.
var ErrStaleSnapshot = errors.New("stale snapshot")

// Transition describes what one applied snapshot changed.
// PreviousPhase is the phase before this snapshot; consumers of the current
// cycle read it from here.
type Transition struct {
	Snapshot      models.Snapshot
	PreviousPhase models.Phase
	HadPrevious   bool
	PhaseChanged  bool
}

// Store holds the current snapshot and the phase of the one before it.
// It is owned by the controller goroutine and is not safe for concurrent use.
type Store struct {
	current *models.Snapshot
	lastSeq uint64
}

// Apply replaces the current snapshot. Snapshots without a sequence number
// always win; numbered snapshots older than the current one are discarded.
func (s *Store) Apply(snap models.Snapshot) (Transition, error) {
	if s.current == nil {
		s.current = &snap
		s.lastSeq = snap.Seq
		return Transition{Snapshot: snap, PhaseChanged: true}, nil
	}

	prev := *s.current
	if snap.Seq != 0 && s.lastSeq != 0 && snap.Seq < s.lastSeq {
		return Transition{}, ErrStaleSnapshot
	}

	s.current = &snap
	s.lastSeq = snap.Seq
	return Transition{
		Snapshot:      snap,
		PreviousPhase: prev.Phase,
		HadPrevious:   true,
		PhaseChanged:  prev.Phase != snap.Phase,
	}, nil
}

// Current returns the last applied snapshot.
func (s *Store) Current() (models.Snapshot, bool) {
	if s.current == nil {
		return models.Snapshot{}, false
	}
	return *s.current, true
}

// ResetSeq forgets the sequence baseline while keeping the current snapshot.
// The next numbered snapshot is accepted whatever its number, so a coordinator
// or stream that restarted its numbering is followed instead of ignored.
func (s *Store) ResetSeq() {
	s.lastSeq = 0
}

// Reset forgets every applied snapshot.
func (s *Store) Reset() {
	s.current = nil
	s.lastSeq = 0
}
