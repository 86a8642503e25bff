package reconcile

import (
	"errors"
	"fmt"

	"github.com/mcdev12/workshop/go/internal/models"
)

var (
	ErrUnknownPhase      = errors.New("unknown phase")
	ErrNegativeTimer     = errors.New("negative timer")
	ErrMissingPresenter  = errors.New("presenting team required")
	ErrDanglingPresenter = errors.New("presenting team does not exist")
)

// Validate checks the guarantees a snapshot must hold to be applied at all.
// Dangling member or team references are tolerated; the router skips them.
func Validate(snap models.Snapshot) error {
	if !snap.Phase.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownPhase, snap.Phase)
	}
	if snap.TimerSeconds < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeTimer, snap.TimerSeconds)
	}
	if snap.Phase.RequiresPresenter() {
		if snap.PresentingTeamID == "" {
			return fmt.Errorf("%w in %s", ErrMissingPresenter, snap.Phase)
		}
		if _, ok := snap.PresentingTeam(); !ok {
			return fmt.Errorf("%w: %q", ErrDanglingPresenter, snap.PresentingTeamID)
		}
	}
	return nil
}
