package gateway

import (
	"errors"

	"github.com/mcdev12/workshop/go/internal/models"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

// ErrNotConnected is returned by Send while no connection to the coordinator is up.
var ErrNotConnected = errors.New("not connected to coordinator")

// Handler receives decoded coordinator messages. Implementations must not block;
// the session controller only queues them.
type Handler interface {
	HandleSnapshot(snap models.Snapshot)
	HandleRestart()
	HandleIdentityConfirmed(id models.Identity)
	// HandleConnected is called after every successful (re)connect.
	HandleConnected()
}

// Dispatch routes a decoded message to the matching handler method.
func Dispatch(h Handler, in events.Inbound) {
	switch m := in.(type) {
	case events.StateUpdate:
		h.HandleSnapshot(m.Snapshot)
	case events.SessionRestart:
		h.HandleRestart()
	case events.IdentityConfirmed:
		h.HandleIdentityConfirmed(m.Identity)
	default:
		log.Warn().Msgf("unhandled inbound message %T", in)
	}
}
