package events

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mcdev12/workshop/go/internal/models"
)

// Type names a message exchanged with the coordinator
type Type string

const (
	// coordinator -> client
	TypeStateUpdate       Type = "state_update"
	TypeSessionRestart    Type = "session_restart"
	TypeIdentityConfirmed Type = "identity_confirmed"

	// client -> coordinator
	TypeJoinSession            Type = "join_session"
	TypeCastVote               Type = "cast_vote"
	TypeHostCreateTeams        Type = "host_create_teams"
	TypeHostStartPrep          Type = "host_start_prep"
	TypeHostStartPresentations Type = "host_start_presentations"
	TypeHostNextStep           Type = "host_next_step"
)

// ErrUnknownType is returned when an inbound envelope carries a type the client does not handle.
var ErrUnknownType = errors.New("unknown message type")

// Envelope is the wire frame for every message.
type Envelope struct {
	Type Type            `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// JoinSessionPayload is the payload for a join_session message
type JoinSessionPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// CastVotePayload is the payload for a cast_vote message
type CastVotePayload struct {
	UserID string `json:"user_id"`
	Score  int    `json:"score"`
}

// IdentityConfirmedPayload is the payload for an identity_confirmed message
type IdentityConfirmedPayload struct {
	UserID string `json:"user_id"`
	Name   string `json:"name"`
}

// HostCreateTeamsPayload is the payload for a host_create_teams message
type HostCreateTeamsPayload struct {
	NumTeams int `json:"num_teams"`
}

// HostStartPrepPayload is the payload for a host_start_prep message
type HostStartPrepPayload struct {
	Seconds int `json:"seconds"`
}

// Inbound is a decoded coordinator message.
type Inbound interface{ isInbound() }

// StateUpdate carries a full session snapshot.
type StateUpdate struct {
	Snapshot models.Snapshot
}

// SessionRestart tells the client to forget its identity and state.
type SessionRestart struct{}

// IdentityConfirmed acknowledges a join.
type IdentityConfirmed struct {
	Identity models.Identity
}

func (StateUpdate) isInbound()       {}
func (SessionRestart) isInbound()    {}
func (IdentityConfirmed) isInbound() {}

// Encode builds the wire frame for an outbound message. A nil payload produces an envelope without data.
func Encode(t Type, payload any) ([]byte, error) {
	env := Envelope{Type: t}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("marshal %s payload: %w", t, err)
		}
		env.Data = data
	}
	return json.Marshal(env)
}

// Decode parses a wire frame into an inbound message.
func Decode(frame []byte) (Inbound, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return nil, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return DecodePayload(env.Type, env.Data)
}

// DecodePayload parses the data of an inbound message whose type is already known.
func DecodePayload(t Type, data json.RawMessage) (Inbound, error) {
	switch t {
	case TypeStateUpdate:
		var snap models.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", t, err)
		}
		return StateUpdate{Snapshot: snap}, nil

	case TypeSessionRestart:
		return SessionRestart{}, nil

	case TypeIdentityConfirmed:
		var p IdentityConfirmedPayload
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("unmarshal %s: %w", t, err)
		}
		return IdentityConfirmed{Identity: models.Identity{UserID: p.UserID, Name: p.Name}}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, t)
	}
}
