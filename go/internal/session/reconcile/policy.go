package reconcile

import (
	"errors"
	"fmt"
	"strings"
)

// Role is the local device's part in the session.
type Role string

const (
	RoleParticipant Role = "participant"
	RoleHost        Role = "host"
)

// TimerPolicy decides how pushed timer values reach the screen.
type TimerPolicy string

const (
	// TimerReseed restarts the local countdown from every applied snapshot,
	// bounding drift to one push interval.
	TimerReseed TimerPolicy = "reseed"
	// TimerMirror writes the pushed value as is and never ticks locally.
	TimerMirror TimerPolicy = "mirror"
)

var (
	ErrUnknownRole   = errors.New("unknown role")
	ErrUnknownPolicy = errors.New("unknown timer policy")
)

// ParseRole parses a role name, case-insensitively.
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleParticipant, RoleHost:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// ParseTimerPolicy parses a timer policy name. An empty string yields the role's default.
func ParseTimerPolicy(s string, role Role) (TimerPolicy, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultTimerPolicy(role), nil
	}
	switch p := TimerPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case TimerReseed, TimerMirror:
		return p, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPolicy, s)
}

// DefaultTimerPolicy returns the policy a role uses unless configured otherwise.
// The host screen sits next to the coordinator's own display, so it mirrors.
func DefaultTimerPolicy(role Role) TimerPolicy {
	if role == RoleHost {
		return TimerMirror
	}
	return TimerReseed
}
