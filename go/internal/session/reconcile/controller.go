package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/workshop/go/internal/models"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/rs/zerolog/log"
)

const (
	inboxSize = 64
	maxScore  = 10
)

var (
	ErrStopped         = errors.New("controller stopped")
	ErrNameRequired    = errors.New("name required")
	ErrNotJoined       = errors.New("not joined")
	ErrScoreOutOfRange = errors.New("score out of range")
	ErrNotHost         = errors.New("host commands require the host role")
	ErrParticipantOnly = errors.New("only participants can join or vote")
	ErrNotHostCommand  = errors.New("not a host command")
)

// Transport sends outbound messages to the coordinator.
type Transport interface {
	Send(ctx context.Context, t events.Type, payload any) error
}

// IdentityStore persists the local identity. Load returns a zero identity when none is stored.
type IdentityStore interface {
	Load(ctx context.Context) (models.Identity, error)
	Save(ctx context.Context, id models.Identity) error
	Clear(ctx context.Context) error
}

// Config holds the controller's per-device settings.
type Config struct {
	Role        Role
	TimerPolicy TimerPolicy
}

// Option customises a Controller.
type Option func(*Controller)

// WithClock sets the clock the countdown runs on. Default: real clock.
func WithClock(clock clockwork.Clock) Option { return func(c *Controller) { c.clock = clock } }

// WithReady makes Run wait until ready is closed before processing events.
func WithReady(ready <-chan struct{}) Option { return func(c *Controller) { c.ready = ready } }

// Status is a point-in-time view of the controller's state.
type Status struct {
	Role              Role         `json:"role"`
	TimerPolicy       TimerPolicy  `json:"timer_policy"`
	UserID            string       `json:"user_id,omitempty"`
	Name              string       `json:"name,omitempty"`
	Screen            string       `json:"screen"`
	Phase             models.Phase `json:"phase,omitempty"`
	Seq               uint64       `json:"seq,omitempty"`
	PresentingTeamID  string       `json:"presenting_team_id,omitempty"`
	HasVoted          bool         `json:"has_voted"`
	TimerRemaining    int          `json:"timer_remaining_sec"`
	TimerRunning      bool         `json:"timer_running"`
	SnapshotsApplied  int          `json:"snapshots_applied"`
	SnapshotsRejected int          `json:"snapshots_rejected"`
}

// Controller owns all local session state and drains a single task queue:
// snapshot deliveries, countdown ticks and user actions run one at a time, in
// arrival order, on the goroutine that calls Run.
type Controller struct {
	cfg        Config
	surface    render.Surface
	transport  Transport
	identities IdentityStore
	clock      clockwork.Clock

	inbox chan func(context.Context)
	ready <-chan struct{}
	done  chan struct{}

	// owned by the Run goroutine
	store    Store
	guard    Guard
	timer    *Extrapolator
	identity models.Identity
	screen   render.Screen
	applied  int
	rejected int
}

// NewController creates a controller. Call Run to start processing.
func NewController(cfg Config, surface render.Surface, transport Transport, identities IdentityStore, opts ...Option) *Controller {
	if cfg.Role == "" {
		cfg.Role = RoleParticipant
	}
	if cfg.TimerPolicy == "" {
		cfg.TimerPolicy = DefaultTimerPolicy(cfg.Role)
	}

	c := &Controller{
		cfg:        cfg,
		surface:    surface,
		transport:  transport,
		identities: identities,
		clock:      clockwork.NewRealClock(),
		inbox:      make(chan func(context.Context), inboxSize),
		done:       make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}

	c.timer = NewExtrapolator(c.clock, surface, func(f func()) {
		c.post(func(context.Context) { f() })
	})
	return c
}

// Run processes events until ctx is cancelled.
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)

	if c.ready != nil {
		select {
		case <-c.ready:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	log.Info().
		Str("role", string(c.cfg.Role)).
		Str("timer_policy", string(c.cfg.TimerPolicy)).
		Msg("session controller started")

	c.start(ctx)

	for {
		select {
		case <-ctx.Done():
			c.timer.Stop()
			log.Info().Msg("session controller shutting down")
			return nil
		case task := <-c.inbox:
			task(ctx)
		}
	}
}

// HandleSnapshot queues a snapshot for reconciliation.
func (c *Controller) HandleSnapshot(snap models.Snapshot) {
	c.post(func(context.Context) { c.applySnapshot(snap) })
}

// HandleRestart queues a session reset.
func (c *Controller) HandleRestart() {
	c.post(c.restart)
}

// HandleIdentityConfirmed records the coordinator's acknowledgement of a join.
func (c *Controller) HandleIdentityConfirmed(id models.Identity) {
	c.post(func(context.Context) {
		log.Info().Str("user_id", id.UserID).Str("name", id.Name).Msg("identity confirmed")
	})
}

// HandleConnected re-announces a stored identity after the transport (re)connects.
// Snapshot numbering restarts with the connection.
func (c *Controller) HandleConnected() {
	c.post(func(ctx context.Context) {
		c.store.ResetSeq()
		if c.cfg.Role != RoleParticipant || c.identity.IsZero() {
			return
		}
		if err := c.sendJoin(ctx); err != nil {
			log.Warn().Err(err).Str("user_id", c.identity.UserID).Msg("failed to rejoin after connect")
		}
	})
}

// Join registers the local user under name, creating an identity on first use.
func (c *Controller) Join(ctx context.Context, name string) error {
	var joinErr error
	if err := c.call(ctx, func() { joinErr = c.join(ctx, name) }); err != nil {
		return err
	}
	return joinErr
}

// Vote submits score for the current voting round. Repeated calls within one
// round return OutcomeAlreadyConsumed and send nothing.
func (c *Controller) Vote(ctx context.Context, score int) (Outcome, error) {
	var (
		outcome Outcome
		voteErr error
	)
	if err := c.call(ctx, func() { outcome, voteErr = c.vote(ctx, score) }); err != nil {
		return "", err
	}
	return outcome, voteErr
}

// HostCommand sends a host control message. Only the host role may send them.
func (c *Controller) HostCommand(ctx context.Context, t events.Type, payload any) error {
	switch t {
	case events.TypeHostCreateTeams, events.TypeHostStartPrep,
		events.TypeHostStartPresentations, events.TypeHostNextStep:
	default:
		return fmt.Errorf("%w: %s", ErrNotHostCommand, t)
	}
	if c.cfg.Role != RoleHost {
		return ErrNotHost
	}

	var sendErr error
	if err := c.call(ctx, func() {
		if sendErr = c.transport.Send(ctx, t, payload); sendErr != nil {
			sendErr = fmt.Errorf("send %s: %w", t, sendErr)
			return
		}
		log.Info().Str("command", string(t)).Msg("host command sent")
	}); err != nil {
		return err
	}
	return sendErr
}

// Status returns a copy of the controller's state.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	var st Status
	if err := c.call(ctx, func() { st = c.status() }); err != nil {
		return Status{}, err
	}
	return st, nil
}

func (c *Controller) start(ctx context.Context) {
	if c.cfg.Role == RoleHost {
		c.show(render.ScreenHost)
		return
	}

	id, err := c.identities.Load(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to load stored identity")
	}
	if id.IsZero() {
		c.show(render.ScreenLogin)
		return
	}

	c.identity = id
	log.Info().Str("user_id", id.UserID).Str("name", id.Name).Msg("resuming stored identity")
	c.showLobby(MessageWaiting)
}

func (c *Controller) applySnapshot(snap models.Snapshot) {
	if err := Validate(snap); err != nil {
		c.rejected++
		log.Warn().Err(err).Str("phase", string(snap.Phase)).Msg("rejecting malformed snapshot, keeping last good state")
		return
	}

	tr, err := c.store.Apply(snap)
	if err != nil {
		c.rejected++
		log.Warn().Err(err).Uint64("seq", snap.Seq).Msg("discarding snapshot")
		return
	}
	c.applied++

	if c.guard.Observe(snap) {
		log.Debug().
			Str("phase", string(snap.Phase)).
			Str("presenting_team_id", snap.PresentingTeamID).
			Msg("epoch changed")
	}

	view := Route(RouteInput{
		Snapshot:      snap,
		Identity:      c.identity,
		Role:          c.cfg.Role,
		PreviousPhase: tr.PreviousPhase,
		HadPrevious:   tr.HadPrevious,
		HasVoted:      c.guard.HasVoted(),
	})
	c.paint(view)
	c.seedTimer(snap, view)

	if tr.PhaseChanged {
		log.Info().
			Str("from", string(tr.PreviousPhase)).
			Str("to", string(snap.Phase)).
			Str("screen", string(view.Screen)).
			Msg("phase changed")
	}
}

func (c *Controller) seedTimer(snap models.Snapshot, view View) {
	if c.cfg.TimerPolicy == TimerMirror {
		c.timer.Mirror(snap.TimerSeconds, view.TimerFields...)
		return
	}
	c.timer.Reseed(snap.TimerSeconds, view.TimerFields...)
}

// rerender repaints the current snapshot after a local state change. The
// countdown is left running until the next snapshot reseeds it.
func (c *Controller) rerender() {
	snap, ok := c.store.Current()
	if !ok {
		return
	}
	c.paint(Route(RouteInput{
		Snapshot:      snap,
		Identity:      c.identity,
		Role:          c.cfg.Role,
		PreviousPhase: snap.Phase,
		HadPrevious:   true,
		HasVoted:      c.guard.HasVoted(),
	}))
}

func (c *Controller) restart(ctx context.Context) {
	log.Info().Str("user_id", c.identity.UserID).Msg("session restarted, clearing local identity")

	if err := c.identities.Clear(ctx); err != nil {
		log.Error().Err(err).Msg("failed to clear stored identity")
	}
	c.identity = models.Identity{}
	c.store.Reset()
	c.guard.Reset()
	c.timer.Stop()

	if c.cfg.Role == RoleHost {
		c.show(render.ScreenHost)
		return
	}
	c.show(render.ScreenLogin)
}

func (c *Controller) join(ctx context.Context, name string) error {
	if c.cfg.Role != RoleParticipant {
		return fmt.Errorf("join as %s: %w", c.cfg.Role, ErrParticipantOnly)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrNameRequired
	}

	id := c.identity
	if id.IsZero() {
		id.UserID = uuid.NewString()
	}
	id.Name = name
	c.identity = id

	if err := c.identities.Save(ctx, id); err != nil {
		// the session still works, it just will not survive a restart
		log.Warn().Err(err).Str("user_id", id.UserID).Msg("failed to persist identity")
	}

	if err := c.sendJoin(ctx); err != nil {
		return err
	}

	if snap, ok := c.store.Current(); ok {
		if _, listed := snap.User(id.UserID); listed {
			c.rerender()
			return nil
		}
	}
	c.showLobby(MessageWaiting)
	return nil
}

func (c *Controller) sendJoin(ctx context.Context) error {
	payload := events.JoinSessionPayload{UserID: c.identity.UserID, Name: c.identity.Name}
	if err := c.transport.Send(ctx, events.TypeJoinSession, payload); err != nil {
		return fmt.Errorf("send join: %w", err)
	}
	log.Info().Str("user_id", payload.UserID).Str("name", payload.Name).Msg("joined session")
	return nil
}

func (c *Controller) vote(ctx context.Context, score int) (Outcome, error) {
	if score < 0 || score > maxScore {
		return "", fmt.Errorf("%w: %d", ErrScoreOutOfRange, score)
	}
	if c.cfg.Role != RoleParticipant {
		return "", ErrParticipantOnly
	}
	if c.identity.IsZero() {
		return "", ErrNotJoined
	}

	snap, ok := c.store.Current()
	if !ok {
		return OutcomeClosed, nil
	}
	me, listed := snap.User(c.identity.UserID)
	if !listed {
		return "", ErrNotJoined
	}
	if me.TeamID != "" && me.TeamID == snap.PresentingTeamID {
		// presenters do not score themselves
		return OutcomeClosed, nil
	}

	outcome := c.guard.TryConsume()
	if outcome != OutcomeAccepted {
		log.Debug().Str("outcome", string(outcome)).Int("score", score).Msg("vote not sent")
		return outcome, nil
	}

	payload := events.CastVotePayload{UserID: c.identity.UserID, Score: score}
	if err := c.transport.Send(ctx, events.TypeCastVote, payload); err != nil {
		c.guard.Release()
		return "", fmt.Errorf("send vote: %w", err)
	}

	log.Info().
		Str("user_id", payload.UserID).
		Str("presenting_team_id", snap.PresentingTeamID).
		Int("score", score).
		Msg("vote sent")

	c.rerender()
	return outcome, nil
}

func (c *Controller) status() Status {
	st := Status{
		Role:              c.cfg.Role,
		TimerPolicy:       c.cfg.TimerPolicy,
		UserID:            c.identity.UserID,
		Name:              c.identity.Name,
		Screen:            string(c.screen),
		HasVoted:          c.guard.HasVoted(),
		TimerRemaining:    c.timer.Remaining(),
		TimerRunning:      c.timer.Running(),
		SnapshotsApplied:  c.applied,
		SnapshotsRejected: c.rejected,
	}
	if snap, ok := c.store.Current(); ok {
		st.Phase = snap.Phase
		st.Seq = snap.Seq
		st.PresentingTeamID = snap.PresentingTeamID
	}
	return st
}

func (c *Controller) paint(v View) {
	c.screen = v.Screen
	Paint(c.surface, v)
}

func (c *Controller) show(screen render.Screen) {
	c.screen = screen
	c.surface.Show(screen)
}

func (c *Controller) showLobby(message string) {
	c.paint(View{Screen: render.ScreenLobby, Message: message})
}

// post enqueues a task. It drops the task once Run has returned.
func (c *Controller) post(task func(context.Context)) {
	select {
	case c.inbox <- task:
	case <-c.done:
	}
}

// call runs f on the controller goroutine and waits for it to finish. ctx
// bounds only the wait for a queue slot: a queued task always runs, so its
// result is always reported.
func (c *Controller) call(ctx context.Context, f func()) error {
	finished := make(chan struct{})
	task := func(context.Context) {
		f()
		close(finished)
	}

	select {
	case c.inbox <- task:
	case <-c.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-finished:
		return nil
	case <-c.done:
		return ErrStopped
	}
}
