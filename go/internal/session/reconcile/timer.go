package reconcile

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/rs/zerolog/log"
)

// Countdown strategy: the coordinator sends remaining seconds, the client counts
// down locally between pushes. The coordinator stays authoritative for when a
// phase ends; the local countdown only ever writes text.

const tickInterval = time.Second

// Clock is the part of clockwork.Clock the extrapolator schedules on.
// In production, use clockwork.NewRealClock(). In tests, a FakeClock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) clockwork.Timer
}

// Extrapolator runs the local countdown. Ticks are posted back onto the
// owner's task queue; every reseed bumps the generation so ticks armed by an
// earlier countdown are dropped when they arrive.
type Extrapolator struct {
	clock   Clock
	surface render.Surface
	post    func(func())

	gen       uint64
	remaining int
	targets   []render.Field
	timer     clockwork.Timer
}

// NewExtrapolator creates an idle extrapolator. post must enqueue f onto the
// goroutine that owns the extrapolator.
func NewExtrapolator(clock Clock, surface render.Surface, post func(func())) *Extrapolator {
	return &Extrapolator{
		clock:   clock,
		surface: surface,
		post:    post,
	}
}

// Reseed cancels any running countdown and starts a new one from seconds.
// With no targets the previous countdown is only cancelled.
func (e *Extrapolator) Reseed(seconds int, targets ...render.Field) {
	e.cancel()
	e.remaining = max(seconds, 0)
	e.targets = slices.Clone(targets)
	if len(e.targets) == 0 {
		return
	}

	e.display()
	e.arm()
}

// Mirror cancels any running countdown and writes seconds once, without ticking.
func (e *Extrapolator) Mirror(seconds int, targets ...render.Field) {
	e.cancel()
	e.remaining = max(seconds, 0)
	e.targets = slices.Clone(targets)
	e.display()
}

// Stop cancels the running countdown.
func (e *Extrapolator) Stop() {
	e.cancel()
	e.targets = nil
}

// Running reports whether a tick is armed.
func (e *Extrapolator) Running() bool {
	return e.timer != nil
}

// Remaining returns the seconds currently displayed.
func (e *Extrapolator) Remaining() int {
	return e.remaining
}

func (e *Extrapolator) cancel() {
	e.gen++
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
}

func (e *Extrapolator) arm() {
	if e.remaining <= 0 {
		return
	}
	gen := e.gen
	e.timer = e.clock.AfterFunc(tickInterval, func() {
		e.post(func() { e.tick(gen) })
	})
}

func (e *Extrapolator) tick(gen uint64) {
	if gen != e.gen {
		log.Debug().
			Uint64("tick_gen", gen).
			Uint64("current_gen", e.gen).
			Msg("dropping stale countdown tick")
		return
	}

	e.timer = nil
	if e.remaining > 0 {
		e.remaining--
	}
	e.display()
	e.arm()
}

func (e *Extrapolator) display() {
	text := FormatClock(e.remaining)
	for _, field := range e.targets {
		if err := e.surface.SetText(field, text); err != nil {
			logWriteError(field, err)
		}
	}
}

// FormatClock renders seconds as M:SS. Negative input renders as 0:00.
func FormatClock(seconds int) string {
	seconds = max(seconds, 0)
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}

func logWriteError(field render.Field, err error) {
	if errors.Is(err, render.ErrNoTarget) {
		log.Debug().Str("field", string(field)).Msg("render target missing, skipping write")
		return
	}
	log.Warn().Err(err).Str("field", string(field)).Msg("render write failed")
}
