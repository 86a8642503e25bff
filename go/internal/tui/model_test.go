package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
)

type hostCall struct {
	t       events.Type
	payload any
}

type fakeActions struct {
	joined  []string
	votes   []int
	hosts   []hostCall
	outcome reconcile.Outcome
	err     error
}

func (f *fakeActions) Join(_ context.Context, name string) error {
	f.joined = append(f.joined, name)
	return f.err
}

func (f *fakeActions) Vote(_ context.Context, score int) (reconcile.Outcome, error) {
	f.votes = append(f.votes, score)
	return f.outcome, f.err
}

func (f *fakeActions) HostCommand(_ context.Context, t events.Type, payload any) error {
	f.hosts = append(f.hosts, hostCall{t: t, payload: payload})
	return f.err
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	model, ok := next.(Model)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return model, cmd
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// runCmd executes cmd and feeds its result back into the model.
func runCmd(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	if cmd == nil {
		t.Fatalf("expected a command")
	}
	m, _ = update(t, m, cmd())
	return m
}

func TestModel_InitClosesReady(t *testing.T) {
	ready := make(chan struct{})
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", ready)
	m.Init()
	m.Init()

	select {
	case <-ready:
	default:
		t.Fatalf("ready not closed by Init")
	}
}

func TestModel_RenderMessages(t *testing.T) {
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", nil)

	m, _ = update(t, m, showMsg{screen: render.ScreenPrep})
	m, _ = update(t, m, textMsg{field: render.FieldMyTeamName, value: "Team 2"})
	m, _ = update(t, m, listMsg{field: render.FieldMyTeammates, items: []string{"Ada", "Grace"}})
	m, _ = update(t, m, textMsg{field: render.FieldPrepTimer, value: "4:59"})

	view := m.View()
	for _, want := range []string{"Team 2", "Ada", "Grace", "4:59"} {
		if !strings.Contains(view, want) {
			t.Errorf("prep view missing %q:\n%s", want, view)
		}
	}

	m, _ = update(t, m, textMsg{field: render.FieldVoteValue, value: "5"})
	m.vote = 9
	m, _ = update(t, m, textMsg{field: render.FieldVoteValue, value: "5"})
	if m.vote != 5 {
		t.Fatalf("vote input = %d, want reset to 5", m.vote)
	}
}

func TestModel_LoginForgetsPreviousSession(t *testing.T) {
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", nil)

	m, _ = update(t, m, showMsg{screen: render.ScreenPrep})
	m, _ = update(t, m, textMsg{field: render.FieldMyTeamName, value: "Old Team"})
	m, _ = update(t, m, listMsg{field: render.FieldMyTeammates, items: []string{"Grace"}})

	// session restart, then PREP for a user not yet placed in a team
	m, _ = update(t, m, showMsg{screen: render.ScreenLogin})
	m, _ = update(t, m, showMsg{screen: render.ScreenPrep})

	view := m.View()
	for _, stale := range []string{"Old Team", "Grace"} {
		if strings.Contains(view, stale) {
			t.Errorf("prep view still shows %q from the previous session:\n%s", stale, view)
		}
	}
	if !strings.Contains(view, "Waiting for a team...") {
		t.Errorf("prep view missing placeholder:\n%s", view)
	}
}

func TestModel_Login(t *testing.T) {
	actions := &fakeActions{}
	m := NewModel(actions, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenLogin})

	// q is text on the login screen, not quit
	m, cmd := update(t, m, keyRunes("Ada q"))
	if cmd != nil {
		t.Fatalf("typing returned a command")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.nameInput != "Ada" {
		t.Fatalf("name input = %q", m.nameInput)
	}

	m, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !m.busy {
		t.Fatalf("join not marked in flight")
	}
	m = runCmd(t, m, cmd)
	if len(actions.joined) != 1 || actions.joined[0] != "Ada" {
		t.Fatalf("joined = %v", actions.joined)
	}
	if m.busy || m.err != nil {
		t.Fatalf("after join: busy=%v err=%v", m.busy, m.err)
	}
}

func TestModel_LoginIgnoresBlankName(t *testing.T) {
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenLogin})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeySpace})

	if _, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Fatalf("blank name started a join")
	}
}

func TestModel_Voting(t *testing.T) {
	actions := &fakeActions{outcome: reconcile.OutcomeAccepted}
	m := NewModel(actions, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenVoting})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m, _ = update(t, m, keyRunes("l"))
	if m.vote != 7 {
		t.Fatalf("vote = %d, want 7", m.vote)
	}
	for i := 0; i < 20; i++ {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyRight})
	}
	if m.vote != 10 {
		t.Fatalf("vote = %d, want clamp at 10", m.vote)
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if _, again := update(t, m, tea.KeyMsg{Type: tea.KeyEnter}); again != nil {
		t.Fatalf("second enter while in flight started another vote")
	}
	m = runCmd(t, m, cmd)
	if len(actions.votes) != 1 || actions.votes[0] != 10 {
		t.Fatalf("votes = %v", actions.votes)
	}

	actions.outcome = reconcile.OutcomeAlreadyConsumed
	_, cmd = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)
	if !strings.Contains(m.notice, "already voted") {
		t.Fatalf("notice = %q", m.notice)
	}
}

func TestModel_ActionErrorShown(t *testing.T) {
	actions := &fakeActions{err: errors.New("not connected to coordinator")}
	m := NewModel(actions, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenVoting})

	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = runCmd(t, m, cmd)
	if !strings.Contains(m.View(), "not connected") {
		t.Fatalf("error not rendered:\n%s", m.View())
	}

	// a new screen clears it
	m, _ = update(t, m, showMsg{screen: render.ScreenLobby})
	if m.err != nil {
		t.Fatalf("error survived a screen change")
	}
}

func TestModel_HostKeys(t *testing.T) {
	actions := &fakeActions{}
	m := NewModel(actions, reconcile.RoleHost, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenHost})

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyLeft})

	steps := []string{"t", "p", "s", "n"}
	for _, key := range steps {
		var cmd tea.Cmd
		m, cmd = update(t, m, keyRunes(key))
		m = runCmd(t, m, cmd)
	}

	want := []hostCall{
		{t: events.TypeHostCreateTeams, payload: events.HostCreateTeamsPayload{NumTeams: 3}},
		{t: events.TypeHostStartPrep, payload: events.HostStartPrepPayload{Seconds: 240}},
		{t: events.TypeHostStartPresentations},
		{t: events.TypeHostNextStep},
	}
	if len(actions.hosts) != len(want) {
		t.Fatalf("host calls = %v", actions.hosts)
	}
	for i := range want {
		if actions.hosts[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, actions.hosts[i], want[i])
		}
	}
}

func TestModel_Quit(t *testing.T) {
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenLobby})

	_, cmd := update(t, m, keyRunes("q"))
	if cmd == nil {
		t.Fatalf("q did not quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("q returned %T", cmd())
	}
}

func TestModel_LeaderboardView(t *testing.T) {
	m := NewModel(&fakeActions{}, reconcile.RoleParticipant, "", nil)
	m, _ = update(t, m, showMsg{screen: render.ScreenLeaderboard})
	m, _ = update(t, m, listMsg{field: render.FieldFinalScores, items: []string{"B: 8.0 pts", "A: 6.5 pts"}})
	m, _ = update(t, m, textMsg{field: render.FieldWinner, value: "B"})

	view := m.View()
	for _, want := range []string{"1. B: 8.0 pts", "2. A: 6.5 pts", "Winner: B"} {
		if !strings.Contains(view, want) {
			t.Errorf("leaderboard view missing %q", want)
		}
	}
}

func TestSurface(t *testing.T) {
	var sent []tea.Msg
	s := NewSurface(func(msg tea.Msg) { sent = append(sent, msg) })

	s.Show(render.ScreenLobby)
	if err := s.SetText(render.FieldLobbyMessage, "hi"); err != nil {
		t.Fatalf("set text: %v", err)
	}
	if err := s.SetText("no-such-field", "x"); !errors.Is(err, render.ErrNoTarget) {
		t.Fatalf("want ErrNoTarget, got %v", err)
	}
	if err := s.SetList("no-such-list", nil); !errors.Is(err, render.ErrNoTarget) {
		t.Fatalf("want ErrNoTarget, got %v", err)
	}
	if len(sent) != 2 {
		t.Fatalf("sent %d messages, want 2", len(sent))
	}
}

func TestRenderQR(t *testing.T) {
	if got := renderQR(""); got != "" {
		t.Fatalf("empty content rendered %q", got)
	}
	qr := renderQR("http://192.168.1.20:8000/")
	if lines := strings.Split(qr, "\n"); len(lines) < 10 {
		t.Fatalf("qr has %d lines", len(lines))
	}
}
