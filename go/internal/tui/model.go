package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mcdev12/workshop/go/internal/render"
	"github.com/mcdev12/workshop/go/internal/session/events"
	"github.com/mcdev12/workshop/go/internal/session/reconcile"
	"github.com/mcdev12/workshop/go/internal/tui/styles"
)

const (
	actionTimeout = 5 * time.Second
	maxNameLength = 32

	defaultNumTeams    = 2
	maxNumTeams        = 12
	defaultPrepMinutes = 5
	maxPrepMinutes     = 60
)

// Actions is what the screens can ask of the session controller.
type Actions interface {
	Join(ctx context.Context, name string) error
	Vote(ctx context.Context, score int) (reconcile.Outcome, error)
	HostCommand(ctx context.Context, t events.Type, payload any) error
}

// actionResultMsg reports the end of an action started from a keypress.
type actionResultMsg struct {
	notice string
	err    error
}

// Model is the bubbletea model for every session screen.
type Model struct {
	actions   Actions
	role      reconcile.Role
	ready     chan struct{}
	readyOnce *sync.Once

	screen render.Screen
	texts  map[render.Field]string
	lists  map[render.Field][]string

	nameInput string
	vote      int
	qr        string
	joinURL   string

	numTeams    int
	prepMinutes int

	notice string
	err    error
	busy   bool

	width  int
	height int
}

// NewModel creates the model. ready is closed once the program has started.
func NewModel(actions Actions, role reconcile.Role, joinURL string, ready chan struct{}) Model {
	return Model{
		actions:     actions,
		role:        role,
		ready:       ready,
		readyOnce:   &sync.Once{},
		texts:       make(map[render.Field]string),
		lists:       make(map[render.Field][]string),
		vote:        reconcile.DefaultVote,
		joinURL:     joinURL,
		qr:          renderQR(joinURL),
		numTeams:    defaultNumTeams,
		prepMinutes: defaultPrepMinutes,
	}
}

func (m Model) Init() tea.Cmd {
	m.readyOnce.Do(func() {
		if m.ready != nil {
			close(m.ready)
		}
	})
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case showMsg:
		if msg.screen != m.screen {
			m.notice = ""
			m.err = nil
		}
		if msg.screen == render.ScreenLogin {
			// a new session: nothing drawn for the old one may leak into it
			m.texts = make(map[render.Field]string)
			m.lists = make(map[render.Field][]string)
			m.vote = reconcile.DefaultVote
		}
		m.screen = msg.screen
		return m, nil

	case textMsg:
		m.texts[msg.field] = msg.value
		if msg.field == render.FieldVoteValue {
			if v, err := strconv.Atoi(msg.value); err == nil {
				m.vote = v
			}
		}
		return m, nil

	case listMsg:
		m.lists[msg.field] = msg.items
		return m, nil

	case actionResultMsg:
		m.busy = false
		m.notice = msg.notice
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		return m.handleKeypress(msg)
	}
	return m, nil
}

func (m Model) handleKeypress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	}

	switch m.screen {
	case render.ScreenLogin:
		return m.handleLoginKey(msg)
	case render.ScreenVoting:
		return m.handleVotingKey(msg)
	case render.ScreenHost:
		return m.handleHostKey(msg)
	}

	if msg.String() == "q" {
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		name := strings.TrimSpace(m.nameInput)
		if name == "" || m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.join(name)

	case tea.KeyBackspace:
		if r := []rune(m.nameInput); len(r) > 0 {
			m.nameInput = string(r[:len(r)-1])
		}

	case tea.KeySpace:
		m.nameInput = appendLimited(m.nameInput, " ")

	case tea.KeyRunes:
		m.nameInput = appendLimited(m.nameInput, string(msg.Runes))
	}
	return m, nil
}

func (m Model) handleVotingKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "left", "h", "-":
		m.vote = max(m.vote-1, 0)
	case "right", "l", "+":
		m.vote = min(m.vote+1, 10)
	case "enter":
		if m.busy {
			return m, nil
		}
		m.busy = true
		return m, m.castVote(m.vote)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) handleHostKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		m.numTeams = min(m.numTeams+1, maxNumTeams)
	case "down", "j":
		m.numTeams = max(m.numTeams-1, 1)
	case "right", "l":
		m.prepMinutes = min(m.prepMinutes+1, maxPrepMinutes)
	case "left", "h":
		m.prepMinutes = max(m.prepMinutes-1, 1)
	case "t":
		return m, m.hostCommand(events.TypeHostCreateTeams, events.HostCreateTeamsPayload{NumTeams: m.numTeams})
	case "p":
		return m, m.hostCommand(events.TypeHostStartPrep, events.HostStartPrepPayload{Seconds: m.prepMinutes * 60})
	case "s":
		return m, m.hostCommand(events.TypeHostStartPresentations, nil)
	case "n":
		return m, m.hostCommand(events.TypeHostNextStep, nil)
	case "q":
		return m, tea.Quit
	}
	return m, nil
}

func (m Model) join(name string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := m.actions.Join(ctx, name); err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{}
	}
}

func (m Model) castVote(score int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		outcome, err := m.actions.Vote(ctx, score)
		if err != nil {
			return actionResultMsg{err: err}
		}
		switch outcome {
		case reconcile.OutcomeClosed:
			return actionResultMsg{notice: "Voting is closed."}
		case reconcile.OutcomeAlreadyConsumed:
			return actionResultMsg{notice: "You already voted this round."}
		}
		return actionResultMsg{}
	}
}

func (m Model) hostCommand(t events.Type, payload any) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), actionTimeout)
		defer cancel()
		if err := m.actions.HostCommand(ctx, t, payload); err != nil {
			return actionResultMsg{err: err}
		}
		return actionResultMsg{notice: "Sent " + string(t)}
	}
}

func appendLimited(s, add string) string {
	if len([]rune(s))+len([]rune(add)) > maxNameLength {
		return s
	}
	return s + add
}

func (m Model) View() string {
	var body, help string

	switch m.screen {
	case render.ScreenLogin:
		body, help = m.loginView(), "enter join • esc quit"
	case render.ScreenLobby:
		body, help = m.lobbyView(), "q quit"
	case render.ScreenPrep:
		body, help = m.prepView(), "q quit"
	case render.ScreenSpeaker:
		body = styles.Title.Render("You're on stage!") + "\n" + styles.Timer.Render(m.texts[render.FieldSpeakerTimer])
		help = "q quit"
	case render.ScreenAudience:
		body, help = m.audienceView(), "q quit"
	case render.ScreenVoting:
		body, help = m.votingView(), "←/→ adjust • enter vote • q quit"
	case render.ScreenLeaderboard:
		body, help = m.leaderboardView(), "q quit"
	case render.ScreenHost:
		body = m.hostView()
		help = "↑/↓ teams • ←/→ prep minutes • t create teams • p start prep • s start presentations • n next • q quit"
	default:
		body = styles.Muted.Render("Connecting...")
	}

	var footer string
	switch {
	case m.err != nil:
		footer = "\n" + styles.Error.Render(m.err.Error())
	case m.notice != "":
		footer = "\n" + styles.Secondary.Render(m.notice)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Panel.Render(body+footer),
		styles.Help.Render(help),
	)
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Join the workshop"))
	b.WriteString("\n")
	b.WriteString("Your name: ")
	b.WriteString(styles.Input.Render(m.nameInput + "▏"))
	if m.qr != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.Subtitle.Render("Invite others: " + m.joinURL))
		b.WriteString("\n")
		b.WriteString(m.qr)
	}
	return b.String()
}

func (m Model) lobbyView() string {
	return styles.Title.Render("Lobby") + "\n" + m.texts[render.FieldLobbyMessage]
}

func (m Model) prepView() string {
	team := m.texts[render.FieldMyTeamName]
	if team == "" {
		team = "Waiting for a team..."
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(team))
	b.WriteString("\n")
	if ctx := m.texts[render.FieldMyContext]; ctx != "" {
		b.WriteString(styles.Subtitle.Render(ctx))
		b.WriteString("\n\n")
	}
	for _, name := range m.lists[render.FieldMyTeammates] {
		b.WriteString("• " + name + "\n")
	}
	b.WriteString("\n")
	b.WriteString(styles.Timer.Render(m.texts[render.FieldPrepTimer]))
	return b.String()
}

func (m Model) audienceView() string {
	return styles.Title.Render("Now presenting: "+m.texts[render.FieldPresentingTeam]) + "\n" +
		styles.Subtitle.Render(m.texts[render.FieldPresentingContext])
}

func (m Model) votingView() string {
	var scale strings.Builder
	for i := 0; i <= 10; i++ {
		if i == m.vote {
			scale.WriteString(styles.Primary.Bold(true).Render(fmt.Sprintf("[%d]", i)))
		} else {
			scale.WriteString(styles.Muted.Render(fmt.Sprintf(" %d ", i)))
		}
	}
	return styles.Title.Render("Rate "+m.texts[render.FieldPresentingTeam]) + "\n" + scale.String()
}

func (m Model) leaderboardView() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Final scores"))
	b.WriteString("\n")
	for i, line := range m.lists[render.FieldFinalScores] {
		b.WriteString(fmt.Sprintf("%d. %s\n", i+1, line))
	}
	if winner := m.texts[render.FieldWinner]; winner != "" {
		b.WriteString("\n")
		b.WriteString(styles.Winner.Render("Winner: " + winner))
	}
	return b.String()
}

func (m Model) hostView() string {
	var b strings.Builder
	b.WriteString(styles.Title.Render("Host panel"))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Phase: %s    Timer: %s\n",
		m.texts[render.FieldHostPhase],
		styles.Timer.Render(m.texts[render.FieldHostTimer]))
	if presenting := m.texts[render.FieldHostPresenting]; presenting != "" {
		fmt.Fprintf(&b, "Presenting: %s\n", presenting)
	}
	fmt.Fprintf(&b, "Participants: %s    Presented: %s\n",
		m.texts[render.FieldHostParticipants],
		m.texts[render.FieldHostPresented])
	fmt.Fprintf(&b, "Teams to create: %d    Prep: %d min\n", m.numTeams, m.prepMinutes)

	if standings := m.lists[render.FieldHostStandings]; len(standings) > 0 {
		b.WriteString("\n")
		b.WriteString(strings.Join(standings, "\n"))
	}
	return b.String()
}
