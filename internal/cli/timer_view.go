package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tempo/internal/app"
	"github.com/alexanderramin/tempo/internal/cli/formatter"
	"github.com/alexanderramin/tempo/internal/domain"
	"github.com/alexanderramin/tempo/internal/service"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// statusRefresh is how often the view reloads the persisted timer, picking
// up changes made by other invocations.
const statusRefresh = 5 * time.Second

type timerKeyMap struct {
	Toggle key.Binding
	Finish key.Binding
	Reset  key.Binding
	Quit   key.Binding
}

func (k timerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Finish, k.Reset, k.Quit}
}

func (k timerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

func defaultTimerKeys() timerKeyMap {
	return timerKeyMap{
		Toggle: key.NewBinding(key.WithKeys(" ", "p"), key.WithHelp("space", "pause/resume")),
		Finish: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "finish")),
		Reset:  key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "discard")),
		Quit:   key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

type (
	tickMsg     int64
	refreshMsg  struct{}
	timerStatus struct {
		st  *app.TimerStatus
		err error
	}
	timerFinished struct {
		sess *domain.Session
		err  error
	}
)

// timerModel shows the active session's clock. Quitting leaves the timer
// as it is; it keeps running in the persisted state.
type timerModel struct {
	ctx    context.Context
	timer  app.TrackTimeUseCase
	ticks  <-chan int64
	keys   timerKeyMap
	help   help.Model
	locale string

	status   *app.TimerStatus
	seconds  int64
	finished *domain.Session
	err      error
	quitting bool
}

func newTimerModel(ctx context.Context, timer app.TrackTimeUseCase, ticks <-chan int64, locale string) timerModel {
	return timerModel{
		ctx:    ctx,
		timer:  timer,
		ticks:  ticks,
		keys:   defaultTimerKeys(),
		help:   help.New(),
		locale: locale,
	}
}

func (m timerModel) Init() tea.Cmd {
	return tea.Batch(m.loadStatus(), m.waitTick(), scheduleRefresh())
}

func (m timerModel) loadStatus() tea.Cmd {
	return func() tea.Msg {
		st, err := m.timer.Status(m.ctx)
		return timerStatus{st: st, err: err}
	}
}

func (m timerModel) waitTick() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-m.ticks
		if !ok {
			return nil
		}
		return tickMsg(s)
	}
}

func scheduleRefresh() tea.Cmd {
	return tea.Tick(statusRefresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (m timerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.seconds = int64(msg)
		return m, m.waitTick()

	case refreshMsg:
		return m, tea.Batch(m.loadStatus(), scheduleRefresh())

	case timerStatus:
		m.err = msg.err
		if msg.err == nil {
			m.status = msg.st
			m.seconds = msg.st.Seconds
		}
		return m, nil

	case timerFinished:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.finished = msg.sess
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m timerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Toggle):
		if m.status == nil || m.status.Active == nil {
			return m, nil
		}
		running := m.status.Running
		return m, func() tea.Msg {
			var st *app.TimerStatus
			var err error
			if running {
				st, err = m.timer.Pause(m.ctx)
			} else {
				st, err = m.timer.Resume(m.ctx)
			}
			return timerStatus{st: st, err: err}
		}

	case key.Matches(msg, m.keys.Finish):
		return m, func() tea.Msg {
			sess, err := m.timer.Finish(m.ctx)
			return timerFinished{sess: sess, err: err}
		}

	case key.Matches(msg, m.keys.Reset):
		return m, func() tea.Msg {
			if err := m.timer.Reset(m.ctx); err != nil {
				return timerStatus{err: err}
			}
			st, err := m.timer.Status(m.ctx)
			return timerStatus{st: st, err: err}
		}
	}
	return m, nil
}

func (m timerModel) View() string {
	var b strings.Builder

	switch {
	case m.finished != nil:
		fmt.Fprintf(&b, "Recorded %s.\n", formatter.Clock(m.finished.Duration))
		return b.String()
	case m.status == nil:
		b.WriteString(formatter.Dim("Loading...") + "\n")
	case m.status.Active == nil:
		b.WriteString(formatter.NoTimer(m.locale) + "\n")
	default:
		b.WriteString(formatter.FormatTimer(m.status.ProjectTitle, m.seconds, m.status.Running, m.locale) + "\n")
	}

	if m.err != nil {
		msg := ErrorMessage(m.err, m.locale)
		if errors.Is(m.err, service.ErrNoActiveSession) {
			msg = formatter.NoTimer(m.locale)
		}
		b.WriteString(formatter.StyleRed.Render(msg) + "\n")
	}

	if !m.quitting {
		b.WriteString("\n" + m.help.View(m.keys) + "\n")
	}
	return b.String()
}

// tickChannel adapts OnTick to a channel that always holds the latest
// value. The returned cancel unregisters the listener.
func tickChannel(timer app.TrackTimeUseCase) (<-chan int64, func()) {
	ch := make(chan int64, 1)
	cancel := timer.OnTick(func(s int64) {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- s:
		default:
		}
	})
	return ch, cancel
}
