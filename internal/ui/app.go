package ui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/tally/internal/logtail"
	"github.com/five82/tally/internal/prefs"
	"github.com/five82/tally/internal/state"
)

// Actions is the write side of the stopwatch the UI drives.
type Actions interface {
	Start(ctx context.Context, at time.Time, title, notes string) error
	Pause(ctx context.Context, at time.Time) error
	Resume(ctx context.Context, at time.Time) error
	Stop(ctx context.Context, at time.Time) error
	Sync(ctx context.Context) error
}

// Options configures the UI.
type Options struct {
	Context      context.Context
	Actions      Actions
	Store        *state.Store
	Refresh      func(context.Context) // re-reads the session into Store after an action
	Session      string
	LogPath      string
	PollTick     time.Duration // log refresh cadence
	ThemeName    string
	SessionTitle string
	PrefsPath    string
}

const (
	clockTick      = 100 * time.Millisecond
	logLines       = 5
	defaultTitle   = "Study session"
	defaultLogTick = time.Second
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	actions      Actions
	store        *state.Store
	refresh      func(context.Context)
	session      string
	logPath      string
	pollTick     time.Duration
	prefsPath    string
	sessionTitle string

	// UI state
	theme    Theme
	keys     keyMap
	help     help.Model
	width    int
	height   int
	ready    bool
	showHelp bool

	// Data state
	snapshot state.Snapshot
	now      time.Time
	logs     []logtail.Entry

	// Action feedback
	busy      bool
	notice    string
	noticeErr bool
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = defaultLogTick
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	title := strings.TrimSpace(opts.SessionTitle)
	if title == "" {
		title = defaultTitle
	}

	return Model{
		ctx:          ctx,
		actions:      opts.Actions,
		store:        opts.Store,
		refresh:      opts.Refresh,
		session:      opts.Session,
		logPath:      opts.LogPath,
		pollTick:     pollTick,
		prefsPath:    prefsPath,
		sessionTitle: title,
		theme:        GetTheme(opts.ThemeName),
		keys:         DefaultKeyMap(),
		help:         help.New(),
		now:          time.Now(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(clockTick),
		logTickCmd(m.pollTick),
		readLogsCmd(m.logPath),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		m.now = time.Time(msg)
		cmds := []tea.Cmd{tickCmd(clockTick)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logTickMsg:
		return m, tea.Batch(readLogsCmd(m.logPath), logTickCmd(m.pollTick))

	case logsMsg:
		m.logs = msg
		return m, nil

	case actionMsg:
		m.busy = false
		m.notice, m.noticeErr = describeResult(msg.label, msg.err)
		cmds := []tea.Cmd{readLogsCmd(m.logPath)}
		if m.store != nil {
			cmds = append(cmds, fetchSnapshotCmd(m.store))
		}
		return m, tea.Batch(cmds...)
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp && !key.Matches(msg, m.keys.Quit) {
		// Any key closes help
		m.showHelp = false
		m.help.ShowAll = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		m.help.ShowAll = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		if m.prefsPath != "" {
			_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name, SessionTitle: m.sessionTitle})
		}
		return m, nil

	case key.Matches(msg, m.keys.Sync):
		return m.dispatch("sync", func(ctx context.Context, _ time.Time) error {
			return m.actions.Sync(ctx)
		})

	case key.Matches(msg, m.keys.Start):
		if m.status() == statusRunning {
			return m.hint("already running")
		}
		title := m.sessionTitle
		return m.dispatch("start", func(ctx context.Context, at time.Time) error {
			return m.actions.Start(ctx, at, title, "")
		})

	case key.Matches(msg, m.keys.PauseResume):
		switch m.status() {
		case statusRunning:
			return m.dispatch("pause", func(ctx context.Context, at time.Time) error {
				return m.actions.Pause(ctx, at)
			})
		case statusPaused:
			return m.dispatch("resume", func(ctx context.Context, at time.Time) error {
				return m.actions.Resume(ctx, at)
			})
		default:
			return m.hint("not running")
		}

	case key.Matches(msg, m.keys.Stop):
		switch m.status() {
		case statusRunning, statusPaused:
			return m.dispatch("stop", func(ctx context.Context, at time.Time) error {
				return m.actions.Stop(ctx, at)
			})
		default:
			return m.hint("not running")
		}
	}

	return m, nil
}

// dispatch runs an action off the update loop. One action is in flight at a
// time so a repeated key press cannot record the same transition twice.
func (m Model) dispatch(label string, fn func(context.Context, time.Time) error) (tea.Model, tea.Cmd) {
	if m.actions == nil {
		return m, nil
	}
	if m.busy {
		return m.hint("busy")
	}
	m.busy = true
	m.notice, m.noticeErr = label+"...", false
	return m, actionCmd(m.ctx, label, time.Now(), fn, m.refresh)
}

func (m Model) hint(text string) (tea.Model, tea.Cmd) {
	m.notice, m.noticeErr = text, false
	return m, nil
}

// status derives the timer status shown in the header badge.
func (m Model) status() string {
	return timerStatus(m.snapshot, m.now)
}

// Messages

type tickMsg time.Time

type logTickMsg time.Time

type snapshotMsg state.Snapshot

type logsMsg []logtail.Entry

type actionMsg struct {
	label string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func logTickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return logTickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func readLogsCmd(path string) tea.Cmd {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	return func() tea.Msg {
		entries, err := logtail.Read(path, logLines)
		if err != nil {
			return logsMsg(nil)
		}
		return logsMsg(entries)
	}
}

func actionCmd(ctx context.Context, label string, at time.Time, fn func(context.Context, time.Time) error, refresh func(context.Context)) tea.Cmd {
	return func() tea.Msg {
		err := fn(ctx, at)
		if refresh != nil {
			refresh(ctx)
		}
		return actionMsg{label: label, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(ctx context.Context, opts Options) error {
	if opts.Context == nil {
		opts.Context = ctx
	}
	p := tea.NewProgram(New(opts), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}
