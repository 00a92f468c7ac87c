package display

import (
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

type directoryState int

const (
	// directoryEmpty: no session is ongoing.
	directoryEmpty directoryState = iota
	// directoryExpanded: a single ongoing session, shown expanded.
	directoryExpanded
	// directoryCycling: several ongoing sessions, expanded one at a time.
	directoryCycling
)

func (s directoryState) String() string {
	switch s {
	case directoryExpanded:
		return "expanded"
	case directoryCycling:
		return "cycling"
	default:
		return "empty"
	}
}

// Directory lists the ongoing sessions with the screen of every poster.
type Directory struct {
	chrome
	keys directoryKeyMap

	state     directoryState
	tree      tree
	current   int
	reloadDue time.Time

	toggle timer
	reload timer
}

func NewDirectory(opts Options) Directory {
	c := newChrome(opts)
	return Directory{
		chrome: c,
		keys:   newDirectoryKeyMap(),
		tree:   newTree(false, true),
		toggle: newTimer(timerToggle, c.opts.Advance, true),
		reload: newTimer(timerReload, ReloadInterval, true),
	}
}

func (m Directory) Init() tea.Cmd {
	return tea.Batch(refreshTick(), loadProgram(m.opts.Source))
}

func (m Directory) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := m.opts.Now()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		m.tree.setVisible(m.treeRows())
		return m, nil
	case refreshMsg:
		return m, refreshTick()
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			return m, tea.Quit
		}
		return m, nil
	case programLoadedMsg:
		if msg.err != nil {
			m.log().Error("could not load program", "err", msg.err)
			return m, m.reload.start(now)
		}
		return m, m.rebuild(msg.program)
	case timerMsg:
		switch msg.kind {
		case timerToggle:
			ok, next := m.toggle.fire(msg, now)
			if !ok {
				return m, nil
			}
			m.current = (m.current + 1) % len(m.tree.sessions)
			m.tree.expandOnly(m.current)
			m.tree.focus(m.current, -1)
			return m, next
		case timerReload:
			ok, next := m.reload.fire(msg, now)
			if !ok {
				return m, nil
			}
			m.log().Debug("checking if directory needs to be reloaded")
			if m.due() {
				m.reload.stop()
				return m, loadProgram(m.opts.Source)
			}
			return m, next
		}
	}
	return m, nil
}

func (m *Directory) due() bool {
	if m.opts.Env != nil && m.opts.Env.ConsumeReloadMarker() {
		return true
	}
	return !m.reloadDue.IsZero() && !m.opts.Reference().Before(m.reloadDue)
}

// rebuild keeps the ongoing sessions of p, computes the next reload deadline
// and enters the matching state.
func (m *Directory) rebuild(p *program.Program) tea.Cmd {
	at := m.opts.Reference()
	m.tree.clear()
	m.reloadDue = time.Time{}
	for _, s := range p.OngoingSessions(at) {
		if m.reloadDue.IsZero() || s.End.Before(m.reloadDue) {
			m.reloadDue = s.End
		}
		m.tree.add(s, p.Posters(s))
	}
	if m.reloadDue.IsZero() {
		for _, s := range p.Sessions() {
			if s.HasWindow() && s.Start.After(at) && (m.reloadDue.IsZero() || s.Start.Before(m.reloadDue)) {
				m.reloadDue = s.Start
			}
		}
	}
	m.log().Info("directory loaded", "sessions", len(m.tree.sessions), "reload_due", m.reloadDue)

	switch n := len(m.tree.sessions); {
	case n == 0:
		return m.transition(directoryEmpty)
	case n == 1:
		return m.transition(directoryExpanded)
	default:
		return m.transition(directoryCycling)
	}
}

func (m *Directory) transition(to directoryState) tea.Cmd {
	now := m.opts.Now()
	m.state = to
	m.current = 0
	reload := m.reload.start(now)
	switch to {
	case directoryCycling:
		m.tree.expandOnly(0)
		m.tree.focus(0, -1)
		return tea.Batch(reload, m.toggle.start(now))
	case directoryExpanded:
		m.tree.expandAll()
	}
	m.toggle.stop()
	return reload
}

func (m Directory) View() string {
	subtitle := m.t("directory_title", nil)
	status := ""
	switch m.state {
	case directoryCycling:
		status = m.t("directory_toggling", m.seconds(&m.toggle))
	case directoryEmpty:
		status = m.t("directory_empty", nil)
	}
	header := []string{m.t("column_poster", nil), m.t("column_presenter", nil), m.t("column_screen", nil)}
	body := m.tree.render(m.width, false, header)
	return m.compose(m.header(subtitle, "", status), body)
}

// State reports the current state, for logs and tests.
func (m Directory) State() string { return m.state.String() }

// ReloadDue is the instant the directory will next rebuild itself, zero when
// only an explicit request triggers it.
func (m Directory) ReloadDue() time.Time { return m.reloadDue }
