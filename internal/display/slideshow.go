package display

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

type slideshowState int

const (
	slideshowStopped slideshowState = iota
	slideshowRunning
	slideshowPaused
)

func (s slideshowState) String() string {
	switch s {
	case slideshowRunning:
		return "running"
	case slideshowPaused:
		return "paused"
	default:
		return "stopped"
	}
}

type slideshowEvent int

const (
	eventStart slideshowEvent = iota
	eventStop
	eventPause
	eventResume
	eventAdvance
	eventBackup
)

// rosterLoadedMsg carries a freshly loaded roster, images included.
type rosterLoadedMsg struct {
	roster   *program.Roster
	defaults *program.Images
	err      error
}

// Slideshow cycles through the posters assigned to one screen during the
// ongoing session.
type Slideshow struct {
	chrome
	keys   slideshowKeyMap
	screen int

	state    slideshowState
	roster   *program.Roster
	index    int
	defaults *program.Images

	advance timer
	resume  timer
	reload  timer
	fade    fader
}

// NewSlideshow builds the slideshow for the given screen. The roster is
// loaded by Init.
func NewSlideshow(opts Options, screen int) Slideshow {
	c := newChrome(opts)
	return Slideshow{
		chrome:  c,
		keys:    newSlideshowKeyMap(),
		screen:  screen,
		advance: newTimer(timerAdvance, c.opts.Advance, true),
		resume:  newTimer(timerResume, c.opts.Pause, false),
		reload:  newTimer(timerReload, ReloadInterval, true),
		fade:    newFader(c.opts.Fading),
	}
}

func (m Slideshow) Init() tea.Cmd {
	return tea.Batch(refreshTick(), m.loadRoster())
}

// loadRoster reads the roster and decodes its images off the update loop.
func (m *Slideshow) loadRoster() tea.Cmd {
	src, assets, geom := m.opts.Source, m.opts.Assets, m.opts.Geometry
	screen, at, log := m.screen, m.opts.Reference(), m.log()
	return func() tea.Msg {
		log.Info("loading poster roster", "screen", screen)
		roster, err := src.LoadRoster(screen, at)
		if err != nil {
			log.Error("could not load poster roster", "err", err)
			return rosterLoadedMsg{err: err, defaults: program.DefaultImages(assets, geom)}
		}
		if roster.Len() == 0 {
			log.Info("displaying default poster")
			return rosterLoadedMsg{roster: roster, defaults: program.DefaultImages(assets, geom)}
		}
		roster.LoadImages(assets, geom)
		return rosterLoadedMsg{roster: roster}
	}
}

func (m Slideshow) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := m.opts.Now()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	case refreshMsg:
		return m, refreshTick()
	case rosterLoadedMsg:
		return m, m.applyRoster(msg)
	case timerMsg:
		switch msg.kind {
		case timerFade:
			return m, m.fade.step(msg, now)
		case timerAdvance:
			ok, next := m.advance.fire(msg, now)
			if !ok {
				return m, nil
			}
			return m, tea.Batch(next, m.transition(eventAdvance))
		case timerResume:
			if ok, _ := m.resume.fire(msg, now); !ok {
				return m, nil
			}
			return m, m.transition(eventResume)
		case timerReload:
			ok, next := m.reload.fire(msg, now)
			if !ok {
				return m, nil
			}
			if m.reloadDue() {
				m.transition(eventStop)
				return m, m.loadRoster()
			}
			return m, next
		}
	}
	return m, nil
}

// transition applies ev to the state machine and returns the timer
// commands it arms.
func (m *Slideshow) transition(ev slideshowEvent) tea.Cmd {
	now := m.opts.Now()
	switch ev {
	case eventStart:
		m.state = slideshowRunning
		m.resume.stop()
		return tea.Batch(m.advance.start(now), m.reload.start(now))
	case eventStop:
		m.state = slideshowStopped
		m.advance.stop()
		m.reload.stop()
		m.resume.stop()
		return nil
	case eventPause:
		m.state = slideshowPaused
		m.advance.stop()
		return m.resume.start(now)
	case eventResume:
		if m.state == slideshowRunning {
			return nil
		}
		start := m.transition(eventStart)
		return tea.Batch(start, m.transition(eventAdvance))
	case eventAdvance:
		return m.show(m.index + 1)
	case eventBackup:
		return m.show(m.index - 1)
	}
	return nil
}

func (m *Slideshow) show(i int) tea.Cmd {
	n := m.roster.Len()
	if n == 0 {
		return nil
	}
	m.index = ((i % n) + n) % n
	return m.fade.fadeIn(m.opts.Now())
}

func (m *Slideshow) applyRoster(msg rosterLoadedMsg) tea.Cmd {
	m.transition(eventStop)
	m.roster = msg.roster
	m.defaults = msg.defaults
	m.index = 0
	now := m.opts.Now()
	if m.roster.Len() == 0 {
		// Keep polling so the screen wakes up when its next session starts.
		return m.reload.start(now)
	}
	m.log().Info("poster roster loaded", "screen", m.screen, "posters", m.roster.Len(), "session", m.roster.Session().String())
	show := m.show(0)
	if m.roster.Len() > 1 {
		return tea.Batch(show, m.transition(eventStart))
	}
	return tea.Batch(show, m.reload.start(now))
}

// reloadDue reports whether the roster must be reloaded: on an explicit
// request, when its session is over, or when an empty screen's next session
// has started.
func (m *Slideshow) reloadDue() bool {
	if m.opts.Env != nil && m.opts.Env.ConsumeReloadMarker() {
		m.log().Info("reload requested")
		return true
	}
	at := m.opts.Reference()
	if s := m.roster.Session(); s != nil {
		if !s.Ongoing(at) {
			m.log().Info("session is over, reloading the program", "session", s.String())
			return true
		}
		return false
	}
	next := m.roster.NextStart()
	return !next.IsZero() && !at.Before(next)
}

func (m Slideshow) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.roster.Len() <= 1 {
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.Advance):
		start := m.transition(eventStart)
		return m, tea.Batch(start, m.transition(eventAdvance))
	case key.Matches(msg, m.keys.Backup):
		start := m.transition(eventStart)
		return m, tea.Batch(start, m.transition(eventBackup))
	case key.Matches(msg, m.keys.Pause):
		return m, m.transition(eventPause)
	case key.Matches(msg, m.keys.Reload):
		m.transition(eventStop)
		return m, m.loadRoster()
	default:
		m.log().Warn("invalid key pressed", "key", msg.String())
		return m, nil
	}
}

func (m Slideshow) status() string {
	switch m.state {
	case slideshowRunning:
		return m.t("slideshow_running", m.seconds(&m.advance))
	case slideshowPaused:
		return m.t("slideshow_paused", m.seconds(&m.resume))
	default:
		return ""
	}
}

func (m Slideshow) View() string {
	if m.roster.Len() == 0 {
		if m.defaults == nil {
			return m.compose(m.header("", "", ""), "")
		}
		panel := presenterPanel(&program.Images{QRCode: m.defaults.QRCode}, nil, "")
		status := m.t("slideshow_empty", map[string]any{"Screen": m.screen})
		return m.compose(m.header("", panel, status), m.posterArea(m.defaults.Poster, 1))
	}
	poster := m.roster.At(m.index)
	subtitle := m.t("slideshow_screen", map[string]any{
		"Session": m.roster.Session().Title,
		"Screen":  m.screen,
	})
	table := rosterTable(m.roster.Posters(), m.index, m.opts.Geometry.PortraitHeight)
	panel := presenterPanel(poster.Images(), &poster.Presenter, table)
	img := poster.Images()
	body := ""
	if img != nil {
		body = m.posterArea(img.Poster, m.fade.opacity)
	}
	return m.compose(m.header(subtitle, panel, m.status()), body)
}

// State reports the current state, for logs and tests.
func (m Slideshow) State() string { return m.state.String() }

// Current returns the poster on screen, or nil.
func (m Slideshow) Current() *program.Poster { return m.roster.At(m.index) }
