package display

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

type browserState int

const (
	browserCarousel browserState = iota
	browserTree
	browserPoster
)

func (s browserState) String() string {
	switch s {
	case browserTree:
		return "tree"
	case browserPoster:
		return "poster"
	default:
		return "carousel"
	}
}

// programLoadedMsg carries a freshly read program.
type programLoadedMsg struct {
	program *program.Program
	err     error
}

func loadProgram(src Source) tea.Cmd {
	return func() tea.Msg {
		p, err := src.LoadProgram()
		return programLoadedMsg{program: p, err: err}
	}
}

// Browser lets visitors explore the full program. Idle, it shows random
// posters; any key opens the session tree, and a poster can be opened from
// there.
type Browser struct {
	chrome
	keys browserKeyMap

	state   browserState
	program *program.Program
	tree    tree
	current *program.Poster

	carousel timer
	toggle   timer
	fade     fader
}

func NewBrowser(opts Options) Browser {
	c := newChrome(opts)
	return Browser{
		chrome:   c,
		keys:     newBrowserKeyMap(),
		tree:     newTree(true, false),
		carousel: newTimer(timerCarousel, c.opts.Advance, true),
		toggle:   newTimer(timerToggle, c.opts.Pause, false),
		fade:     newFader(c.opts.Fading),
	}
}

func (m Browser) Init() tea.Cmd {
	return tea.Batch(refreshTick(), loadProgram(m.opts.Source))
}

func (m Browser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	now := m.opts.Now()
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg)
		m.tree.setVisible(m.treeRows())
		return m, nil
	case refreshMsg:
		return m, refreshTick()
	case programLoadedMsg:
		if msg.err != nil {
			m.log().Error("could not load program", "err", msg.err)
			return m, nil
		}
		m.setProgram(msg.program)
		return m, m.transition(browserCarousel, nil)
	case tea.KeyMsg:
		return m.handleKey(msg)
	case timerMsg:
		switch msg.kind {
		case timerFade:
			return m, m.fade.step(msg, now)
		case timerCarousel:
			ok, next := m.carousel.fire(msg, now)
			if !ok {
				return m, nil
			}
			return m, tea.Batch(next, m.display(m.program.RandomPoster(m.opts.Rand)))
		case timerToggle:
			if ok, _ := m.toggle.fire(msg, now); !ok {
				return m, nil
			}
			switch m.state {
			case browserTree:
				return m, m.transition(browserCarousel, nil)
			case browserPoster:
				return m, m.transition(browserTree, nil)
			}
		}
	}
	return m, nil
}

// setProgram fills the tree, skipping posters whose raster is missing.
func (m *Browser) setProgram(p *program.Program) {
	m.program = p
	m.tree.clear()
	for _, s := range p.Sessions() {
		var shown []*program.Poster
		for _, poster := range p.Posters(s) {
			if m.opts.Assets != nil && m.opts.Assets.MissingPosterImage(poster.FriendlyID) {
				continue
			}
			shown = append(shown, poster)
		}
		m.tree.add(s, shown)
	}
}

// transition enters state to, running its entry actions. poster is the one
// to open when entering the poster view.
func (m *Browser) transition(to browserState, poster *program.Poster) tea.Cmd {
	now := m.opts.Now()
	m.log().Debug("browser transition", "from", m.state.String(), "to", to.String())
	m.state = to
	switch to {
	case browserCarousel:
		m.toggle.stop()
		show := m.display(m.program.RandomPoster(m.opts.Rand))
		return tea.Batch(show, m.carousel.start(now))
	case browserTree:
		m.carousel.stop()
		if m.current != nil {
			m.tree.focusPoster(m.current)
		}
		return m.toggle.start(now)
	case browserPoster:
		return tea.Batch(m.display(poster), m.toggle.start(now))
	}
	return nil
}

// display releases the images of the poster on screen and loads those of p.
func (m *Browser) display(p *program.Poster) tea.Cmd {
	if p == nil {
		return nil
	}
	if m.current != nil {
		m.current.ReleaseImages()
	}
	if m.opts.Assets != nil {
		p.LoadImages(m.opts.Assets, m.opts.Geometry)
	}
	m.current = p
	return m.fade.fadeIn(m.opts.Now())
}

func (m Browser) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m, tea.Quit
	}
	if m.program == nil || !key.Matches(msg, m.keys.pad()...) {
		return m, nil
	}
	now := m.opts.Now()
	switch m.state {
	case browserCarousel:
		return m, m.transition(browserTree, nil)
	case browserTree:
		restart := m.toggle.start(now)
		if key.Matches(msg, m.keys.Expand) {
			if p := m.tree.selected(); p != nil {
				return m, m.transition(browserPoster, p)
			}
		}
		switch {
		case key.Matches(msg, m.keys.Expand):
			m.tree.right()
		case key.Matches(msg, m.keys.Collapse):
			m.tree.left()
		case key.Matches(msg, m.keys.Next):
			m.tree.down()
		case key.Matches(msg, m.keys.Previous):
			m.tree.up()
		}
		return m, restart
	case browserPoster:
		switch {
		case key.Matches(msg, m.keys.Pause):
			return m, m.toggle.start(now)
		case key.Matches(msg, m.keys.Collapse):
			return m, m.transition(browserTree, nil)
		case key.Matches(msg, m.keys.Next):
			return m, m.transition(browserPoster, m.step(1))
		case key.Matches(msg, m.keys.Previous):
			return m, m.transition(browserPoster, m.step(-1))
		}
	}
	return m, nil
}

// step returns the poster delta places after the current one in its session.
func (m *Browser) step(delta int) *program.Poster {
	if m.current == nil {
		return nil
	}
	return m.program.SelectBySessionIndex(m.current.Session(), m.current.SessionIndex()+delta)
}

func (m Browser) status() string {
	switch m.state {
	case browserCarousel:
		return m.t("browser_carousel", m.seconds(&m.carousel))
	case browserTree:
		return m.t("browser_tree", m.seconds(&m.toggle))
	case browserPoster:
		return m.t("browser_poster", m.seconds(&m.toggle))
	}
	return ""
}

func (m Browser) View() string {
	if m.program == nil {
		return m.compose(m.header(m.t("browser_title", nil), "", ""), "")
	}
	if m.state == browserTree {
		header := []string{m.t("column_poster", nil), m.t("column_presenter", nil)}
		body := m.tree.render(m.width, true, header)
		return m.compose(m.header(m.t("browser_tree_subtitle", nil), "", m.status()), body)
	}

	subtitle := m.t("browser_carousel_subtitle", nil)
	if m.state == browserPoster && m.current != nil && m.current.Session() != nil {
		subtitle = m.t("browser_poster_subtitle", map[string]any{"Session": m.current.Session().Title})
	}
	if m.current == nil {
		return m.compose(m.header(subtitle, "", m.status()), "")
	}
	p := m.current
	row := currentRowStyle.Render(fmt.Sprintf("[%d]  %s  %s", p.FriendlyID, p.ShortTitle(65), p.Presenter.FullName()))
	panel := presenterPanel(p.Images(), &p.Presenter, row)
	body := ""
	if img := p.Images(); img != nil {
		body = m.posterArea(img.Poster, m.fade.opacity)
	}
	return m.compose(m.header(subtitle, panel, m.status()), body)
}

// State reports the current state, for logs and tests.
func (m Browser) State() string { return m.state.String() }

// Current returns the poster last shown, or nil.
func (m Browser) Current() *program.Poster { return m.current }
