// Package display implements the three kiosk views as Bubble Tea models:
// the per-screen slideshow, the interactive program browser and the session
// directory. Each view owns an explicit state and a single transition
// function; timers are generation-counted ticks so that stopping or
// restarting one discards expiries already in flight.
package display

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/posterkiosk/posterkiosk/internal/env"
	"github.com/posterkiosk/posterkiosk/internal/i18n"
	"github.com/posterkiosk/posterkiosk/internal/pixmap"
	"github.com/posterkiosk/posterkiosk/internal/program"
)

const (
	// ReloadInterval is how often slideshow and directory look for fresh data.
	ReloadInterval = 10 * time.Second
	// RefreshInterval is the header status refresh period.
	RefreshInterval = 100 * time.Millisecond
)

// Source provides the program data. program.WorkbookFile re-reads the
// workbook on every call.
type Source interface {
	LoadProgram() (*program.Program, error)
	LoadRoster(screen int, at time.Time) (*program.Roster, error)
}

// Options are shared by all views.
type Options struct {
	Env        *env.Env
	Translator *i18n.Translator
	Source     Source
	Assets     *program.Assets
	Geometry   program.Geometry

	// Title is the first header line, "name - location - dates".
	Title        string
	HeaderHeight int

	Advance time.Duration
	Pause   time.Duration
	Fading  bool

	// Now is the wall clock driving the timers.
	Now func() time.Time
	// Reference is the instant used for "ongoing" checks; it differs from
	// Now when the display date is overridden.
	Reference func() time.Time
	Rand      *rand.Rand
}

func (o *Options) defaults() {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Reference == nil {
		o.Reference = o.Now
	}
	if o.Translator == nil {
		o.Translator = i18n.NewTranslator("en", o.logger())
	}
	if o.Rand == nil {
		o.Rand = rand.New(rand.NewPCG(uint64(o.Now().UnixNano()), 0x5eed))
	}
}

func (o *Options) logger() *slog.Logger {
	if o.Env == nil || o.Env.Logger == nil {
		return slog.Default()
	}
	return o.Env.Logger
}

// chrome is the layout shared by the views: header, body, debug footer.
type chrome struct {
	opts    Options
	width   int
	height  int
	started time.Time
}

func newChrome(opts Options) chrome {
	opts.defaults()
	return chrome{opts: opts, started: opts.Now()}
}

// refreshMsg redraws the header status line.
type refreshMsg struct{}

func refreshTick() tea.Cmd {
	return tea.Tick(RefreshInterval, func(time.Time) tea.Msg { return refreshMsg{} })
}

func (c *chrome) log() *slog.Logger { return c.opts.logger() }

func (c *chrome) t(id string, data map[string]any) string {
	return c.opts.Translator.T(id, data)
}

// resize handles window size changes.
func (c *chrome) resize(msg tea.WindowSizeMsg) {
	c.width, c.height = msg.Width, msg.Height
}

// header is the title block plus an optional panel (presenter, QR code,
// roster) and the status line. With HeaderHeight set the block is padded or
// clipped to that many rows, the status line always last.
func (c *chrome) header(subtitle, panel, status string) string {
	lines := []string{
		titleStyle.Render(c.fit(c.opts.Title)),
		subtitleStyle.Render(c.fit(subtitle)),
	}
	if panel != "" {
		lines = append(lines, strings.Split(panel, "\n")...)
	}
	if h := c.opts.HeaderHeight; h > 1 {
		if len(lines) > h-1 {
			lines = lines[:h-1]
		}
		for len(lines) < h-1 {
			lines = append(lines, "")
		}
	}
	lines = append(lines, statusStyle.Render(c.fit(status)))
	return strings.Join(lines, "\n")
}

// treeRows is the number of outline rows that fit below a panel-less header,
// the blank separator, the column header and the footer.
func (c *chrome) treeRows() int {
	if c.height <= 0 {
		return 0
	}
	header := 3
	if c.opts.HeaderHeight > 1 {
		header = c.opts.HeaderHeight
	}
	return max(c.height-header-3, 1)
}

// footer is the debug line.
func (c *chrome) footer() string {
	uptime := fmt.Sprintf("%.1f", c.opts.Now().Sub(c.started).Seconds())
	return debugStyle.Render(c.fit(c.t("footer_uptime", map[string]any{"Uptime": uptime})))
}

// compose stacks header, body and footer, padding the body to the window.
func (c *chrome) compose(header, body string) string {
	footer := c.footer()
	if c.height == 0 {
		return header + "\n\n" + body + "\n" + footer
	}
	bodyHeight := c.height - lipgloss.Height(header) - lipgloss.Height(footer) - 1
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	lines := strings.Split(body, "\n")
	if len(lines) > bodyHeight {
		lines = lines[:bodyHeight]
	}
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	if c.width > 0 {
		for i, line := range lines {
			lines[i] = padRight(line, c.width)
		}
	}
	return pageStyle.Render(header + "\n\n" + strings.Join(lines, "\n") + "\n" + footer)
}

func (c *chrome) fit(s string) string {
	if c.width <= 0 {
		return s
	}
	return padRight(ansi.Truncate(s, c.width, "…"), c.width)
}

// seconds formats a timer for the status line.
func (c *chrome) seconds(t *timer) map[string]any {
	return map[string]any{"Seconds": statusSeconds(t.remaining(c.opts.Now()))}
}

// presenterPanel draws the portrait, the QR code and, to their right, the
// side content (roster table or single poster row).
func presenterPanel(images *program.Images, presenter *program.Presenter, side string) string {
	var portrait, qr string
	if images != nil {
		portrait = images.Presenter.Render()
		qr = images.QRCode.Render()
	}
	row := lipgloss.JoinHorizontal(lipgloss.Top, portrait, "  ", qr, "  ", side)
	if presenter == nil {
		return row
	}
	name := presenterNameStyle.Render(presenter.FullName())
	aff := affiliationStyle.Render(presenter.AffiliationOrNA())
	return row + "\n" + name + "\n" + aff
}

// rosterTable lists posters, highlighting the current one and keeping it
// within the visible rows.
func rosterTable(posters []*program.Poster, current, visible int) string {
	if len(posters) == 0 {
		return ""
	}
	if visible <= 0 {
		visible = len(posters)
	}
	top := 0
	if current >= visible {
		top = current - visible + 1
	}
	end := min(top+visible, len(posters))
	lines := make([]string, 0, end-top)
	for i := top; i < end; i++ {
		p := posters[i]
		line := fmt.Sprintf("[%d]  %s  %s", p.FriendlyID, p.ShortTitle(65), p.Presenter.FullName())
		if i == current {
			lines = append(lines, currentRowStyle.Render(line))
		} else {
			lines = append(lines, rowStyle.Render(line))
		}
	}
	return strings.Join(lines, "\n")
}

// posterArea renders the poster image at the given opacity, centred.
func (c *chrome) posterArea(img *pixmap.Image, opacity float64) string {
	if img == nil {
		return ""
	}
	var out string
	if opacity >= 1 {
		out = img.Render()
	} else {
		out = img.RenderOpacity(opacity)
	}
	if c.width <= 0 || img.Width() >= c.width {
		return out
	}
	return lipgloss.PlaceHorizontal(c.width, lipgloss.Center, out, lipgloss.WithWhitespaceBackground(colorPage))
}

func padRight(s string, width int) string {
	if width <= 0 {
		return s
	}
	w := ansi.StringWidth(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
