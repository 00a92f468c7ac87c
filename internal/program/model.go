package program

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/posterkiosk/posterkiosk/internal/pixmap"
)

// Presenter describes who stands next to a poster.
type Presenter struct {
	FirstName   string
	LastName    string
	Affiliation string
}

// FullName joins first and last name.
func (p Presenter) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

func (p Presenter) String() string {
	return fmt.Sprintf("%s (%s)", p.FullName(), p.Affiliation)
}

// AffiliationOrNA returns the affiliation, or "N/A" when it is blank.
func (p Presenter) AffiliationOrNA() string {
	if strings.TrimSpace(p.Affiliation) == "" {
		return "N/A"
	}
	return p.Affiliation
}

// Geometry is the on-screen size of the poster images.
type Geometry struct {
	PosterWidth    int // cells
	PortraitHeight int // rows, shared by presenter photo and QR code
}

// Images are the three rasters shown with a poster.
type Images struct {
	Poster    *pixmap.Image
	Presenter *pixmap.Image
	QRCode    *pixmap.Image
}

// Poster is one row of a session sheet.
type Poster struct {
	FriendlyID int
	DBID       int
	ScreenID   int
	Title      string
	Presenter  Presenter

	images *Images

	session      *Session
	sessionIndex int
	programIndex int
}

// Session is the session the poster belongs to; nil until placed in a
// Program or Roster.
func (p *Poster) Session() *Session { return p.session }

// SessionIndex is the position of the poster within its session.
func (p *Poster) SessionIndex() int { return p.sessionIndex }

// ProgramIndex is the position of the poster in the flattened program.
func (p *Poster) ProgramIndex() int { return p.programIndex }

// ShortTitle returns the title padded or cut to maxChars runes.
func (p *Poster) ShortTitle(maxChars int) string {
	n := utf8.RuneCountInString(p.Title)
	if n <= maxChars {
		return p.Title + strings.Repeat(" ", maxChars-n)
	}
	if maxChars <= 3 {
		return string([]rune(p.Title)[:maxChars])
	}
	return string([]rune(p.Title)[:maxChars-3]) + "..."
}

// PrettyPrint formats the poster for logs and reports.
func (p *Poster) PrettyPrint(maxChars int) string {
	return fmt.Sprintf("[%03d] %s (%s)", p.FriendlyID, p.ShortTitle(maxChars), p.Presenter.FullName())
}

func (p *Poster) String() string { return p.PrettyPrint(40) }

// Images returns the loaded rasters, or nil when released.
func (p *Poster) Images() *Images { return p.images }

// LoadImages replaces the poster rasters with freshly decoded ones.
func (p *Poster) LoadImages(a *Assets, g Geometry) {
	log := a.logger()
	log.Info("loading data for poster", "poster", p.String())
	p.images = &Images{
		Poster:    pixmap.LoadWidth(a.PosterImagePath(p.FriendlyID), g.PosterWidth, log),
		Presenter: pixmap.LoadHeight(a.PresenterImagePath(p.FriendlyID), g.PortraitHeight, log),
		QRCode:    pixmap.LoadHeight(a.QRCodeImagePath(p.FriendlyID), g.PortraitHeight, log),
	}
}

// ReleaseImages drops the rasters so browsing does not keep every poster in
// memory.
func (p *Poster) ReleaseImages() { p.images = nil }

// DefaultImages returns the placeholder poster and QR code shown when a
// screen has nothing to display.
func DefaultImages(a *Assets, g Geometry) *Images {
	log := a.logger()
	return &Images{
		Poster: pixmap.LoadWidth(a.MissingPoster, g.PosterWidth, log),
		QRCode: pixmap.LoadHeight(a.MissingQRCode, g.PortraitHeight, log),
	}
}

// Session is one row of the program sheet.
type Session struct {
	ID    int
	Title string
	Start time.Time
	End   time.Time

	valid bool
}

// Accepted timestamp layouts, day first.
var dateTimeLayouts = []string{
	"02/01/2006 15:04",
	"2/1/2006 15:04",
	"02/01/2006 15:04:05",
	"2/1/2006 15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NewSession parses the start/end strings in loc. A malformed timestamp is
// logged and leaves the session never ongoing.
func NewSession(id int, title, start, end string, loc *time.Location, log *slog.Logger) *Session {
	if loc == nil {
		loc = time.Local
	}
	s := &Session{ID: id, Title: title}
	var errStart, errEnd error
	s.Start, errStart = parseDateTime(start, loc)
	s.End, errEnd = parseDateTime(end, loc)
	if errStart != nil || errEnd != nil {
		if log != nil {
			log.Warn("invalid date and/or time for session", "session", id, "start", start, "end", end)
		}
		return s
	}
	s.valid = true
	return s
}

func parseDateTime(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	var err error
	for _, layout := range dateTimeLayouts {
		var t time.Time
		t, err = time.ParseInLocation(layout, text, loc)
		if err == nil {
			return t, nil
		}
	}
	return time.Time{}, err
}

// HasWindow reports whether both timestamps parsed.
func (s *Session) HasWindow() bool { return s.valid }

// Ongoing reports whether start <= t < end.
func (s *Session) Ongoing(t time.Time) bool {
	return s.valid && !t.Before(s.Start) && t.Before(s.End)
}

func (s *Session) String() string {
	return fmt.Sprintf("Session %d (%s)", s.ID, s.Title)
}
