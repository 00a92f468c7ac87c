package program

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"time"
)

// ProgramSheet is the name of the session list sheet.
const ProgramSheet = "Program"

// Column names of the program sheet.
const (
	ColSessionID   = "Session ID"
	ColSessionName = "Session Name"
	ColStartDate   = "Start Date"
	ColEndDate     = "End Date"
)

// Column names of the session sheets.
const (
	ColFriendlyID  = "Friendly ID"
	ColDBID        = "DB ID"
	ColScreenID    = "Screen ID"
	ColTitle       = "Title"
	ColFirstName   = "First Name"
	ColLastName    = "Last Name"
	ColAffiliation = "Affiliation"
)

// ProgramColumns and SessionColumns are the sheet headers in order.
var (
	ProgramColumns = []string{ColSessionID, ColSessionName, ColStartDate, ColEndDate}
	SessionColumns = []string{ColFriendlyID, ColDBID, ColScreenID, ColTitle, ColFirstName, ColLastName, ColAffiliation}
)

// ErrNoProgramSheet is returned when the workbook has no usable program sheet.
var ErrNoProgramSheet = errors.New("program sheet not available")

// LoadProgram reads every session and its posters.
func LoadProgram(wb Workbook, loc *time.Location, log *slog.Logger) (*Program, error) {
	log = orDefault(log)
	sessions, err := readSessions(wb, loc, log)
	if err != nil {
		return nil, err
	}
	posters := make([][]*Poster, len(sessions))
	for i, s := range sessions {
		posters[i] = readPosters(wb, s.ID, log)
	}
	return NewProgram(sessions, posters), nil
}

// LoadRoster collects the posters assigned to screen in the sessions ongoing
// at the given instant. When several sessions match, the last one wins as
// the roster session.
func LoadRoster(wb Workbook, screen int, at time.Time, loc *time.Location, log *slog.Logger) (*Roster, error) {
	log = orDefault(log)
	sessions, err := readSessions(wb, loc, log)
	if err != nil {
		return nil, err
	}
	r := &Roster{ScreenID: screen}
	log.Info("populating session list", "screen", screen, "at", at.Format(time.DateTime))
	for _, s := range sessions {
		if s.HasWindow() && s.Start.After(at) && (r.nextStart.IsZero() || s.Start.Before(r.nextStart)) {
			r.nextStart = s.Start
		}
		if !s.Ongoing(at) {
			continue
		}
		log.Info("parsing ongoing session", "session", s.String())
		posters := readPosters(wb, s.ID, log)
		byID := slices.Clone(posters)
		slices.SortStableFunc(byID, func(a, b *Poster) int { return a.FriendlyID - b.FriendlyID })
		for _, p := range posters {
			if p.ScreenID != screen {
				continue
			}
			// Same position as in the Program; roster posters have no
			// program index.
			p.session = s
			p.sessionIndex = slices.Index(byID, p)
			p.programIndex = -1
			r.posters = append(r.posters, p)
			r.session = s
		}
	}
	if len(r.posters) == 0 {
		log.Warn("empty poster roster", "screen", screen)
	}
	return r, nil
}

func readSessions(wb Workbook, loc *time.Location, log *slog.Logger) ([]*Session, error) {
	log.Debug("reading program sheet", "sheet", ProgramSheet)
	rows, err := wb.Rows(ProgramSheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProgramSheet, err)
	}
	t, err := newTable(ProgramSheet, rows, ProgramColumns)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNoProgramSheet, err)
	}
	var sessions []*Session
	for n, row := range t.rows {
		if blankRow(row) {
			continue
		}
		id, err := parseInt(t.cell(row, ColSessionID))
		if err != nil {
			log.Warn("skipping program row with invalid session id", "row", n+2, "err", err)
			continue
		}
		sessions = append(sessions, NewSession(id,
			t.cell(row, ColSessionName),
			t.cell(row, ColStartDate),
			t.cell(row, ColEndDate),
			loc, log))
	}
	log.Debug("program sheet read", "sessions", len(sessions))
	return sessions, nil
}

func readPosters(wb Workbook, sessionID int, log *slog.Logger) []*Poster {
	sheet := strconv.Itoa(sessionID)
	log.Info("reading data for session", "session", sessionID)
	rows, err := wb.Rows(sheet)
	if err != nil {
		log.Warn("data not available for session", "session", sessionID, "err", err)
		return nil
	}
	t, err := newTable(sheet, rows, []string{ColFriendlyID, ColScreenID})
	if err != nil {
		log.Warn("data not available for session", "session", sessionID, "err", err)
		return nil
	}
	var posters []*Poster
	for n, row := range t.rows {
		if blankRow(row) {
			continue
		}
		friendly, err := parseInt(t.cell(row, ColFriendlyID))
		if err != nil {
			log.Warn("skipping poster row with invalid friendly id", "session", sessionID, "row", n+2, "err", err)
			continue
		}
		dbID, _ := parseInt(t.cell(row, ColDBID))
		screen, err := parseInt(t.cell(row, ColScreenID))
		if err != nil {
			screen = 0
		}
		posters = append(posters, &Poster{
			FriendlyID: friendly,
			DBID:       dbID,
			ScreenID:   screen,
			Title:      t.cell(row, ColTitle),
			Presenter: Presenter{
				FirstName:   t.cell(row, ColFirstName),
				LastName:    t.cell(row, ColLastName),
				Affiliation: t.cell(row, ColAffiliation),
			},
		})
	}
	return posters
}

func orDefault(log *slog.Logger) *slog.Logger {
	if log == nil {
		return slog.Default()
	}
	return log
}
