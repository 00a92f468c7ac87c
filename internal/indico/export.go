package indico

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

const (
	// ChangeHour splits the poster day: morning sessions run until it,
	// afternoon sessions start at it.
	ChangeHour = "15:00"

	morningOpen  = "00:01"
	eveningClose = "23:59"

	// Sessions starting before noonCutoff are morning sessions.
	noonCutoff = 13

	// ScreenCount is the number of kiosk screens placeholder ids cycle over.
	ScreenCount = 20

	notAvailable = "N/A"
)

// sessionWindow widens a session to the half-day it belongs to.
func sessionWindow(s Session) (string, string, error) {
	start, err := s.StartDate.Parse()
	if err != nil {
		return "", "", fmt.Errorf("session %d start: %w", s.ID, err)
	}
	end, err := s.EndDate.Parse()
	if err != nil {
		return "", "", fmt.Errorf("session %d end: %w", s.ID, err)
	}
	startClock, endClock := ChangeHour, eveningClose
	if start.Hour() < noonCutoff {
		startClock = morningOpen
	}
	if end.Hour() < noonCutoff {
		endClock = ChangeHour
	}
	return start.Format("02/01/2006") + " " + startClock, end.Format("02/01/2006") + " " + endClock, nil
}

// Export writes the program workbook: the program sheet listing the sessions
// and one sheet per session with its contributions. Screen ids are
// placeholders to be edited by hand.
func (c *Conference) Export(path string, log *slog.Logger) error {
	log = orDefault(log)
	log.Info("dumping conference info", "path", path)
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", program.ProgramSheet); err != nil {
		return err
	}
	if err := writeRow(f, program.ProgramSheet, 1, program.ProgramColumns); err != nil {
		return err
	}
	for i, s := range c.Sessions {
		start, end, err := sessionWindow(s)
		if err != nil {
			return fmt.Errorf("indico: %w", err)
		}
		row := []any{int(s.ID), s.Title, start, end}
		if err := writeRow(f, program.ProgramSheet, i+2, row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(program.ProgramSheet, "A", "A", 15)
	_ = f.SetColWidth(program.ProgramSheet, "B", "B", 100)
	_ = f.SetColWidth(program.ProgramSheet, "C", "D", 20)

	for _, s := range c.Sessions {
		sheet := strconv.Itoa(int(s.ID))
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeRow(f, sheet, 1, program.SessionColumns); err != nil {
			return err
		}
		for i, contrib := range s.Contributions {
			first, last, aff := speakerCells(contrib, log)
			row := []any{int(contrib.ID), int(contrib.DBID), i%ScreenCount + 1, contrib.Title, first, last, aff}
			if err := writeRow(f, sheet, i+2, row); err != nil {
				return err
			}
		}
		_ = f.SetColWidth(sheet, "A", "C", 12)
		_ = f.SetColWidth(sheet, "D", "D", 100)
		_ = f.SetColWidth(sheet, "E", "F", 20)
		_ = f.SetColWidth(sheet, "G", "G", 60)
	}
	log.Info("writing output file", "path", path)
	return f.SaveAs(path)
}

func speakerCells(c Contribution, log *slog.Logger) (string, string, string) {
	warn := func(msg string) {
		log.Warn(msg, "contribution", int(c.ID), "title", truncate(c.Title, 30))
	}
	s, ok := c.Speaker()
	if !ok {
		warn("no speaker")
		return notAvailable, notAvailable, notAvailable
	}
	if s.FirstName == "" {
		warn("no first name")
	}
	if s.LastName == "" {
		warn("no last name")
	}
	if s.Affiliation == "" {
		warn("no affiliation")
	}
	return s.FirstName, s.LastName, s.Affiliation
}

func writeRow[T any](f *excelize.File, sheet string, row int, values []T) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return f.SetSheetRow(sheet, cell, &out)
}

func truncate(s string, n int) string {
	r := []rune(strings.TrimSpace(s))
	if len(r) <= n {
		return string(r)
	}
	return string(r[:n]) + "..."
}
