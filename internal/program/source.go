package program

import (
	"log/slog"
	"time"
)

// WorkbookFile loads programs and rosters from an xlsx file, re-opening it on
// every call so that edits are picked up on reload.
type WorkbookFile struct {
	Path     string
	Location *time.Location
	Log      *slog.Logger
}

func (w WorkbookFile) LoadProgram() (*Program, error) {
	wb, err := OpenWorkbook(w.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return LoadProgram(wb, w.Location, w.Log)
}

func (w WorkbookFile) LoadRoster(screen int, at time.Time) (*Roster, error) {
	wb, err := OpenWorkbook(w.Path)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	return LoadRoster(wb, screen, at, w.Location, w.Log)
}

// MemorySource serves a fixed in-memory workbook.
type MemorySource struct {
	Workbook MemoryWorkbook
	Location *time.Location
	Log      *slog.Logger
}

func (m MemorySource) LoadProgram() (*Program, error) {
	return LoadProgram(m.Workbook, m.Location, m.Log)
}

func (m MemorySource) LoadRoster(screen int, at time.Time) (*Roster, error) {
	return LoadRoster(m.Workbook, screen, at, m.Location, m.Log)
}
