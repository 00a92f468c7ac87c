package program

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrSheetNotFound is returned by Workbook.Rows for unknown sheets.
var ErrSheetNotFound = errors.New("sheet not found")

// Workbook is the tabular source of a program: one "Program" sheet plus one
// sheet per session, named after the session id.
type Workbook interface {
	Rows(sheet string) ([][]string, error)
}

// MemoryWorkbook is a Workbook held in memory, keyed by sheet name.
type MemoryWorkbook map[string][][]string

func (w MemoryWorkbook) Rows(sheet string) ([][]string, error) {
	rows, ok := w[sheet]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	return rows, nil
}

// XLSXWorkbook reads an .xlsx file.
type XLSXWorkbook struct {
	f *excelize.File
}

// OpenWorkbook opens the xlsx file at path. The caller must Close it.
func OpenWorkbook(path string) (*XLSXWorkbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &XLSXWorkbook{f: f}, nil
}

func (w *XLSXWorkbook) Rows(sheet string) ([][]string, error) {
	if !slices.Contains(w.f.GetSheetList(), sheet) {
		return nil, fmt.Errorf("%w: %s", ErrSheetNotFound, sheet)
	}
	rows, err := w.f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}
	return rows, nil
}

func (w *XLSXWorkbook) Close() error { return w.f.Close() }

// table gives by-name access to the cells of a sheet whose first row holds
// the column names.
type table struct {
	sheet string
	cols  map[string]int
	rows  [][]string
}

func newTable(sheet string, rows [][]string, required []string) (*table, error) {
	if len(rows) == 0 {
		return &table{sheet: sheet, cols: map[string]int{}}, nil
	}
	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	for _, name := range required {
		if _, ok := cols[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("sheet %s: missing column %q", sheet, name)
		}
	}
	return &table{sheet: sheet, cols: cols, rows: rows[1:]}, nil
}

func (t *table) cell(row []string, name string) string {
	i, ok := t.cols[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// parseInt accepts plain integers and integral floats ("12.0"), which is how
// numeric cells come out of some spreadsheet exports.
func parseInt(text string) (int, error) {
	text = strings.TrimSpace(text)
	if n, err := strconv.Atoi(text); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("not an integer: %q", text)
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("not an integer: %q", text)
	}
	return int(f), nil
}
