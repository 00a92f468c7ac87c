// Package testdata generates sample programs for demos and dry runs of the
// kiosk views.
package testdata

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

// Options shape the generated program.
type Options struct {
	// Day is the date of the first session; its clock is ignored.
	Day      time.Time
	Sessions int
	Posters  int // per session
	Screens  int
	Seed     uint64
}

var (
	topics    = []string{"Silicon", "Gaseous", "Cryogenic", "Scintillating", "Timing", "Radiation-hard", "Monolithic", "Optical"}
	subjects  = []string{"trackers", "calorimeters", "photodetectors", "readout chips", "muon chambers", "neutrino targets"}
	firsts    = []string{"Anna", "Luca", "Marta", "Paolo", "Giulia", "Marco", "Sara", "Davide"}
	lasts     = []string{"Rossi", "Bianchi", "Ferrari", "Esposito", "Romano", "Colombo", "Ricci", "Greco"}
	labs      = []string{"INFN Pisa", "CERN", "DESY", "KEK", "Fermilab", "", "PSI"}
	halfDays  = [][2]string{{"00:01", "15:00"}, {"15:00", "23:59"}}
	dayFormat = "02/01/2006"
)

// Generate builds a program workbook: sessions alternate between morning and
// afternoon half days, posters cycle over the screens.
func Generate(opts Options) program.MemoryWorkbook {
	if opts.Screens <= 0 {
		opts.Screens = 1
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	wb := program.MemoryWorkbook{}
	rows := [][]string{program.ProgramColumns}
	friendly := 1
	for i := 0; i < opts.Sessions; i++ {
		id := 100 + i
		day := opts.Day.AddDate(0, 0, i/2).Format(dayFormat)
		window := halfDays[i%2]
		rows = append(rows, []string{
			strconv.Itoa(id),
			fmt.Sprintf("Poster session %d", i+1),
			day + " " + window[0],
			day + " " + window[1],
		})

		sheet := [][]string{program.SessionColumns}
		for j := 0; j < opts.Posters; j++ {
			sheet = append(sheet, []string{
				strconv.Itoa(friendly),
				strconv.Itoa(5000 + friendly),
				strconv.Itoa(j%opts.Screens + 1),
				fmt.Sprintf("%s %s for future colliders", pick(rng, topics), pick(rng, subjects)),
				pick(rng, firsts),
				pick(rng, lasts),
				pick(rng, labs),
			})
			friendly++
		}
		wb[strconv.Itoa(id)] = sheet
	}
	wb[program.ProgramSheet] = rows
	return wb
}

func pick(rng *rand.Rand, from []string) string {
	return from[rng.IntN(len(from))]
}

// WriteXLSX saves wb with the program sheet first.
func WriteXLSX(wb program.MemoryWorkbook, path string) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", program.ProgramSheet); err != nil {
		return err
	}
	if err := writeSheet(f, program.ProgramSheet, wb[program.ProgramSheet]); err != nil {
		return err
	}
	for _, row := range wb[program.ProgramSheet][1:] {
		sheet := row[0]
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeSheet(f, sheet, wb[sheet]); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func writeSheet(f *excelize.File, sheet string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		values := make([]any, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return nil
}
