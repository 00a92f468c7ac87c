package testdata

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

func TestGenerateLoadsAsProgram(t *testing.T) {
	day := time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC)
	wb := Generate(Options{Day: day, Sessions: 3, Posters: 5, Screens: 2, Seed: 7})

	p, err := program.LoadProgram(wb, time.UTC, nil)
	require.NoError(t, err)
	require.Equal(t, 15, p.Len())
	require.Len(t, p.Sessions(), 3)

	morning := time.Date(2026, 5, 26, 10, 0, 0, 0, time.UTC)
	require.Equal(t, []int{100}, sessionIDs(p.OngoingSessions(morning)))
	require.Equal(t, []int{101}, sessionIDs(p.OngoingSessions(morning.Add(6*time.Hour))))

	r, err := program.LoadRoster(wb, 2, morning, time.UTC, nil)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())
}

func TestGenerateIsDeterministic(t *testing.T) {
	opts := Options{Day: time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC), Sessions: 2, Posters: 4, Screens: 3, Seed: 42}
	require.Equal(t, Generate(opts), Generate(opts))
}

func TestWriteXLSXRoundTrip(t *testing.T) {
	wb := Generate(Options{Day: time.Date(2026, 5, 26, 0, 0, 0, 0, time.UTC), Sessions: 2, Posters: 3, Screens: 3, Seed: 1})
	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, WriteXLSX(wb, path))

	x, err := program.OpenWorkbook(path)
	require.NoError(t, err)
	defer x.Close()
	p, err := program.LoadProgram(x, time.UTC, nil)
	require.NoError(t, err)
	require.Equal(t, 6, p.Len())
}

func sessionIDs(sessions []*program.Session) []int {
	var ids []int
	for _, s := range sessions {
		ids = append(ids, s.ID)
	}
	return ids
}
