package program

import (
	"log/slog"
	"maps"
	"slices"
	"strings"

	"github.com/agnivade/levenshtein"
)

// DuplicateTitleDistance is the largest edit distance between two normalised
// titles reported as a likely duplicate submission.
const DuplicateTitleDistance = 3

// AssetCounts counts posters per asset role.
type AssetCounts struct {
	Posters int
	Pics    int
	QRCodes int
}

// SessionStats summarises how the posters of one session spread over screens.
type SessionStats struct {
	Session   *Session
	Posters   int
	Screens   map[int]int
	MinPerScr int
	MaxPerScr int
}

// MeanPerScreen is the average number of posters per screen.
func (s SessionStats) MeanPerScreen() float64 {
	if len(s.Screens) == 0 {
		return 0
	}
	return float64(s.Posters) / float64(len(s.Screens))
}

// DuplicatePair is two posters with nearly identical titles.
type DuplicatePair struct {
	A, B     *Poster
	Distance int
}

// Report is a diagnostic summary of a program and its assets.
type Report struct {
	Sessions []SessionStats
	Present  AssetCounts
	Missing  AssetCounts
	// Orphans have a poster raster but no presenter picture.
	Orphans        []*Poster
	MissingPosters []*Poster
	Duplicates     []DuplicatePair
}

// BuildReport inspects every poster of p against the asset directories.
func BuildReport(p *Program, a *Assets) *Report {
	r := &Report{}
	for _, s := range p.Sessions() {
		posters := p.Posters(s)
		st := SessionStats{Session: s, Posters: len(posters), Screens: map[int]int{}}
		for _, poster := range posters {
			st.Screens[poster.ScreenID]++
			missingPoster := a.MissingPosterImage(poster.FriendlyID)
			if missingPoster {
				r.Missing.Posters++
				r.MissingPosters = append(r.MissingPosters, poster)
			} else {
				r.Present.Posters++
			}
			if a.MissingPresenterImage(poster.FriendlyID) {
				r.Missing.Pics++
				if !missingPoster {
					r.Orphans = append(r.Orphans, poster)
				}
			} else {
				r.Present.Pics++
			}
			if a.MissingQRCodeImage(poster.FriendlyID) {
				r.Missing.QRCodes++
			} else {
				r.Present.QRCodes++
			}
		}
		for i, n := range slices.Collect(maps.Values(st.Screens)) {
			if i == 0 || n < st.MinPerScr {
				st.MinPerScr = n
			}
			if n > st.MaxPerScr {
				st.MaxPerScr = n
			}
		}
		r.Sessions = append(r.Sessions, st)
	}
	r.Duplicates = findDuplicates(p)
	return r
}

func findDuplicates(p *Program) []DuplicatePair {
	var out []DuplicatePair
	n := p.Len()
	titles := make([]string, n)
	for i := range n {
		titles[i] = normaliseTitle(p.SelectByProgramIndex(i).Title)
	}
	for i := 0; i < n; i++ {
		if titles[i] == "" {
			continue
		}
		for j := i + 1; j < n; j++ {
			if titles[j] == "" {
				continue
			}
			d := levenshtein.ComputeDistance(titles[i], titles[j])
			if d <= DuplicateTitleDistance {
				out = append(out, DuplicatePair{A: p.SelectByProgramIndex(i), B: p.SelectByProgramIndex(j), Distance: d})
			}
		}
	}
	return out
}

func normaliseTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToUpper(title)), " ")
}

// Log writes the report the way operators read it.
func (r *Report) Log(log *slog.Logger) {
	log = orDefault(log)
	for _, st := range r.Sessions {
		log.Info(st.Session.String())
		if st.Posters == 0 {
			log.Info("no posters")
			continue
		}
		log.Info("screen multiplicity",
			"posters", st.Posters,
			"screens", len(st.Screens),
			"min", st.MinPerScr,
			"max", st.MaxPerScr,
			"mean", st.MeanPerScreen())
		for _, screen := range slices.Sorted(maps.Keys(st.Screens)) {
			log.Info("screen statistics", "screen", screen, "posters", st.Screens[screen])
		}
	}
	log.Info("basic statistics", "posters", r.Present.Posters, "pics", r.Present.Pics, "qrcodes", r.Present.QRCodes)
	log.Info("missing elements", "posters", r.Missing.Posters, "pics", r.Missing.Pics, "qrcodes", r.Missing.QRCodes)
	log.Info("orphan posters with no presenter pic", "count", len(r.Orphans))
	for _, p := range r.Orphans {
		log.Info(p.String())
	}
	log.Info("missing posters", "count", len(r.MissingPosters))
	for _, p := range r.MissingPosters {
		log.Info(p.String())
	}
	for _, d := range r.Duplicates {
		log.Warn("possible duplicate titles", "a", d.A.String(), "b", d.B.String(), "distance", d.Distance)
	}
}
