package program

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Roster is the list of posters shown by one screen during the ongoing
// session, in sheet row order.
type Roster struct {
	ScreenID int

	session   *Session
	posters   []*Poster
	nextStart time.Time
}

// Session is the last ongoing session that contributed a poster, or nil.
func (r *Roster) Session() *Session {
	if r == nil {
		return nil
	}
	return r.session
}

// Len is the number of posters.
func (r *Roster) Len() int {
	if r == nil {
		return 0
	}
	return len(r.posters)
}

// At returns poster i, wrapping in both directions; nil on an empty roster.
func (r *Roster) At(i int) *Poster {
	if r.Len() == 0 {
		return nil
	}
	return r.posters[wrap(i, len(r.posters))]
}

// Posters returns a copy of the poster list.
func (r *Roster) Posters() []*Poster {
	if r == nil {
		return nil
	}
	return slices.Clone(r.posters)
}

// NextStart is the earliest session start after the reference instant. The
// zero time means no session starts later.
func (r *Roster) NextStart() time.Time {
	if r == nil {
		return time.Time{}
	}
	return r.nextStart
}

// LoadImages loads the rasters of every poster.
func (r *Roster) LoadImages(a *Assets, g Geometry) {
	for _, p := range r.posters {
		p.LoadImages(a, g)
	}
}

func (r *Roster) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Roster for screen %d", r.ScreenID)
	for _, p := range r.posters {
		sb.WriteByte('\n')
		sb.WriteString(p.String())
	}
	return sb.String()
}
