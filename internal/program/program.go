package program

import (
	"math/rand/v2"
	"slices"
	"time"
)

// Program is the full conference program: sessions in sheet order, each with
// its posters sorted by friendly id.
type Program struct {
	sessions []*Session
	posters  map[*Session][]*Poster
	flat     []*Poster
}

// NewProgram builds a Program and sets the position fields of every poster.
// posters[i] belongs to sessions[i].
func NewProgram(sessions []*Session, posters [][]*Poster) *Program {
	p := &Program{
		sessions: sessions,
		posters:  make(map[*Session][]*Poster, len(sessions)),
	}
	for i, s := range sessions {
		var list []*Poster
		if i < len(posters) {
			list = slices.Clone(posters[i])
		}
		slices.SortStableFunc(list, func(a, b *Poster) int { return a.FriendlyID - b.FriendlyID })
		for j, poster := range list {
			poster.session = s
			poster.sessionIndex = j
			poster.programIndex = len(p.flat)
			p.flat = append(p.flat, poster)
		}
		p.posters[s] = list
	}
	return p
}

// Sessions returns the sessions in program order.
func (p *Program) Sessions() []*Session { return slices.Clone(p.sessions) }

// Posters returns the posters of s, sorted by friendly id.
func (p *Program) Posters(s *Session) []*Poster { return slices.Clone(p.posters[s]) }

// Session looks a session up by id.
func (p *Program) Session(id int) *Session {
	for _, s := range p.sessions {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// Len is the number of posters in the program.
func (p *Program) Len() int { return len(p.flat) }

// SelectByProgramIndex returns the poster at index k of the flattened
// program; k wraps in both directions.
func (p *Program) SelectByProgramIndex(k int) *Poster {
	if len(p.flat) == 0 {
		return nil
	}
	return p.flat[wrap(k, len(p.flat))]
}

// SelectBySessionIndex returns the poster at index k of session s; k wraps
// in both directions.
func (p *Program) SelectBySessionIndex(s *Session, k int) *Poster {
	list := p.posters[s]
	if len(list) == 0 {
		return nil
	}
	return list[wrap(k, len(list))]
}

// RandomPoster picks a random non-empty session, then a random poster in it.
func (p *Program) RandomPoster(rng *rand.Rand) *Poster {
	var candidates []*Session
	for _, s := range p.sessions {
		if len(p.posters[s]) > 0 {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return nil
	}
	intN := rand.IntN
	if rng != nil {
		intN = rng.IntN
	}
	list := p.posters[candidates[intN(len(candidates))]]
	return list[intN(len(list))]
}

// OngoingSessions returns the sessions ongoing at t, in program order.
func (p *Program) OngoingSessions(t time.Time) []*Session {
	var out []*Session
	for _, s := range p.sessions {
		if s.Ongoing(t) {
			out = append(out, s)
		}
	}
	return out
}

func wrap(k, n int) int {
	k %= n
	if k < 0 {
		k += n
	}
	return k
}
