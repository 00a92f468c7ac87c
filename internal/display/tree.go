package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/posterkiosk/posterkiosk/internal/program"
)

type treeSession struct {
	session  *program.Session
	posters  []*program.Poster
	expanded bool
}

// treeRow addresses one visible line: a session, or poster p of it.
type treeRow struct {
	session int
	poster  int // -1 for the session line
}

// tree is a two-level session/poster outline with a cursor. With single set
// at most one session is expanded at a time.
type tree struct {
	sessions []treeSession
	single   bool
	screens  bool

	cursor   int
	topIndex int
	visible  int // rows of the scroll window, 0 for all
}

func newTree(single, screens bool) tree {
	return tree{single: single, screens: screens}
}

func (t *tree) add(s *program.Session, posters []*program.Poster) {
	t.sessions = append(t.sessions, treeSession{session: s, posters: posters})
}

func (t *tree) clear() {
	t.sessions = nil
	t.cursor = 0
	t.topIndex = 0
}

func (t *tree) rows() []treeRow {
	var rows []treeRow
	for i, s := range t.sessions {
		rows = append(rows, treeRow{session: i, poster: -1})
		if !s.expanded {
			continue
		}
		for j := range s.posters {
			rows = append(rows, treeRow{session: i, poster: j})
		}
	}
	return rows
}

func (t *tree) current() (treeRow, bool) {
	rows := t.rows()
	if len(rows) == 0 {
		return treeRow{}, false
	}
	if t.cursor >= len(rows) {
		t.cursor = len(rows) - 1
	}
	return rows[t.cursor], true
}

// selected returns the poster under the cursor, or nil on a session line.
func (t *tree) selected() *program.Poster {
	row, ok := t.current()
	if !ok || row.poster < 0 {
		return nil
	}
	return t.sessions[row.session].posters[row.poster]
}

func (t *tree) down() {
	if t.cursor < len(t.rows())-1 {
		t.cursor++
	}
	t.scroll()
}

func (t *tree) up() {
	if t.cursor > 0 {
		t.cursor--
	}
	t.scroll()
}

// setVisible sizes the scroll window.
func (t *tree) setVisible(n int) {
	t.visible = max(n, 0)
	t.scroll()
}

// scroll moves the window just enough to keep the cursor in view.
func (t *tree) scroll() {
	n := len(t.rows())
	visible := t.visible
	if visible <= 0 || visible > n {
		visible = n
	}
	if t.cursor >= n {
		t.cursor = max(n-1, 0)
	}
	if t.cursor < t.topIndex {
		t.topIndex = t.cursor
	}
	if t.cursor >= t.topIndex+visible {
		t.topIndex = t.cursor - visible + 1
	}
	t.topIndex = max(min(t.topIndex, n-visible), 0)
}

// right expands a collapsed session or steps into an expanded one.
func (t *tree) right() {
	row, ok := t.current()
	if !ok || row.poster >= 0 {
		return
	}
	s := &t.sessions[row.session]
	if !s.expanded {
		t.expand(row.session)
		return
	}
	if len(s.posters) > 0 {
		t.down()
	}
}

// left steps out of a poster to its session, or collapses a session.
func (t *tree) left() {
	row, ok := t.current()
	if !ok {
		return
	}
	if row.poster >= 0 {
		t.focus(row.session, -1)
		return
	}
	t.sessions[row.session].expanded = false
	t.scroll()
}

func (t *tree) expand(i int) {
	if t.single {
		for j := range t.sessions {
			t.sessions[j].expanded = false
		}
	}
	t.sessions[i].expanded = true
	t.focus(i, -1)
}

func (t *tree) expandAll() {
	for i := range t.sessions {
		t.sessions[i].expanded = true
	}
	t.scroll()
}

// expandOnly expands session i and collapses the others.
func (t *tree) expandOnly(i int) {
	for j := range t.sessions {
		t.sessions[j].expanded = j == i
	}
	t.scroll()
}

// focus moves the cursor to the given row if it is visible.
func (t *tree) focus(session, poster int) {
	for i, r := range t.rows() {
		if r.session == session && r.poster == poster {
			t.cursor = i
			break
		}
	}
	t.scroll()
}

// focusPoster expands the session holding p and moves the cursor onto it.
func (t *tree) focusPoster(p *program.Poster) {
	for i, s := range t.sessions {
		for j, candidate := range s.posters {
			if candidate == p {
				if !s.expanded {
					t.expand(i)
				}
				t.focus(i, j)
				return
			}
		}
	}
}

// render draws the scroll window of the outline.
func (t *tree) render(width int, showCursor bool, header []string) string {
	rows := t.rows()
	end := len(rows)
	if t.visible > 0 {
		end = min(t.topIndex+t.visible, len(rows))
	}

	col0, col1 := treeColumns(width, t.screens)
	lines := []string{treeHeaderStyle.Render(t.line(header, col0, col1))}
	for i := t.topIndex; i < end; i++ {
		r := rows[i]
		s := t.sessions[r.session]
		var text string
		style := posterStyle
		if r.poster < 0 {
			marker := "▸ "
			if s.expanded {
				marker = "▾ "
			}
			text = t.line([]string{marker + s.session.Title}, col0, col1)
			style = sessionStyle
		} else {
			p := s.posters[r.poster]
			cells := []string{
				fmt.Sprintf("    [%d] %s", p.FriendlyID, p.Title),
				p.Presenter.FullName(),
			}
			if t.screens {
				cells = append(cells, fmt.Sprintf("%d", p.ScreenID))
			}
			text = t.line(cells, col0, col1)
		}
		if showCursor && i == t.cursor {
			style = treeCursorStyle
		}
		lines = append(lines, style.Render(text))
	}
	return strings.Join(lines, "\n")
}

func (t *tree) line(cells []string, col0, col1 int) string {
	var sb strings.Builder
	widths := []int{col0, col1}
	for i, c := range cells {
		if i < len(widths) && widths[i] > 0 {
			sb.WriteString(padRight(ansi.Truncate(c, widths[i]-1, "…"), widths[i]))
			continue
		}
		sb.WriteString(c)
	}
	return sb.String()
}

// treeColumns splits the width 75/25, or 75/20/rest with a screen column.
func treeColumns(width int, screens bool) (int, int) {
	if width <= 0 {
		width = 120
	}
	if screens {
		return width * 75 / 100, width * 20 / 100
	}
	return width * 75 / 100, width * 25 / 100
}
