package display

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type timerKind int

const (
	timerAdvance timerKind = iota
	timerResume
	timerReload
	timerToggle
	timerCarousel
	timerFade
)

// timerMsg is delivered when a timer expires. gen identifies the arming it
// belongs to; a stale gen means the timer was stopped or restarted since.
type timerMsg struct {
	kind timerKind
	gen  int
}

// timer is a restartable tea.Tick. Periodic timers re-arm themselves when
// they fire; one-shot timers disarm.
type timer struct {
	kind     timerKind
	interval time.Duration
	periodic bool

	gen      int
	armed    bool
	deadline time.Time
}

func newTimer(kind timerKind, interval time.Duration, periodic bool) timer {
	return timer{kind: kind, interval: interval, periodic: periodic}
}

// start (re)arms the timer and returns the command delivering its expiry.
func (t *timer) start(now time.Time) tea.Cmd {
	t.gen++
	t.armed = true
	t.deadline = now.Add(t.interval)
	msg := timerMsg{kind: t.kind, gen: t.gen}
	return tea.Tick(t.interval, func(time.Time) tea.Msg { return msg })
}

// stop disarms the timer; ticks already in flight are ignored.
func (t *timer) stop() {
	t.gen++
	t.armed = false
}

// fire reports whether msg is the live expiry of this timer. Periodic timers
// return the command for their next expiry.
func (t *timer) fire(msg timerMsg, now time.Time) (bool, tea.Cmd) {
	if msg.kind != t.kind || msg.gen != t.gen || !t.armed {
		return false, nil
	}
	if t.periodic {
		return true, t.start(now)
	}
	t.armed = false
	return true, nil
}

func (t *timer) active() bool { return t.armed }

func (t *timer) remaining(now time.Time) time.Duration {
	if !t.armed {
		return 0
	}
	if d := t.deadline.Sub(now); d > 0 {
		return d
	}
	return 0
}

// statusSeconds rounds a remaining time the way the status line shows it.
func statusSeconds(d time.Duration) int {
	return int(d.Seconds() + 0.75)
}
