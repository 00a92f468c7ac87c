package display

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const (
	fadeStep     = 0.1
	fadeInterval = 25 * time.Millisecond
)

// fader raises the poster opacity from 0 to 1 in fixed steps.
type fader struct {
	enabled bool
	opacity float64
	tick    timer
}

func newFader(enabled bool) fader {
	return fader{enabled: enabled, opacity: 1, tick: newTimer(timerFade, fadeInterval, false)}
}

// fadeIn restarts the fade from fully transparent.
func (f *fader) fadeIn(now time.Time) tea.Cmd {
	if !f.enabled {
		f.opacity = 1
		return nil
	}
	f.opacity = 0
	return f.tick.start(now)
}

// step handles one fade tick; it returns the next tick until fully opaque.
func (f *fader) step(msg timerMsg, now time.Time) tea.Cmd {
	if ok, _ := f.tick.fire(msg, now); !ok {
		return nil
	}
	f.opacity += fadeStep
	if f.opacity >= 1 {
		f.opacity = 1
		return nil
	}
	return f.tick.start(now)
}
