package display

import "github.com/charmbracelet/bubbles/key"

// slideshowKeyMap mirrors the four-button pad next to each screen. The
// arrows double for keyboard use.
type slideshowKeyMap struct {
	Advance key.Binding
	Pause   key.Binding
	Backup  key.Binding
	Reload  key.Binding
	Quit    key.Binding
}

func newSlideshowKeyMap() slideshowKeyMap {
	return slideshowKeyMap{
		Advance: key.NewBinding(key.WithKeys("1", "right"), key.WithHelp("1/→", "next poster")),
		Pause:   key.NewBinding(key.WithKeys("2", "enter"), key.WithHelp("2", "pause")),
		Backup:  key.NewBinding(key.WithKeys("3", "left"), key.WithHelp("3/←", "previous poster")),
		Reload:  key.NewBinding(key.WithKeys("5"), key.WithHelp("5", "reload")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

type browserKeyMap struct {
	Expand   key.Binding
	Collapse key.Binding
	Next     key.Binding
	Previous key.Binding
	Pause    key.Binding
	Quit     key.Binding
}

func newBrowserKeyMap() browserKeyMap {
	return browserKeyMap{
		Expand:   key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "open")),
		Collapse: key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "back")),
		Next:     key.NewBinding(key.WithKeys("down"), key.WithHelp("↓", "next")),
		Previous: key.NewBinding(key.WithKeys("up"), key.WithHelp("↑", "previous")),
		Pause:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "more time")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// pad lists the keys that count as user activity.
func (k browserKeyMap) pad() []key.Binding {
	return []key.Binding{k.Expand, k.Collapse, k.Next, k.Previous, k.Pause}
}

type directoryKeyMap struct {
	Quit key.Binding
}

func newDirectoryKeyMap() directoryKeyMap {
	return directoryKeyMap{
		Quit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}
