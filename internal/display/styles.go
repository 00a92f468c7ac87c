package display

import "github.com/charmbracelet/lipgloss"

// The kiosk renders dark text on a white page, like a printed poster board.
const (
	colorPage      lipgloss.Color = "#ffffff"
	colorInk       lipgloss.Color = "#000000"
	colorMuted     lipgloss.Color = "#808080"
	colorFaint     lipgloss.Color = "#afafaf"
	colorHighlight lipgloss.Color = "#1e66f5"
)

var (
	pageStyle = lipgloss.NewStyle().Background(colorPage).Foreground(colorInk)

	titleStyle = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage).Bold(true)

	subtitleStyle = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage)

	statusStyle = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage).Faint(true)

	presenterNameStyle = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage).Bold(true)

	affiliationStyle = lipgloss.NewStyle().Foreground(colorMuted).Background(colorPage)

	// Roster table rows: the poster on screen is drawn in ink, the rest faded.
	rowStyle        = lipgloss.NewStyle().Foreground(colorFaint).Background(colorPage)
	currentRowStyle = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage).Bold(true)

	treeHeaderStyle = lipgloss.NewStyle().Foreground(colorMuted).Background(colorPage).Bold(true)
	sessionStyle    = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage).Bold(true)
	posterStyle     = lipgloss.NewStyle().Foreground(colorInk).Background(colorPage)
	treeCursorStyle = lipgloss.NewStyle().Foreground(colorPage).Background(colorHighlight)
	debugStyle      = lipgloss.NewStyle().Foreground(colorMuted).Background(colorPage).Faint(true)
)
