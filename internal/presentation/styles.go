package presentation

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	headingColor = lipgloss.AdaptiveColor{Light: "#1A5276", Dark: "#89B4FA"}
	mutedColor   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#696969"}
	successColor = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	warningColor = lipgloss.AdaptiveColor{Light: "#FECA57", Dark: "#FECA57"}
	errorColor   = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
)

// palette holds styles bound to the renderer of one writer, so color detection
// follows that writer rather than stdout.
type palette struct {
	heading lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	err     lipgloss.Style
	insert  lipgloss.Style
	delete  lipgloss.Style
}

func newPalette(w io.Writer, color bool) palette {
	r := lipgloss.NewRenderer(w)
	if color {
		r.SetColorProfile(termenv.ANSI256)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}
	return palette{
		heading: r.NewStyle().Bold(true).Foreground(headingColor),
		muted:   r.NewStyle().Foreground(mutedColor),
		success: r.NewStyle().Foreground(successColor),
		warning: r.NewStyle().Foreground(warningColor),
		err:     r.NewStyle().Foreground(errorColor),
		insert:  r.NewStyle().Foreground(successColor),
		delete:  r.NewStyle().Foreground(errorColor),
	}
}
