package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"spotic/internal/player"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	kindStyle  = lipgloss.NewStyle().Faint(true)
)

// FormatTrack renders the currently playing track on one line.
func FormatTrack(track *player.Track) string {
	return fmt.Sprintf("%s by %s",
		titleStyle.Render(fmt.Sprintf("%q", track.Title)),
		strings.Join(track.By, ", "))
}

// FormatPlayable renders a search result entry with its kind tag.
func FormatPlayable(playable player.Playable) string {
	return fmt.Sprintf("%s %s",
		playable.Display(),
		kindStyle.Render("["+playable.Kind.Label()+"]"))
}
