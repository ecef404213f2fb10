// Package statusline renders the desktop pager line printed by
// `hyprdesk status`.
package statusline

import (
	"fmt"
	"strings"

	"github.com/1broseidon/hyprdesk/internal/desktop"
	"github.com/charmbracelet/lipgloss"
)

var (
	activeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("62")).
			Padding(0, 1)
	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// Plain renders the pager without styling, e.g. " 1 [2] 3   Desktop 2/3".
func Plain(st desktop.Status) string {
	var b strings.Builder
	for i := 0; i < st.Count; i++ {
		if i == st.Current {
			fmt.Fprintf(&b, "[%d]", i+1)
		} else {
			fmt.Fprintf(&b, " %d ", i+1)
		}
	}
	b.WriteString("  ")
	b.WriteString(Summary(st))
	return b.String()
}

// Styled renders the pager with the current desktop highlighted.
func Styled(st desktop.Status) string {
	cells := make([]string, 0, st.Count+1)
	for i := 0; i < st.Count; i++ {
		style := idleStyle
		if i == st.Current {
			style = activeStyle
		}
		cells = append(cells, style.Render(fmt.Sprintf("%d", i+1)))
	}
	cells = append(cells, labelStyle.Render("  "+Summary(st)))
	return lipgloss.JoinHorizontal(lipgloss.Center, cells...)
}

// Render picks Styled or Plain.
func Render(st desktop.Status, styled bool) string {
	if styled {
		return Styled(st)
	}
	return Plain(st)
}

// Summary is the one-line status, e.g. "Desktop 2/3".
func Summary(st desktop.Status) string {
	return fmt.Sprintf("Desktop %d/%d", st.Current+1, st.Count)
}
