package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/Thegreatsura/portwitch/internal/netstat"
)

// Color palette.
var (
	colorGreen = lipgloss.Color("2")
	colorRed   = lipgloss.Color("1")
	colorGray  = lipgloss.Color("8")
	colorWhite = lipgloss.Color("15")
	colorCyan  = lipgloss.Color("6")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	cursorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorCyan)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorGray)

	helpStyle = lipgloss.NewStyle().
			Foreground(colorGray).
			PaddingTop(1)

	filterEditStyle = lipgloss.NewStyle().
			Foreground(colorCyan)

	dangerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("196")).
			Background(lipgloss.Color("52")).
			Padding(0, 1)

	successStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorGreen)

	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorRed)

	labelStyle = lipgloss.NewStyle().
			Bold(true).
			Width(12)

	rootRowStyle    = lipgloss.NewStyle().Foreground(colorRed)
	hiddenRowStyle  = lipgloss.NewStyle().Foreground(colorGray)
	defaultRowStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// rowStyle colors a table row by how risky the target is: root-owned
// processes red, rows without a visible owner gray.
func rowStyle(b netstat.Binding) lipgloss.Style {
	if !b.Owned() {
		return hiddenRowStyle
	}
	if b.User == "root" {
		return rootRowStyle
	}
	return defaultRowStyle
}
