package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorBrand   = lipgloss.Color("#6C63FF")
	colorTeam    = lipgloss.Color("#2EC4B6")
	colorUser    = lipgloss.Color("#7AA2F7")
	colorText    = lipgloss.Color("#C0CAF5")
	colorDim     = lipgloss.Color("#666666")
	colorBorder  = lipgloss.Color("#414868")
	colorShare   = lipgloss.Color("#FF6B6B")
	colorOnGoal  = lipgloss.Color("#2ECC71")
	colorNearing = lipgloss.Color("#F39C12")
	colorBelow   = lipgloss.Color("#E74C3C")
)

// Bars in the output chart cycle through these.
var categoryColors = []lipgloss.Color{
	colorBrand, colorTeam, colorShare, colorUser, colorNearing, colorOnGoal,
}

var (
	brandStyle = lipgloss.NewStyle().Bold(true).Foreground(colorBrand)

	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorBrand).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(colorBrand).
			Padding(0, 2)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim).
				Padding(0, 2)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(1, 2)

	// Forms and the export picker.
	activePanelStyle = panelStyle.BorderForeground(colorBrand)

	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	subtitleStyle  = lipgloss.NewStyle().Foreground(colorDim).Bold(true)
	mutedStyle     = lipgloss.NewStyle().Foreground(colorDim)
	accentStyle    = lipgloss.NewStyle().Foreground(colorShare)
	highlightStyle = lipgloss.NewStyle().Foreground(colorUser)

	successStyle = lipgloss.NewStyle().Foreground(colorOnGoal)
	warningStyle = lipgloss.NewStyle().Foreground(colorNearing)
	errorStyle   = lipgloss.NewStyle().Foreground(colorBelow)

	headerStyle = lipgloss.NewStyle().Padding(0, 1)
	footerStyle = lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1)

	teamBlockStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(colorTeam).
			PaddingLeft(1)

	userBlockStyle = teamBlockStyle.BorderForeground(colorUser)

	pendingStyle = lipgloss.NewStyle().Foreground(colorNearing).Italic(true)

	selectedItemStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)
	normalItemStyle   = lipgloss.NewStyle().Foreground(colorText)
)

// productivityStyle colours a target percentage: green at or above the
// workday target, amber from 75%, red below.
func productivityStyle(pct int) lipgloss.Style {
	switch {
	case pct >= 100:
		return successStyle
	case pct >= 75:
		return warningStyle
	default:
		return errorStyle
	}
}
