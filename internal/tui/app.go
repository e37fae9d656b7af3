package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/export"
	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	svc    *report.Service
	user   *store.User
	opts   Options
	width  int
	height int

	views         []viewState
	activeView    viewState
	showHelp      bool
	exportPicking bool
	exportCursor  int

	input       inputModel
	output      outputModel
	calibration calibrationModel
	team        teamModel

	help        help.Model
	status      string
	statusError bool
}

// NewApp builds the UI for user. Operations staff only see the input view.
func NewApp(s *store.Store, svc *report.Service, user *store.User, opts Options) App {
	opts = opts.withDefaults()
	h := help.New()
	h.ShowAll = false

	views := []viewState{viewInput}
	if user.IsAdmin() {
		views = append(views, viewOutput, viewCalibration, viewTeam)
	}

	return App{
		store:       s,
		svc:         svc,
		user:        user,
		opts:        opts,
		views:       views,
		activeView:  viewInput,
		input:       newInputModel(s, user, opts),
		output:      newOutputModel(svc, s, opts),
		calibration: newCalibrationModel(s, opts),
		team:        newTeamModel(s, user, opts),
		help:        h,
	}
}

func (a App) Init() tea.Cmd {
	return a.input.load()
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.input.setSize(a.width, contentHeight)
		a.output.setSize(a.width, contentHeight)
		a.calibration.setSize(a.width, contentHeight)
		a.team.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.exportPicking {
			return a.updateExportPicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Export):
			if a.activeView == viewOutput {
				a.exportPicking = true
				a.exportCursor = 0
			}
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewInput)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewOutput)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewCalibration)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewTeam)
		case key.Matches(msg, keys.Tab):
			i := slices.Index(a.views, a.activeView)
			return a.switchTo(a.views[(i+1)%len(a.views)])
		}

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		return a, nil

	case exportDoneMsg:
		a.status = "Exported to " + strings.Join(msg.paths, ", ")
		a.statusError = false
		a.exportPicking = false
		return a, nil

	case inputDataMsg, entrySavedMsg:
		var cmd tea.Cmd
		a.input, cmd = a.input.update(msg)
		return a, cmd

	case outputDataMsg:
		var cmd tea.Cmd
		a.output, cmd = a.output.update(msg)
		return a, cmd

	case calibrationDataMsg:
		var cmd tea.Cmd
		a.calibration, cmd = a.calibration.update(msg)
		return a, cmd

	case teamDataMsg:
		var cmd tea.Cmd
		a.team, cmd = a.team.update(msg)
		return a, cmd
	}

	return a.updateActiveView(msg)
}

// switchTo activates v when the user's role allows it.
func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	if !slices.Contains(a.views, v) {
		return a, nil
	}
	a.activeView = v
	return a, a.refreshCurrentView()
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewInput:
		a.input, cmd = a.input.update(msg)
	case viewOutput:
		a.output, cmd = a.output.update(msg)
	case viewCalibration:
		a.calibration, cmd = a.calibration.update(msg)
	case viewTeam:
		a.team, cmd = a.team.update(msg)
	}
	return a, cmd
}

func (a App) isFormActive() bool {
	switch a.activeView {
	case viewInput:
		return a.input.formActive
	case viewCalibration:
		return a.calibration.formActive
	case viewTeam:
		return a.team.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewInput:
		return a.input.load()
	case viewOutput:
		return a.output.refresh()
	case viewCalibration:
		return a.calibration.refresh()
	case viewTeam:
		return a.team.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewInput:
		content = a.input.view()
	case viewOutput:
		content = a.output.view()
	case viewCalibration:
		content = a.calibration.view()
	case viewTeam:
		content = a.team.view()
	}

	// Calculate available height for content
	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := a.height - headerHeight - footerHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	if a.exportPicking {
		content = a.renderExportPicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for _, v := range a.views {
		name := viewNames[v]
		if v == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(name))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(name))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := brandStyle.Render("prodtrack") +
		mutedStyle.Render(" · "+a.user.Name)
	gap := a.width - lipgloss.Width(title) - lipgloss.Width(tabRow) - 4
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	left := footerStyle.Render(helpView)

	gap := a.width - lipgloss.Width(left) - lipgloss.Width(status) - 2
	if gap < 1 {
		gap = 1
	}
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, status)
}

func (a App) renderExportPicker() string {
	title := titleStyle.Render("Export " + a.output.currentScope().Label())
	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")
	for i, f := range export.Formats {
		cursor := "  "
		style := normalItemStyle
		if i == a.exportCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+strings.ToUpper(string(f))))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: export  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExportPicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exportCursor > 0 {
			a.exportCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exportCursor < len(export.Formats)-1 {
			a.exportCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exportPicking = false
		return a, a.doExport(export.Formats[a.exportCursor])
	case key.Matches(msg, keys.Back):
		a.exportPicking = false
	}
	return a, nil
}

func (a App) doExport(format export.Format) tea.Cmd {
	scope := a.output.currentScope()
	return func() tea.Msg {
		paths, err := export.Write(a.svc, scope, format, a.opts.ExportDir)
		if errors.Is(err, export.ErrNoEntries) {
			return statusMsg{text: fmt.Sprintf("Nothing to export for %s", scope.Label()), isError: true}
		}
		if err != nil {
			a.opts.Log.Error("export failed", zap.String("format", string(format)), zap.String("scope", scope.String()), zap.Error(err))
			return statusMsg{text: fmt.Sprintf("Export error: %v", err), isError: true}
		}
		for _, p := range paths {
			a.opts.Log.Info("export written", zap.String("path", p), zap.String("scope", scope.String()))
		}
		return exportDoneMsg{paths: paths}
	}
}
