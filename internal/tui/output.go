package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

// outputModel shows team and per-user summaries for a date preset.
type outputModel struct {
	svc    *report.Service
	store  *store.Store
	opts   Options
	width  int
	height int

	presets []report.Preset
	preset  int
	users   []store.User
	userIdx int // -1 = whole team

	seq     *report.Sequencer
	scope   report.Scope
	summary *report.Summary
	err     error

	chart barchart.Model
}

func newOutputModel(svc *report.Service, s *store.Store, opts Options) outputModel {
	return outputModel{
		svc:     svc,
		store:   s,
		opts:    opts,
		presets: report.Presets(),
		userIdx: -1,
		seq:     &report.Sequencer{},
		chart:   barchart.New(60, 10),
	}
}

func (o *outputModel) setSize(w, h int) {
	o.width = w
	o.height = h
	o.buildChart()
}

type outputDataMsg struct {
	seq     uint64
	scope   report.Scope
	users   []store.User
	summary *report.Summary
	err     error
}

// currentScope is the scope selected by the preset and user filter.
func (o outputModel) currentScope() report.Scope {
	scope := report.PresetScope(o.presets[o.preset], o.opts.Now(), o.opts.Location)
	if o.userIdx >= 0 && o.userIdx < len(o.users) {
		id := o.users[o.userIdx].ID
		scope = scope.ForUser(&id)
	}
	return scope
}

func (o outputModel) refresh() tea.Cmd {
	seq := o.seq.Next()
	scope := o.currentScope()
	return func() tea.Msg {
		users, err := o.store.ListUsers(false)
		if err != nil {
			o.opts.Log.Error("list users", zap.Error(err))
		}
		summary, err := o.svc.Summary(scope)
		return outputDataMsg{seq: seq, scope: scope, users: users, summary: summary, err: err}
	}
}

func (o outputModel) update(msg tea.Msg) (outputModel, tea.Cmd) {
	switch msg := msg.(type) {
	case outputDataMsg:
		if !o.seq.Current(msg.seq) {
			return o, nil
		}
		if msg.users != nil {
			o.users = msg.users
		}
		o.scope = msg.scope
		o.summary = msg.summary
		o.err = msg.err
		o.buildChart()
		return o, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			o.preset = (o.preset + len(o.presets) - 1) % len(o.presets)
			return o, o.refresh()
		case key.Matches(msg, keys.Right):
			o.preset = (o.preset + 1) % len(o.presets)
			return o, o.refresh()
		case key.Matches(msg, keys.User):
			o.userIdx++
			if o.userIdx >= len(o.users) {
				o.userIdx = -1
			}
			return o, o.refresh()
		}
	}
	return o, nil
}

func (o *outputModel) buildChart() {
	chartWidth := o.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 10
	if o.height > 40 {
		chartHeight = 14
	}

	o.chart = barchart.New(chartWidth, chartHeight)
	if o.summary == nil {
		return
	}

	var bars []barchart.BarData
	for i, c := range o.summary.Team.Categories {
		style := lipgloss.NewStyle().Foreground(categoryColors[i%len(categoryColors)])
		bars = append(bars, barchart.BarData{
			Label: truncate(c.Name, 8),
			Values: []barchart.BarValue{{
				Name:  c.Name,
				Value: float64(c.Minutes) / 60.0,
				Style: style,
			}},
		})
	}
	if len(bars) == 0 {
		return
	}
	o.chart.PushAll(bars)
	o.chart.Draw()
}

func (o outputModel) view() string {
	w := o.width - 4

	var tabs []string
	for i, p := range o.presets {
		if i == o.preset {
			tabs = append(tabs, activeTabStyle.Render(p.String()))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(p.String()))
		}
	}
	presetTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	who := "Team"
	if o.userIdx >= 0 && o.userIdx < len(o.users) {
		who = o.users[o.userIdx].Name
	}
	scopeLabel := mutedStyle.Render(fmt.Sprintf("%s · %s", who, o.currentScope().Label()))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Output"), "  ", presetTabs, "  ", scopeLabel,
	)

	var body string
	switch {
	case o.err != nil:
		body = errorStyle.Render("  Could not load report: " + o.err.Error())
	case o.summary == nil:
		body = mutedStyle.Render("  Loading...")
	default:
		body = o.renderSummary(w)
	}

	nav := mutedStyle.Render("  ←/→: date range  u: user  x: export")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav),
	)
}

func (o outputModel) renderSummary(w int) string {
	s := o.summary
	team := s.Team

	teamLines := []string{
		titleStyle.Render("Team"),
		fmt.Sprintf("Members %s   Time %s   Count %d   Productivity %s",
			highlightStyle.Render(team.Members),
			highlightStyle.Render(team.Time),
			team.Count,
			productivityStyle(team.Productivity).Render(fmt.Sprintf("%d%%", team.Productivity))),
	}
	if len(team.Categories) == 0 {
		teamLines = append(teamLines, mutedStyle.Render("No entries for this period"))
	} else {
		teamLines = append(teamLines, "", o.chart.View(), "")
		teamLines = append(teamLines, renderCategories(team.Categories, w)...)
	}

	blocks := []string{teamBlockStyle.Render(strings.Join(teamLines, "\n"))}
	for _, u := range s.Individuals {
		lines := []string{
			fmt.Sprintf("%s  %s  %d  %s",
				titleStyle.Render(u.Name),
				u.Time,
				u.Count,
				productivityStyle(u.Productivity).Render(fmt.Sprintf("%d%%", u.Productivity))),
		}
		lines = append(lines, renderCategories(u.Categories, w)...)
		blocks = append(blocks, userBlockStyle.Render(strings.Join(lines, "\n")))
	}
	return strings.Join(blocks, "\n\n")
}

func renderCategories(cats []report.CategorySummary, w int) []string {
	nameWidth := 24
	if w > 0 && w < 60 {
		nameWidth = 14
	}
	var rows []string
	for _, c := range cats {
		rows = append(rows, fmt.Sprintf("%s %s %s %s",
			subtitleStyle.Render(fmt.Sprintf("%-*s", nameWidth+2, truncate(c.Name, nameWidth+2))),
			fmt.Sprintf("%6d", c.Count),
			fmt.Sprintf("%7s", c.Time),
			accentStyle.Render(fmt.Sprintf("%6s", c.ShareLabel)),
		))
		for _, t := range c.Tasks {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-*s %6d %7s %6s  %s",
				nameWidth, truncate(t.Name, nameWidth), t.Count, t.Time, t.ShareLabel, t.Unit)))
		}
	}
	return rows
}
