package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/calibration"
	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

// inputModel is where a user records the day's task counts.
type inputModel struct {
	store  *store.Store
	user   *store.User
	opts   Options
	width  int
	height int

	day   time.Time
	tasks []store.Task
	entry *store.DailyEntry

	formActive bool
	form       *huh.Form
	// Form values as pointers (survive value copies)
	fields map[int64]*string
}

func newInputModel(s *store.Store, u *store.User, opts Options) inputModel {
	return inputModel{
		store:  s,
		user:   u,
		opts:   opts,
		day:    report.Today(opts.Now(), opts.Location),
		fields: make(map[int64]*string),
	}
}

func (m *inputModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

func (m inputModel) date() string { return m.day.Format(dateLayout) }

type inputDataMsg struct {
	date  string
	tasks []store.Task
	entry *store.DailyEntry
	err   error
}

type entrySavedMsg struct {
	entry *store.DailyEntry
	err   error
}

func (m inputModel) load() tea.Cmd {
	date := m.date()
	return func() tea.Msg {
		tasks, err := m.store.ListActiveTasks()
		if err != nil {
			return inputDataMsg{date: date, err: err}
		}
		entry, err := m.store.GetEntry(m.user.ID, date)
		if errors.Is(err, store.ErrNotFound) {
			entry, err = nil, nil
		}
		return inputDataMsg{date: date, tasks: tasks, entry: entry, err: err}
	}
}

func (m inputModel) update(msg tea.Msg) (inputModel, tea.Cmd) {
	if m.formActive && m.form != nil {
		return m.updateForm(msg)
	}

	switch msg := msg.(type) {
	case inputDataMsg:
		if msg.date != m.date() {
			return m, nil
		}
		if msg.err != nil {
			m.opts.Log.Error("load input", zap.Int64("user_id", m.user.ID), zap.String("date", msg.date), zap.Error(msg.err))
			return m, statusCmd("Load error: "+msg.err.Error(), true)
		}
		m.tasks = msg.tasks
		m.entry = msg.entry
		return m, nil

	case entrySavedMsg:
		if msg.err != nil {
			return m, statusCmd("Save failed: "+msg.err.Error(), true)
		}
		m.entry = msg.entry
		return m, statusCmd(fmt.Sprintf("Saved %s: %s", report.FormatDate(msg.entry.Date), report.FormatHMM(msg.entry.TotalMinutes)), false)

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.day = m.day.AddDate(0, 0, -1)
			m.entry = nil
			return m, m.load()
		case key.Matches(msg, keys.Right):
			if m.day.Before(report.Today(m.opts.Now(), m.opts.Location)) {
				m.day = m.day.AddDate(0, 0, 1)
				m.entry = nil
				return m, m.load()
			}
		case key.Matches(msg, keys.Edit):
			if len(m.tasks) == 0 {
				return m, statusCmd("No tasks are calibrated yet", true)
			}
			return m.showForm()
		}
	}
	return m, nil
}

// counts returns the saved count per task for the loaded entry.
func (m inputModel) counts() map[int64]int {
	counts := make(map[int64]int)
	if m.entry != nil {
		for _, it := range m.entry.Items {
			counts[it.TaskID] = it.Count
		}
	}
	return counts
}

// retired returns the saved items whose task is no longer offered in the
// form. They are carried into every re-save of the day.
func (m inputModel) retired() []store.EntryItem {
	if m.entry == nil {
		return nil
	}
	active := make(map[int64]bool, len(m.tasks))
	for _, t := range m.tasks {
		active[t.ID] = true
	}
	var items []store.EntryItem
	for _, it := range m.entry.Items {
		if !active[it.TaskID] {
			items = append(items, it)
		}
	}
	return items
}

func (m inputModel) showForm() (inputModel, tea.Cmd) {
	saved := m.counts()
	clear(m.fields)

	var groups []*huh.Group
	for _, c := range calibration.Categories(m.tasks, nil) {
		var fields []huh.Field
		for _, t := range c.Tasks {
			v := ""
			if n := saved[t.ID]; n > 0 {
				v = strconv.Itoa(n)
			}
			m.fields[t.ID] = &v
			fields = append(fields, huh.NewInput().
				Title(t.Label()).
				Description(report.MeasurementLabel(t.MeasurementMode, t.ExpectedDurationMinutes)).
				Value(m.fields[t.ID]).
				Validate(validateCount))
		}
		groups = append(groups, huh.NewGroup(fields...).Title(c.Name))
	}

	m.form = huh.NewForm(groups...).WithShowHelp(true).WithShowErrors(true)
	m.formActive = true
	return m, m.form.Init()
}

func (m inputModel) updateForm(msg tea.Msg) (inputModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			m.formActive = false
			m.form = nil
			return m, nil
		}
	}

	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		m.formActive = false
		return m, m.save(m.formCounts())
	}
	return m, cmd
}

func (m inputModel) formCounts() map[int64]int {
	counts := make(map[int64]int, len(m.fields))
	for _, it := range m.retired() {
		counts[it.TaskID] = it.Count
	}
	for id, v := range m.fields {
		if n, err := parseCount(*v); err == nil && n > 0 {
			counts[id] = n
		}
	}
	return counts
}

// formMinutes previews the day's total for the values currently in the
// form. Retired items keep the minutes they were saved with.
func (m inputModel) formMinutes() int {
	total := 0
	for _, it := range m.retired() {
		total += it.CalculatedMinutes
	}
	for _, t := range m.tasks {
		v, ok := m.fields[t.ID]
		if !ok {
			continue
		}
		if n, err := parseCount(*v); err == nil {
			total += report.CalculatedMinutes(t, n)
		}
	}
	return total
}

func (m inputModel) save(counts map[int64]int) tea.Cmd {
	userID, date := m.user.ID, m.date()
	return func() tea.Msg {
		entry, err := m.store.SaveEntry(userID, date, counts)
		if err != nil {
			m.opts.Log.Error("save entry", zap.Int64("user_id", userID), zap.String("date", date), zap.Error(err))
			return entrySavedMsg{err: err}
		}
		m.opts.Log.Info("entry saved",
			zap.Int64("user_id", userID),
			zap.String("date", date),
			zap.Int("minutes", entry.TotalMinutes),
		)
		return entrySavedMsg{entry: entry}
	}
}

func (m inputModel) view() string {
	if m.width < 20 {
		return "Terminal too small"
	}
	w := m.width - 4

	title := titleStyle.Render(fmt.Sprintf("%s  %s", m.user.Name, report.FormatDate(m.date())))

	if m.formActive && m.form != nil {
		lines := []string{fmt.Sprintf("%s  %s", title, dayTotal(m.formMinutes()))}
		if n := len(m.retired()); n > 0 {
			lines = append(lines, pendingStyle.Render(fmt.Sprintf("%d saved item(s) on retired tasks will be kept", n)))
		}
		lines = append(lines, "", m.form.View())
		return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
	}

	total := 0
	if m.entry != nil {
		total = m.entry.TotalMinutes
	}
	header := fmt.Sprintf("%s  %s", title, dayTotal(total))

	if len(m.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			header, "", mutedStyle.Render("No tasks are calibrated yet."),
		))
	}

	counts := m.counts()
	minutes := make(map[int64]int)
	if m.entry != nil {
		for _, it := range m.entry.Items {
			minutes[it.TaskID] = it.CalculatedMinutes
		}
	}

	rows := []string{header, ""}
	for _, c := range calibration.Categories(m.tasks, nil) {
		rows = append(rows, subtitleStyle.Render(c.Name))
		for _, t := range c.Tasks {
			line := fmt.Sprintf("  %-28s %-12s %5d  %s",
				truncate(t.Label(), 28),
				report.MeasurementLabel(t.MeasurementMode, t.ExpectedDurationMinutes),
				counts[t.ID],
				report.FormatHMM(minutes[t.ID]))
			if counts[t.ID] > 0 {
				rows = append(rows, normalItemStyle.Render(line))
			} else {
				rows = append(rows, mutedStyle.Render(line))
			}
		}
	}
	if retired := m.retired(); len(retired) > 0 {
		rows = append(rows, subtitleStyle.Render("RETIRED"))
		for _, it := range retired {
			rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-28s %-12s %5d  %s",
				truncate(it.TaskName, 28), "", it.Count, report.FormatHMM(it.CalculatedMinutes))))
		}
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  e: enter counts  ←/→: change day"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

// dayTotal renders minutes as H:MM with the day's workload percentage.
func dayTotal(minutes int) string {
	pct := report.RoundPercent(report.Ratio(float64(minutes), store.TargetMinutesPerDay))
	return fmt.Sprintf("%s  %s",
		highlightStyle.Render(report.FormatHMM(minutes)),
		productivityStyle(pct).Render(fmt.Sprintf("%d%%", pct)))
}
