package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/calibration"
	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

var measurementOptions = []huh.Option[string]{
	huh.NewOption("Tasks (count × minutes)", string(store.ModeCount)),
	huh.NewOption("Time (minutes logged)", string(store.ModeDuration)),
}

// calibrationModel lets an admin edit tasks and the order they are shown in.
// Reordering is staged in pending until saved.
type calibrationModel struct {
	store  *store.Store
	opts   Options
	width  int
	height int

	tasks   []store.Task
	pending *calibration.PendingEdits
	cursor  int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "rename"

	// Form field pointers (survive value copies)
	formName     *string
	formCategory *string
	formDuration *string
	formMode     *string
	formDisplay  *string

	editingID       int64
	editingCategory string
}

func newCalibrationModel(s *store.Store, opts Options) calibrationModel {
	name, cat, dur, mode, disp := "", "", "", string(store.ModeCount), ""
	return calibrationModel{
		store:        s,
		opts:         opts,
		pending:      calibration.NewPendingEdits(),
		formName:     &name,
		formCategory: &cat,
		formDuration: &dur,
		formMode:     &mode,
		formDisplay:  &disp,
	}
}

func (c *calibrationModel) setSize(w, h int) {
	c.width = w
	c.height = h
}

type calibrationDataMsg struct {
	tasks []store.Task
	err   error
}

func (c calibrationModel) refresh() tea.Cmd {
	return func() tea.Msg {
		tasks, err := c.store.ListActiveTasks()
		return calibrationDataMsg{tasks: tasks, err: err}
	}
}

// rows returns the tasks in display order with pending edits applied.
func (c calibrationModel) rows() []store.Task {
	var rows []store.Task
	for _, cat := range calibration.Categories(c.tasks, c.pending) {
		rows = append(rows, cat.Tasks...)
	}
	return rows
}

func (c calibrationModel) selected() (store.Task, bool) {
	rows := c.rows()
	if c.cursor < 0 || c.cursor >= len(rows) {
		return store.Task{}, false
	}
	return rows[c.cursor], true
}

func (c calibrationModel) update(msg tea.Msg) (calibrationModel, tea.Cmd) {
	if c.formActive && c.form != nil {
		return c.updateForm(msg)
	}

	switch msg := msg.(type) {
	case calibrationDataMsg:
		if msg.err != nil {
			c.opts.Log.Error("load tasks", zap.Error(msg.err))
			return c, statusCmd("Load error: "+msg.err.Error(), true)
		}
		c.tasks = msg.tasks
		if c.cursor >= len(c.tasks) {
			c.cursor = max(0, len(c.tasks)-1)
		}
		return c, nil

	case tea.KeyMsg:
		return c.updateList(msg)
	}
	return c, nil
}

func (c calibrationModel) updateList(msg tea.KeyMsg) (calibrationModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if c.cursor > 0 {
			c.cursor--
		}
	case key.Matches(msg, keys.Down):
		if c.cursor < len(c.rows())-1 {
			c.cursor++
		}
	case key.Matches(msg, keys.Raise):
		c.moveTask(-1)
	case key.Matches(msg, keys.Lower):
		c.moveTask(1)
	case key.Matches(msg, keys.CatRaise):
		c.moveCategory(-1)
	case key.Matches(msg, keys.CatLower):
		c.moveCategory(1)
	case key.Matches(msg, keys.Save):
		return c.commit()
	case key.Matches(msg, keys.Back):
		if !c.pending.Empty() {
			c.pending.Clear()
			return c, statusCmd("Order changes discarded", false)
		}
	case key.Matches(msg, keys.New):
		return c.showNewTaskForm()
	case key.Matches(msg, keys.Edit):
		if t, ok := c.selected(); ok {
			return c.showEditTaskForm(t)
		}
	case key.Matches(msg, keys.Rename):
		if t, ok := c.selected(); ok {
			return c.showRenameForm(t.Category)
		}
	case key.Matches(msg, keys.Delete):
		if t, ok := c.selected(); ok {
			return c, c.deactivate(t)
		}
	}
	return c, nil
}

// moveTask swaps the selected task with its neighbour in the same category
// and stages the category's tasks as positions 1..n.
func (c *calibrationModel) moveTask(delta int) {
	t, ok := c.selected()
	if !ok {
		return
	}
	for _, cat := range calibration.Categories(c.tasks, c.pending) {
		if cat.Name != t.Category {
			continue
		}
		i := indexOfTask(cat.Tasks, t.ID)
		j := i + delta
		if j < 0 || j >= len(cat.Tasks) {
			return
		}
		cat.Tasks[i], cat.Tasks[j] = cat.Tasks[j], cat.Tasks[i]
		for k, task := range cat.Tasks {
			c.pending.SetTask(task.ID, k+1)
		}
		c.cursor += delta
		return
	}
}

// moveCategory swaps the selected task's category with its neighbour and
// stages every category as positions 1..n.
func (c *calibrationModel) moveCategory(delta int) {
	t, ok := c.selected()
	if !ok {
		return
	}
	cats := calibration.Categories(c.tasks, c.pending)
	i := -1
	for k, cat := range cats {
		if cat.Name == t.Category {
			i = k
		}
	}
	j := i + delta
	if i < 0 || j < 0 || j >= len(cats) {
		return
	}
	cats[i], cats[j] = cats[j], cats[i]
	for k, cat := range cats {
		c.pending.SetCategory(cat.Name, k+1)
	}

	for k, row := range c.rows() {
		if row.ID == t.ID {
			c.cursor = k
		}
	}
}

func indexOfTask(tasks []store.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (c calibrationModel) commit() (calibrationModel, tea.Cmd) {
	if c.pending.Empty() {
		return c, nil
	}
	if err := c.pending.Commit(c.store); err != nil {
		c.opts.Log.Error("save calibration order", zap.Error(err))
		return c, statusCmd("Save failed: "+err.Error(), true)
	}
	c.opts.Log.Info("calibration order saved")
	return c, tea.Batch(c.refresh(), statusCmd("Order saved", false))
}

func (c calibrationModel) deactivate(t store.Task) tea.Cmd {
	return func() tea.Msg {
		if err := c.store.DeactivateTask(t.ID); err != nil {
			c.opts.Log.Error("deactivate task", zap.Int64("task_id", t.ID), zap.Error(err))
			return statusMsg{text: "Remove failed: " + err.Error(), isError: true}
		}
		tasks, err := c.store.ListActiveTasks()
		return calibrationDataMsg{tasks: tasks, err: err}
	}
}

func (c calibrationModel) showNewTaskForm() (calibrationModel, tea.Cmd) {
	*c.formName = ""
	*c.formCategory = ""
	*c.formDuration = "1"
	*c.formMode = string(store.ModeCount)
	*c.formDisplay = ""
	c.formType = "new"

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Task Name").Value(c.formName).Validate(validateRequired),
			huh.NewInput().Title("Category").Value(c.formCategory).Validate(validateRequired),
			huh.NewSelect[string]().Title("Measurement").Options(measurementOptions...).Value(c.formMode),
			huh.NewInput().Title("Expected Minutes").Value(c.formDuration).Validate(validatePositive),
			huh.NewInput().Title("Display Text").Description("Optional").Value(c.formDisplay),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calibrationModel) showEditTaskForm(t store.Task) (calibrationModel, tea.Cmd) {
	*c.formDuration = strconv.Itoa(t.ExpectedDurationMinutes)
	*c.formMode = string(t.MeasurementMode)
	*c.formDisplay = t.DisplayText
	c.formType = "edit"
	c.editingID = t.ID

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Measurement").Options(measurementOptions...).Value(c.formMode),
			huh.NewInput().Title("Expected Minutes").Value(c.formDuration).Validate(validatePositive),
			huh.NewInput().Title("Display Text").Description("Blank shows the task name").Value(c.formDisplay),
		).Title(t.Name),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calibrationModel) showRenameForm(category string) (calibrationModel, tea.Cmd) {
	*c.formCategory = category
	c.formType = "rename"
	c.editingCategory = category

	c.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Category Name").Value(c.formCategory).Validate(validateRequired),
		),
	).WithShowHelp(true).WithShowErrors(true)

	c.formActive = true
	return c, c.form.Init()
}

func (c calibrationModel) updateForm(msg tea.Msg) (calibrationModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			c.formActive = false
			c.form = nil
			return c, nil
		}
	}

	form, cmd := c.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		c.form = f
	}

	if c.form.State == huh.StateCompleted {
		c.formActive = false
		if err := c.submit(); err != nil {
			c.opts.Log.Error("calibration form", zap.String("form", c.formType), zap.Error(err))
			return c, statusCmd(err.Error(), true)
		}
		return c, c.refresh()
	}

	return c, cmd
}

func (c calibrationModel) submit() error {
	switch c.formType {
	case "new":
		minutes, _ := parseCount(*c.formDuration)
		cats := calibration.Categories(c.tasks, nil)
		if !calibration.Exists(cats, *c.formCategory) {
			c.opts.Log.Info("new category", zap.String("category", store.NormalizeCategory(*c.formCategory)))
		}
		_, err := c.store.CreateTask(store.NewTask{
			Name:                    *c.formName,
			Category:                *c.formCategory,
			ExpectedDurationMinutes: minutes,
			MeasurementMode:         store.MeasurementMode(*c.formMode),
			DisplayText:             strings.TrimSpace(*c.formDisplay),
		})
		return err
	case "edit":
		minutes, _ := parseCount(*c.formDuration)
		if err := c.store.UpdateTaskDuration(c.editingID, minutes); err != nil {
			return err
		}
		if err := c.store.SetMeasurementMode(c.editingID, store.MeasurementMode(*c.formMode)); err != nil {
			return err
		}
		return c.store.SetDisplayText(c.editingID, strings.TrimSpace(*c.formDisplay))
	case "rename":
		return c.store.RenameCategory(c.editingCategory, *c.formCategory)
	}
	return nil
}

func (c calibrationModel) view() string {
	w := c.width - 4

	if c.formActive && c.form != nil {
		title := titleStyle.Render("New Task")
		switch c.formType {
		case "edit":
			title = titleStyle.Render("Edit Task")
		case "rename":
			title = titleStyle.Render("Rename Category")
		}
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", c.form.View()),
		)
	}

	title := titleStyle.Render("Calibration")
	if !c.pending.Empty() {
		title += "  " + pendingStyle.Render("unsaved order changes (s: save, esc: discard)")
	}

	if len(c.tasks) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No tasks yet. Press n to create one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-4s %-28s %-12s %s", "Pos", "Task", "Unit", "Display")))

	i := 0
	for _, cat := range calibration.Categories(c.tasks, c.pending) {
		rows = append(rows, subtitleStyle.Render(fmt.Sprintf("%s (%s)", cat.Name, positionLabel(cat.Position))))
		for _, t := range cat.Tasks {
			cursor := "  "
			style := normalItemStyle
			if i == c.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			rows = append(rows, style.Render(fmt.Sprintf("%s%-4s %-28s %-12s %s",
				cursor,
				positionLabel(c.pending.TaskPosition(t)),
				truncate(t.Name, 28),
				report.MeasurementLabel(t.MeasurementMode, t.ExpectedDurationMinutes),
				t.DisplayText)))
			i++
		}
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  r: rename category  d: remove  K/J: move task  </>: move category"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func positionLabel(pos int) string {
	if pos == store.PositionSentinel {
		return "-"
	}
	return strconv.Itoa(pos)
}
