package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/store"
)

// teamModel manages the staff list.
type teamModel struct {
	store  *store.Store
	self   *store.User
	opts   Options
	width  int
	height int

	users  []store.User
	cursor int

	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	formName   *string
	formEmail  *string
	formAccess *string
}

func newTeamModel(s *store.Store, self *store.User, opts Options) teamModel {
	name, email, access := "", "", string(store.AccessOps)
	return teamModel{
		store:      s,
		self:       self,
		opts:       opts,
		formName:   &name,
		formEmail:  &email,
		formAccess: &access,
	}
}

func (t *teamModel) setSize(w, h int) {
	t.width = w
	t.height = h
}

type teamDataMsg struct {
	users []store.User
	err   error
}

func (t teamModel) refresh() tea.Cmd {
	return func() tea.Msg {
		users, err := t.store.ListUsers(false)
		return teamDataMsg{users: users, err: err}
	}
}

func (t teamModel) update(msg tea.Msg) (teamModel, tea.Cmd) {
	if t.formActive && t.form != nil {
		return t.updateForm(msg)
	}

	switch msg := msg.(type) {
	case teamDataMsg:
		if msg.err != nil {
			t.opts.Log.Error("load users", zap.Error(msg.err))
			return t, statusCmd("Load error: "+msg.err.Error(), true)
		}
		t.users = msg.users
		if t.cursor >= len(t.users) {
			t.cursor = max(0, len(t.users)-1)
		}
		return t, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if t.cursor > 0 {
				t.cursor--
			}
		case key.Matches(msg, keys.Down):
			if t.cursor < len(t.users)-1 {
				t.cursor++
			}
		case key.Matches(msg, keys.New):
			return t.showForm()
		case key.Matches(msg, keys.Delete):
			if t.cursor < len(t.users) {
				return t, t.deactivate(t.users[t.cursor])
			}
		}
	}
	return t, nil
}

func (t teamModel) deactivate(u store.User) tea.Cmd {
	if u.ID == t.self.ID {
		return statusCmd("You cannot remove yourself", true)
	}
	return func() tea.Msg {
		if err := t.store.DeactivateUser(u.ID); err != nil {
			t.opts.Log.Error("deactivate user", zap.Int64("user_id", u.ID), zap.Error(err))
			return statusMsg{text: "Remove failed: " + err.Error(), isError: true}
		}
		t.opts.Log.Info("user deactivated", zap.Int64("user_id", u.ID), zap.String("name", u.Name))
		users, err := t.store.ListUsers(false)
		return teamDataMsg{users: users, err: err}
	}
}

func (t teamModel) showForm() (teamModel, tea.Cmd) {
	*t.formName = ""
	*t.formEmail = ""
	*t.formAccess = string(store.AccessOps)

	t.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(t.formName).Validate(validateRequired),
			huh.NewInput().Title("Email").Description("Optional").Value(t.formEmail),
			huh.NewSelect[string]().Title("Access").
				Options(
					huh.NewOption("Operations", string(store.AccessOps)),
					huh.NewOption("Admin", string(store.AccessAdmin)),
				).Value(t.formAccess),
		),
	).WithShowHelp(true).WithShowErrors(true)

	t.formActive = true
	return t, t.form.Init()
}

func (t teamModel) updateForm(msg tea.Msg) (teamModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			t.formActive = false
			t.form = nil
			return t, nil
		}
	}

	form, cmd := t.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		t.form = f
	}

	if t.form.State == huh.StateCompleted {
		t.formActive = false
		u, err := t.store.CreateUser(strings.TrimSpace(*t.formName), strings.TrimSpace(*t.formEmail), store.AccessLevel(*t.formAccess))
		if err != nil {
			t.opts.Log.Error("create user", zap.Error(err))
			return t, statusCmd("Add failed: "+err.Error(), true)
		}
		t.opts.Log.Info("user created", zap.Int64("user_id", u.ID), zap.String("name", u.Name))
		return t, t.refresh()
	}

	return t, cmd
}

func (t teamModel) view() string {
	w := t.width - 4

	if t.formActive && t.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("New Team Member"), "", t.form.View()),
		)
	}

	title := titleStyle.Render(fmt.Sprintf("Team (%d)", len(t.users)))
	if len(t.users) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No team members. Press n to add one."),
		))
	}

	rows := []string{title, ""}
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-20s %-28s %s", "Name", "Email", "Access")))
	for i, u := range t.users {
		cursor := "  "
		style := normalItemStyle
		if i == t.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		access := string(u.AccessLevel)
		if u.IsAdmin() {
			access = accentStyle.Render(access)
		}
		rows = append(rows, style.Render(fmt.Sprintf("%s%-20s %-28s ", cursor, truncate(u.Name, 20), truncate(u.Email, 28)))+access)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  d: remove"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}
