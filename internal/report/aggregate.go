package report

import (
	"cmp"
	"slices"

	"github.com/sadopc/prodtrack/internal/store"
)

// LabelMode picks which task name and category an item is reported under.
type LabelMode string

const (
	// LabelsLive uses the task's current name and category.
	LabelsLive LabelMode = "live"
	// LabelsSnapshot uses the name and category recorded when the entry was saved.
	LabelsSnapshot LabelMode = "snapshot"
)

type Options struct {
	Labels LabelMode
	// TotalUsers is the number of registered team members.
	TotalUsers int
}

type TaskTotal struct {
	Name             string
	Category         string
	Count            int
	Minutes          int
	Mode             store.MeasurementMode
	ExpectedDuration int
	Position         int
	CategoryPosition int
}

type CategoryTotal struct {
	Name     string
	Position int
	Count    int
	Minutes  int
	Tasks    []TaskTotal
}

type UserTotal struct {
	UserID  int64
	Name    string
	Minutes int
	// UnresolvedMinutes counts items whose task calibration is gone; they
	// are part of Minutes but of no category.
	UnresolvedMinutes int
	Categories        []CategoryTotal
	// Tasks is the flat task list, one row per (name, category).
	Tasks []TaskTotal
	Ratio float64
}

// CategorizedMinutes is the denominator of category shares.
func (u UserTotal) CategorizedMinutes() int { return u.Minutes - u.UnresolvedMinutes }

func (u UserTotal) Count() int {
	n := 0
	for _, t := range u.Tasks {
		n += t.Count
	}
	return n
}

type TeamTotal struct {
	Minutes           int
	UnresolvedMinutes int
	Count             int
	Categories        []CategoryTotal
}

func (t TeamTotal) CategorizedMinutes() int { return t.Minutes - t.UnresolvedMinutes }

type Result struct {
	Scope       Scope
	Days        int
	ActiveUsers int
	TotalUsers  int
	Team        TeamTotal
	Users       []UserTotal
	TeamRatio   float64
}

// Empty is the result of a scope with no data.
func Empty(scope Scope, totalUsers int) *Result {
	return &Result{Scope: scope, Days: scope.Days(), TotalUsers: totalUsers}
}

// CategoryShare is a category's percentage of the given total.
func CategoryShare(c CategoryTotal, total int) float64 {
	return Percent(float64(c.Minutes), float64(total))
}

// TaskShare is a task's percentage of its category.
func TaskShare(t TaskTotal, c CategoryTotal) float64 {
	return Percent(float64(t.Minutes), float64(c.Minutes))
}

// Aggregate folds the entries in scope into per-user and team totals. It
// is a pure function of its inputs.
func Aggregate(entries []store.DailyEntry, scope Scope, opts Options) *Result {
	res := Empty(scope, opts.TotalUsers)

	users := make(map[int64]*userAcc)
	var order []int64
	team := newBreakdown()

	for _, e := range entries {
		if !scope.includes(e) {
			continue
		}
		u, ok := users[e.UserID]
		if !ok {
			u = &userAcc{total: UserTotal{UserID: e.UserID, Name: e.UserName}, cats: newBreakdown(), flat: newFlatList()}
			users[e.UserID] = u
			order = append(order, e.UserID)
		}

		for _, it := range e.Items {
			if it.Count <= 0 {
				continue
			}
			u.total.Minutes += it.CalculatedMinutes
			res.Team.Minutes += it.CalculatedMinutes

			t, ok := resolve(it, opts.Labels)
			if !ok {
				u.total.UnresolvedMinutes += it.CalculatedMinutes
				res.Team.UnresolvedMinutes += it.CalculatedMinutes
				continue
			}
			u.cats.add(t)
			u.flat.add(t)
			team.add(t)
			res.Team.Count += t.Count
		}
	}

	res.ActiveUsers = len(order)
	for _, id := range order {
		u := users[id]
		u.total.Categories = u.cats.sorted()
		u.total.Tasks = u.flat.tasks
		u.total.Ratio = Ratio(float64(u.total.Minutes), float64(store.TargetMinutesPerDay*res.Days))
		res.Users = append(res.Users, u.total)
	}
	slices.SortStableFunc(res.Users, func(a, b UserTotal) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.UserID, b.UserID))
	})

	res.Team.Categories = team.sorted()
	res.TeamRatio = Ratio(float64(res.Team.Minutes), float64(store.TargetMinutesPerDay*res.ActiveUsers*res.Days))
	return res
}

type userAcc struct {
	total UserTotal
	cats  *breakdown
	flat  *flatList
}

// resolve turns an item into a single-item task total under the chosen labels.
func resolve(it store.EntryItem, labels LabelMode) (TaskTotal, bool) {
	t := TaskTotal{
		Count:            it.Count,
		Minutes:          it.CalculatedMinutes,
		Mode:             store.ModeCount,
		Position:         store.PositionSentinel,
		CategoryPosition: store.PositionSentinel,
	}
	if it.Task != nil {
		t.Name = it.Task.Name
		t.Category = it.Task.Category
		t.Mode = it.Task.MeasurementMode
		t.ExpectedDuration = it.Task.ExpectedDurationMinutes
		t.Position = it.Task.SortPosition()
		t.CategoryPosition = it.Task.SortCategoryPosition()
	}
	if labels == LabelsSnapshot && it.TaskName != "" {
		t.Name = it.TaskName
		t.Category = it.TaskCategory
		return t, true
	}
	return t, it.Task != nil
}

// breakdown accumulates category -> task totals, merging tasks by name
// within a category and keeping first-seen order.
type breakdown struct {
	cats  []CategoryTotal
	index map[string]int
	tasks map[string]map[string]int
}

func newBreakdown() *breakdown {
	return &breakdown{index: make(map[string]int), tasks: make(map[string]map[string]int)}
}

func (b *breakdown) add(t TaskTotal) {
	ci, ok := b.index[t.Category]
	if !ok {
		ci = len(b.cats)
		b.index[t.Category] = ci
		b.tasks[t.Category] = make(map[string]int)
		b.cats = append(b.cats, CategoryTotal{Name: t.Category, Position: t.CategoryPosition})
	}
	c := &b.cats[ci]
	c.Count += t.Count
	c.Minutes += t.Minutes

	if ti, ok := b.tasks[t.Category][t.Name]; ok {
		c.Tasks[ti].Count += t.Count
		c.Tasks[ti].Minutes += t.Minutes
		return
	}
	b.tasks[t.Category][t.Name] = len(c.Tasks)
	c.Tasks = append(c.Tasks, t)
}

// sorted returns categories by position and tasks by position. Both sorts
// are stable so equal positions keep first-seen order.
func (b *breakdown) sorted() []CategoryTotal {
	out := make([]CategoryTotal, len(b.cats))
	for i, c := range b.cats {
		c.Tasks = slices.Clone(c.Tasks)
		slices.SortStableFunc(c.Tasks, func(x, y TaskTotal) int { return cmp.Compare(x.Position, y.Position) })
		out[i] = c
	}
	slices.SortStableFunc(out, func(x, y CategoryTotal) int { return cmp.Compare(x.Position, y.Position) })
	return out
}

type taskKey struct{ category, name string }

type flatList struct {
	tasks []TaskTotal
	index map[taskKey]int
}

func newFlatList() *flatList {
	return &flatList{index: make(map[taskKey]int)}
}

func (f *flatList) add(t TaskTotal) {
	k := taskKey{t.Category, t.Name}
	if i, ok := f.index[k]; ok {
		f.tasks[i].Count += t.Count
		f.tasks[i].Minutes += t.Minutes
		return
	}
	f.index[k] = len(f.tasks)
	f.tasks = append(f.tasks, t)
}
