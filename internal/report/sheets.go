package report

import (
	"cmp"
	"slices"

	"github.com/sadopc/prodtrack/internal/store"
)

var (
	IndividualHeader = []string{
		"Date", "Staff Name", "Category", "Task", "Unit Type", "Count",
		"Task Time Total (minutes)", "Daily Time Sum (minutes)", "Workload Target Achieved (%)",
	}
	TeamHeader = []string{
		"Date", "Category", "Task", "Unit Type", "Count", "Task Time Total (minutes)",
		"Total Category Percentage", "Total Task Percentage", "Workload Target Achieved (%)",
	}
)

// IndividualRow is one (date, user, task) line of the individual sheet.
type IndividualRow struct {
	Date         string
	User         string
	Category     string
	Task         string
	Unit         string
	Count        int
	Minutes      int
	DayTotal     string
	Productivity int
}

// TeamRow is one (date, task) line of the team sheet, summed over users.
type TeamRow struct {
	Date          string
	Category      string
	Task          string
	Unit          string
	Count         int
	Minutes       int
	CategoryShare float64
	TaskShare     float64
	Productivity  int
}

type Sheets struct {
	Individual []IndividualRow
	Team       []TeamRow
}

// Table is a named header plus rows, ready for a tabular sink.
type Table struct {
	Name   string
	Header []string
	Rows   [][]any
}

// BuildSheets flattens entries in scope into the two export sheets. Unlike
// the summary, every percentage here is computed per day.
func BuildSheets(entries []store.DailyEntry, scope Scope, opts Options) Sheets {
	var inScope []store.DailyEntry
	for _, e := range entries {
		if scope.includes(e) {
			inScope = append(inScope, e)
		}
	}
	slices.SortStableFunc(inScope, func(a, b store.DailyEntry) int { return cmp.Compare(a.Date, b.Date) })

	return Sheets{
		Individual: individualRows(inScope, opts),
		Team:       teamRows(inScope, opts),
	}
}

func individualRows(entries []store.DailyEntry, opts Options) []IndividualRow {
	var rows []IndividualRow
	for _, e := range entries {
		date := FormatDate(e.Date)
		dayTotal := FormatHMM(e.TotalMinutes)
		productivity := RoundPercent(Ratio(float64(e.TotalMinutes), store.TargetMinutesPerDay))

		for _, t := range resolvedTasks(e, opts) {
			rows = append(rows, IndividualRow{
				Date:         date,
				User:         e.UserName,
				Category:     t.Category,
				Task:         t.Name,
				Unit:         UnitLabel(t.Mode),
				Count:        t.Count,
				Minutes:      t.Minutes,
				DayTotal:     dayTotal,
				Productivity: productivity,
			})
		}
	}
	return rows
}

func teamRows(entries []store.DailyEntry, opts Options) []TeamRow {
	var rows []TeamRow
	for start := 0; start < len(entries); {
		end := start
		for end < len(entries) && entries[end].Date == entries[start].Date {
			end++
		}
		rows = append(rows, teamDay(entries[start:end], opts)...)
		start = end
	}
	return rows
}

// teamDay aggregates one date's entries. A user counts towards the day's
// expected minutes only when their entry for that day has time logged.
func teamDay(day []store.DailyEntry, opts Options) []TeamRow {
	var tasks []TaskTotal
	index := make(map[taskKey]int)
	catMinutes := make(map[string]int)
	dayTotal, active := 0, 0

	for _, e := range day {
		if e.TotalMinutes > 0 {
			active++
		}
		for _, t := range resolvedTasks(e, opts) {
			k := taskKey{t.Category, t.Name}
			if i, ok := index[k]; ok {
				tasks[i].Count += t.Count
				tasks[i].Minutes += t.Minutes
			} else {
				index[k] = len(tasks)
				tasks = append(tasks, t)
			}
			catMinutes[t.Category] += t.Minutes
			dayTotal += t.Minutes
		}
	}

	sortTasks(tasks)

	productivity := 0
	if active > 0 {
		productivity = RoundPercent(Ratio(float64(dayTotal), float64(store.TargetMinutesPerDay*active)))
	}
	date := FormatDate(day[0].Date)

	rows := make([]TeamRow, 0, len(tasks))
	for _, t := range tasks {
		catTime := catMinutes[t.Category]
		rows = append(rows, TeamRow{
			Date:          date,
			Category:      t.Category,
			Task:          t.Name,
			Unit:          UnitLabel(t.Mode),
			Count:         t.Count,
			Minutes:       t.Minutes,
			CategoryShare: round1(Percent(float64(catTime), float64(dayTotal))),
			TaskShare:     round1(Percent(float64(t.Minutes), float64(catTime))),
			Productivity:  productivity,
		})
	}
	return rows
}

// resolvedTasks returns an entry's items that can be labelled, ordered by
// category position then task position.
func resolvedTasks(e store.DailyEntry, opts Options) []TaskTotal {
	var out []TaskTotal
	for _, it := range e.Items {
		if it.Count <= 0 {
			continue
		}
		if t, ok := resolve(it, opts.Labels); ok {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out
}

func sortTasks(tasks []TaskTotal) {
	slices.SortStableFunc(tasks, func(a, b TaskTotal) int {
		return cmp.Or(cmp.Compare(a.CategoryPosition, b.CategoryPosition), cmp.Compare(a.Position, b.Position))
	})
}

// Tables converts the sheets into named tables, individual first.
func (s Sheets) Tables() []Table {
	ind := Table{Name: "individual-output", Header: IndividualHeader}
	for _, r := range s.Individual {
		ind.Rows = append(ind.Rows, []any{
			r.Date, r.User, r.Category, r.Task, r.Unit, r.Count, r.Minutes, r.DayTotal, r.Productivity,
		})
	}
	team := Table{Name: "team-output", Header: TeamHeader}
	for _, r := range s.Team {
		team.Rows = append(team.Rows, []any{
			r.Date, r.Category, r.Task, r.Unit, r.Count, r.Minutes, r.CategoryShare, r.TaskShare, r.Productivity,
		})
	}
	return []Table{ind, team}
}

// Empty reports whether neither sheet has rows.
func (s Sheets) Empty() bool {
	return len(s.Individual) == 0 && len(s.Team) == 0
}
