// Package calibration derives categories from task rows and manages
// position edits that have not been saved yet.
package calibration

import (
	"slices"
	"strings"

	"github.com/sadopc/prodtrack/internal/store"
)

// Category is the projection of every active task sharing a category label.
type Category struct {
	Name     string
	Position int
	Tasks    []store.Task
}

// Categories groups active tasks by category, ordered by effective
// category position then first appearance; tasks inside a category are
// ordered by effective task position. Pending edits may be nil.
func Categories(tasks []store.Task, pending *PendingEdits) []Category {
	var cats []Category
	index := make(map[string]int)
	for _, t := range tasks {
		if !t.Active {
			continue
		}
		i, ok := index[t.Category]
		if !ok {
			i = len(cats)
			index[t.Category] = i
			cats = append(cats, Category{
				Name:     t.Category,
				Position: pending.CategoryPosition(t.Category, t.CategoryPosition),
			})
		}
		cats[i].Tasks = append(cats[i].Tasks, t)
	}

	slices.SortStableFunc(cats, func(a, b Category) int { return a.Position - b.Position })
	for i := range cats {
		slices.SortStableFunc(cats[i].Tasks, func(a, b store.Task) int {
			return pending.TaskPosition(a) - pending.TaskPosition(b)
		})
	}
	return cats
}

// Names returns the category names in display order.
func Names(cats []Category) []string {
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = c.Name
	}
	return names
}

// Exists reports whether name, once normalized, is already a category.
func Exists(cats []Category, name string) bool {
	name = store.NormalizeCategory(name)
	return slices.ContainsFunc(cats, func(c Category) bool { return strings.EqualFold(c.Name, name) })
}

// AssignDefaults fills in the positions an editor should show for rows
// that were never positioned. Categories without a stored position are
// numbered after the highest stored one in first-seen order; tasks without
// a position get their 1-based index within the category.
func AssignDefaults(tasks []store.Task) (taskPositions map[int64]int, categoryPositions map[string]int) {
	taskPositions = make(map[int64]int)
	categoryPositions = make(map[string]int)

	byCategory := make(map[string][]store.Task)
	var order []string
	maxCat := 0
	for _, t := range tasks {
		if !t.Active {
			continue
		}
		if _, ok := byCategory[t.Category]; !ok {
			order = append(order, t.Category)
		}
		byCategory[t.Category] = append(byCategory[t.Category], t)
		if t.CategoryPosition != nil {
			categoryPositions[t.Category] = *t.CategoryPosition
			maxCat = max(maxCat, *t.CategoryPosition)
		}
	}

	next := maxCat + 1
	for _, cat := range order {
		if _, ok := categoryPositions[cat]; !ok {
			categoryPositions[cat] = next
			next++
		}
		for i, t := range byCategory[cat] {
			if t.Position != nil && *t.Position != 0 {
				taskPositions[t.ID] = *t.Position
			} else {
				taskPositions[t.ID] = i + 1
			}
		}
	}
	return taskPositions, categoryPositions
}
