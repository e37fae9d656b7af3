package calibration

import (
	"errors"
	"testing"

	"github.com/sadopc/prodtrack/internal/store"
)

func ip(n int) *int { return &n }

func task(id int64, name, category string, pos, catPos *int) store.Task {
	return store.Task{
		ID:               id,
		Name:             name,
		Category:         category,
		Position:         pos,
		CategoryPosition: catPos,
		Active:           true,
	}
}

func taskNames(c Category) []string {
	names := make([]string, len(c.Tasks))
	for i, t := range c.Tasks {
		names[i] = t.Name
	}
	return names
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================
// Categories
// ============================================================

func TestCategoriesOrdering(t *testing.T) {
	tasks := []store.Task{
		task(1, "Calls", "OPS", ip(2), ip(2)),
		task(2, "Filing", "ADMIN", nil, ip(1)),
		task(3, "Invoices", "OPS", ip(1), ip(2)),
		task(4, "Misc", "OTHER", nil, nil),
		task(5, "Post", "ADMIN", ip(1), ip(1)),
	}
	cats := Categories(tasks, nil)

	if got := Names(cats); !equal(got, []string{"ADMIN", "OPS", "OTHER"}) {
		t.Fatalf("category order = %v", got)
	}
	if cats[2].Position != store.PositionSentinel {
		t.Errorf("unpositioned category = %d", cats[2].Position)
	}
	if got := taskNames(cats[0]); !equal(got, []string{"Post", "Filing"}) {
		t.Errorf("ADMIN tasks = %v", got)
	}
	if got := taskNames(cats[1]); !equal(got, []string{"Invoices", "Calls"}) {
		t.Errorf("OPS tasks = %v", got)
	}
}

func TestCategoriesStableForEqualPositions(t *testing.T) {
	tasks := []store.Task{
		task(1, "B", "ONE", nil, nil),
		task(2, "A", "TWO", nil, nil),
		task(3, "C", "ONE", nil, nil),
	}
	cats := Categories(tasks, nil)
	if got := Names(cats); !equal(got, []string{"ONE", "TWO"}) {
		t.Fatalf("first appearance should win: %v", got)
	}
	if got := taskNames(cats[0]); !equal(got, []string{"B", "C"}) {
		t.Errorf("tasks = %v", got)
	}
}

func TestCategoriesSkipsInactive(t *testing.T) {
	inactive := task(2, "Old", "LEGACY", nil, nil)
	inactive.Active = false
	cats := Categories([]store.Task{task(1, "Calls", "OPS", nil, nil), inactive}, nil)
	if len(cats) != 1 || cats[0].Name != "OPS" {
		t.Fatalf("cats = %v", Names(cats))
	}
}

func TestCategoriesWithPendingEdits(t *testing.T) {
	tasks := []store.Task{
		task(1, "Invoices", "OPS", ip(1), ip(1)),
		task(2, "Calls", "OPS", ip(2), ip(1)),
		task(3, "Filing", "ADMIN", ip(1), ip(2)),
	}
	p := NewPendingEdits()
	p.SetTask(2, 1)
	p.SetTask(1, 2)
	p.SetCategory("ADMIN", 1)
	p.SetCategory("OPS", 2)

	cats := Categories(tasks, p)
	if got := Names(cats); !equal(got, []string{"ADMIN", "OPS"}) {
		t.Fatalf("category order = %v", got)
	}
	if got := taskNames(cats[1]); !equal(got, []string{"Calls", "Invoices"}) {
		t.Errorf("OPS tasks = %v", got)
	}

	// The stored rows are untouched.
	if *tasks[0].Position != 1 || *tasks[2].CategoryPosition != 2 {
		t.Error("pending edits must not modify the tasks")
	}
}

func TestExists(t *testing.T) {
	cats := Categories([]store.Task{task(1, "Calls", "OPS", nil, nil)}, nil)
	if !Exists(cats, " ops ") {
		t.Error("OPS should exist after normalizing")
	}
	if Exists(cats, "admin") {
		t.Error("ADMIN should not exist")
	}
}

// ============================================================
// AssignDefaults
// ============================================================

func TestAssignDefaults(t *testing.T) {
	tasks := []store.Task{
		task(1, "Invoices", "OPS", ip(4), ip(3)),
		task(2, "Calls", "OPS", nil, ip(3)),
		task(3, "Filing", "ADMIN", nil, nil),
		task(4, "Misc", "OTHER", ip(0), nil),
	}
	taskPos, catPos := AssignDefaults(tasks)

	if catPos["OPS"] != 3 || catPos["ADMIN"] != 4 || catPos["OTHER"] != 5 {
		t.Errorf("category positions = %v", catPos)
	}
	if taskPos[1] != 4 || taskPos[2] != 2 || taskPos[3] != 1 || taskPos[4] != 1 {
		t.Errorf("task positions = %v", taskPos)
	}
}

// ============================================================
// PendingEdits
// ============================================================

func TestPendingPositionsFallBack(t *testing.T) {
	var nilEdits *PendingEdits
	tk := task(1, "Calls", "OPS", ip(3), nil)
	if nilEdits.TaskPosition(tk) != 3 {
		t.Error("nil edits should use the stored position")
	}
	if !nilEdits.Empty() {
		t.Error("nil edits should be empty")
	}

	p := NewPendingEdits()
	if p.CategoryPosition("OPS", nil) != store.PositionSentinel {
		t.Error("unset category should sort last")
	}
	if p.CategoryPosition("OPS", ip(0)) != store.PositionSentinel {
		t.Error("zero category position should sort last")
	}
	p.SetTask(1, 7)
	p.SetCategory("OPS", 2)
	if p.TaskPosition(tk) != 7 || p.CategoryPosition("OPS", ip(9)) != 2 {
		t.Error("pending positions should win over stored ones")
	}
}

type fakeWriter struct {
	err   error
	calls int
	tasks map[int64]int
	cats  map[string]int
}

func (f *fakeWriter) ApplyPositions(tasks map[int64]int, cats map[string]int) error {
	f.calls++
	if f.err != nil {
		return f.err
	}
	f.tasks = make(map[int64]int)
	for k, v := range tasks {
		f.tasks[k] = v
	}
	f.cats = make(map[string]int)
	for k, v := range cats {
		f.cats[k] = v
	}
	return nil
}

func TestCommit(t *testing.T) {
	p := NewPendingEdits()
	w := &fakeWriter{}

	if err := p.Commit(w); err != nil || w.calls != 0 {
		t.Fatalf("empty commit should not write: calls=%d, err=%v", w.calls, err)
	}

	p.SetTask(1, 2)
	p.SetCategory("OPS", 1)
	if err := p.Commit(w); err != nil {
		t.Fatal(err)
	}
	if w.tasks[1] != 2 || w.cats["OPS"] != 1 {
		t.Errorf("written = %v, %v", w.tasks, w.cats)
	}
	if !p.Empty() {
		t.Error("commit should clear the edits")
	}
}

func TestCommitFailureKeepsEdits(t *testing.T) {
	p := NewPendingEdits()
	p.SetTask(1, 2)
	w := &fakeWriter{err: errors.New("disk full")}

	if err := p.Commit(w); err == nil {
		t.Fatal("expected error")
	}
	if p.Empty() || p.Tasks[1] != 2 {
		t.Error("edits should survive a failed commit")
	}
}

func TestCommitToStore(t *testing.T) {
	s, err := store.NewMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	a, _ := s.CreateTask(store.NewTask{Name: "Invoices", Category: "OPS", ExpectedDurationMinutes: 10})
	b, _ := s.CreateTask(store.NewTask{Name: "Calls", Category: "OPS", ExpectedDurationMinutes: 1})

	p := NewPendingEdits()
	p.SetTask(a.ID, 2)
	p.SetTask(b.ID, 1)
	if err := p.Commit(s); err != nil {
		t.Fatal(err)
	}

	tasks, _ := s.ListActiveTasks()
	cats := Categories(tasks, nil)
	if got := taskNames(cats[0]); !equal(got, []string{"Calls", "Invoices"}) {
		t.Errorf("order after commit = %v", got)
	}
}
