package calibration

import "github.com/sadopc/prodtrack/internal/store"

// PendingEdits holds proposed positions keyed by task ID and category name.
// A nil *PendingEdits behaves as an empty set.
type PendingEdits struct {
	Tasks      map[int64]int
	Categories map[string]int
}

func NewPendingEdits() *PendingEdits {
	return &PendingEdits{
		Tasks:      make(map[int64]int),
		Categories: make(map[string]int),
	}
}

func (p *PendingEdits) SetTask(id int64, pos int) {
	p.Tasks[id] = pos
}

func (p *PendingEdits) SetCategory(name string, pos int) {
	p.Categories[name] = pos
}

func (p *PendingEdits) Empty() bool {
	return p == nil || (len(p.Tasks) == 0 && len(p.Categories) == 0)
}

func (p *PendingEdits) Clear() {
	clear(p.Tasks)
	clear(p.Categories)
}

// TaskPosition is pending[id] ?? stored ?? sentinel.
func (p *PendingEdits) TaskPosition(t store.Task) int {
	if p != nil {
		if pos, ok := p.Tasks[t.ID]; ok {
			return pos
		}
	}
	return t.SortPosition()
}

// CategoryPosition is pending[name] ?? stored ?? sentinel.
func (p *PendingEdits) CategoryPosition(name string, stored *int) int {
	if p != nil {
		if pos, ok := p.Categories[name]; ok {
			return pos
		}
	}
	if stored == nil || *stored == 0 {
		return store.PositionSentinel
	}
	return *stored
}

// PositionWriter persists a batch of position edits atomically.
type PositionWriter interface {
	ApplyPositions(taskPositions map[int64]int, categoryPositions map[string]int) error
}

// Commit writes the edits and clears them on success. Nothing is cleared
// when the write fails, so the edits can be retried.
func (p *PendingEdits) Commit(w PositionWriter) error {
	if p.Empty() {
		return nil
	}
	if err := w.ApplyPositions(p.Tasks, p.Categories); err != nil {
		return err
	}
	p.Clear()
	return nil
}
