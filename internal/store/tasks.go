package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const taskColumns = `id, name, category, expected_duration_minutes, measurement_type,
	position, category_position, display_text, is_active, created_at, updated_at`

// calibrationOrder sorts unset (NULL or 0) positions last, matching Task.SortPosition.
const calibrationOrder = ` ORDER BY COALESCE(NULLIF(category_position, 0), 999),
	COALESCE(NULLIF(position, 0), 999), id`

// NormalizeCategory is the canonical form categories are stored in.
func NormalizeCategory(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// CreateTask adds a task at the end of its category. A category seen for
// the first time is placed after every existing category.
func (s *Store) CreateTask(nt NewTask) (*Task, error) {
	name := strings.TrimSpace(nt.Name)
	category := NormalizeCategory(nt.Category)
	if name == "" || category == "" {
		return nil, ErrEmptyName
	}
	if nt.ExpectedDurationMinutes < 1 {
		return nil, ErrInvalidDuration
	}
	mode := nt.MeasurementMode
	if mode == "" {
		mode = ModeCount
	}
	if !mode.Valid() {
		return nil, fmt.Errorf("create task %q: %w", name, ErrInvalidMode)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin create task: %w", err)
	}
	defer tx.Rollback()

	var maxPos int
	err = tx.QueryRow(
		`SELECT COALESCE(MAX(position), 0) FROM tasks WHERE category = ? AND is_active = 1`, category,
	).Scan(&maxPos)
	if err != nil {
		return nil, fmt.Errorf("max task position: %w", err)
	}

	var catPos sql.NullInt64
	err = tx.QueryRow(
		`SELECT MAX(category_position) FROM tasks WHERE category = ? AND is_active = 1`, category,
	).Scan(&catPos)
	if err != nil {
		return nil, fmt.Errorf("category position: %w", err)
	}
	if !catPos.Valid {
		var maxCat int64
		err = tx.QueryRow(`SELECT COALESCE(MAX(category_position), 0) FROM tasks WHERE is_active = 1`).Scan(&maxCat)
		if err != nil {
			return nil, fmt.Errorf("max category position: %w", err)
		}
		catPos = sql.NullInt64{Int64: maxCat + 1, Valid: true}
	}

	now := nowString()
	res, err := tx.Exec(
		`INSERT INTO tasks (name, category, expected_duration_minutes, measurement_type,
			position, category_position, display_text, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		name, category, nt.ExpectedDurationMinutes, string(mode),
		maxPos+1, catPos.Int64, nullString(nt.DisplayText), now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, _ := res.LastInsertId()
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create task: %w", err)
	}
	return s.GetTask(id)
}

func (s *Store) GetTask(id int64) (*Task, error) {
	row := s.db.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}
	return t, nil
}

// ListActiveTasks returns active tasks ordered by category position, then position.
func (s *Store) ListActiveTasks() ([]Task, error) {
	return s.listTasks(`SELECT ` + taskColumns + ` FROM tasks WHERE is_active = 1` + calibrationOrder)
}

func (s *Store) ListTasks(includeInactive bool) ([]Task, error) {
	if !includeInactive {
		return s.ListActiveTasks()
	}
	return s.listTasks(`SELECT ` + taskColumns + ` FROM tasks` + calibrationOrder)
}

func (s *Store) listTasks(query string, args ...any) ([]Task, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *Store) UpdateTaskDuration(id int64, minutes int) error {
	if minutes < 1 {
		return ErrInvalidDuration
	}
	return s.updateTask(id, `expected_duration_minutes = ?`, minutes)
}

func (s *Store) SetMeasurementMode(id int64, mode MeasurementMode) error {
	if !mode.Valid() {
		return fmt.Errorf("task %d: %w", id, ErrInvalidMode)
	}
	return s.updateTask(id, `measurement_type = ?`, string(mode))
}

// SetDisplayText sets the label override; an empty string clears it.
func (s *Store) SetDisplayText(id int64, text string) error {
	return s.updateTask(id, `display_text = ?`, nullString(strings.TrimSpace(text)))
}

func (s *Store) DeactivateTask(id int64) error {
	return s.updateTask(id, `is_active = 0`)
}

func (s *Store) updateTask(id int64, set string, args ...any) error {
	args = append(args, nowString(), id)
	res, err := s.db.Exec(`UPDATE tasks SET `+set+`, updated_at = ? WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update task %d: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("task %d", id))
}

// RenameCategory rewrites the category of every task currently in oldName.
func (s *Store) RenameCategory(oldName, newName string) error {
	newName = NormalizeCategory(newName)
	if newName == "" {
		return ErrEmptyName
	}
	if newName == oldName {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin rename category: %w", err)
	}
	defer tx.Rollback()

	var clash int
	err = tx.QueryRow(
		`SELECT COUNT(*) FROM tasks WHERE category = ? AND is_active = 1`, newName,
	).Scan(&clash)
	if err != nil {
		return fmt.Errorf("check category %q: %w", newName, err)
	}
	if clash > 0 {
		return fmt.Errorf("rename %q to %q: %w", oldName, newName, ErrDuplicateCategory)
	}

	res, err := tx.Exec(
		`UPDATE tasks SET category = ?, updated_at = ? WHERE category = ?`,
		newName, nowString(), oldName,
	)
	if err != nil {
		return fmt.Errorf("rename category %q: %w", oldName, err)
	}
	if err := requireRow(res, fmt.Sprintf("category %q", oldName)); err != nil {
		return err
	}
	return tx.Commit()
}

// DeactivateCategory soft-deletes every task in the category.
func (s *Store) DeactivateCategory(name string) error {
	res, err := s.db.Exec(
		`UPDATE tasks SET is_active = 0, updated_at = ? WHERE category = ? AND is_active = 1`,
		nowString(), name,
	)
	if err != nil {
		return fmt.Errorf("deactivate category %q: %w", name, err)
	}
	return requireRow(res, fmt.Sprintf("category %q", name))
}

// ApplyPositions commits pending position edits in one transaction.
// Category positions are written to every task of the category, active or
// not, so entries on retired tasks sort with their category.
func (s *Store) ApplyPositions(taskPositions map[int64]int, categoryPositions map[string]int) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin apply positions: %w", err)
	}
	defer tx.Rollback()

	now := nowString()
	for category, pos := range categoryPositions {
		if _, err := tx.Exec(
			`UPDATE tasks SET category_position = ?, updated_at = ? WHERE category = ?`,
			pos, now, category,
		); err != nil {
			return fmt.Errorf("update category %q position: %w", category, err)
		}
	}
	for id, pos := range taskPositions {
		res, err := tx.Exec(`UPDATE tasks SET position = ?, updated_at = ? WHERE id = ?`, pos, now, id)
		if err != nil {
			return fmt.Errorf("update task %d position: %w", id, err)
		}
		if err := requireRow(res, fmt.Sprintf("task %d", id)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func scanTask(r rowScanner) (*Task, error) {
	t := &Task{}
	var mode, createdAt, updatedAt string
	var pos, catPos sql.NullInt64
	var display sql.NullString
	var active int
	err := r.Scan(&t.ID, &t.Name, &t.Category, &t.ExpectedDurationMinutes, &mode,
		&pos, &catPos, &display, &active, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	t.MeasurementMode = MeasurementMode(mode)
	t.Position = intPtr(pos)
	t.CategoryPosition = intPtr(catPos)
	t.DisplayText = display.String
	t.Active = active == 1
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	t.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return t, nil
}

func intPtr(n sql.NullInt64) *int {
	if !n.Valid {
		return nil
	}
	v := int(n.Int64)
	return &v
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
