package store

import (
	"database/sql"
	"fmt"
	"slices"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// SaveEntry records the counts for (userID, date), replacing any items
// saved earlier for the same pair. Counts are clamped to >= 0 and only
// positive counts are stored. The whole replace runs in one transaction.
func (s *Store) SaveEntry(userID int64, date string, counts map[int64]int) (*DailyEntry, error) {
	if _, err := time.Parse(dateLayout, date); err != nil {
		return nil, fmt.Errorf("save entry: invalid date %q: %w", date, err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin save entry: %w", err)
	}
	defer tx.Rollback()

	type pending struct {
		task  *Task
		count int
		mins  int
	}

	taskIDs := make([]int64, 0, len(counts))
	for id, c := range counts {
		if c > 0 {
			taskIDs = append(taskIDs, id)
		}
	}
	slices.Sort(taskIDs)

	var items []pending
	total := 0
	for _, id := range taskIDs {
		t, err := scanTask(tx.QueryRow(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
		if err != nil {
			return nil, fmt.Errorf("save entry: task %d: %w", id, err)
		}
		mins := t.CalculatedMinutes(counts[id])
		total += mins
		items = append(items, pending{task: t, count: counts[id], mins: mins})
	}

	now := nowString()
	_, err = tx.Exec(
		`INSERT INTO daily_entries (user_id, entry_date, total_calculated_time_minutes, productivity_ratio, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, entry_date) DO UPDATE SET
			total_calculated_time_minutes = excluded.total_calculated_time_minutes,
			productivity_ratio = excluded.productivity_ratio,
			updated_at = excluded.updated_at`,
		userID, date, total, float64(total)/TargetMinutesPerDay, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert entry: %w", err)
	}

	var entryID int64
	err = tx.QueryRow(
		`SELECT id FROM daily_entries WHERE user_id = ? AND entry_date = ?`, userID, date,
	).Scan(&entryID)
	if err != nil {
		return nil, fmt.Errorf("load entry id: %w", err)
	}

	if _, err := tx.Exec(`DELETE FROM daily_entry_items WHERE daily_entry_id = ?`, entryID); err != nil {
		return nil, fmt.Errorf("clear entry items: %w", err)
	}
	for _, it := range items {
		_, err := tx.Exec(
			`INSERT INTO daily_entry_items (daily_entry_id, task_id, count, calculated_time_minutes, task_name, task_category, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entryID, it.task.ID, it.count, it.mins, it.task.Name, it.task.Category, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert entry item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit save entry: %w", err)
	}
	return s.GetEntry(userID, date)
}

// GetEntry returns the entry for (userID, date) with its items, or ErrNotFound.
func (s *Store) GetEntry(userID int64, date string) (*DailyEntry, error) {
	entries, err := s.ListEntries(EntryFilter{UserID: &userID, From: date, To: date})
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("entry for user %d on %s: %w", userID, date, ErrNotFound)
	}
	return &entries[0], nil
}

// ListEntries returns entries matching f, ordered by date then user name,
// each with its items and their live task calibration.
func (s *Store) ListEntries(f EntryFilter) ([]DailyEntry, error) {
	query := `SELECT e.id, e.user_id, u.name, e.entry_date, e.total_calculated_time_minutes,
			e.productivity_ratio, e.created_at, e.updated_at
		FROM daily_entries e
		JOIN users u ON u.id = e.user_id
		WHERE 1=1`
	var args []any
	if f.UserID != nil {
		query += ` AND e.user_id = ?`
		args = append(args, *f.UserID)
	}
	if f.From != "" {
		query += ` AND e.entry_date >= ?`
		args = append(args, f.From)
	}
	if f.To != "" {
		query += ` AND e.entry_date <= ?`
		args = append(args, f.To)
	}
	query += ` ORDER BY e.entry_date, u.name, e.id`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}

	var entries []DailyEntry
	index := make(map[int64]int)
	for rows.Next() {
		var e DailyEntry
		var createdAt, updatedAt string
		if err := rows.Scan(&e.ID, &e.UserID, &e.UserName, &e.Date, &e.TotalMinutes,
			&e.ProductivityRatio, &createdAt, &updatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		index[e.ID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if len(entries) == 0 {
		return entries, nil
	}
	if err := s.attachItems(entries, index); err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *Store) attachItems(entries []DailyEntry, index map[int64]int) error {
	placeholders := make([]string, 0, len(entries))
	args := make([]any, 0, len(entries))
	for _, e := range entries {
		placeholders = append(placeholders, "?")
		args = append(args, e.ID)
	}

	rows, err := s.db.Query(
		`SELECT i.id, i.daily_entry_id, i.task_id, i.count, i.calculated_time_minutes,
			i.task_name, i.task_category,
			t.id, t.name, t.category, t.expected_duration_minutes, t.measurement_type,
			t.position, t.category_position, t.display_text, t.is_active, t.created_at, t.updated_at
		 FROM daily_entry_items i
		 LEFT JOIN tasks t ON t.id = i.task_id
		 WHERE i.daily_entry_id IN (`+strings.Join(placeholders, ",")+`)
		 ORDER BY i.id`, args...,
	)
	if err != nil {
		return fmt.Errorf("list entry items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var it EntryItem
		var (
			tid                sql.NullInt64
			tname, tcat, tmode sql.NullString
			tdur               sql.NullInt64
			tpos, tcatPos      sql.NullInt64
			tdisplay           sql.NullString
			tactive            sql.NullInt64
			tcreated, tupdated sql.NullString
		)
		if err := rows.Scan(&it.ID, &it.EntryID, &it.TaskID, &it.Count, &it.CalculatedMinutes,
			&it.TaskName, &it.TaskCategory,
			&tid, &tname, &tcat, &tdur, &tmode, &tpos, &tcatPos, &tdisplay, &tactive, &tcreated, &tupdated); err != nil {
			return err
		}
		if tid.Valid {
			t := &Task{
				ID:                      tid.Int64,
				Name:                    tname.String,
				Category:                tcat.String,
				ExpectedDurationMinutes: int(tdur.Int64),
				MeasurementMode:         MeasurementMode(tmode.String),
				Position:                intPtr(tpos),
				CategoryPosition:        intPtr(tcatPos),
				DisplayText:             tdisplay.String,
				Active:                  tactive.Int64 == 1,
			}
			t.CreatedAt, _ = time.Parse(time.RFC3339, tcreated.String)
			t.UpdatedAt, _ = time.Parse(time.RFC3339, tupdated.String)
			it.Task = t
		}
		i, ok := index[it.EntryID]
		if !ok {
			return fmt.Errorf("item %d references unknown entry %d", it.ID, it.EntryID)
		}
		entries[i].Items = append(entries[i].Items, it)
	}
	return rows.Err()
}
