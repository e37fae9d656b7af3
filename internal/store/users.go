package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const userColumns = `id, name, email, access_level, is_active, created_at`

func (s *Store) CreateUser(name, email string, level AccessLevel) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if level != AccessOps && level != AccessAdmin {
		return nil, fmt.Errorf("create user %q: %w", name, ErrInvalidAccessLevel)
	}
	res, err := s.db.Exec(
		`INSERT INTO users (name, email, access_level, is_active, created_at) VALUES (?, ?, ?, 1, ?)`,
		name, email, string(level), nowString(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetUser(id)
}

func (s *Store) GetUser(id int64) (*User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

func (s *Store) GetUserByName(name string) (*User, error) {
	row := s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE name = ?`, name)
	u, err := scanUser(row)
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", name, err)
	}
	return u, nil
}

func (s *Store) ListUsers(includeInactive bool) ([]User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	if !includeInactive {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY name`

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// CountActiveUsers is the "Y" of "X/Y team members".
func (s *Store) CountActiveUsers() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM users WHERE is_active = 1`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// DeactivateUser soft-deletes a user. Their entries stay in place for
// historical reports.
func (s *Store) DeactivateUser(id int64) error {
	res, err := s.db.Exec(`UPDATE users SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate user %d: %w", id, err)
	}
	return requireRow(res, fmt.Sprintf("user %d", id))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(r rowScanner) (*User, error) {
	u := &User{}
	var level, createdAt string
	var active int
	if err := r.Scan(&u.ID, &u.Name, &u.Email, &level, &active, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.AccessLevel = AccessLevel(level)
	u.Active = active == 1
	u.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return u, nil
}

func requireRow(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
