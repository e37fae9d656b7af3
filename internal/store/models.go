package store

import "time"

// PositionSentinel orders tasks and categories without an explicit
// position after every calibrated one.
const PositionSentinel = 999

// TargetMinutesPerDay is the 7.5 hour workday every ratio is measured against.
const TargetMinutesPerDay = 450

type MeasurementMode string

const (
	// ModeCount multiplies the logged count by the expected duration.
	ModeCount MeasurementMode = "tasks"
	// ModeDuration treats the logged count as minutes.
	ModeDuration MeasurementMode = "time"
)

func (m MeasurementMode) Valid() bool {
	return m == ModeCount || m == ModeDuration
}

type AccessLevel string

const (
	AccessOps   AccessLevel = "ops"
	AccessAdmin AccessLevel = "admin"
)

type User struct {
	ID          int64
	Name        string
	Email       string
	AccessLevel AccessLevel
	Active      bool
	CreatedAt   time.Time
}

func (u User) IsAdmin() bool { return u.AccessLevel == AccessAdmin }

type Task struct {
	ID                      int64
	Name                    string
	Category                string
	ExpectedDurationMinutes int
	MeasurementMode         MeasurementMode
	Position                *int
	CategoryPosition        *int
	DisplayText             string
	Active                  bool
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// SortPosition returns the task position, or PositionSentinel when unset.
func (t Task) SortPosition() int {
	return orSentinel(t.Position)
}

// SortCategoryPosition returns the category position, or PositionSentinel when unset.
func (t Task) SortCategoryPosition() int {
	return orSentinel(t.CategoryPosition)
}

// Label is the text shown to staff: the display text override when set.
func (t Task) Label() string {
	if t.DisplayText != "" {
		return t.DisplayText
	}
	return t.Name
}

// CalculatedMinutes converts a raw count into minutes using this task's
// calibration. Negative counts are treated as zero.
func (t Task) CalculatedMinutes(count int) int {
	if count < 0 {
		count = 0
	}
	if t.MeasurementMode == ModeDuration {
		return count
	}
	return count * t.ExpectedDurationMinutes
}

func orSentinel(p *int) int {
	if p == nil || *p == 0 {
		return PositionSentinel
	}
	return *p
}

type DailyEntry struct {
	ID                int64
	UserID            int64
	UserName          string
	Date              string // YYYY-MM-DD in the tracking timezone
	TotalMinutes      int
	ProductivityRatio float64
	Items             []EntryItem
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

type EntryItem struct {
	ID                int64
	EntryID           int64
	TaskID            int64
	Count             int
	CalculatedMinutes int
	// TaskName and TaskCategory are recorded when the entry is saved.
	TaskName     string
	TaskCategory string
	// Task is the live calibration row; nil when it can no longer be resolved.
	Task *Task
}

// NewTask holds the fields an administrator supplies when adding a task.
type NewTask struct {
	Name                    string
	Category                string
	ExpectedDurationMinutes int
	MeasurementMode         MeasurementMode
	DisplayText             string
}

// EntryFilter is used to filter daily entries in queries. From and To are
// inclusive YYYY-MM-DD dates.
type EntryFilter struct {
	UserID *int64
	From   string
	To     string
}
