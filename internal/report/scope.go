package report

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sadopc/prodtrack/internal/store"
)

const dateLayout = "2006-01-02"

var ErrInvalidScope = errors.New("invalid report scope")

// Scope selects a single day or an inclusive range of calendar days,
// optionally narrowed to one user. Dates are civil dates held at UTC
// midnight so day arithmetic is unaffected by DST.
type Scope struct {
	Start  time.Time
	End    time.Time
	UserID *int64
}

func civil(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// SingleDay is the scope of one calendar day.
func SingleDay(day time.Time) Scope {
	d := civil(day)
	return Scope{Start: d, End: d}
}

// Range is an inclusive day range; end before start is rejected.
func Range(start, end time.Time) (Scope, error) {
	s, e := civil(start), civil(end)
	if e.Before(s) {
		return Scope{}, fmt.Errorf("%w: %s is before %s", ErrInvalidScope, e.Format(dateLayout), s.Format(dateLayout))
	}
	return Scope{Start: s, End: e}, nil
}

// ParseScope builds a scope from YYYY-MM-DD strings. An empty to means a
// single day.
func ParseScope(from, to string) (Scope, error) {
	start, err := time.Parse(dateLayout, from)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: start date %q", ErrInvalidScope, from)
	}
	if to == "" || to == from {
		return SingleDay(start), nil
	}
	end, err := time.Parse(dateLayout, to)
	if err != nil {
		return Scope{}, fmt.Errorf("%w: end date %q", ErrInvalidScope, to)
	}
	return Range(start, end)
}

// ForUser returns a copy of s narrowed to one user; nil clears the filter.
func (s Scope) ForUser(id *int64) Scope {
	s.UserID = id
	return s
}

func (s Scope) IsRange() bool { return !s.Start.Equal(s.End) }

// Days is the inclusive number of calendar days covered.
func (s Scope) Days() int {
	return int(s.End.Sub(s.Start).Hours()/24) + 1
}

func (s Scope) From() string { return s.Start.Format(dateLayout) }
func (s Scope) To() string   { return s.End.Format(dateLayout) }

// Contains reports whether a YYYY-MM-DD date falls inside the scope.
func (s Scope) Contains(date string) bool {
	return date >= s.From() && date <= s.To()
}

func (s Scope) includes(e store.DailyEntry) bool {
	if s.UserID != nil && e.UserID != *s.UserID {
		return false
	}
	return s.Contains(e.Date)
}

// Filter is the store query matching this scope.
func (s Scope) Filter() store.EntryFilter {
	return store.EntryFilter{UserID: s.UserID, From: s.From(), To: s.To()}
}

// Label encodes the scope as DD-MM-YYYY or DD-MM-YYYY_to_DD-MM-YYYY.
func (s Scope) Label() string {
	if !s.IsRange() {
		return s.Start.Format("02-01-2006")
	}
	return s.Start.Format("02-01-2006") + "_to_" + s.End.Format("02-01-2006")
}

func (s Scope) String() string {
	if !s.IsRange() {
		return s.From()
	}
	return s.From() + ".." + s.To()
}

// FormatDate turns a stored YYYY-MM-DD date into DD-MM-YYYY.
func FormatDate(date string) string {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return date
	}
	return t.Format("02-01-2006")
}

// Preset names a canned date selection.
type Preset int

const (
	PresetToday Preset = iota
	PresetYesterday
	PresetLast7Days
	PresetLastMonth
	PresetCurrentWeek
)

var presetNames = []string{"Today", "Yesterday", "Last 7 Days", "Last Month", "This Week"}

func (p Preset) String() string {
	if int(p) < len(presetNames) {
		return presetNames[p]
	}
	return "Custom"
}

// Presets lists every preset in display order.
func Presets() []Preset {
	return []Preset{PresetToday, PresetYesterday, PresetLast7Days, PresetLastMonth, PresetCurrentWeek}
}

// ParsePreset accepts a preset's display name or its short form
// (today, yesterday, last7, lastmonth, week), ignoring case and spaces.
func ParsePreset(name string) (Preset, error) {
	key := strings.ToLower(strings.ReplaceAll(name, " ", ""))
	for _, p := range Presets() {
		if key == strings.ToLower(strings.ReplaceAll(p.String(), " ", "")) || key == presetKeys[p] {
			return p, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown preset %q", ErrInvalidScope, name)
}

var presetKeys = map[Preset]string{
	PresetToday:       "today",
	PresetYesterday:   "yesterday",
	PresetLast7Days:   "last7",
	PresetLastMonth:   "lastmonth",
	PresetCurrentWeek: "week",
}

// Today is the current calendar day in loc.
func Today(now time.Time, loc *time.Location) time.Time {
	return civil(now.In(loc))
}

// PresetScope resolves p against now in the tracking timezone.
func PresetScope(p Preset, now time.Time, loc *time.Location) Scope {
	today := Today(now, loc)
	switch p {
	case PresetYesterday:
		return SingleDay(today.AddDate(0, 0, -1))
	case PresetLast7Days:
		return Scope{Start: today.AddDate(0, 0, -6), End: today}
	case PresetLastMonth:
		start := time.Date(today.Year(), today.Month()-1, today.Day(), 0, 0, 0, 0, time.UTC)
		return Scope{Start: start, End: today}
	case PresetCurrentWeek:
		// Monday to Friday of the current week.
		offset := int(today.Weekday()) - int(time.Monday)
		if today.Weekday() == time.Sunday {
			offset = 6
		}
		monday := today.AddDate(0, 0, -offset)
		return Scope{Start: monday, End: monday.AddDate(0, 0, 4)}
	default:
		return SingleDay(today)
	}
}
