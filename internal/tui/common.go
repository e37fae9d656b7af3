package tui

import (
	"errors"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// viewState represents the currently active view.
type viewState int

const (
	viewInput viewState = iota
	viewOutput
	viewCalibration
	viewTeam
)

var viewNames = []string{"Input", "Output", "Calibration", "Team"}

const dateLayout = "2006-01-02"

// Options carries the settings the views share.
type Options struct {
	// Location is the tracking timezone; calendar days are taken in it.
	Location  *time.Location
	ExportDir string
	Log       *zap.Logger
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.Local
	}
	if o.ExportDir == "" {
		o.ExportDir = "."
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

var (
	errNotANumber = errors.New("enter a whole number")
	errNegative   = errors.New("must not be negative")
	errTooSmall   = errors.New("must be at least 1")
	errRequired   = errors.New("required")
)

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type exportDoneMsg struct {
	paths []string
}

func statusCmd(text string, isError bool) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text, isError: isError} }
}

// --- Helpers ---

// parseCount reads a form field; blank means zero.
func parseCount(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func validateCount(s string) error {
	n, err := parseCount(s)
	if err != nil {
		return errNotANumber
	}
	if n < 0 {
		return errNegative
	}
	return nil
}

func validateRequired(s string) error {
	if strings.TrimSpace(s) == "" {
		return errRequired
	}
	return nil
}

func validatePositive(s string) error {
	n, err := parseCount(s)
	if err != nil {
		return errNotANumber
	}
	if n < 1 {
		return errTooSmall
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
