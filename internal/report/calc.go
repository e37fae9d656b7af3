package report

import (
	"fmt"
	"math"

	"github.com/sadopc/prodtrack/internal/store"
)

// CalculatedMinutes converts a raw count using a task's calibration.
func CalculatedMinutes(t store.Task, count int) int {
	return t.CalculatedMinutes(count)
}

// Percent is num/den*100, defined as 0 whenever den is 0.
func Percent(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den * 100
}

// Ratio is num/den, defined as 0 whenever den is 0.
func Ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}
	return num / den
}

// RoundPercent rounds a ratio to a whole percentage.
func RoundPercent(ratio float64) int {
	return int(math.Round(ratio * 100))
}

func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// FormatHMM renders minutes as H:MM with no leading zero on hours.
func FormatHMM(minutes int) string {
	if minutes < 0 {
		minutes = 0
	}
	return fmt.Sprintf("%d:%02d", minutes/60, minutes%60)
}

// FormatPercent shows whole percentages without decimals and others with one.
func FormatPercent(p float64) string {
	if p == math.Trunc(p) {
		return fmt.Sprintf("%.0f%%", p)
	}
	return fmt.Sprintf("%.1f%%", p)
}

// UnitLabel is the unit column used in exported sheets.
func UnitLabel(mode store.MeasurementMode) string {
	if mode == store.ModeDuration {
		return "Time (m)"
	}
	return "Tasks"
}

// MeasurementLabel is the unit shown next to a task in the summary.
func MeasurementLabel(mode store.MeasurementMode, expectedMinutes int) string {
	if mode == store.ModeDuration {
		return "Time (m)"
	}
	return fmt.Sprintf("Tasks - %dm", expectedMinutes)
}
