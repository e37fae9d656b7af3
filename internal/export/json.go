package export

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

type jsonExport struct {
	ExportedAt    string          `json:"exported_at"`
	TargetMinutes int             `json:"target_minutes_per_day"`
	Summary       *report.Summary `json:"summary"`
}

// ToJSON writes the summary projection, pretty-printed, to path.
func ToJSON(summary *report.Summary, path string) error {
	doc := jsonExport{
		ExportedAt:    time.Now().UTC().Format(time.RFC3339),
		TargetMinutes: store.TargetMinutesPerDay,
		Summary:       summary,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}
