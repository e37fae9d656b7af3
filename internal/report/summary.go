package report

import "fmt"

// Summary is the interactive view of a Result: team overview, then one
// block per active user. Percentages are computed once over the whole scope.
type Summary struct {
	Scope       string              `json:"scope"`
	Days        int                 `json:"days"`
	Team        TeamSummary         `json:"team"`
	Individuals []IndividualSummary `json:"individuals"`
}

type TeamSummary struct {
	Members      string            `json:"members"`
	ActiveUsers  int               `json:"active_users"`
	TotalUsers   int               `json:"total_users"`
	Minutes      int               `json:"minutes"`
	Time         string            `json:"time"`
	Count        int               `json:"count"`
	Productivity int               `json:"productivity_percent"`
	Categories   []CategorySummary `json:"categories"`
}

type IndividualSummary struct {
	UserID       int64             `json:"user_id"`
	Name         string            `json:"name"`
	Minutes      int               `json:"minutes"`
	Time         string            `json:"time"`
	Count        int               `json:"count"`
	Productivity int               `json:"productivity_percent"`
	Categories   []CategorySummary `json:"categories"`
}

type CategorySummary struct {
	Name       string        `json:"name"`
	Minutes    int           `json:"minutes"`
	Time       string        `json:"time"`
	Count      int           `json:"count"`
	Share      float64       `json:"share_percent"`
	ShareLabel string        `json:"share"`
	Tasks      []TaskSummary `json:"tasks"`
}

type TaskSummary struct {
	Name       string  `json:"name"`
	Unit       string  `json:"unit"`
	Count      int     `json:"count"`
	Minutes    int     `json:"minutes"`
	Time       string  `json:"time"`
	Share      float64 `json:"share_percent"`
	ShareLabel string  `json:"share"`
}

// BuildSummary formats a Result for display.
func BuildSummary(r *Result) *Summary {
	s := &Summary{
		Scope: r.Scope.String(),
		Days:  r.Days,
		Team: TeamSummary{
			Members:      fmt.Sprintf("%d/%d", r.ActiveUsers, r.TotalUsers),
			ActiveUsers:  r.ActiveUsers,
			TotalUsers:   r.TotalUsers,
			Minutes:      r.Team.Minutes,
			Time:         FormatHMM(r.Team.Minutes),
			Count:        r.Team.Count,
			Productivity: RoundPercent(r.TeamRatio),
			Categories:   summarizeCategories(r.Team.Categories, r.Team.CategorizedMinutes()),
		},
	}
	for _, u := range r.Users {
		s.Individuals = append(s.Individuals, IndividualSummary{
			UserID:       u.UserID,
			Name:         u.Name,
			Minutes:      u.Minutes,
			Time:         FormatHMM(u.Minutes),
			Count:        u.Count(),
			Productivity: RoundPercent(u.Ratio),
			Categories:   summarizeCategories(u.Categories, u.CategorizedMinutes()),
		})
	}
	return s
}

func summarizeCategories(cats []CategoryTotal, total int) []CategorySummary {
	out := make([]CategorySummary, 0, len(cats))
	for _, c := range cats {
		share := CategoryShare(c, total)
		cs := CategorySummary{
			Name:       c.Name,
			Minutes:    c.Minutes,
			Time:       FormatHMM(c.Minutes),
			Count:      c.Count,
			Share:      share,
			ShareLabel: FormatPercent(share),
		}
		for _, t := range c.Tasks {
			ts := TaskShare(t, c)
			cs.Tasks = append(cs.Tasks, TaskSummary{
				Name:       t.Name,
				Unit:       MeasurementLabel(t.Mode, t.ExpectedDuration),
				Count:      t.Count,
				Minutes:    t.Minutes,
				Time:       FormatHMM(t.Minutes),
				Share:      ts,
				ShareLabel: FormatPercent(ts),
			})
		}
		out = append(out, cs)
	}
	return out
}
