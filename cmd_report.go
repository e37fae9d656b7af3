package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sadopc/prodtrack/internal/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the team and individual productivity summary",
	Args:  cobra.NoArgs,
	RunE:  runReport,
}

// scopeFlags select the report scope; shared by report and export.
type scopeFlags struct {
	from   string
	to     string
	preset string
	user   string
}

func (f *scopeFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.from, "from", "", "First day, YYYY-MM-DD")
	c.Flags().StringVar(&f.to, "to", "", "Last day, YYYY-MM-DD (default: --from)")
	c.Flags().StringVar(&f.preset, "preset", "", "today, yesterday, last7, lastmonth or week")
	c.Flags().StringVar(&f.user, "user", "", "Only this user")
}

func (f *scopeFlags) resolve(e *env) (report.Scope, error) {
	var scope report.Scope
	switch {
	case f.from != "":
		s, err := report.ParseScope(f.from, f.to)
		if err != nil {
			return report.Scope{}, err
		}
		scope = s
	case f.preset != "":
		p, err := report.ParsePreset(f.preset)
		if err != nil {
			return report.Scope{}, err
		}
		scope = report.PresetScope(p, time.Now(), e.loc)
	default:
		scope = report.SingleDay(e.today())
	}

	uid, err := lookupUser(e.store, f.user)
	if err != nil {
		return report.Scope{}, err
	}
	return scope.ForUser(uid), nil
}

var (
	reportScope scopeFlags
	reportJSON  bool
)

func init() {
	rootCmd.AddCommand(reportCmd)
	reportScope.register(reportCmd)
	reportCmd.Flags().BoolVar(&reportJSON, "json", false, "Output as JSON")
}

func runReport(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	scope, err := reportScope.resolve(e)
	if err != nil {
		return err
	}
	summary, err := e.service().Summary(scope)
	if err != nil {
		return err
	}

	if reportJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return writeSummary(cmd.OutOrStdout(), summary)
}

var headingStyle = lipgloss.NewStyle().Bold(true)

func writeSummary(out io.Writer, s *report.Summary) error {
	fmt.Fprintln(out, headingStyle.Render("Team "+s.Scope))
	fmt.Fprintf(out, "Members %s  Time %s  Productivity %d%%\n\n", s.Team.Members, s.Team.Time, s.Team.Productivity)
	if err := writeCategories(out, s.Team.Categories); err != nil {
		return err
	}

	for _, ind := range s.Individuals {
		fmt.Fprintln(out)
		fmt.Fprintln(out, headingStyle.Render(ind.Name))
		fmt.Fprintf(out, "Time %s  Productivity %d%%\n\n", ind.Time, ind.Productivity)
		if err := writeCategories(out, ind.Categories); err != nil {
			return err
		}
	}
	return nil
}

func writeCategories(out io.Writer, cats []report.CategorySummary) error {
	if len(cats) == 0 {
		_, err := fmt.Fprintln(out, "No entries.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CATEGORY\tTASK\tUNIT\tCOUNT\tTIME\tSHARE")
	for _, c := range cats {
		fmt.Fprintf(w, "%s\t\t\t%d\t%s\t%s\n", c.Name, c.Count, c.Time, c.ShareLabel)
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "\t%s\t%s\t%d\t%s\t%s\n", t.Name, t.Unit, t.Count, t.Time, t.ShareLabel)
		}
	}
	return w.Flush()
}
