package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Record and inspect daily entries",
}

var entrySetCmd = &cobra.Command{
	Use:   "set <task-id>=<count>...",
	Short: "Save a user's counts for a day, replacing earlier ones",
	Args:  cobra.ArbitraryArgs,
	RunE:  runEntrySet,
}

var entryShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show a user's entry for a day",
	Args:  cobra.NoArgs,
	RunE:  runEntryShow,
}

var (
	entryUser string
	entryDate string
)

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entrySetCmd, entryShowCmd)

	for _, c := range []*cobra.Command{entrySetCmd, entryShowCmd} {
		c.Flags().StringVar(&entryUser, "user", "", "User name")
		c.Flags().StringVar(&entryDate, "date", "", "Date as YYYY-MM-DD (default: today)")
		c.MarkFlagRequired("user")
	}
}

// parseCounts reads task-id=count pairs.
func parseCounts(args []string) (map[int64]int, error) {
	counts := make(map[int64]int, len(args))
	for _, a := range args {
		idStr, countStr, ok := strings.Cut(a, "=")
		if !ok {
			return nil, fmt.Errorf("expected <task-id>=<count>, got %q", a)
		}
		id, err := parseID(idStr)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(countStr)
		if err != nil {
			return nil, fmt.Errorf("invalid count %q for task %d", countStr, id)
		}
		counts[id] = n
	}
	return counts, nil
}

func (e *env) entryDate() string {
	if entryDate != "" {
		return entryDate
	}
	return e.today().Format("2006-01-02")
}

func runEntrySet(cmd *cobra.Command, args []string) error {
	counts, err := parseCounts(args)
	if err != nil {
		return err
	}
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.store.GetUserByName(entryUser)
	if err != nil {
		return fmt.Errorf("find user %q: %w", entryUser, err)
	}
	date := e.entryDate()
	entry, err := e.store.SaveEntry(u.ID, date, counts)
	if err != nil {
		e.log.Error("save entry", zap.Int64("user_id", u.ID), zap.String("date", date), zap.Error(err))
		return err
	}
	e.log.Info("entry saved",
		zap.Int64("user_id", u.ID),
		zap.String("date", date),
		zap.Int("items", len(entry.Items)),
		zap.Int("minutes", entry.TotalMinutes),
	)
	return writeEntry(cmd.OutOrStdout(), entry)
}

func runEntryShow(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.store.GetUserByName(entryUser)
	if err != nil {
		return fmt.Errorf("find user %q: %w", entryUser, err)
	}
	entry, err := e.store.GetEntry(u.ID, e.entryDate())
	if err != nil {
		return err
	}
	return writeEntry(cmd.OutOrStdout(), entry)
}

func writeEntry(out io.Writer, entry *store.DailyEntry) error {
	fmt.Fprintf(out, "%s  %s  %s  %d%%\n\n",
		entry.UserName, report.FormatDate(entry.Date), report.FormatHMM(entry.TotalMinutes),
		report.RoundPercent(entry.ProductivityRatio))

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tCATEGORY\tCOUNT\tMINUTES")
	for _, it := range entry.Items {
		name, category := it.TaskName, it.TaskCategory
		if it.Task != nil {
			name, category = it.Task.Label(), it.Task.Category
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\n", name, category, it.Count, it.CalculatedMinutes)
	}
	return w.Flush()
}
