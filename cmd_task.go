package main

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/calibration"
	"github.com/sadopc/prodtrack/internal/store"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage task calibration",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a task to a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskAdd,
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks grouped by category",
	Args:  cobra.NoArgs,
	RunE:  runTaskList,
}

var taskSetCmd = &cobra.Command{
	Use:   "set <id>",
	Short: "Change a task's calibration",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskSet,
}

var taskRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Deactivate a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskRemove,
}

var (
	taskAddCategory string
	taskAddDuration int
	taskAddMode     string
	taskAddDisplay  string

	taskSetDuration int
	taskSetMode     string
	taskSetDisplay  string
	taskSetPosition int
)

func init() {
	rootCmd.AddCommand(taskCmd)
	taskCmd.AddCommand(taskAddCmd, taskListCmd, taskSetCmd, taskRemoveCmd)

	taskAddCmd.Flags().StringVar(&taskAddCategory, "category", "", "Category (stored upper-case)")
	taskAddCmd.Flags().IntVar(&taskAddDuration, "duration", 1, "Expected minutes per unit")
	taskAddCmd.Flags().StringVar(&taskAddMode, "mode", string(store.ModeCount), "Measurement: tasks or time")
	taskAddCmd.Flags().StringVar(&taskAddDisplay, "display", "", "Text shown to staff instead of the name")
	taskAddCmd.MarkFlagRequired("category")

	taskSetCmd.Flags().IntVar(&taskSetDuration, "duration", 0, "Expected minutes per unit")
	taskSetCmd.Flags().StringVar(&taskSetMode, "mode", "", "Measurement: tasks or time")
	taskSetCmd.Flags().StringVar(&taskSetDisplay, "display", "", "Display text; \"-\" clears it")
	taskSetCmd.Flags().IntVar(&taskSetPosition, "position", 0, "Position within the category")
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	t, err := e.store.CreateTask(store.NewTask{
		Name:                    args[0],
		Category:                taskAddCategory,
		ExpectedDurationMinutes: taskAddDuration,
		MeasurementMode:         store.MeasurementMode(taskAddMode),
		DisplayText:             taskAddDisplay,
	})
	if err != nil {
		return fmt.Errorf("add task: %w", err)
	}
	e.log.Info("task added", zap.Int64("task_id", t.ID), zap.String("category", t.Category))
	fmt.Fprintf(cmd.OutOrStdout(), "Added task %d %s in %s\n", t.ID, t.Name, t.Category)
	return nil
}

func runTaskList(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	tasks, err := e.store.ListActiveTasks()
	if err != nil {
		return fmt.Errorf("list tasks: %w", err)
	}
	return writeTasks(cmd.OutOrStdout(), tasks)
}

// writeTasks prints tasks by category with the positions an editor would
// show, filling unset ones with their defaults.
func writeTasks(out io.Writer, tasks []store.Task) error {
	taskPos, catPos := calibration.AssignDefaults(tasks)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CAT#\tCATEGORY\t#\tID\tTASK\tMODE\tMINUTES\tDISPLAY")
	for _, c := range calibration.Categories(tasks, nil) {
		for _, t := range c.Tasks {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\t%s\t%s\t%d\t%s\n",
				catPos[c.Name], c.Name, taskPos[t.ID], t.ID, t.Name, t.MeasurementMode, t.ExpectedDurationMinutes, t.DisplayText)
		}
	}
	return w.Flush()
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}

func runTaskSet(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if !flags.Changed("duration") && !flags.Changed("mode") && !flags.Changed("display") && !flags.Changed("position") {
		return fmt.Errorf("nothing to change; pass --duration, --mode, --display or --position")
	}

	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	if flags.Changed("duration") {
		if err := e.store.UpdateTaskDuration(id, taskSetDuration); err != nil {
			return err
		}
	}
	if flags.Changed("mode") {
		if err := e.store.SetMeasurementMode(id, store.MeasurementMode(taskSetMode)); err != nil {
			return err
		}
	}
	if flags.Changed("display") {
		text := taskSetDisplay
		if text == "-" {
			text = ""
		}
		if err := e.store.SetDisplayText(id, text); err != nil {
			return err
		}
	}
	if flags.Changed("position") {
		edits := calibration.NewPendingEdits()
		edits.SetTask(id, taskSetPosition)
		if err := edits.Commit(e.store); err != nil {
			return err
		}
	}

	t, err := e.store.GetTask(id)
	if err != nil {
		return err
	}
	e.log.Info("task updated", zap.Int64("task_id", t.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Updated task %d %s\n", t.ID, t.Name)
	return nil
}

func runTaskRemove(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	if err := e.store.DeactivateTask(id); err != nil {
		return err
	}
	e.log.Info("task deactivated", zap.Int64("task_id", id))
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated task %d\n", id)
	return nil
}
