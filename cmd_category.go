package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/calibration"
	"github.com/sadopc/prodtrack/internal/store"
)

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "List, rename, remove or reorder categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List active categories in display order",
	Args:  cobra.NoArgs,
	RunE:  runCategoryList,
}

var categoryRenameCmd = &cobra.Command{
	Use:   "rename <old> <new>",
	Short: "Rename a category across all of its tasks",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoryRename,
}

var categoryRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Deactivate every task in a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCategoryRemove,
}

var categoryOrderCmd = &cobra.Command{
	Use:   "order <name> <position>",
	Short: "Set a category's display position",
	Args:  cobra.ExactArgs(2),
	RunE:  runCategoryOrder,
}

func init() {
	rootCmd.AddCommand(categoryCmd)
	categoryCmd.AddCommand(categoryListCmd, categoryRenameCmd, categoryRemoveCmd, categoryOrderCmd)
}

func runCategoryList(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	tasks, err := e.store.ListActiveTasks()
	if err != nil {
		return err
	}
	names := calibration.Names(calibration.Categories(tasks, nil))
	if len(names) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No categories.")
		return nil
	}
	for _, name := range names {
		fmt.Fprintln(cmd.OutOrStdout(), name)
	}
	return nil
}

func runCategoryRename(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	oldName := store.NormalizeCategory(args[0])
	if err := e.store.RenameCategory(oldName, args[1]); err != nil {
		return err
	}
	newName := store.NormalizeCategory(args[1])
	e.log.Info("category renamed", zap.String("from", oldName), zap.String("to", newName))
	fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", oldName, newName)
	return nil
}

func runCategoryRemove(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	name := store.NormalizeCategory(args[0])
	if err := e.store.DeactivateCategory(name); err != nil {
		return err
	}
	e.log.Info("category deactivated", zap.String("category", name))
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", name)
	return nil
}

func runCategoryOrder(cmd *cobra.Command, args []string) error {
	pos, err := strconv.Atoi(args[1])
	if err != nil || pos < 1 {
		return fmt.Errorf("invalid position %q", args[1])
	}
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	name := store.NormalizeCategory(args[0])
	tasks, err := e.store.ListActiveTasks()
	if err != nil {
		return err
	}
	if !calibration.Exists(calibration.Categories(tasks, nil), name) {
		return fmt.Errorf("category %q: %w", name, store.ErrNotFound)
	}

	edits := calibration.NewPendingEdits()
	edits.SetCategory(name, pos)
	if err := edits.Commit(e.store); err != nil {
		return err
	}
	e.log.Info("category reordered", zap.String("category", name), zap.Int("position", pos))
	fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to position %d\n", name, pos)
	return nil
}
