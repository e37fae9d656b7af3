package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/store"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage team members",
}

var userAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Register a team member",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserAdd,
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List team members",
	Args:  cobra.NoArgs,
	RunE:  runUserList,
}

var userRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Deactivate a team member, keeping their entries",
	Args:  cobra.ExactArgs(1),
	RunE:  runUserRemove,
}

var (
	userAddEmail string
	userAddAdmin bool
	userListAll  bool
)

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userAddCmd, userListCmd, userRemoveCmd)

	userAddCmd.Flags().StringVar(&userAddEmail, "email", "", "Email address")
	userAddCmd.Flags().BoolVar(&userAddAdmin, "admin", false, "Grant admin access")
	userListCmd.Flags().BoolVar(&userListAll, "all", false, "Include deactivated users")
}

func runUserAdd(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	level := store.AccessOps
	if userAddAdmin {
		level = store.AccessAdmin
	}
	u, err := e.store.CreateUser(args[0], userAddEmail, level)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	e.log.Info("user added", zap.Int64("user_id", u.ID), zap.String("access", string(u.AccessLevel)))
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s (%s)\n", u.Name, u.AccessLevel)
	return nil
}

func runUserList(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	users, err := e.store.ListUsers(userListAll)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	return writeUsers(cmd.OutOrStdout(), users)
}

func writeUsers(out io.Writer, users []store.User) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tACCESS\tACTIVE")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n", u.ID, u.Name, u.Email, u.AccessLevel, u.Active)
	}
	return w.Flush()
}

func runUserRemove(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.store.GetUserByName(args[0])
	if err != nil {
		return fmt.Errorf("find user %q: %w", args[0], err)
	}
	if err := e.store.DeactivateUser(u.ID); err != nil {
		return err
	}
	e.log.Info("user deactivated", zap.Int64("user_id", u.ID))
	fmt.Fprintf(cmd.OutOrStdout(), "Deactivated %s\n", u.Name)
	return nil
}

// lookupUser resolves an optional --user flag to an ID pointer.
func lookupUser(s *store.Store, name string) (*int64, error) {
	if name == "" {
		return nil, nil
	}
	u, err := s.GetUserByName(name)
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", name, err)
	}
	return &u.ID, nil
}
