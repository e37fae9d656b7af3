package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/logger"
	"github.com/sadopc/prodtrack/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the terminal UI",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

var tuiUser string

func init() {
	rootCmd.AddCommand(tuiCmd)
	tuiCmd.Flags().StringVar(&tuiUser, "user", "", "User to sign in as")
}

func runTUI(cmd *cobra.Command, args []string) error {
	if tuiUser == "" {
		return fmt.Errorf("--user is required")
	}

	e, err := openEnv(logger.ForTUI)
	if err != nil {
		return err
	}
	defer e.Close()

	u, err := e.store.GetUserByName(tuiUser)
	if err != nil {
		return fmt.Errorf("sign in as %q: %w", tuiUser, err)
	}
	if !u.Active {
		return fmt.Errorf("user %q is deactivated", u.Name)
	}
	e.log.Info("tui started", zap.String("user", u.Name), zap.String("access", string(u.AccessLevel)))

	app := tui.NewApp(e.store, e.service(), u, tui.Options{
		Location:  e.loc,
		ExportDir: e.cfg.Export.Dir,
		Log:       e.log,
	})
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}
