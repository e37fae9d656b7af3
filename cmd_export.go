package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/export"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the individual and team sheets",
	Args:  cobra.NoArgs,
	RunE:  runExport,
}

var (
	exportScope  scopeFlags
	exportFormat string
	exportDir    string
)

func init() {
	rootCmd.AddCommand(exportCmd)
	exportScope.register(exportCmd)
	exportCmd.Flags().StringVar(&exportFormat, "format", "xlsx", "xlsx, csv or json")
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Output directory (default: export.dir)")
}

func runExport(cmd *cobra.Command, args []string) error {
	e, err := openCLI()
	if err != nil {
		return err
	}
	defer e.Close()

	scope, err := exportScope.resolve(e)
	if err != nil {
		return err
	}
	dir := exportDir
	if dir == "" {
		dir = e.cfg.Export.Dir
	}

	paths, err := export.Write(e.service(), scope, export.Format(exportFormat), dir)
	if err != nil {
		return err
	}

	for _, p := range paths {
		e.log.Info("export written", zap.String("path", p), zap.String("scope", scope.String()))
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
