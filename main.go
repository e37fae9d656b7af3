package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sadopc/prodtrack/internal/config"
	"github.com/sadopc/prodtrack/internal/logger"
	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "prodtrack",
	Short:        "Team productivity tracking against a 7.5 hour workday",
	SilenceUsage: true,
	RunE:         runTUI,
}

var (
	configPath string
	dbPath     string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: config.yaml in the user config dir)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Database path, overriding database.path")
	rootCmd.Flags().StringVar(&tuiUser, "user", "", "User to sign in as")
}

// env is what every command needs once configuration is loaded.
type env struct {
	cfg   *config.Config
	log   *zap.Logger
	store *store.Store
	loc   *time.Location
}

func (e *env) Close() {
	e.log.Sync()
	e.store.Close()
}

func (e *env) service() *report.Service {
	return report.NewService(e.store, e.log, e.cfg.Report.Labels)
}

func (e *env) today() time.Time {
	return report.Today(time.Now(), e.loc)
}

// openEnv loads config, then builds the logger with build and opens the store.
func openEnv(build func(config.LoggerConfig, string) (*zap.Logger, error)) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	log, err := build(cfg.Logger, cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	s, err := store.New(cfg.Database.Path)
	if err != nil {
		log.Error("open database", zap.String("path", cfg.Database.Path), zap.Error(err))
		log.Sync()
		return nil, fmt.Errorf("open database: %w", err)
	}
	log.Debug("database opened", zap.String("path", cfg.Database.Path))

	return &env{cfg: cfg, log: log, store: s, loc: loc}, nil
}

// openCLI is openEnv with logs on stderr.
func openCLI() (*env, error) {
	return openEnv(func(c config.LoggerConfig, _ string) (*zap.Logger, error) {
		return logger.New(c)
	})
}
