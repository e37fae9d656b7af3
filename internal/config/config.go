package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"github.com/sadopc/prodtrack/internal/report"
	"github.com/sadopc/prodtrack/internal/store"
)

// Config holds all prodtrack configuration.
type Config struct {
	Database DatabaseConfig
	Timezone string
	Logger   LoggerConfig
	Export   ExportConfig
	Report   ReportConfig
}

type DatabaseConfig struct {
	Path string
}

type LoggerConfig struct {
	Level    string
	Encoding string
	// File receives log output; empty means stderr.
	File string
}

type ExportConfig struct {
	Dir string
}

type ReportConfig struct {
	Labels report.LabelMode
}

// Load reads configuration using Viper. An explicit path must exist;
// otherwise config.yaml is searched in the user config dir and the working
// directory, and a missing file leaves the defaults. PRODTRACK_ prefixed
// environment variables override both, with "." in keys written as "_".
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("prodtrack")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if dir, err := configDir(); err == nil {
			v.AddConfigPath(dir)
		}
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Database.Path = v.GetString("database.path")
	cfg.Timezone = v.GetString("timezone")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.File = v.GetString("logger.file")
	cfg.Export.Dir = v.GetString("export.dir")
	cfg.Report.Labels = report.LabelMode(v.GetString("report.labels"))

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Report.Labels {
	case report.LabelsLive, report.LabelsSnapshot:
	default:
		return fmt.Errorf("report.labels must be %q or %q, got %q", report.LabelsLive, report.LabelsSnapshot, c.Report.Labels)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return nil
}

// Location is the timezone every calendar date is taken in.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "prodtrack"), nil
}

func setDefaults(v *viper.Viper) {
	if p, err := store.DefaultDBPath(); err == nil {
		v.SetDefault("database.path", p)
	}
	v.SetDefault("timezone", "Australia/Sydney")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.file", "")
	v.SetDefault("export.dir", ".")
	v.SetDefault("report.labels", string(report.LabelsLive))
}
