// Package config loads ucreport configuration from YAML with environment
// variable overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where Load looks when no --config flag is given.
const DefaultPath = "ucreport.yaml"

// Config holds all ucreport configuration.
type Config struct {
	Dataset   DatasetConfig      `yaml:"dataset"`
	Output    OutputConfig       `yaml:"output"`
	Analysis  AnalysisConfig     `yaml:"analysis"`
	Reference map[string]float64 `yaml:"reference_overrides"`
	Logging   LoggingConfig      `yaml:"logging"`
}

// DatasetConfig locates the microdata store.
type DatasetConfig struct {
	Path string `yaml:"path"`
}

// OutputConfig controls where result files land.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	Render bool   `yaml:"render"` // preview report.md in the terminal
}

// AnalysisConfig holds the aggregation thresholds.
type AnalysisConfig struct {
	Years                       []int   `yaml:"years"`
	WorkingAgeMin               int     `yaml:"working_age_min"`
	WorkingAgeMax               int     `yaml:"working_age_max"`
	ChildAgeLimit               int     `yaml:"child_age_limit"`
	SubstantialChildcareMonthly float64 `yaml:"substantial_childcare_monthly"`
	CloseMatchPct               float64 `yaml:"close_match_pct"`
	ModerateDiffPct             float64 `yaml:"moderate_diff_pct"`
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Dataset: DatasetConfig{
			Path: "data/ucreport.db",
		},
		Output: OutputConfig{
			Dir: "dashboard/public/data",
		},
		Analysis: AnalysisConfig{
			Years:                       []int{2025},
			WorkingAgeMin:               16,
			WorkingAgeMax:               64,
			ChildAgeLimit:               16,
			SubstantialChildcareMonthly: 190,
			CloseMatchPct:               10,
			ModerateDiffPct:             50,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration file at path, layered over the defaults and
// under the environment overrides. A missing file at the default path is
// fine; a missing file at an explicit path is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// defaults only
	default:
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides lets CI and the dashboard build override file settings.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("UCREPORT_DB"); v != "" {
		c.Dataset.Path = v
	}
	if v := os.Getenv("UCREPORT_OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("UCREPORT_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("UCREPORT_YEARS"); v != "" {
		var years []int
		for _, part := range strings.Split(v, ",") {
			year, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				continue
			}
			years = append(years, year)
		}
		if len(years) > 0 {
			c.Analysis.Years = years
		}
	}
}

// Validate rejects configurations the builders cannot run with.
func (c *Config) Validate() error {
	if c.Dataset.Path == "" {
		return fmt.Errorf("dataset.path must be set")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir must be set")
	}
	if len(c.Analysis.Years) == 0 {
		return fmt.Errorf("analysis.years must list at least one tax year")
	}
	if c.Analysis.WorkingAgeMin >= c.Analysis.WorkingAgeMax {
		return fmt.Errorf("analysis.working_age_min (%d) must be below working_age_max (%d)",
			c.Analysis.WorkingAgeMin, c.Analysis.WorkingAgeMax)
	}
	if c.Analysis.CloseMatchPct >= c.Analysis.ModerateDiffPct {
		return fmt.Errorf("analysis.close_match_pct (%v) must be below moderate_diff_pct (%v)",
			c.Analysis.CloseMatchPct, c.Analysis.ModerateDiffPct)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level)
	}
	return nil
}
