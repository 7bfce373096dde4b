package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ucreport/internal/config"
)

// Version is stamped by the release build.
var Version = "1.2.0"

var (
	// Global flags
	verbose    bool
	configPath string
	outputDir  string
	years      []int

	logger *zap.Logger
	cfg    *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "ucreport",
	Short: "Universal Credit statistics: published figures vs model estimates",
	Long: `ucreport loads a pre-built tax-benefit microsimulation dataset, computes
a fixed set of Universal Credit statistics for the configured tax years,
compares them with the figures published in the Resolution Foundation's
"Listen and Learn" report, and writes CSV and Markdown files for the
dashboard.

Run "ucreport load <dir>" once to import a dataset, then "ucreport run".`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if outputDir != "" {
			cfg.Output.Dir = outputDir
		}
		if len(years) > 0 {
			cfg.Analysis.Years = years
		}

		zapCfg := zap.NewProductionConfig()
		level, err := zapcore.ParseLevel(cfg.Logging.Level)
		if err != nil {
			return fmt.Errorf("failed to parse log level: %w", err)
		}
		zapCfg.Level = zap.NewAtomicLevelAt(level)
		if verbose {
			zapCfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zapCfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default: ucreport.yaml)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "Output directory (overrides config)")
	rootCmd.PersistentFlags().IntSliceVar(&years, "year", nil, "Tax year(s) to compute (overrides config)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(elementsCmd)
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(reformCmd)
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
