package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ucreport/internal/output"
)

var renderReport bool

// runCmd computes everything and writes the dashboard files.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compute all statistics and write the dashboard CSVs and report.md",
	Long: `Computes the full comparison for every configured tax year and writes
comparison.csv, policy_impacts.csv, uc_elements.csv, metadata.csv and
report.md into the output directory, then prints a summary table.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, m, err := openModel()
		if err != nil {
			return err
		}
		defer store.Close()

		builder, err := newBuilder(m)
		if err != nil {
			return err
		}

		years := cfg.Analysis.Years
		logger.Info("computing comparison",
			zap.Ints("years", years),
			zap.String("model_version", m.Version()))

		results, err := builder.Years(cmd.Context(), years)
		if err != nil {
			return err
		}
		meta := builder.Metadata(years, m.Version())

		writer, err := output.NewWriter(cfg.Output.Dir, logger)
		if err != nil {
			return err
		}
		paths, err := writer.WriteAll(results, meta)
		if err != nil {
			return err
		}

		fmt.Println(output.Summary(results))
		for _, p := range paths {
			fmt.Printf("Saved: %s\n", p)
		}
		if renderReport || cfg.Output.Render {
			fmt.Println(output.RenderTerminal(output.RenderMarkdown(results, meta)))
		}
		return nil
	},
}

func init() {
	runCmd.Flags().BoolVar(&renderReport, "render", false, "Preview report.md in the terminal")
}
