package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ucreport/internal/output"
)

var (
	reformElement string
	reformFactor  float64
)

// reformCmd computes the cost delta of scaling one UC element.
var reformCmd = &cobra.Command{
	Use:   "reform",
	Short: "Compute the cost delta of scaling a UC element",
	Long: `Scales one UC element by a factor and reports baseline cost, reformed
cost and the delta per configured tax year, writing reform.csv alongside
the other dashboard files.

Example:
  ucreport reform --element uc_child_element --factor 1.1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if reformFactor <= 0 {
			return fmt.Errorf("--factor must be positive, got %g", reformFactor)
		}

		store, m, err := openModel()
		if err != nil {
			return err
		}
		defer store.Close()

		builder, err := newBuilder(m)
		if err != nil {
			return err
		}

		logger.Info("computing reform delta",
			zap.String("element", reformElement),
			zap.Float64("factor", reformFactor),
			zap.Ints("years", cfg.Analysis.Years))

		results, err := builder.ReformDelta(cmd.Context(), reformElement, reformFactor, cfg.Analysis.Years)
		if err != nil {
			return err
		}

		writer, err := output.NewWriter(cfg.Output.Dir, logger)
		if err != nil {
			return err
		}
		path, err := writer.WriteReform(results)
		if err != nil {
			return err
		}

		for _, r := range results {
			fmt.Printf("%d  baseline £%.2fbn  reformed £%.2fbn  delta £%+.2fbn\n",
				r.Year, r.BaselineBn, r.ReformedBn, r.DeltaBn)
		}
		fmt.Printf("Saved: %s\n", path)
		return nil
	},
}

func init() {
	reformCmd.Flags().StringVar(&reformElement, "element", "", "UC element variable to scale (required)")
	reformCmd.Flags().Float64Var(&reformFactor, "factor", 1.0, "Scale factor, e.g. 1.1 for +10%")
	reformCmd.MarkFlagRequired("element")
}
