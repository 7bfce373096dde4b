package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// policyCmd prints the model-only policy impact block.
var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Show policy impacts (benefit cap, self-employment, carers)",
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
		results, err := builder.Years(cmd.Context(), cfg.Analysis.Years)
		if err != nil {
			return err
		}

		for _, res := range results {
			fmt.Printf("Tax year %d\n", res.Year)
			for _, row := range res.Policy {
				fmt.Printf("  %-20s %-24s %s\n", row.Category, row.Metric, fmtValue(row.Value, row.Unit))
			}
		}
		return nil
	},
}

func fmtValue(v float64, unit string) string {
	switch unit {
	case "£":
		return fmt.Sprintf("£%g", v)
	case "£m":
		return fmt.Sprintf("£%gm", v)
	case "£bn":
		return fmt.Sprintf("£%gbn", v)
	default:
		return fmt.Sprintf("%g%s", v, unit)
	}
}
