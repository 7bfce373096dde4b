package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// elementsCmd prints the UC element breakdown without writing files.
var elementsCmd = &cobra.Command{
	Use:   "elements",
	Short: "Show UC expenditure by element (standard allowance, housing, ...)",
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
			for _, el := range res.Elements {
				fmt.Printf("  %-20s £%.1fbn  (%.1f%% of gross maximum)\n",
					el.Element, el.ExpenditureBn, el.PctGross)
			}
		}
		return nil
	},
}
