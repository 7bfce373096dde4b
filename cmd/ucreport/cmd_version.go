package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"ucreport/internal/dataset"
)

// versionCmd reports the binary and dataset versions.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show ucreport and dataset versions",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("ucreport %s\n", Version)

		store, err := dataset.Open(cfg.Dataset.Path, logger)
		if err != nil {
			fmt.Println("dataset: not available")
			return nil
		}
		defer store.Close()

		fmt.Printf("dataset: %s (%s)\n", store.Version(), store.Path())
		stats, err := store.Stats()
		if err != nil {
			return err
		}
		tables := make([]string, 0, len(stats))
		for t := range stats {
			tables = append(tables, t)
		}
		sort.Strings(tables)
		for _, t := range tables {
			fmt.Printf("  %-16s %d rows\n", t, stats[t])
		}
		return nil
	},
}
