// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-collector/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats <papers.json>",
	Short: "Print aggregate counts for a saved JSON document",
	Args:  cobra.ExactArgs(1),
	RunE:  runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	st, err := store.New(cfg.Storage, os.Stderr)
	if err != nil {
		return err
	}

	stats := st.Statistics(args[0])
	fmt.Fprintf(os.Stdout, "Total papers:   %d\n", stats.Total)
	fmt.Fprintf(os.Stdout, "With abstract:  %d\n", stats.HasAbstract)
	fmt.Fprintf(os.Stdout, "With fulltext:  %d\n", stats.HasFulltext)
	fmt.Fprintf(os.Stdout, "With keywords:  %d\n", stats.HasKeywords)
	fmt.Fprintf(os.Stdout, "With summary:   %d\n", stats.HasSummary)

	years := make([]string, 0, len(stats.Years))
	for year := range stats.Years {
		years = append(years, year)
	}
	sort.Strings(years)
	for _, year := range years {
		fmt.Fprintf(os.Stdout, "From %s:      %d\n", year, stats.Years[year])
	}
	return nil
}
