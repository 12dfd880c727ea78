// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-collector/internal/export"
	"github.com/pdiddy/paper-collector/internal/store"
)

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Union earlier sessions or workbooks into one output",
	Long: `Merge unions paper records across collection sessions or across
exported workbooks, de-duplicating by exact title. The first occurrence
of a title wins; later duplicates are dropped.`,
}

var mergeSessionsCmd = &cobra.Command{
	Use:   "sessions <session-id...>",
	Short: "Merge saved sessions into one JSON document",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMergeSessions,
}

var mergeWorkbooksCmd = &cobra.Command{
	Use:   "workbooks <file.xlsx...>",
	Short: "Merge exported workbooks into one workbook",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runMergeWorkbooks,
}

func init() {
	mergeSessionsCmd.Flags().String("output", "", "output directory (default ./results)")
	mergeSessionsCmd.Flags().String("filename", "merged.json", "merged document filename")
	mergeWorkbooksCmd.Flags().String("output", "", "output directory (default ./results)")
	mergeWorkbooksCmd.Flags().String("filename", "merged.xlsx", "merged workbook filename")

	mergeCmd.AddCommand(mergeSessionsCmd)
	mergeCmd.AddCommand(mergeWorkbooksCmd)
	rootCmd.AddCommand(mergeCmd)
}

func runMergeSessions(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	st, err := store.New(cfg.Storage, os.Stderr)
	if err != nil {
		return err
	}

	filename, _ := cmd.Flags().GetString("filename")
	path, err := st.MergeSessions(args, filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Merged document: %s\n", path)
	return nil
}

func runMergeWorkbooks(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	exporter, err := export.New(cfg.Export, os.Stderr)
	if err != nil {
		return err
	}

	filename, _ := cmd.Flags().GetString("filename")
	path, err := exporter.MergeWorkbooks(args, filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Merged workbook: %s\n", path)
	return nil
}
