// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-collector/internal/engine"
	"github.com/pdiddy/paper-collector/internal/export"
	"github.com/pdiddy/paper-collector/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <papers.json>",
	Short: "Re-render a saved JSON document as a workbook",
	Long: `Export loads a previously collected JSON document and writes it as a
formatted spreadsheet workbook, without running a new collection.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("output", "", "output directory (default ./results)")
	exportCmd.Flags().String("filename", "", "workbook filename (default papers_<timestamp>.xlsx)")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	st, err := store.New(cfg.Storage, os.Stderr)
	if err != nil {
		return err
	}
	exporter, err := export.New(cfg.Export, os.Stderr)
	if err != nil {
		return err
	}

	filename, _ := cmd.Flags().GetString("filename")
	e := engine.New(cfg, nil, st, exporter, os.Stderr)
	path, err := e.LoadAndExport(args[0], filename)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "Workbook: %s\n", path)
	return nil
}
