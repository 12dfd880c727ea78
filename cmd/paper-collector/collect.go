// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/paper-collector/internal/engine"
	"github.com/pdiddy/paper-collector/internal/export"
	"github.com/pdiddy/paper-collector/internal/secrets"
	"github.com/pdiddy/paper-collector/internal/store"
	"github.com/pdiddy/paper-collector/internal/summarize"
	"github.com/pdiddy/paper-collector/pkg/types"
)

var collectCmd = &cobra.Command{
	Use:   "collect [keywords...]",
	Short: "Search RISS and collect papers for the given keywords",
	Long: `Collect runs the full pipeline: search each keyword, filter for
open-access papers, enrich records from their detail pages, generate AI
summaries, and write the session's JSON document and workbooks.

The paper budget is split evenly across keywords. A first interrupt
(Ctrl-C) stops after the current keyword and keeps what was collected;
a second interrupt aborts.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().String("keywords", "", "search keywords (comma-separated, alternative to arguments)")
	collectCmd.Flags().Int("max-papers", 50, "total paper budget across all keywords")
	collectCmd.Flags().Bool("free-only", true, "collect only papers with an open-access signal")
	collectCmd.Flags().String("output", "", "output directory (default ./results)")
	collectCmd.Flags().String("backend", "", "summarizer backend: gemini or openai (default gemini)")
	collectCmd.Flags().String("model", "", "summarizer model (default per backend)")
	collectCmd.Flags().String("api-key", "", "summarizer API key (default from .secrets/)")
	collectCmd.Flags().Bool("no-summaries", false, "skip the AI summarization stage")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	keywords := args
	if len(keywords) == 0 {
		if list, _ := cmd.Flags().GetString("keywords"); list != "" {
			for _, kw := range strings.Split(list, ",") {
				if kw = strings.TrimSpace(kw); kw != "" {
					keywords = append(keywords, kw)
				}
			}
		}
	}
	if len(keywords) == 0 {
		keywords = viper.GetStringSlice("collect.keywords")
	}
	if len(keywords) == 0 {
		return fmt.Errorf("provide one or more search keywords")
	}

	cfg := pipelineConfig(cmd)
	if cmd.Flags().Changed("free-only") {
		cfg.Scraper.FreeOnly, _ = cmd.Flags().GetBool("free-only")
	}
	maxPapers, _ := cmd.Flags().GetInt("max-papers")

	st, err := store.New(cfg.Storage, os.Stderr)
	if err != nil {
		return err
	}
	exporter, err := export.New(cfg.Export, os.Stderr)
	if err != nil {
		return err
	}

	var summarizer *summarize.Summarizer
	noSummaries, _ := cmd.Flags().GetBool("no-summaries")
	switch {
	case noSummaries:
	case cfg.Summarizer.APIKey == "":
		fmt.Fprintln(os.Stderr, "warning: no API key found, skipping AI summaries")
	default:
		backend, err := summarize.NewBackend(cfg.Summarizer)
		if err != nil {
			return err
		}
		summarizer = summarize.New(backend, os.Stderr)
	}

	e := engine.New(cfg, summarizer, st, exporter, os.Stdout)
	e.AddObserver(engine.FuncObserver{
		Progress: func(percent int) {
			fmt.Fprintf(os.Stdout, "%3d%%\n", percent)
		},
		Error: func(message string) {
			fmt.Fprintf(os.Stderr, "error: %s\n", message)
		},
	})

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	task := e.Submit(ctx, keywords, maxPapers)

	interrupts := make(chan os.Signal, 2)
	signal.Notify(interrupts, os.Interrupt)
	defer signal.Stop(interrupts)

	go func() {
		select {
		case <-interrupts:
			fmt.Fprintln(os.Stderr, "interrupt: stopping after the current keyword (Ctrl-C again to abort)")
			task.Stop()
		case <-task.Done():
			return
		}
		select {
		case <-interrupts:
			cancel()
		case <-task.Done():
		}
	}()

	result := task.Wait()
	if !result.Success {
		return fmt.Errorf("collection failed: %s", result.Error)
	}

	printResult(os.Stdout, result)
	return nil
}

// printResult writes the session summary for a finished run.
func printResult(w io.Writer, result types.CollectionResult) {
	fmt.Fprintf(w, "\nCollected %d papers\n", result.Statistics.Total)
	fmt.Fprintf(w, "  with abstract: %d\n", result.Statistics.HasAbstract)
	fmt.Fprintf(w, "  with fulltext: %d\n", result.Statistics.HasFulltext)
	fmt.Fprintf(w, "  with summary:  %d\n", result.Statistics.HasSummary)
	fmt.Fprintf(w, "JSON:  %s\n", result.Files.JSON)
	fmt.Fprintf(w, "Excel: %s\n", result.Files.Excel)
	if result.Files.Report != "" {
		fmt.Fprintf(w, "Report: %s\n", result.Files.Report)
	}
}

// pipelineConfig layers the config file over the defaults, then flags
// over both.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetString("scraper.base_url"); v != "" {
		cfg.Scraper.BaseURL = v
	}
	if v := viper.GetInt("scraper.max_pages"); v > 0 {
		cfg.Scraper.MaxPages = v
	}
	if v := viper.GetDuration("scraper.navigation_timeout"); v > 0 {
		cfg.Scraper.NavigationTimeout = v
	}
	if v := viper.GetDuration("scraper.detail_delay"); v > 0 {
		cfg.Scraper.DetailDelay = v
	}
	if viper.IsSet("scraper.free_only") {
		cfg.Scraper.FreeOnly = viper.GetBool("scraper.free_only")
	}
	if v := viper.GetString("summarizer.backend"); v != "" {
		cfg.Summarizer.Backend = types.SummarizerBackend(v)
	}
	if v := viper.GetString("summarizer.model"); v != "" {
		cfg.Summarizer.Model = v
	}
	if v := viper.GetString("output_dir"); v != "" {
		cfg.Storage.OutputDir = v
		cfg.Export.OutputDir = v
	}

	if v, _ := cmd.Flags().GetString("output"); v != "" {
		cfg.Storage.OutputDir = v
		cfg.Export.OutputDir = v
	}
	if v, _ := cmd.Flags().GetString("backend"); v != "" {
		cfg.Summarizer.Backend = types.SummarizerBackend(strings.ToLower(v))
	}
	if v, _ := cmd.Flags().GetString("model"); v != "" {
		cfg.Summarizer.Model = v
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		apiKey = viper.GetString("api_key")
	}
	switch cfg.Summarizer.Backend {
	case types.BackendOpenAI:
		cfg.Summarizer.APIKey = secretDefault(secrets.OpenAIAPIKey, apiKey)
	default:
		cfg.Summarizer.APIKey = secretDefault(secrets.GeminiAPIKey, apiKey)
	}

	return cfg
}
