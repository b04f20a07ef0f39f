// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-audit/internal/pipeline"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/scholar"
	"github.com/pdiddy/scholar-audit/internal/store"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full vetting pipeline and export a report",
	Long: `Run searches Google Scholar for profiles affiliated with the configured
targets, filters them, classifies every publication of the accepted profiles,
stores the results, and writes a report to the report directory.

Profiles already stored are skipped unless store.skip_processed is false.
Interrupting the run (Ctrl-C) stops new work; results classified so far are
stored and the report is still written.`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Int("max-candidates", 0, "search hits examined per query")
	runCmd.Flags().Int("max-publications", 0, "publications examined per profile")
	runCmd.Flags().Bool("lecturer-only", false, "accept only profiles whose role is lecturer")
	runCmd.Flags().Int("year-from", 0, "earliest publication year kept (0 = open)")
	runCmd.Flags().Int("year-to", 0, "latest publication year kept (0 = open)")
	runCmd.Flags().String("exclusions", "", "exclusion list (xlsx, csv, yaml, or text)")
	runCmd.Flags().String("db", "", "SQLite database path")
	runCmd.Flags().String("report-dir", "", "directory receiving the report")
	runCmd.Flags().String("format", "", "report format: xlsx, csv, json, or yaml")

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	client, err := scholar.New(cfg.Scholar, logger.Named("scholar"))
	if err != nil {
		return err
	}

	sum, err := pipeline.Run(ctx, pipeline.NewDeps(client, st, cfg, logger), cfg)
	fmt.Println(report.SummaryTable(sum.Stats()))
	if err != nil {
		return err
	}
	fmt.Printf("Report: %s\n", sum.ReportPath)
	if sum.Canceled {
		return errors.New("run interrupted; partial results were stored")
	}
	return nil
}
