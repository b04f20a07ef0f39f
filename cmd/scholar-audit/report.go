// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-audit/internal/pipeline"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/store"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Export the stored publications as a report",
	Long: `Report exports every stored publication joined with its profile, doubtful
rows first. The format follows --format, or the extension of --out when given.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().String("db", "", "SQLite database path")
	reportCmd.Flags().String("format", "", "report format: xlsx, csv, json, or yaml")
	reportCmd.Flags().String("report-dir", "", "directory receiving the report")
	reportCmd.Flags().String("out", "", "write the report to this path instead")
	reportCmd.Flags().Bool("print", false, "print the rows as a table")
	reportCmd.Flags().Int("limit", 50, "rows printed with --print (0 = all)")

	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	out, _ := cmd.Flags().GetString("out")
	var path string
	var n int
	if out != "" {
		rows, err := st.ReportRows(ctx)
		if err != nil {
			return err
		}
		if err := report.Write(out, rows); err != nil {
			return err
		}
		path, n = out, len(rows)
	} else {
		if path, n, err = pipeline.Export(ctx, st, cfg.Report, time.Now()); err != nil {
			return err
		}
	}

	stats, err := st.Counts(ctx)
	if err != nil {
		return err
	}
	fmt.Println(report.SummaryTable([]report.Stat{
		{Label: "Profiles", Value: stats.Profiles},
		{Label: "Publications", Value: stats.Publications},
		{Label: "Valid", Value: stats.Valid},
		{Label: "Doubtful", Value: stats.Doubtful},
	}))

	if show, _ := cmd.Flags().GetBool("print"); show {
		rows, err := st.ReportRows(ctx)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		fmt.Println(report.RowsTable(rows, limit))
	}
	fmt.Printf("Wrote %d row(s) to %s\n", n, path)
	return nil
}
