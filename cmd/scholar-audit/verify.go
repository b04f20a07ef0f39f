// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/internal/filter"
	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/sinta"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify a list of names against SINTA",
	Long: `Verify searches SINTA for every name of a name list, keeps the accounts
whose affiliation matches sinta.affiliation_terms, and reads each account's
profile for its email, h-index, document count, and yearly publications.
An email on one of sinta.email_domains counts as institutional.

Requests are paced with the acquisition delays. Interrupting the run (Ctrl-C)
stops new searches; the names verified so far are still exported.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	verifyCmd.Flags().String("names", "", "name list (xlsx, csv, yaml, or text)")
	verifyCmd.Flags().String("out", "", "output file (default: <report-dir>/verify-<timestamp>.<format>)")
	verifyCmd.Flags().String("report-dir", "", "directory receiving the export")
	verifyCmd.Flags().String("format", "", "export format: xlsx, csv, json, or yaml")

	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	if cfg.Sinta.NamesFile == "" {
		return errors.New("no name list: set --names or sinta.names_file")
	}
	names, err := filter.ReadNames(cfg.Sinta.NamesFile)
	if err != nil {
		return fmt.Errorf("reading name list: %w", err)
	}
	if len(names) == 0 {
		return fmt.Errorf("name list %s is empty", cfg.Sinta.NamesFile)
	}
	logger.Info("loaded name list", zap.String("path", cfg.Sinta.NamesFile), zap.Int("names", len(names)))

	client, err := sinta.New(cfg.Sinta, logger.Named("sinta"))
	if err != nil {
		return err
	}
	a := cfg.Acquisition
	client.SetPacer(httputil.NewPacer(a.DelayMin, a.DelayMax, a.LongPauseEvery, a.LongPause))

	ctx, stop := signalContext(cmd)
	defer stop()

	v := sinta.NewVerifier(client, cfg.Sinta, logger.Named("verify"))
	rows, verr := v.Verify(ctx, names)
	if verr != nil && !errors.Is(verr, context.Canceled) {
		return verr
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = report.PrefixedPath(cfg.Report.Dir, "verify", cfg.Report.Format, time.Now())
	}
	if err := report.WriteVerification(out, v.Years(), rows); err != nil {
		return err
	}

	fmt.Println(report.SummaryTable(report.VerificationStats(rows)))
	fmt.Printf("Verification: %s\n", out)
	if verr != nil {
		return errors.New("verification interrupted; partial results were exported")
	}
	return nil
}
