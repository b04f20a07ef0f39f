// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-audit/internal/acquire"
	"github.com/pdiddy/scholar-audit/internal/filter"
	"github.com/pdiddy/scholar-audit/internal/pipeline"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/scholar"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

var candidatesCmd = &cobra.Command{
	Use:   "candidates [query...]",
	Short: "Search and filter author profiles without classifying publications",
	Long: `Candidates runs the search and filter stages only and prints the accepted
and rejected profiles. Queries given as arguments replace the configured ones.
Nothing is stored.`,
	RunE: runCandidates,
}

func init() {
	candidatesCmd.Flags().Int("max-candidates", 0, "search hits examined per query")
	candidatesCmd.Flags().Bool("lecturer-only", false, "accept only profiles whose role is lecturer")
	candidatesCmd.Flags().String("exclusions", "", "exclusion list (xlsx, csv, yaml, or text)")
	candidatesCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(candidatesCmd)
}

type candidatesOutput struct {
	Accepted []types.AcceptedProfile `json:"accepted"`
	Rejected []filter.Rejection      `json:"rejected"`
}

func runCandidates(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	client, err := scholar.New(cfg.Scholar, logger.Named("scholar"))
	if err != nil {
		return err
	}
	deps := pipeline.NewDeps(client, nil, cfg, logger)

	queries := cfg.Queries
	if len(args) > 0 {
		queries = args
	}
	queries = acquire.BuildQueries(queries, cfg.Targets)
	excluded := filter.LoadExclusions(cfg.Filter.ExclusionFile, logger)
	batch := deps.Acquirer.AcquireAll(ctx, queries, cfg.Acquisition.MaxCandidates)
	accepted, rejected := deps.Filter.Apply(batch.Candidates, excluded)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidatesOutput{Accepted: accepted, Rejected: rejected})
	}

	if len(accepted) == 0 {
		fmt.Println("No profiles accepted.")
	} else {
		rows := make([][]string, 0, len(accepted))
		for _, p := range accepted {
			rows = append(rows, []string{p.ExternalID, p.DisplayName, p.AffiliationText, p.Email})
		}
		fmt.Println(report.Table([]string{"Scholar ID", "Name", "Affiliation", "Email"}, rows, nil))
	}

	if len(rejected) > 0 {
		rows := make([][]string, 0, len(rejected))
		for _, r := range rejected {
			c := r.Candidate
			rows = append(rows, []string{c.ExternalID, c.DisplayName, string(r.Reason), strconv.Itoa(c.AffiliationScore)})
		}
		fmt.Println(report.Table([]string{"Scholar ID", "Name", "Reason", "Score"}, rows,
			[]report.Align{report.AlignLeft, report.AlignLeft, report.AlignLeft, report.AlignRight}))
	}
	fmt.Printf("%d queries, %d hits, %d accepted, %d rejected\n",
		batch.Queries, batch.Total(), len(accepted), len(rejected))
	return nil
}
