// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-audit/internal/pipeline"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/scholar"
	"github.com/pdiddy/scholar-audit/internal/store"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify <scholar-id>",
	Short: "Classify the publications of one profile",
	Long: `Classify fetches one Google Scholar profile by its user ID and classifies
its publications without applying the profile filter. Use --persist to store
the results.`,
	Args: cobra.ExactArgs(1),
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Int("max-publications", 0, "publications examined")
	classifyCmd.Flags().Int("year-from", 0, "earliest publication year kept (0 = open)")
	classifyCmd.Flags().Int("year-to", 0, "latest publication year kept (0 = open)")
	classifyCmd.Flags().String("db", "", "SQLite database path")
	classifyCmd.Flags().Bool("persist", false, "store the classified publications")
	classifyCmd.Flags().Bool("json", false, "output records as JSON")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	client, err := scholar.New(cfg.Scholar, logger.Named("scholar"))
	if err != nil {
		return err
	}

	persist, _ := cmd.Flags().GetBool("persist")
	var st *store.Store
	if persist {
		if st, err = store.Open(cfg.Store.Path); err != nil {
			return err
		}
		defer st.Close()
	}
	deps := pipeline.NewDeps(client, st, cfg, logger)

	raw, err := client.FillAuthor(ctx, types.AuthorHandle{ID: args[0]})
	if err != nil {
		return fmt.Errorf("fetching profile %s: %w", args[0], err)
	}
	cand := deps.Acquirer.Candidate(raw)
	profile := cand.Accept()

	records, err := deps.Classifier.Classify(ctx, profile, cfg.Classify.MaxPublications, cfg.Classify.YearRange())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return err
		}
	} else {
		fmt.Printf("%s (%s)\n%s\nrole: %s, affiliation score: %d\n",
			profile.DisplayName, profile.ExternalID, profile.AffiliationText, cand.Role, cand.AffiliationScore)
		fmt.Println(report.RecordsTable(records))
	}

	if st != nil {
		persist := st.Persist
		if ctx.Err() != nil {
			persist = st.PersistPartial
		}
		n, err := persist(context.WithoutCancel(ctx), profile, records)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Stored %d new publication(s) in %s\n", n, cfg.Store.Path)
	}
	return nil
}
