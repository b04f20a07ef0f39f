// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the scholar-audit CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/internal/config"
	"github.com/pdiddy/scholar-audit/internal/logging"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/secrets"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

const secretsDir = ".secrets/"

// Loaded by the root command before any subcommand runs.
var (
	cfg    types.PipelineConfig
	logger = zap.NewNop()
)

// rootCmd is the base command for the scholar-audit CLI.
var rootCmd = &cobra.Command{
	Use:   "scholar-audit",
	Short: "Vet Google Scholar profiles and publications for one institution",
	Long: `scholar-audit finds Google Scholar author profiles that claim an
affiliation with a target institution, filters out students, excluded names
and weak affiliation matches, and classifies each publication of the remaining
profiles by whether the owner is a listed author and whether the venue names
the institution.

Results are stored in a local SQLite database and exported as a report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == versionCmd {
			return nil
		}
		return loadConfig(cmd)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

var cfgUsed string

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./scholar-audit.yaml or ~/.config/scholar-audit/scholar-audit.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	used, err := config.Init(viper.GetViper(), cfgFile)
	if err != nil {
		cobra.CheckErr(err)
	}
	cfgUsed = used
}

// loadConfig decodes the configuration, applies command flags and secrets,
// and builds the logger.
func loadConfig(cmd *cobra.Command) error {
	c, err := config.Decode(viper.GetViper())
	if err != nil {
		return err
	}
	applyFlags(cmd, &c)
	if err := config.Validate(c); err != nil {
		return err
	}

	log, err := logging.New(c.Log)
	if err != nil {
		return err
	}
	if cfgUsed != "" {
		log.Info("using config file", zap.String("path", cfgUsed))
	}

	s, err := secrets.Load(secretsDir, log)
	if err != nil {
		return err
	}
	if len(s) > 0 {
		log.Info("loaded secrets", zap.Strings("keys", s.Keys()))
	}
	s.ApplyScholar(&c.Scholar)

	cfg, logger = c, log
	return nil
}

// applyFlags overrides configuration values with the flags the user set.
// Flags a command does not define are ignored.
func applyFlags(cmd *cobra.Command, c *types.PipelineConfig) {
	f := cmd.Flags()
	changed := func(name string) bool {
		return f.Lookup(name) != nil && f.Changed(name)
	}
	if changed("max-candidates") {
		c.Acquisition.MaxCandidates, _ = f.GetInt("max-candidates")
	}
	if changed("max-publications") {
		c.Classify.MaxPublications, _ = f.GetInt("max-publications")
	}
	if changed("lecturer-only") {
		c.Filter.LecturerOnly, _ = f.GetBool("lecturer-only")
	}
	if changed("year-from") {
		c.Classify.YearFrom, _ = f.GetInt("year-from")
	}
	if changed("year-to") {
		c.Classify.YearTo, _ = f.GetInt("year-to")
	}
	if changed("exclusions") {
		c.Filter.ExclusionFile, _ = f.GetString("exclusions")
	}
	if changed("names") {
		c.Sinta.NamesFile, _ = f.GetString("names")
	}
	if changed("db") {
		c.Store.Path, _ = f.GetString("db")
	}
	if changed("report-dir") {
		c.Report.Dir, _ = f.GetString("report-dir")
	}
	if changed("format") {
		format, _ := f.GetString("format")
		c.Report.Format = report.NormalizeFormat(format)
	}
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
