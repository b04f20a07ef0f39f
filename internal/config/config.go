// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package config loads the pipeline configuration from a yaml file, the
// environment, and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/pdiddy/scholar-audit/internal/classify"
	"github.com/pdiddy/scholar-audit/internal/filter"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/sinta"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

const (
	// Name is the config file base name searched in the working directory
	// and in ~/.config/scholar-audit/.
	Name = "scholar-audit"

	// EnvPrefix prefixes environment overrides, e.g. SCHOLAR_AUDIT_STORE_PATH.
	EnvPrefix = "SCHOLAR_AUDIT"
)

// DefaultTarget is the institution matched when no targets are configured.
const DefaultTarget = "Universitas Islam Negeri Sunan Kalijaga"

// SetDefaults registers every key with its default so that environment
// overrides apply to all of them.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("targets", []string{DefaultTarget})
	v.SetDefault("queries", []string{})

	v.SetDefault("scoring.affiliation_threshold", filter.DefaultAffiliationThreshold)
	v.SetDefault("scoring.author_match_threshold", classify.DefaultAuthorMatchThreshold)
	v.SetDefault("scoring.venue_threshold", classify.DefaultVenueThreshold)

	v.SetDefault("acquisition.max_candidates", 30)
	v.SetDefault("acquisition.delay_min", time.Second)
	v.SetDefault("acquisition.delay_max", 5*time.Second)
	v.SetDefault("acquisition.long_pause_every", 0)
	v.SetDefault("acquisition.long_pause", time.Duration(0))
	v.SetDefault("acquisition.retry.max_attempts", 3)
	v.SetDefault("acquisition.retry.base_delay", 2*time.Second)
	v.SetDefault("acquisition.retry.multiplier", 2.0)
	v.SetDefault("acquisition.retry.max_delay", 10*time.Second)

	v.SetDefault("filter.lecturer_only", false)
	v.SetDefault("filter.exclusion_file", "daftar_kecuali.xlsx")
	v.SetDefault("filter.student_email_patterns", []string{"student.uin-suka.ac.id"})

	v.SetDefault("classify.max_publications", 75)
	v.SetDefault("classify.year_from", 0)
	v.SetDefault("classify.year_to", 0)
	v.SetDefault("classify.sdg_keywords", classify.DefaultSDGKeywords)

	v.SetDefault("scholar.base_url", "https://scholar.google.com")
	v.SetDefault("scholar.timeout", 30*time.Second)
	v.SetDefault("scholar.user_agent", "")
	v.SetDefault("scholar.language", "en")
	v.SetDefault("scholar.proxy_url", "")
	v.SetDefault("scholar.cookie", "")

	v.SetDefault("sinta.base_url", sinta.DefaultBaseURL)
	v.SetDefault("sinta.timeout", 30*time.Second)
	v.SetDefault("sinta.user_agent", "")
	v.SetDefault("sinta.names_file", "")
	v.SetDefault("sinta.affiliation_terms", sinta.DefaultAffiliationTerms)
	v.SetDefault("sinta.email_domains", sinta.DefaultEmailDomains)
	v.SetDefault("sinta.year_from", 2022)
	v.SetDefault("sinta.year_to", 2025)

	v.SetDefault("store.path", filepath.Join("data", "scholar-audit.db"))
	v.SetDefault("store.skip_processed", true)

	v.SetDefault("report.dir", "reports")
	v.SetDefault("report.format", report.FormatXLSX)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
}

// Init prepares v: defaults, environment binding, and the config file. An
// explicit cfgFile must exist; otherwise a missing default file is fine. It
// returns the path of the file read, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", Name))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Decode unmarshals v into a PipelineConfig and validates it.
func Decode(v *viper.Viper) (types.PipelineConfig, error) {
	var cfg types.PipelineConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Targets = compact(cfg.Targets)
	cfg.Queries = compact(cfg.Queries)
	cfg.Sinta.AffiliationTerms = compact(cfg.Sinta.AffiliationTerms)
	cfg.Sinta.EmailDomains = compact(cfg.Sinta.EmailDomains)
	cfg.Report.Format = report.NormalizeFormat(cfg.Report.Format)
	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration with every default applied.
func Default() types.PipelineConfig {
	v := viper.New()
	SetDefaults(v)
	cfg, _ := Decode(v)
	return cfg
}

// Validate reports every invalid setting at once.
func Validate(cfg types.PipelineConfig) error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf(format, args...))
		}
	}

	check(len(cfg.Targets) > 0, "targets: at least one target affiliation is required")

	for name, v := range map[string]int{
		"scoring.affiliation_threshold":  cfg.Scoring.AffiliationThreshold,
		"scoring.author_match_threshold": cfg.Scoring.AuthorMatchThreshold,
		"scoring.venue_threshold":        cfg.Scoring.VenueThreshold,
	} {
		check(v >= 0 && v <= 100, "%s: %d is outside 0-100", name, v)
	}

	a := cfg.Acquisition
	check(a.MaxCandidates > 0, "acquisition.max_candidates: must be positive, got %d", a.MaxCandidates)
	check(a.DelayMin >= 0 && a.DelayMax >= 0, "acquisition.delay_min/delay_max: must not be negative")
	check(a.DelayMin <= a.DelayMax, "acquisition.delay_min (%s) exceeds delay_max (%s)", a.DelayMin, a.DelayMax)
	check(a.LongPauseEvery >= 0 && a.LongPause >= 0, "acquisition.long_pause_every/long_pause: must not be negative")
	check(a.Retry.MaxAttempts >= 1, "acquisition.retry.max_attempts: must be at least 1, got %d", a.Retry.MaxAttempts)
	check(a.Retry.BaseDelay >= 0 && a.Retry.MaxDelay >= 0, "acquisition.retry: delays must not be negative")
	check(a.Retry.Multiplier >= 1, "acquisition.retry.multiplier: must be at least 1, got %g", a.Retry.Multiplier)

	c := cfg.Classify
	check(c.MaxPublications > 0, "classify.max_publications: must be positive, got %d", c.MaxPublications)
	check(c.YearFrom >= 0 && c.YearTo >= 0, "classify.year_from/year_to: must not be negative")
	check(c.YearFrom == 0 || c.YearTo == 0 || c.YearFrom <= c.YearTo,
		"classify.year_from (%d) is after year_to (%d)", c.YearFrom, c.YearTo)

	check(cfg.Scholar.Timeout >= 0, "scholar.timeout: must not be negative")
	sc := cfg.Sinta
	check(sc.Timeout >= 0, "sinta.timeout: must not be negative")
	check(len(sc.AffiliationTerms) > 0, "sinta.affiliation_terms: at least one term is required")
	check(sc.YearFrom > 0 && sc.YearFrom <= sc.YearTo,
		"sinta.year_from (%d) and year_to (%d): must be positive and ordered", sc.YearFrom, sc.YearTo)

	check(cfg.Store.Path != "", "store.path: must be set")
	check(cfg.Report.Format != "", "report.format: must be one of xlsx, csv, json, yaml")

	return errors.Join(errs...)
}

func compact(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
