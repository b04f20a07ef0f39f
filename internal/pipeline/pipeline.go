// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one vetting pass: acquire candidate profiles, filter
// them, classify each accepted profile's publications, persist the results,
// and export the report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/internal/acquire"
	"github.com/pdiddy/scholar-audit/internal/classify"
	"github.com/pdiddy/scholar-audit/internal/filter"
	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/internal/report"
	"github.com/pdiddy/scholar-audit/internal/store"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Source is a profile source usable by every stage.
type Source interface {
	acquire.Source
	classify.Source
}

// Deps are the stage implementations a run drives.
type Deps struct {
	Acquirer   *acquire.Acquirer
	Filter     *filter.Filter
	Classifier *classify.Classifier
	Store      *store.Store
	Log        *zap.Logger

	// Now stamps the report file name. Defaults to time.Now.
	Now func() time.Time
}

// pacedSource is a source that fetches follow-up pages on its own.
type pacedSource interface {
	SetPacer(p *httputil.Pacer)
}

// NewDeps wires the stages around src and st. Acquisition, classification
// and the source's own page fetches share one pacer so every call to the
// source is spaced out.
func NewDeps(src Source, st *store.Store, cfg types.PipelineConfig, log *zap.Logger) Deps {
	if log == nil {
		log = zap.NewNop()
	}
	a := cfg.Acquisition
	pacer := httputil.NewPacer(a.DelayMin, a.DelayMax, a.LongPauseEvery, a.LongPause)
	if ps, ok := src.(pacedSource); ok {
		ps.SetPacer(pacer)
	}
	return Deps{
		Acquirer:   acquire.New(src, a, cfg.Targets, log.Named("acquire")).WithPacer(pacer),
		Filter:     filter.New(cfg.Filter, cfg.Scoring.AffiliationThreshold, log.Named("filter")),
		Classifier: classify.New(src, cfg.Targets, cfg.Scoring, cfg.Classify, pacer, log.Named("classify")),
		Store:      st,
		Log:        log,
	}
}

// Summary counts what one run did.
type Summary struct {
	RunID string

	Queries    int
	Hits       int
	Candidates int
	FillFailed int

	Accepted int
	Rejected int
	Skipped  int

	Classified     int
	Incomplete     int
	ClassifyFailed int
	Publications   int
	Valid          int
	Doubtful       int

	Persisted     int
	PersistFailed int

	ReportPath string
	ReportRows int

	Canceled bool
	Elapsed  time.Duration
}

// Stats lists the counts in display order.
func (s Summary) Stats() []report.Stat {
	return []report.Stat{
		{Label: "Queries", Value: s.Queries},
		{Label: "Search hits", Value: s.Hits},
		{Label: "Candidates", Value: s.Candidates},
		{Label: "Fill failures", Value: s.FillFailed},
		{Label: "Accepted", Value: s.Accepted},
		{Label: "Rejected", Value: s.Rejected},
		{Label: "Already processed", Value: s.Skipped},
		{Label: "Profiles classified", Value: s.Classified},
		{Label: "Interrupted profiles", Value: s.Incomplete},
		{Label: "Classification failures", Value: s.ClassifyFailed},
		{Label: "Publications", Value: s.Publications},
		{Label: "Valid", Value: s.Valid},
		{Label: "Doubtful", Value: s.Doubtful},
		{Label: "New rows stored", Value: s.Persisted},
		{Label: "Persistence failures", Value: s.PersistFailed},
		{Label: "Report rows", Value: s.ReportRows},
	}
}

// Run executes the pipeline once. Per-item failures are logged and counted.
// Cancellation stops new work; records already classified are still stored
// and the report is still written. An error is returned only when the report
// cannot be produced or the store cannot be read.
func Run(ctx context.Context, deps Deps, cfg types.PipelineConfig) (Summary, error) {
	start := time.Now()
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	sum := Summary{RunID: uuid.NewString()}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", sum.RunID))

	excluded := filter.LoadExclusions(cfg.Filter.ExclusionFile, log)
	queries := acquire.BuildQueries(cfg.Queries, cfg.Targets)
	log.Info("run started", zap.Int("queries", len(queries)), zap.Int("excluded_names", excluded.Len()))

	batch := deps.Acquirer.AcquireAll(ctx, queries, cfg.Acquisition.MaxCandidates)
	sum.Queries = batch.Queries
	sum.Hits = batch.Total()
	sum.Candidates = len(batch.Candidates)
	sum.FillFailed = batch.Failed

	accepted, rejected := deps.Filter.Apply(batch.Candidates, excluded)
	sum.Accepted = len(accepted)
	sum.Rejected = len(rejected)
	log.Info("profiles filtered", zap.Int("accepted", sum.Accepted), zap.Int("rejected", sum.Rejected))

	// Writes after this point must survive cancellation.
	flushCtx := context.WithoutCancel(ctx)

	var processed map[string]bool
	if cfg.Store.SkipProcessed {
		var err error
		processed, err = deps.Store.ProcessedIDs(flushCtx)
		if err != nil {
			return sum, fmt.Errorf("reading processed profiles: %w", err)
		}
	}

	yr := cfg.Classify.YearRange()
	for _, p := range accepted {
		if ctx.Err() != nil {
			break
		}
		if processed[p.ExternalID] {
			sum.Skipped++
			log.Debug("profile already processed", zap.String("id", p.ExternalID))
			continue
		}
		plog := log.With(zap.String("profile", p.ExternalID))

		records, err := deps.Classifier.Classify(ctx, p, cfg.Classify.MaxPublications, yr)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			sum.ClassifyFailed++
			plog.Warn("skipping profile", zap.String("name", p.DisplayName), zap.Error(err))
			continue
		}
		sum.Classified++
		sum.Publications += len(records)
		for _, r := range records {
			if r.Status() == types.StatusValid {
				sum.Valid++
			} else {
				sum.Doubtful++
			}
		}

		persist := deps.Store.Persist
		if ctx.Err() != nil {
			// Interrupted mid-profile: keep what was classified but leave the
			// profile eligible for the next run.
			persist = deps.Store.PersistPartial
			sum.Incomplete++
		}
		n, err := persist(flushCtx, p, records)
		if err != nil {
			sum.PersistFailed++
			plog.Error("persisting profile failed", zap.Error(err))
			continue
		}
		sum.Persisted += n
		plog.Info("profile stored", zap.String("name", p.DisplayName),
			zap.Int("publications", len(records)), zap.Int("new", n))
	}

	if err := ctx.Err(); err != nil {
		sum.Canceled = true
		log.Warn("run interrupted, writing partial report", zap.Error(err))
	}

	path, rows, err := Export(flushCtx, deps.Store, cfg.Report, now())
	if err != nil {
		return sum, err
	}
	sum.ReportPath = path
	sum.ReportRows = rows
	sum.Elapsed = time.Since(start)
	log.Info("run finished", zap.String("report", path), zap.Int("rows", rows),
		zap.Int("persisted", sum.Persisted), zap.Bool("canceled", sum.Canceled), zap.Duration("elapsed", sum.Elapsed))
	return sum, nil
}

// Export writes every stored publication joined with its profile to a new
// report file under cfg.Dir and returns its path and row count.
func Export(ctx context.Context, st *store.Store, cfg types.ReportConfig, now time.Time) (string, int, error) {
	if st == nil {
		return "", 0, errors.New("no store configured")
	}
	rows, err := st.ReportRows(ctx)
	if err != nil {
		return "", 0, fmt.Errorf("reading report rows: %w", err)
	}
	path := report.DefaultPath(cfg.Dir, cfg.Format, now)
	if err := report.Write(path, rows); err != nil {
		return "", 0, fmt.Errorf("writing report: %w", err)
	}
	return path, len(rows), nil
}
