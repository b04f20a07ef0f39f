// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package acquire searches the profile source for authors matching an
// affiliation query and turns each hit into a scored candidate profile.
package acquire

import (
	"context"
	"errors"
	"iter"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/internal/similarity"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Source is the part of the profile source acquisition needs.
type Source interface {
	// SearchAuthors yields search hits lazily. An error ends the sequence.
	SearchAuthors(ctx context.Context, query string) iter.Seq2[types.AuthorHandle, error]

	// FillAuthor fetches the basic profile fields behind a hit.
	FillAuthor(ctx context.Context, h types.AuthorHandle) (types.RawProfile, error)
}

// BatchResult holds the outcome of acquiring candidates for several queries.
type BatchResult struct {
	Candidates []types.CandidateProfile
	Queries    int
	Hits       int
	Failed     int
}

// Total returns the number of search hits examined.
func (r BatchResult) Total() int {
	return r.Hits
}

// HasFailures reports whether any hit could not be filled.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Acquirer runs bounded, paced, retried author searches.
type Acquirer struct {
	src     Source
	policy  httputil.Policy
	pacer   *httputil.Pacer
	targets []string
	scorer  similarity.Scorer
	log     *zap.Logger
}

// New builds an Acquirer from the acquisition settings and the target
// affiliations.
func New(src Source, cfg types.AcquisitionConfig, targets []string, log *zap.Logger) *Acquirer {
	if log == nil {
		log = zap.NewNop()
	}
	policy := httputil.Policy{
		MaxAttempts: cfg.Retry.MaxAttempts,
		BaseDelay:   cfg.Retry.BaseDelay,
		Multiplier:  cfg.Retry.Multiplier,
		MaxDelay:    cfg.Retry.MaxDelay,
	}
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		log.Warn("author search failed, retrying",
			zap.Int("attempt", attempt), zap.Duration("backoff", delay), zap.Error(err))
	}
	return &Acquirer{
		src:     src,
		policy:  policy,
		pacer:   httputil.NewPacer(cfg.DelayMin, cfg.DelayMax, cfg.LongPauseEvery, cfg.LongPause),
		targets: targets,
		scorer:  similarity.Fuzzy{},
		log:     log,
	}
}

// WithPacer replaces the pacer. A nil pacer disables pauses.
func (a *Acquirer) WithPacer(p *httputil.Pacer) *Acquirer {
	a.pacer = p
	return a
}

// Acquire returns at most maxResults candidates for query. It never fails:
// search errors are retried by the policy and then degrade to an empty
// result, fill errors drop the single hit, and cancellation returns what was
// collected so far.
func (a *Acquirer) Acquire(ctx context.Context, query string, maxResults int) []types.CandidateProfile {
	cands, _, _ := a.acquire(ctx, query, maxResults)
	return cands
}

// AcquireAll runs every query in order and concatenates the candidates.
// Queries that yield nothing do not stop the batch; cancellation does.
func (a *Acquirer) AcquireAll(ctx context.Context, queries []string, maxResults int) BatchResult {
	var res BatchResult
	for _, q := range queries {
		if ctx.Err() != nil {
			break
		}
		res.Queries++
		cands, hits, failed := a.acquire(ctx, q, maxResults)
		res.Candidates = append(res.Candidates, cands...)
		res.Hits += hits
		res.Failed += failed
		a.log.Info("query done", zap.String("query", q),
			zap.Int("hits", hits), zap.Int("candidates", len(cands)), zap.Int("failed", failed))
	}
	return res
}

func (a *Acquirer) acquire(ctx context.Context, query string, maxResults int) (cands []types.CandidateProfile, hits, failed int) {
	if maxResults <= 0 {
		return nil, 0, 0
	}

	handles, err := a.search(ctx, query, maxResults)
	if err != nil {
		if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
			a.log.Error("author search gave up", zap.String("query", query), zap.Error(err))
		}
		return nil, 0, 0
	}

	for _, h := range handles {
		if err := a.pacer.Wait(ctx); err != nil {
			break
		}
		raw, err := a.src.FillAuthor(ctx, h)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			failed++
			a.log.Warn("skipping candidate", zap.String("id", h.ID), zap.String("name", h.Name), zap.Error(err))
			continue
		}
		c := a.Candidate(raw)
		cands = append(cands, c)
		a.log.Debug("candidate", zap.String("id", c.ExternalID), zap.String("name", c.DisplayName),
			zap.String("role", string(c.Role)), zap.Int("affiliation_score", c.AffiliationScore))
	}
	return cands, len(handles), failed
}

// search collects up to maxResults hits. An error before the first hit is
// returned to the policy for a retry; an error after at least one hit ends
// the search with the partial list.
func (a *Acquirer) search(ctx context.Context, query string, maxResults int) ([]types.AuthorHandle, error) {
	var handles []types.AuthorHandle
	err := a.policy.Do(ctx, func(ctx context.Context) error {
		handles = handles[:0]
		if err := a.pacer.Wait(ctx); err != nil {
			return err
		}
		for h, err := range a.src.SearchAuthors(ctx, query) {
			if err != nil {
				if len(handles) == 0 {
					return err
				}
				a.log.Warn("author search ended early", zap.String("query", query),
					zap.Int("hits", len(handles)), zap.Error(err))
				return nil
			}
			handles = append(handles, h)
			if len(handles) >= maxResults {
				break
			}
		}
		return nil
	})
	return handles, err
}

// Candidate normalizes a filled profile and scores its affiliation.
func (a *Acquirer) Candidate(raw types.RawProfile) types.CandidateProfile {
	aff := strings.ToLower(strings.TrimSpace(raw.Affiliation))
	email := strings.ToLower(strings.TrimSpace(raw.Email))
	return types.CandidateProfile{
		ExternalID:       strings.TrimSpace(raw.ID),
		DisplayName:      strings.TrimSpace(raw.Name),
		AffiliationText:  aff,
		Email:            email,
		Role:             DeriveRole(aff, email),
		AffiliationScore: AffiliationScore(a.scorer, aff, a.targets),
	}
}

// AffiliationScore is the best order-insensitive score of affiliation
// against any target.
func AffiliationScore(s similarity.Scorer, affiliation string, targets []string) int {
	best := 0
	for _, t := range targets {
		best = max(best, s.TokenSort(affiliation, t))
	}
	return best
}
