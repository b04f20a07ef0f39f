// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package classify decides, for each publication listed on an accepted
// profile, whether the profile owner is among its authors and whether the
// venue names the target institution.
package classify

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/internal/httputil"
	"github.com/pdiddy/scholar-audit/internal/similarity"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Default thresholds of the configuration.
const (
	DefaultAuthorMatchThreshold = 80
	DefaultVenueThreshold       = 75
)

// DefaultSDGKeywords flag titles related to the Sustainable Development
// Goals, in English and Indonesian.
var DefaultSDGKeywords = []string{
	"sustainable development", "climate change", "poverty", "gender equality",
	"clean energy", "quality education", "zero hunger", "life on land",
	"life below water", "partnerships", "inequality", "green economy",
	"sustainable cities", "responsible consumption", "clean water",
	"pembangunan berkelanjutan", "perubahan iklim", "kemiskinan", "kesetaraan gender",
	"energi bersih", "pendidikan berkualitas", "tanpa kelaparan", "kehidupan di darat",
	"kehidupan bawah laut", "kemitraan", "pengurangan ketimpangan",
	"ekonomi hijau", "kota berkelanjutan", "konsumsi bertanggung jawab", "air bersih",
	"sanitasi layak", "pertumbuhan ekonomi", "iklim", "lingkungan", "keadilan sosial",
}

// Source is the part of the profile source classification needs.
type Source interface {
	ListPublications(ctx context.Context, authorID string, limit int) ([]types.PublicationRef, error)
	FillPublication(ctx context.Context, ref types.PublicationRef) (types.RawPublication, error)
}

// Classifier turns a profile's publication list into classified records.
type Classifier struct {
	src             Source
	pacer           *httputil.Pacer
	scorer          similarity.Scorer
	targets         []string
	authorThreshold int
	venueThreshold  int
	sdgKeywords     []string
	log             *zap.Logger
}

// New builds a Classifier. Thresholds are used as given.
func New(src Source, targets []string, scoring types.ScoringConfig, cfg types.ClassifyConfig, pacer *httputil.Pacer, log *zap.Logger) *Classifier {
	if log == nil {
		log = zap.NewNop()
	}
	var sdg []string
	for _, k := range cfg.SDGKeywords {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			sdg = append(sdg, k)
		}
	}
	return &Classifier{
		src:             src,
		pacer:           pacer,
		scorer:          similarity.Fuzzy{},
		targets:         targets,
		authorThreshold: scoring.AuthorMatchThreshold,
		venueThreshold:  scoring.VenueThreshold,
		sdgKeywords:     sdg,
		log:             log,
	}
}

// Classify lists up to maxPublications publications of profile and
// classifies each one. A listing failure is returned as an error. Fill
// failures and malformed publications are logged and skipped. Numeric years
// outside yr are dropped when yr is set. Cancellation returns the records
// collected so far with a nil error.
func (c *Classifier) Classify(ctx context.Context, profile types.AcceptedProfile, maxPublications int, yr *types.YearRange) ([]types.PublicationRecord, error) {
	if err := c.pacer.Wait(ctx); err != nil {
		return nil, nil
	}
	refs, err := c.src.ListPublications(ctx, profile.ExternalID, maxPublications)
	if err != nil {
		return nil, fmt.Errorf("listing publications for %s: %w", profile.ExternalID, err)
	}
	if maxPublications > 0 && len(refs) > maxPublications {
		refs = refs[:maxPublications]
	}

	records := make([]types.PublicationRecord, 0, len(refs))
	for i, ref := range refs {
		if err := c.pacer.Wait(ctx); err != nil {
			break
		}
		raw, err := c.src.FillPublication(ctx, ref)
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			c.log.Warn("skipping publication", zap.String("profile", profile.ExternalID),
				zap.Int("index", i+1), zap.String("citation", ref.CitationID), zap.Error(err))
			continue
		}
		if raw.URL == "" {
			raw.URL = ref.URL
		}
		rec, ok := c.Record(profile, raw, yr)
		if !ok {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// Record classifies one filled publication. It reports false when the
// publication has no title or its numeric year lies outside yr.
func (c *Classifier) Record(owner types.AcceptedProfile, raw types.RawPublication, yr *types.YearRange) (types.PublicationRecord, bool) {
	title := strings.Join(strings.Fields(raw.Title), " ")
	if title == "" {
		c.log.Warn("dropping publication without title", zap.String("profile", owner.ExternalID), zap.String("url", raw.URL))
		return types.PublicationRecord{}, false
	}
	year := types.ParseYear(raw.Year)
	if yr != nil && year.IsNumeric() && !yr.Contains(year.Number) {
		c.log.Debug("publication outside year range", zap.String("title", title), zap.Int("year", year.Number))
		return types.PublicationRecord{}, false
	}

	authors := ParseAuthors(raw.Authors)
	venue := strings.TrimSpace(raw.Venue)
	return types.PublicationRecord{
		Title:            title,
		Authors:          authors,
		Year:             year,
		Venue:            venue,
		SourceURL:        strings.TrimSpace(raw.URL),
		NameMatch:        NameMatch(c.scorer, owner.DisplayName, authors, c.authorThreshold),
		AffiliationMatch: AffiliationMatch(c.scorer, venue, c.targets, c.venueThreshold),
		SDGRelated:       SDGRelated(title, c.sdgKeywords),
	}, true
}

var authorSeparators = regexp.MustCompile(`, | and | & `)

// ParseAuthors splits an author string on ", ", " and ", and " & ". Empty
// input yields an empty list; blank names are dropped.
func ParseAuthors(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	parts := authorSeparators.Split(s, -1)
	authors := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			authors = append(authors, p)
		}
	}
	return authors
}

// NameMatch reports whether any author scores at least threshold against
// the owner name under the subset score.
func NameMatch(s similarity.Scorer, owner string, authors []string, threshold int) bool {
	for _, a := range authors {
		if s.TokenSet(owner, a) >= threshold {
			return true
		}
	}
	return false
}

// AffiliationMatch reports whether any target scores strictly above
// threshold inside the venue text.
func AffiliationMatch(s similarity.Scorer, venue string, targets []string, threshold int) bool {
	for _, t := range targets {
		if s.Partial(t, venue) > threshold {
			return true
		}
	}
	return false
}

// SDGRelated reports whether title contains any keyword, ignoring case.
func SDGRelated(title string, keywords []string) bool {
	t := strings.ToLower(title)
	for _, k := range keywords {
		if k != "" && strings.Contains(t, strings.ToLower(k)) {
			return true
		}
	}
	return false
}
