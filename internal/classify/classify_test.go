// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package classify

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/scholar-audit/internal/similarity"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

var errFill = errors.New("fill failed")

type fakeSource struct {
	refs    []types.PublicationRef
	pubs    map[string]types.RawPublication
	listErr error
	fillErr map[string]error
	limit   int
	filled  []string
	onFill  func(id string)
}

func (f *fakeSource) ListPublications(_ context.Context, _ string, limit int) ([]types.PublicationRef, error) {
	f.limit = limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.refs, nil
}

func (f *fakeSource) FillPublication(_ context.Context, ref types.PublicationRef) (types.RawPublication, error) {
	f.filled = append(f.filled, ref.CitationID)
	if f.onFill != nil {
		f.onFill(ref.CitationID)
	}
	if err := f.fillErr[ref.CitationID]; err != nil {
		return types.RawPublication{}, err
	}
	return f.pubs[ref.CitationID], nil
}

var owner = types.AcceptedProfile{ExternalID: "AAA111", DisplayName: "Ahmad Rafiq"}

const venueUIN = "Jurnal Living Hadis UIN Sunan Kalijaga"

var defaultScoring = types.ScoringConfig{
	AuthorMatchThreshold: DefaultAuthorMatchThreshold,
	VenueThreshold:       DefaultVenueThreshold,
}

func newClassifier(src Source, log *zap.Logger) *Classifier {
	return New(src, []string{"UIN Sunan Kalijaga"}, defaultScoring, types.ClassifyConfig{SDGKeywords: DefaultSDGKeywords}, nil, log)
}

func refs(ids ...string) []types.PublicationRef {
	var out []types.PublicationRef
	for _, id := range ids {
		out = append(out, types.PublicationRef{AuthorID: owner.ExternalID, CitationID: id, URL: "https://example.test/" + id})
	}
	return out
}

func TestParseAuthors(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"A, B and C & D", []string{"A", "B", "C", "D"}},
		{"", []string{}},
		{"   ", []string{}},
		{"Ahmad Rafiq", []string{"Ahmad Rafiq"}},
		{"A Rafiq, , B Santoso", []string{"A Rafiq", "B Santoso"}},
		{"Anderson, Sandy", []string{"Anderson", "Sandy"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAuthors(tt.in), "ParseAuthors(%q)", tt.in)
	}
}

func TestStatusTruthTable(t *testing.T) {
	tests := []struct {
		authors string
		venue   string
		name    bool
		aff     bool
		status  types.Status
	}{
		{"Ahmad Rafiq, B Santoso", venueUIN, true, true, types.StatusValid},
		{"Ahmad Rafiq", "IEEE Access", true, false, types.StatusDoubtful},
		{"Budi Santoso", venueUIN, false, true, types.StatusDoubtful},
		{"Budi Santoso", "IEEE Access", false, false, types.StatusDoubtful},
	}
	c := newClassifier(&fakeSource{}, nil)
	for _, tt := range tests {
		rec, ok := c.Record(owner, types.RawPublication{Title: "Some Title", Authors: tt.authors, Venue: tt.venue}, nil)
		require.True(t, ok)
		assert.Equal(t, tt.name, rec.NameMatch, "name match for %q", tt.authors)
		assert.Equal(t, tt.aff, rec.AffiliationMatch, "affiliation match for %q", tt.venue)
		assert.Equal(t, tt.status, rec.Status())
	}
}

func TestRecord_YearRange(t *testing.T) {
	c := newClassifier(&fakeSource{}, nil)
	yr := &types.YearRange{From: 2022, To: 2025}

	_, ok := c.Record(owner, types.RawPublication{Title: "Old", Year: "2021"}, yr)
	assert.False(t, ok)

	rec, ok := c.Record(owner, types.RawPublication{Title: "Undated", Year: "n.d."}, yr)
	require.True(t, ok)
	assert.Equal(t, "n.d.", rec.Year.String())

	rec, ok = c.Record(owner, types.RawPublication{Title: "Unknown"}, yr)
	require.True(t, ok)
	assert.Equal(t, types.UnknownYear, rec.Year.String())

	rec, ok = c.Record(owner, types.RawPublication{Title: "Edge", Year: " 2025 "}, yr)
	require.True(t, ok)
	assert.Equal(t, 2025, rec.Year.Number)

	_, ok = c.Record(owner, types.RawPublication{Title: "Old", Year: "2021"}, nil)
	assert.True(t, ok)
}

func TestRecord_BlankTitleDropped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	c := newClassifier(&fakeSource{}, zap.New(core))

	_, ok := c.Record(owner, types.RawPublication{Title: "  ", Authors: "Ahmad Rafiq"}, nil)

	assert.False(t, ok)
	assert.Equal(t, 1, logs.FilterMessage("dropping publication without title").Len())
}

func TestRecord_SDGTagging(t *testing.T) {
	c := newClassifier(&fakeSource{}, nil)
	rec, _ := c.Record(owner, types.RawPublication{Title: "Dampak Perubahan Iklim terhadap Petani"}, nil)
	assert.True(t, rec.SDGRelated)

	rec, _ = c.Record(owner, types.RawPublication{Title: "Living Hadith in Javanese Society"}, nil)
	assert.False(t, rec.SDGRelated)

	off := New(&fakeSource{}, nil, types.ScoringConfig{}, types.ClassifyConfig{}, nil, nil)
	rec, _ = off.Record(owner, types.RawPublication{Title: "Climate Change and Poverty"}, nil)
	assert.False(t, rec.SDGRelated)
}

func TestClassify_IsolatesFillFailures(t *testing.T) {
	src := &fakeSource{
		refs: refs("c1", "c2", "c3", "c4"),
		pubs: map[string]types.RawPublication{
			"c1": {Title: "First", Authors: "Ahmad Rafiq", Venue: venueUIN, Year: "2023"},
			"c3": {Title: "", Authors: "Ahmad Rafiq"},
			"c4": {Title: "Fourth", Authors: "Budi Santoso", Year: "2024"},
		},
		fillErr: map[string]error{"c2": errFill},
	}

	got, err := newClassifier(src, nil).Classify(context.Background(), owner, 75, nil)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "First", got[0].Title)
	assert.Equal(t, types.StatusValid, got[0].Status())
	assert.Equal(t, "https://example.test/c1", got[0].SourceURL)
	assert.Equal(t, "Fourth", got[1].Title)
	assert.Equal(t, types.StatusDoubtful, got[1].Status())
	assert.Equal(t, 75, src.limit)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, src.filled)
}

func TestClassify_CapsPublications(t *testing.T) {
	src := &fakeSource{refs: refs("c1", "c2", "c3")}
	src.pubs = map[string]types.RawPublication{"c1": {Title: "a"}, "c2": {Title: "b"}, "c3": {Title: "c"}}

	got, err := newClassifier(src, nil).Classify(context.Background(), owner, 2, nil)

	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestClassify_ListFailureIsProfileError(t *testing.T) {
	src := &fakeSource{listErr: errors.New("profile gone")}

	got, err := newClassifier(src, nil).Classify(context.Background(), owner, 75, nil)

	assert.Error(t, err)
	assert.Nil(t, got)
}

func TestClassify_NoPublications(t *testing.T) {
	got, err := newClassifier(&fakeSource{}, nil).Classify(context.Background(), owner, 75, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClassify_CancellationReturnsPartial(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{
		refs: refs("c1", "c2"),
		pubs: map[string]types.RawPublication{"c1": {Title: "First"}, "c2": {Title: "Second"}},
	}
	src.onFill = func(id string) {
		if id == "c1" {
			cancel()
		}
	}

	got, err := newClassifier(src, nil).Classify(ctx, owner, 75, nil)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First", got[0].Title)
}

func TestMatchers(t *testing.T) {
	s := similarity.Fuzzy{}
	assert.True(t, NameMatch(s, "Ahmad Rafiq", []string{"Budi", "Rafiq Ahmad"}, 80))
	assert.False(t, NameMatch(s, "Ahmad Rafiq", nil, 80))
	assert.True(t, AffiliationMatch(s, venueUIN, []string{"Universitas Gadjah Mada", "UIN Sunan Kalijaga"}, 75))
	assert.False(t, AffiliationMatch(s, "", []string{"UIN Sunan Kalijaga"}, 75))
}

func TestRecord_ZeroAuthorThresholdMatchesAnyAuthor(t *testing.T) {
	raw := types.RawPublication{Title: "Fiqh of Zakat", Authors: "Budi Santoso", Venue: "Journal of Physics"}

	loose := New(&fakeSource{}, []string{"UIN Sunan Kalijaga"}, types.ScoringConfig{}, types.ClassifyConfig{}, nil, nil)
	rec, ok := loose.Record(owner, raw, nil)
	require.True(t, ok)
	assert.True(t, rec.NameMatch)

	rec, ok = newClassifier(&fakeSource{}, nil).Record(owner, raw, nil)
	require.True(t, ok)
	assert.False(t, rec.NameMatch)
}

// fixedScorer returns the same score for every comparison.
type fixedScorer int

func (f fixedScorer) TokenSort(a, b string) int { return int(f) }
func (f fixedScorer) TokenSet(a, b string) int  { return int(f) }
func (f fixedScorer) Partial(a, b string) int   { return int(f) }

func TestAffiliationMatch_ScoreAtThresholdFails(t *testing.T) {
	targets := []string{"UIN Sunan Kalijaga"}
	assert.False(t, AffiliationMatch(fixedScorer(75), venueUIN, targets, 75))
	assert.True(t, AffiliationMatch(fixedScorer(76), venueUIN, targets, 75))
	assert.True(t, NameMatch(fixedScorer(80), "Ahmad Rafiq", []string{"A Rafiq"}, 80))
}
