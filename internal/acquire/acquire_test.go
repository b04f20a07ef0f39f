// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import (
	"context"
	"errors"
	"iter"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

var errUnavailable = errors.New("source unavailable")

// fakeSource serves canned search results. Each SearchAuthors call consumes
// the next scripted attempt; the last one repeats.
type fakeSource struct {
	mu       sync.Mutex
	attempts [][]hit
	searches int
	profiles map[string]types.RawProfile
	fillErr  map[string]error
	fills    []string
	onFill   func(id string)
}

type hit struct {
	h   types.AuthorHandle
	err error
}

func (f *fakeSource) SearchAuthors(_ context.Context, _ string) iter.Seq2[types.AuthorHandle, error] {
	f.mu.Lock()
	idx := min(f.searches, len(f.attempts)-1)
	f.searches++
	script := f.attempts[idx]
	f.mu.Unlock()

	return func(yield func(types.AuthorHandle, error) bool) {
		for _, s := range script {
			if !yield(s.h, s.err) || s.err != nil {
				return
			}
		}
	}
}

func (f *fakeSource) FillAuthor(_ context.Context, h types.AuthorHandle) (types.RawProfile, error) {
	f.mu.Lock()
	f.fills = append(f.fills, h.ID)
	f.mu.Unlock()
	if f.onFill != nil {
		f.onFill(h.ID)
	}
	if err := f.fillErr[h.ID]; err != nil {
		return types.RawProfile{}, err
	}
	if p, ok := f.profiles[h.ID]; ok {
		return p, nil
	}
	return types.RawProfile{ID: h.ID, Name: h.Name, Affiliation: h.Affiliation}, nil
}

func hits(ids ...string) []hit {
	var out []hit
	for _, id := range ids {
		out = append(out, hit{h: types.AuthorHandle{ID: id, Name: "Author " + id, Affiliation: "UIN Sunan Kalijaga"}})
	}
	return out
}

func testConfig() types.AcquisitionConfig {
	return types.AcquisitionConfig{
		MaxCandidates: 30,
		Retry:         types.RetryConfig{MaxAttempts: 3, BaseDelay: time.Millisecond, Multiplier: 2, MaxDelay: 2 * time.Millisecond},
	}
}

func newAcquirer(src Source, log *zap.Logger) *Acquirer {
	return New(src, testConfig(), []string{"UIN Sunan Kalijaga"}, log).WithPacer(nil)
}

func TestAcquire_ReturnsScoredCandidates(t *testing.T) {
	src := &fakeSource{
		attempts: [][]hit{hits("A", "B")},
		profiles: map[string]types.RawProfile{
			"A": {ID: "A", Name: " Ahmad Rafiq ", Affiliation: "UIN Sunan Kalijaga", Email: "Rafiq@UIN-SUKA.ac.id"},
			"B": {ID: "B", Name: "Siti", Affiliation: "Mahasiswa UIN Sunan Kalijaga"},
		},
	}

	got := newAcquirer(src, nil).Acquire(context.Background(), "uin", 10)

	require.Len(t, got, 2)
	assert.Equal(t, types.CandidateProfile{
		ExternalID:       "A",
		DisplayName:      "Ahmad Rafiq",
		AffiliationText:  "uin sunan kalijaga",
		Email:            "rafiq@uin-suka.ac.id",
		Role:             types.RoleUnknown,
		AffiliationScore: 100,
	}, got[0])
	assert.Equal(t, types.RoleStudent, got[1].Role)
}

func TestAcquire_CapsAtMaxResults(t *testing.T) {
	src := &fakeSource{attempts: [][]hit{hits("A", "B", "C", "D", "E")}}

	got := newAcquirer(src, nil).Acquire(context.Background(), "uin", 3)

	assert.Len(t, got, 3)
	assert.Equal(t, []string{"A", "B", "C"}, src.fills)
}

func TestAcquire_ZeroMaxResults(t *testing.T) {
	src := &fakeSource{attempts: [][]hit{hits("A")}}
	assert.Empty(t, newAcquirer(src, nil).Acquire(context.Background(), "uin", 0))
	assert.Zero(t, src.searches)
}

func TestAcquire_RetriesExhaustedYieldsEmpty(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{attempts: [][]hit{{{err: errUnavailable}}}}

	got := newAcquirer(src, zap.New(core)).Acquire(context.Background(), "uin", 10)

	assert.Empty(t, got)
	assert.Equal(t, 3, src.searches)
	assert.Equal(t, 2, logs.FilterMessage("author search failed, retrying").Len())
	assert.Equal(t, 1, logs.FilterMessage("author search gave up").Len())
}

func TestAcquire_RetryRecovers(t *testing.T) {
	src := &fakeSource{attempts: [][]hit{{{err: errUnavailable}}, hits("A")}}

	got := newAcquirer(src, nil).Acquire(context.Background(), "uin", 10)

	require.Len(t, got, 1)
	assert.Equal(t, 2, src.searches)
}

func TestAcquire_ErrorAfterFirstHitKeepsPartial(t *testing.T) {
	script := append(hits("A", "B"), hit{err: errUnavailable})
	src := &fakeSource{attempts: [][]hit{script}}

	got := newAcquirer(src, nil).Acquire(context.Background(), "uin", 10)

	assert.Len(t, got, 2)
	assert.Equal(t, 1, src.searches)
}

func TestAcquire_FillFailureIsolated(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	src := &fakeSource{
		attempts: [][]hit{hits("A", "B", "C")},
		fillErr:  map[string]error{"B": errUnavailable},
	}

	a := newAcquirer(src, zap.New(core))
	res := a.AcquireAll(context.Background(), []string{"uin"}, 10)

	require.Len(t, res.Candidates, 2)
	assert.Equal(t, "A", res.Candidates[0].ExternalID)
	assert.Equal(t, "C", res.Candidates[1].ExternalID)
	assert.Equal(t, 3, res.Total())
	assert.True(t, res.HasFailures())
	assert.Equal(t, 1, logs.FilterMessage("skipping candidate").Len())
}

func TestAcquire_CancellationKeepsCollected(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := &fakeSource{attempts: [][]hit{hits("A", "B", "C")}}
	src.onFill = func(id string) {
		if id == "A" {
			cancel()
		}
	}

	a := New(src, testConfig(), []string{"UIN Sunan Kalijaga"}, nil)
	a.WithPacer(nil)
	got := a.Acquire(ctx, "uin", 10)

	require.Len(t, got, 1)
	assert.Equal(t, "A", got[0].ExternalID)
	assert.Equal(t, []string{"A"}, src.fills)
}

func TestAcquireAll_ContinuesPastEmptyQuery(t *testing.T) {
	src := &fakeSource{attempts: [][]hit{{}, hits("A"), hits("B")}}

	res := newAcquirer(src, nil).AcquireAll(context.Background(), []string{"q1", "q2", "q3"}, 10)

	assert.Equal(t, 3, res.Queries)
	require.Len(t, res.Candidates, 2)
	assert.False(t, res.HasFailures())
}

func TestAcquireAll_StopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	src := &fakeSource{attempts: [][]hit{hits("A")}}

	res := newAcquirer(src, nil).AcquireAll(ctx, []string{"q1", "q2"}, 10)

	assert.Zero(t, res.Queries)
	assert.Empty(t, res.Candidates)
}

func TestAffiliationScore_BestTarget(t *testing.T) {
	targets := []string{"Universitas Gadjah Mada", "UIN Sunan Kalijaga"}
	s := fakeScorer{}
	assert.Equal(t, 100, AffiliationScore(s, "uin sunan kalijaga", targets))
	assert.Zero(t, AffiliationScore(s, "uin sunan kalijaga", nil))
}

// fakeScorer returns 100 for an exact case-insensitive match and 0 otherwise.
type fakeScorer struct{}

func (fakeScorer) TokenSort(a, b string) int { return exact(a, b) }
func (fakeScorer) TokenSet(a, b string) int  { return exact(a, b) }
func (fakeScorer) Partial(a, b string) int   { return exact(a, b) }

func exact(a, b string) int {
	if strings.EqualFold(a, b) {
		return 100
	}
	return 0
}
