// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package filter decides which candidate profiles belong to the target
// institution. Rules are applied in a fixed order and the first failing rule
// is the reason a candidate is rejected.
package filter

import (
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Reason names the rule that rejected a candidate.
type Reason string

const (
	ReasonMalformed    Reason = "malformed"
	ReasonExcluded     Reason = "excluded"
	ReasonStudent      Reason = "student"
	ReasonNotLecturer  Reason = "not_lecturer"
	ReasonStudentEmail Reason = "student_email"
	ReasonAffiliation  Reason = "affiliation"
)

// DefaultAffiliationThreshold is the configured default affiliation threshold.
const DefaultAffiliationThreshold = 75

// Rejection records why a candidate was not accepted.
type Rejection struct {
	Candidate types.CandidateProfile `json:"candidate" yaml:"candidate"`
	Reason    Reason                 `json:"reason" yaml:"reason"`
}

// ExcludedNames is an immutable set of normalized profile names that must
// never be accepted.
type ExcludedNames struct {
	names map[string]struct{}
}

// NewExcludedNames builds a set from raw names. Blank names are ignored.
func NewExcludedNames(names ...string) ExcludedNames {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		if k := NormalizeName(n); k != "" {
			set[k] = struct{}{}
		}
	}
	return ExcludedNames{names: set}
}

// Contains reports whether name, once normalized, is in the set.
func (e ExcludedNames) Contains(name string) bool {
	_, ok := e.names[NormalizeName(name)]
	return ok
}

// Len returns the number of names in the set.
func (e ExcludedNames) Len() int { return len(e.names) }

// NormalizeName lower-cases name and collapses its whitespace.
func NormalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// Filter applies the acceptance rules to candidate profiles.
type Filter struct {
	threshold            int
	lecturerOnly         bool
	studentEmailPatterns []string
	log                  *zap.Logger
}

// New builds a Filter. The threshold is used as given; zero accepts any
// affiliation score.
func New(cfg types.FilterConfig, threshold int, log *zap.Logger) *Filter {
	if log == nil {
		log = zap.NewNop()
	}
	var patterns []string
	for _, p := range cfg.StudentEmailPatterns {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			patterns = append(patterns, p)
		}
	}
	return &Filter{
		threshold:            threshold,
		lecturerOnly:         cfg.LecturerOnly,
		studentEmailPatterns: patterns,
		log:                  log,
	}
}

// Filter returns the accepted profiles, de-duplicated and sorted by
// ExternalID.
func (f *Filter) Filter(candidates []types.CandidateProfile, excluded ExcludedNames) []types.AcceptedProfile {
	accepted, _ := f.Apply(candidates, excluded)
	return accepted
}

// Apply is Filter that also reports every rejection in input order.
func (f *Filter) Apply(candidates []types.CandidateProfile, excluded ExcludedNames) ([]types.AcceptedProfile, []Rejection) {
	byID := map[string]types.AcceptedProfile{}
	var rejected []Rejection

	for _, c := range candidates {
		reason, ok := f.check(c, excluded)
		if !ok {
			rejected = append(rejected, Rejection{Candidate: c, Reason: reason})
			if reason == ReasonMalformed {
				f.log.Debug("dropping malformed candidate", zap.String("id", c.ExternalID))
			} else {
				f.log.Info("candidate rejected", zap.String("id", c.ExternalID),
					zap.String("name", c.DisplayName), zap.String("reason", string(reason)),
					zap.Int("affiliation_score", c.AffiliationScore))
			}
			continue
		}
		if _, dup := byID[c.ExternalID]; dup {
			continue
		}
		byID[c.ExternalID] = c.Accept()
	}

	accepted := make([]types.AcceptedProfile, 0, len(byID))
	for _, p := range byID {
		accepted = append(accepted, p)
	}
	sort.Slice(accepted, func(i, j int) bool { return accepted[i].ExternalID < accepted[j].ExternalID })
	return accepted, rejected
}

func (f *Filter) check(c types.CandidateProfile, excluded ExcludedNames) (Reason, bool) {
	if strings.TrimSpace(c.ExternalID) == "" || strings.TrimSpace(c.DisplayName) == "" {
		return ReasonMalformed, false
	}
	if excluded.Contains(c.DisplayName) {
		return ReasonExcluded, false
	}
	if c.Role == types.RoleStudent {
		return ReasonStudent, false
	}
	if f.lecturerOnly && c.Role != types.RoleLecturer {
		return ReasonNotLecturer, false
	}
	email := strings.ToLower(c.Email)
	for _, p := range f.studentEmailPatterns {
		if strings.Contains(email, p) {
			return ReasonStudentEmail, false
		}
	}
	if c.AffiliationScore < f.threshold {
		return ReasonAffiliation, false
	}
	return "", true
}
