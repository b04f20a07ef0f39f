// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sinta

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

// Source is the subset of Client the verifier depends on.
type Source interface {
	Search(ctx context.Context, name string) ([]types.SintaAccount, error)
	Details(ctx context.Context, rawURL string) (types.SintaDetails, error)
}

// Verifier checks a list of names against SINTA.
type Verifier struct {
	src     Source
	domains []string
	years   []int
	log     *zap.Logger
}

// NewVerifier builds a verifier reporting the years of cfg.
func NewVerifier(src Source, cfg types.SintaConfig, log *zap.Logger) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	domains := cfg.EmailDomains
	if len(domains) == 0 {
		domains = DefaultEmailDomains
	}
	return &Verifier{src: src, domains: domains, years: cfg.Years(), log: log}
}

// Years returns the years counted in each row.
func (v *Verifier) Years() []int { return v.years }

// Verify searches every name in order and returns one row per matching
// account, or one row for a name with no match or a failed search. A
// failed profile page still yields a found row without details. When ctx
// is done, the rows completed so far are returned with ctx.Err().
func (v *Verifier) Verify(ctx context.Context, names []string) ([]types.VerificationRow, error) {
	var rows []types.VerificationRow
	for i, name := range names {
		if err := ctx.Err(); err != nil {
			return rows, err
		}
		log := v.log.With(zap.String("name", name), zap.Int("index", i+1), zap.Int("total", len(names)))

		accounts, err := v.src.Search(ctx, name)
		if err != nil {
			if isCanceled(ctx, err) {
				return rows, ctx.Err()
			}
			log.Warn("sinta search failed", zap.Error(err))
			rows = append(rows, types.VerificationRow{Name: name, Status: types.VerificationFailed, Error: err.Error()})
			continue
		}
		if len(accounts) == 0 {
			log.Info("no sinta account found")
			rows = append(rows, types.VerificationRow{Name: name, Status: types.VerificationNotFound})
			continue
		}

		for _, acc := range accounts {
			row := types.VerificationRow{Name: name, Status: types.VerificationFound, Account: &acc}
			details, err := v.src.Details(ctx, acc.URL)
			if err != nil {
				if isCanceled(ctx, err) {
					return rows, ctx.Err()
				}
				log.Warn("sinta profile unavailable", zap.String("url", acc.URL), zap.Error(err))
				row.Error = err.Error()
			} else {
				v.fill(&row, details)
			}
			rows = append(rows, row)
		}
		log.Info("verified name", zap.Int("accounts", len(accounts)))
	}
	return rows, nil
}

func (v *Verifier) fill(row *types.VerificationRow, d types.SintaDetails) {
	row.Details = &d
	row.InstitutionalEmail = InstitutionalEmail(d.Email, v.domains)
	row.Publications = make(map[int]int, len(v.years))
	for _, y := range v.years {
		n := d.YearlyPublications[y]
		row.Publications[y] = n
		row.PublicationTotal += n
	}
}

// InstitutionalEmail reports whether the domain of email equals one of
// domains, ignoring case. Subdomains such as student.uin-suka.ac.id do not
// match uin-suka.ac.id.
func InstitutionalEmail(email string, domains []string) bool {
	at := strings.LastIndexByte(email, '@')
	if at < 0 {
		return false
	}
	host := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range domains {
		if host == strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@")) {
			return true
		}
	}
	return false
}

func isCanceled(ctx context.Context, err error) bool {
	return ctx.Err() != nil || errors.Is(err, context.Canceled)
}
