// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package report

import (
	"strconv"

	"github.com/pdiddy/scholar-audit/pkg/types"
)

const missing = "-"

// VerificationHeader is the column order of a verification export. There
// is one publication column per year, then their total.
func VerificationHeader(years []int) []string {
	h := []string{"Name", "SINTA Name", "SINTA ID", "Affiliation", "SINTA URL",
		"Email", "Institutional Email", "H-Index", "Documents"}
	for _, y := range years {
		h = append(h, "Publications "+strconv.Itoa(y))
	}
	if len(years) > 0 {
		h = append(h, "Publications Total ("+strconv.Itoa(years[0])+"-"+strconv.Itoa(years[len(years)-1])+")")
	}
	return append(h, "Scopus ID", "Scholar ID", "Status", "Error")
}

// VerificationRecord renders a row under VerificationHeader(years). A name
// without an account shows "-" in every account column.
func VerificationRecord(r types.VerificationRow, years []int) []string {
	rec := []string{r.Name}
	if r.Account == nil {
		for range len(VerificationHeader(years)) - 3 {
			rec = append(rec, missing)
		}
		return append(rec, string(r.Status), r.Error)
	}

	a := r.Account
	var d types.SintaDetails
	if r.Details != nil {
		d = *r.Details
	}
	rec = append(rec, a.Name, a.ID, a.Affiliation, a.URL, d.Email, flag(r.InstitutionalEmail), d.HIndex, d.Documents)
	for _, y := range years {
		rec = append(rec, strconv.Itoa(r.Publications[y]))
	}
	if len(years) > 0 {
		rec = append(rec, strconv.Itoa(r.PublicationTotal))
	}
	return append(rec, a.ScopusID, a.ScholarID, string(r.Status), r.Error)
}

// WriteVerification exports verification rows to path in the format given
// by its extension.
func WriteVerification(path string, years []int, rows []types.VerificationRow) error {
	if rows == nil {
		rows = []types.VerificationRow{}
	}
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, VerificationRecord(r, years))
	}
	return writeTable(path, VerificationHeader(years), records, rows)
}

// VerificationStats counts names, matched accounts, and institutional emails.
func VerificationStats(rows []types.VerificationRow) []Stat {
	names := map[string]bool{}
	found := map[string]bool{}
	var accounts, institutional, notFound, failed int
	for _, r := range rows {
		names[r.Name] = true
		switch r.Status {
		case types.VerificationFound:
			found[r.Name] = true
			accounts++
			if r.InstitutionalEmail {
				institutional++
			}
		case types.VerificationNotFound:
			notFound++
		case types.VerificationFailed:
			failed++
		}
	}
	return []Stat{
		{Label: "Names", Value: len(names)},
		{Label: "Names found", Value: len(found)},
		{Label: "SINTA accounts", Value: accounts},
		{Label: "Institutional emails", Value: institutional},
		{Label: "Not found", Value: notFound},
		{Label: "Searches failed", Value: failed},
	}
}
