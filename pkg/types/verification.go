// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SintaAccount is a SINTA author search hit whose affiliation matched.
type SintaAccount struct {
	Query       string `json:"query" yaml:"query"`
	Name        string `json:"name" yaml:"name"`
	ID          string `json:"sinta_id" yaml:"sinta_id"`
	URL         string `json:"url" yaml:"url"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	ScopusID    string `json:"scopus_id,omitempty" yaml:"scopus_id,omitempty"`
	ScholarID   string `json:"scholar_id,omitempty" yaml:"scholar_id,omitempty"`
}

// SintaDetails are the fields read from a SINTA profile page. Metrics are
// kept as displayed.
type SintaDetails struct {
	Email     string `json:"email" yaml:"email"`
	HIndex    string `json:"h_index" yaml:"h_index"`
	Documents string `json:"documents" yaml:"documents"`

	// YearlyPublications maps a year to its publication count, for every
	// year the page lists.
	YearlyPublications map[int]int `json:"yearly_publications,omitempty" yaml:"yearly_publications,omitempty"`
}

// VerificationStatus tells whether a name has a matching SINTA account.
type VerificationStatus string

// Verification statuses.
const (
	VerificationFound    VerificationStatus = "found"
	VerificationNotFound VerificationStatus = "not_found"
	VerificationFailed   VerificationStatus = "failed"
)

// VerificationRow is one line of the verification report: a matched account
// with its details, or the queried name alone when nothing matched or the
// search failed. A name
// with several matching accounts yields one row per account.
type VerificationRow struct {
	Name    string             `json:"name" yaml:"name"`
	Status  VerificationStatus `json:"status" yaml:"status"`
	Account *SintaAccount      `json:"account,omitempty" yaml:"account,omitempty"`
	Details *SintaDetails      `json:"details,omitempty" yaml:"details,omitempty"`

	// InstitutionalEmail is true when the profile email is on one of the
	// configured institutional domains.
	InstitutionalEmail bool `json:"institutional_email" yaml:"institutional_email"`

	// Publications counts the reported years only; PublicationTotal sums them.
	Publications     map[int]int `json:"publications,omitempty" yaml:"publications,omitempty"`
	PublicationTotal int         `json:"publication_total" yaml:"publication_total"`

	// Error records why the search or the profile page failed.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}
