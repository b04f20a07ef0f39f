// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"strconv"
	"strings"
)

// PublicationRef points at one entry of a profile's publication list.
// Refs are returned in source order, which is only used as a cap.
type PublicationRef struct {
	AuthorID   string `json:"author_id" yaml:"author_id"`
	CitationID string `json:"citation_id" yaml:"citation_id"`
	Title      string `json:"title" yaml:"title"`
	URL        string `json:"url" yaml:"url"`
}

// RawPublication holds the text fields of a filled publication before
// classification.
type RawPublication struct {
	Title   string `json:"title" yaml:"title"`
	Authors string `json:"authors" yaml:"authors"`
	Year    string `json:"year" yaml:"year"`
	Venue   string `json:"venue" yaml:"venue"`
	URL     string `json:"url" yaml:"url"`
}

// YearKind distinguishes the three shapes a publication year can take.
type YearKind int

const (
	YearUnknown YearKind = iota
	YearNumeric
	YearText
)

// UnknownYear is the rendering of an absent year.
const UnknownYear = "unknown"

// Year is a normalized publication year: absent, an integer, or free text
// passed through as-is (e.g. "n.d.", "in press").
type Year struct {
	Kind   YearKind
	Number int
	Text   string
}

// ParseYear normalizes a raw year value. Empty input is unknown, an integer is
// numeric, anything else is kept as trimmed text.
func ParseYear(raw string) Year {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Year{Kind: YearUnknown}
	}
	if n, err := strconv.Atoi(s); err == nil {
		return Year{Kind: YearNumeric, Number: n}
	}
	return Year{Kind: YearText, Text: s}
}

// IsNumeric reports whether the year parsed as an integer.
func (y Year) IsNumeric() bool { return y.Kind == YearNumeric }

// String renders the year for storage and reports.
func (y Year) String() string {
	switch y.Kind {
	case YearNumeric:
		return strconv.Itoa(y.Number)
	case YearText:
		return y.Text
	default:
		return UnknownYear
	}
}

// MarshalText renders the year as text in JSON and YAML output.
func (y Year) MarshalText() ([]byte, error) {
	return []byte(y.String()), nil
}

// YearRange is an inclusive publication year filter.
type YearRange struct {
	From int `json:"from" yaml:"from"`
	To   int `json:"to" yaml:"to"`
}

// Contains reports whether year lies inside the range.
func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

// Status is the validity verdict of a classified publication.
type Status string

const (
	StatusValid    Status = "VALID"
	StatusDoubtful Status = "DOUBTFUL"
)

// Stored status codes, kept for compatibility with existing report consumers.
const (
	StatusCodeValid    = "YA"
	StatusCodeDoubtful = "TIDAK"
)

// DeriveStatus is VALID only when both the author name and the venue
// affiliation were confirmed.
func DeriveStatus(nameMatch, affiliationMatch bool) Status {
	if nameMatch && affiliationMatch {
		return StatusValid
	}
	return StatusDoubtful
}

// Code returns the stored form of the status.
func (s Status) Code() string {
	if s == StatusValid {
		return StatusCodeValid
	}
	return StatusCodeDoubtful
}

// StatusFromCode maps a stored code back to a Status.
func StatusFromCode(code string) Status {
	if code == StatusCodeValid {
		return StatusValid
	}
	return StatusDoubtful
}

// PublicationRecord is a classified publication. It is built once by the
// classifier and not modified afterwards.
type PublicationRecord struct {
	Title            string   `json:"title" yaml:"title"`
	Authors          []string `json:"authors" yaml:"authors"`
	Year             Year     `json:"year" yaml:"year"`
	Venue            string   `json:"venue" yaml:"venue"`
	SourceURL        string   `json:"source_url" yaml:"source_url"`
	NameMatch        bool     `json:"name_match" yaml:"name_match"`
	AffiliationMatch bool     `json:"affiliation_match" yaml:"affiliation_match"`
	SDGRelated       bool     `json:"sdg_related" yaml:"sdg_related"`
}

// Status derives the verdict from the two match flags.
func (p PublicationRecord) Status() Status {
	return DeriveStatus(p.NameMatch, p.AffiliationMatch)
}

// AuthorsText joins the parsed author list for storage.
func (p PublicationRecord) AuthorsText() string {
	return strings.Join(p.Authors, ", ")
}

// ReportRow is one line of the exported report: a stored publication joined
// with its owning profile.
type ReportRow struct {
	ExternalID       string `json:"scholar_id" yaml:"scholar_id"`
	Name             string `json:"name" yaml:"name"`
	Affiliation      string `json:"affiliation" yaml:"affiliation"`
	Email            string `json:"email" yaml:"email"`
	Title            string `json:"title" yaml:"title"`
	Authors          string `json:"authors" yaml:"authors"`
	Year             string `json:"year" yaml:"year"`
	Venue            string `json:"venue" yaml:"venue"`
	NameMatch        bool   `json:"name_match" yaml:"name_match"`
	AffiliationMatch bool   `json:"affiliation_match" yaml:"affiliation_match"`
	SDGRelated       bool   `json:"sdg_related" yaml:"sdg_related"`
	Status           Status `json:"status" yaml:"status"`
	SourceURL        string `json:"source_url" yaml:"source_url"`
}
