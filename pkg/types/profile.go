// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the scholar-audit pipeline:
// author candidates and accepted profiles, raw source records, classified
// publications, report rows, and per-stage configuration.
package types

// Role is the coarse position of a profile owner derived from keyword
// membership in the affiliation text and email.
type Role string

const (
	RoleUnknown  Role = "unknown"
	RoleStudent  Role = "student"
	RoleLecturer Role = "lecturer"
)

// AuthorHandle is one hit from an author search. Only ID is needed to fill
// the profile; the other fields are whatever the result list showed.
type AuthorHandle struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Email       string `json:"email" yaml:"email"`
}

// RawProfile holds the basic profile fields returned when a handle is filled.
type RawProfile struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Affiliation string `json:"affiliation" yaml:"affiliation"`
	Email       string `json:"email" yaml:"email"`
}

// CandidateProfile is an unverified profile produced by acquisition.
type CandidateProfile struct {
	// ExternalID is the source's profile identifier (the Scholar user ID).
	ExternalID string `json:"external_id" yaml:"external_id"`

	// DisplayName is the profile owner's name as shown by the source.
	DisplayName string `json:"display_name" yaml:"display_name"`

	// AffiliationText is the lower-cased affiliation line.
	AffiliationText string `json:"affiliation" yaml:"affiliation"`

	// Email is the lower-cased verified email or email domain.
	Email string `json:"email" yaml:"email"`

	// Role is derived from affiliation and email keywords.
	Role Role `json:"role" yaml:"role"`

	// AffiliationScore is the best order-insensitive score against the
	// configured target affiliations, 0-100.
	AffiliationScore int `json:"affiliation_score" yaml:"affiliation_score"`
}

// Accept projects a candidate onto the fields carried downstream.
func (c CandidateProfile) Accept() AcceptedProfile {
	return AcceptedProfile{
		ExternalID:      c.ExternalID,
		DisplayName:     c.DisplayName,
		AffiliationText: c.AffiliationText,
		Email:           c.Email,
	}
}

// AcceptedProfile is a candidate that passed every filter rule.
type AcceptedProfile struct {
	ExternalID      string `json:"external_id" yaml:"external_id"`
	DisplayName     string `json:"display_name" yaml:"display_name"`
	AffiliationText string `json:"affiliation" yaml:"affiliation"`
	Email           string `json:"email" yaml:"email"`
}
