package types

import "time"

// HTTPConfig holds shared HTTP settings used by the profile source client.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// ScholarConfig holds settings for the Google Scholar client.
type ScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the Scholar root (default https://scholar.google.com).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// Language is the hl= interface language; field labels are parsed in English.
	Language string `json:"language" yaml:"language" mapstructure:"language"`

	// ProxyURL routes all requests through an HTTP(S) proxy when set.
	ProxyURL string `json:"proxy_url,omitempty" yaml:"proxy_url,omitempty" mapstructure:"proxy_url"`

	// Cookie is sent verbatim as the Cookie header when set.
	Cookie string `json:"-" yaml:"-" mapstructure:"cookie"`
}

// SintaConfig holds settings for the SINTA verification client.
type SintaConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the SINTA root (default https://sinta.kemdikbud.go.id).
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// NamesFile is the spreadsheet, csv, yaml, or text list of names to verify.
	NamesFile string `json:"names_file" yaml:"names_file" mapstructure:"names_file"`

	// AffiliationTerms are case-insensitive substrings; a search hit is kept
	// when its affiliation contains any of them.
	AffiliationTerms []string `json:"affiliation_terms" yaml:"affiliation_terms" mapstructure:"affiliation_terms"`

	// EmailDomains are the institutional email domains. Subdomains do not match.
	EmailDomains []string `json:"email_domains" yaml:"email_domains" mapstructure:"email_domains"`

	// YearFrom and YearTo bound the yearly publication counts reported.
	YearFrom int `json:"year_from" yaml:"year_from" mapstructure:"year_from"`
	YearTo   int `json:"year_to" yaml:"year_to" mapstructure:"year_to"`
}

// Years returns every year from YearFrom to YearTo inclusive.
func (c SintaConfig) Years() []int {
	var years []int
	for y := c.YearFrom; y <= c.YearTo && c.YearFrom > 0; y++ {
		years = append(years, y)
	}
	return years
}

// ScoringConfig holds the similarity thresholds (0-100).
type ScoringConfig struct {
	// AffiliationThreshold is the minimum affiliation score for a profile
	// to be accepted (default 75). A score equal to the threshold passes.
	AffiliationThreshold int `json:"affiliation_threshold" yaml:"affiliation_threshold" mapstructure:"affiliation_threshold"`

	// AuthorMatchThreshold is the minimum subset score between an author
	// name and the profile owner (default 80).
	AuthorMatchThreshold int `json:"author_match_threshold" yaml:"author_match_threshold" mapstructure:"author_match_threshold"`

	// VenueThreshold is the score a target affiliation must exceed inside
	// the venue text (default 75).
	VenueThreshold int `json:"venue_threshold" yaml:"venue_threshold" mapstructure:"venue_threshold"`
}

// RetryConfig describes the backoff policy around the author search call.
type RetryConfig struct {
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts" mapstructure:"max_attempts"`
	BaseDelay   time.Duration `json:"base_delay" yaml:"base_delay" mapstructure:"base_delay"`
	Multiplier  float64       `json:"multiplier" yaml:"multiplier" mapstructure:"multiplier"`
	MaxDelay    time.Duration `json:"max_delay" yaml:"max_delay" mapstructure:"max_delay"`
}

// AcquisitionConfig holds settings for candidate acquisition.
type AcquisitionConfig struct {
	// MaxCandidates caps the search hits examined per query.
	MaxCandidates int `json:"max_candidates" yaml:"max_candidates" mapstructure:"max_candidates"`

	// DelayMin and DelayMax bound the randomized pause between source calls.
	DelayMin time.Duration `json:"delay_min" yaml:"delay_min" mapstructure:"delay_min"`
	DelayMax time.Duration `json:"delay_max" yaml:"delay_max" mapstructure:"delay_max"`

	// LongPauseEvery inserts LongPause after every N paced calls (0 disables).
	LongPauseEvery int           `json:"long_pause_every" yaml:"long_pause_every" mapstructure:"long_pause_every"`
	LongPause      time.Duration `json:"long_pause" yaml:"long_pause" mapstructure:"long_pause"`

	Retry RetryConfig `json:"retry" yaml:"retry" mapstructure:"retry"`
}

// FilterConfig holds settings for the profile filter.
type FilterConfig struct {
	// LecturerOnly rejects every candidate whose role is not lecturer.
	LecturerOnly bool `json:"lecturer_only" yaml:"lecturer_only" mapstructure:"lecturer_only"`

	// ExclusionFile is a spreadsheet, csv, yaml, or text list of names to reject.
	ExclusionFile string `json:"exclusion_file" yaml:"exclusion_file" mapstructure:"exclusion_file"`

	// StudentEmailPatterns are substrings marking a student email domain.
	StudentEmailPatterns []string `json:"student_email_patterns" yaml:"student_email_patterns" mapstructure:"student_email_patterns"`
}

// ClassifyConfig holds settings for publication classification.
type ClassifyConfig struct {
	// MaxPublications caps the publications examined per profile.
	MaxPublications int `json:"max_publications" yaml:"max_publications" mapstructure:"max_publications"`

	// YearFrom and YearTo bound numeric publication years; 0 leaves a side open.
	YearFrom int `json:"year_from" yaml:"year_from" mapstructure:"year_from"`
	YearTo   int `json:"year_to" yaml:"year_to" mapstructure:"year_to"`

	// SDGKeywords flag titles related to the Sustainable Development Goals.
	SDGKeywords []string `json:"sdg_keywords" yaml:"sdg_keywords" mapstructure:"sdg_keywords"`
}

// YearRange returns the configured range, or nil when no bound is set.
// An open side extends to the widest integer.
func (c ClassifyConfig) YearRange() *YearRange {
	if c.YearFrom == 0 && c.YearTo == 0 {
		return nil
	}
	r := YearRange{From: c.YearFrom, To: c.YearTo}
	if r.To == 0 {
		r.To = int(^uint(0) >> 1)
	}
	return &r
}

// StoreConfig holds settings for the SQLite store.
type StoreConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// SkipProcessed skips profiles that already have stored publications.
	SkipProcessed bool `json:"skip_processed" yaml:"skip_processed" mapstructure:"skip_processed"`
}

// ReportConfig holds settings for the report export.
type ReportConfig struct {
	// Dir receives one report file per run.
	Dir string `json:"dir" yaml:"dir" mapstructure:"dir"`

	// Format is xlsx, csv, json, or yaml.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// LogConfig holds logger construction parameters.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is console or json.
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// PipelineConfig groups all stage configurations for one run.
type PipelineConfig struct {
	// Targets are the institution name variants profiles are scored against.
	Targets []string `json:"targets" yaml:"targets" mapstructure:"targets"`

	// Queries are the author search queries; derived from Targets when empty.
	Queries []string `json:"queries" yaml:"queries" mapstructure:"queries"`

	Scoring     ScoringConfig     `json:"scoring" yaml:"scoring" mapstructure:"scoring"`
	Acquisition AcquisitionConfig `json:"acquisition" yaml:"acquisition" mapstructure:"acquisition"`
	Filter      FilterConfig      `json:"filter" yaml:"filter" mapstructure:"filter"`
	Classify    ClassifyConfig    `json:"classify" yaml:"classify" mapstructure:"classify"`
	Scholar     ScholarConfig     `json:"scholar" yaml:"scholar" mapstructure:"scholar"`
	Sinta       SintaConfig       `json:"sinta" yaml:"sinta" mapstructure:"sinta"`
	Store       StoreConfig       `json:"store" yaml:"store" mapstructure:"store"`
	Report      ReportConfig      `json:"report" yaml:"report" mapstructure:"report"`
	Log         LogConfig         `json:"log" yaml:"log" mapstructure:"log"`
}
