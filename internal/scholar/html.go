// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package scholar

import (
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-audit/internal/htmlq"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

// isBlocked reports whether the page is a captcha or unusual-traffic wall.
func isBlocked(doc *html.Node) bool {
	return htmlq.FindFirst(doc, htmlq.ByID("gs_captcha_f")) != nil ||
		htmlq.FindFirst(doc, htmlq.ByID("captcha-form")) != nil
}

// parseAuthorResults extracts the hits of an author search page.
func parseAuthorResults(doc *html.Node) []types.AuthorHandle {
	var hits []types.AuthorHandle
	for _, block := range htmlq.FindAll(doc, htmlq.Match("div", "gsc_1usr")) {
		nameEl := htmlq.FindFirst(block, htmlq.Match("", "gs_ai_name"))
		link := htmlq.FindFirst(nameEl, func(n *html.Node) bool { return htmlq.IsElem(n, "a") })
		if link == nil {
			continue
		}
		id := queryParam(htmlq.Attr(link, "href"), "user")
		if id == "" {
			continue
		}
		hits = append(hits, types.AuthorHandle{
			ID:          id,
			Name:        htmlq.Text(link),
			Affiliation: htmlq.Text(htmlq.FindFirst(block, htmlq.Match("div", "gs_ai_aff"))),
			Email:       htmlq.Text(htmlq.FindFirst(block, htmlq.Match("div", "gs_ai_eml"))),
		})
	}
	return hits
}

var jsEscapes = strings.NewReplacer(`\x3d`, "=", `\x26`, "&", `\x3D`, "=")

// nextAuthorPage returns the query of the next search page, or nil on the
// last page. The next button carries its target in an onclick handler.
func nextAuthorPage(doc *html.Node) url.Values {
	btn := htmlq.FindFirst(doc, htmlq.Match("button", "gs_btnPR"))
	if btn == nil {
		return nil
	}
	for _, a := range btn.Attr {
		if a.Key == "disabled" {
			return nil
		}
	}
	onclick := htmlq.Attr(btn, "onclick")
	start := strings.IndexByte(onclick, '\'')
	end := strings.LastIndexByte(onclick, '\'')
	if start < 0 || end <= start {
		return nil
	}
	u, err := url.Parse(jsEscapes.Replace(onclick[start+1 : end]))
	if err != nil {
		return nil
	}
	q := u.Query()
	if q.Get("after_author") == "" {
		return nil
	}
	return q
}

// parseProfile extracts the basic fields of a profile page.
func parseProfile(doc *html.Node) types.RawProfile {
	p := types.RawProfile{
		Name:        htmlq.Text(htmlq.FindFirst(doc, htmlq.ByID("gsc_prf_in"))),
		Affiliation: htmlq.Text(htmlq.FindFirst(doc, htmlq.Match("div", "gsc_prf_il"))),
	}
	email := htmlq.Text(htmlq.FindFirst(doc, htmlq.ByID("gsc_prf_ivh")))
	if i := strings.Index(strings.ToLower(email), "verified email at "); i >= 0 {
		email = email[i+len("verified email at "):]
	}
	if before, _, ok := strings.Cut(email, " - "); ok {
		email = before
	}
	if strings.EqualFold(strings.TrimSpace(email), "No verified email") {
		email = ""
	}
	p.Email = strings.TrimSpace(email)
	return p
}

// parsePublicationRows extracts the rows of a profile's publication table.
func parsePublicationRows(doc *html.Node, base *url.URL, authorID string) []types.PublicationRef {
	var refs []types.PublicationRef
	for _, row := range htmlq.FindAll(doc, htmlq.Match("tr", "gsc_a_tr")) {
		link := htmlq.FindFirst(row, htmlq.Match("a", "gsc_a_at"))
		if link == nil {
			continue
		}
		href := htmlq.Attr(link, "href")
		if href == "" {
			href = htmlq.Attr(link, "data-href")
		}
		refs = append(refs, types.PublicationRef{
			AuthorID:   authorID,
			CitationID: queryParam(href, "citation_for_view"),
			Title:      htmlq.Text(link),
			URL:        resolve(base, href),
		})
	}
	return refs
}

// venueFields lists the citation fields that may hold the venue, in order
// of preference.
var venueFields = []string{"journal", "conference", "book", "source", "publisher"}

var yearPattern = regexp.MustCompile(`\d{4}`)

// parseCitation extracts a filled publication from a citation page.
func parseCitation(doc *html.Node) types.RawPublication {
	fields := map[string]string{}
	for _, row := range htmlq.FindAll(doc, htmlq.Match("div", "gs_scl")) {
		name := strings.ToLower(htmlq.Text(htmlq.FindFirst(row, htmlq.Match("div", "gsc_oci_field"))))
		if name == "" {
			continue
		}
		fields[name] = htmlq.Text(htmlq.FindFirst(row, htmlq.Match("div", "gsc_oci_value")))
	}

	pub := types.RawPublication{
		Title:   htmlq.Text(htmlq.FindFirst(doc, htmlq.ByID("gsc_oci_title"))),
		Authors: fields["authors"],
	}
	if date := fields["publication date"]; date != "" {
		if y := yearPattern.FindString(date); y != "" {
			pub.Year = y
		} else {
			pub.Year = date
		}
	}
	for _, f := range venueFields {
		if v := fields[f]; v != "" {
			pub.Venue = v
			break
		}
	}
	return pub
}

func queryParam(href, key string) string {
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return u.Query().Get(key)
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
