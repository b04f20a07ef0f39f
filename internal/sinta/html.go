// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sinta

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/pdiddy/scholar-audit/internal/htmlq"
	"github.com/pdiddy/scholar-audit/pkg/types"
)

var authorIDPattern = regexp.MustCompile(`/authors/(?:profile/)?(\d+)`)

// parseAuthorList extracts every account of a search result page. Relative
// profile links are resolved against page.
func parseAuthorList(doc *html.Node, page *url.URL) []types.SintaAccount {
	var out []types.SintaAccount
	for _, item := range htmlq.FindAll(doc, htmlq.Match("", "author-list-item")) {
		nameEl := htmlq.FindFirst(item, htmlq.Match("", "author-name"))
		link := htmlq.FindFirst(nameEl, func(n *html.Node) bool { return htmlq.IsElem(n, "a") })
		if link == nil {
			continue
		}
		href := htmlq.Attr(link, "href")
		a := types.SintaAccount{
			Name:        htmlq.Text(link),
			URL:         resolve(page, href),
			Affiliation: htmlq.Text(htmlq.FindFirst(item, htmlq.Match("", "affil-name"))),
			ScopusID:    htmlq.Attr(item, "data-scopus-id"),
			ScholarID:   htmlq.Attr(item, "data-scholar-id"),
		}
		if m := authorIDPattern.FindStringSubmatch(href); m != nil {
			a.ID = m[1]
		}
		out = append(out, a)
	}
	return out
}

// parseDetails extracts the email, the first two metrics (h-index and
// documents), and the per-year publication counts of a profile page.
func parseDetails(doc *html.Node) types.SintaDetails {
	var d types.SintaDetails

	if box := htmlq.FindFirst(doc, htmlq.Match("", "author-email")); box != nil {
		link := htmlq.FindFirst(box, func(n *html.Node) bool { return htmlq.IsElem(n, "a") })
		d.Email = htmlq.Text(link)
	}

	if metrics := htmlq.FindFirst(doc, htmlq.Match("", "author-metrics")); metrics != nil {
		values := htmlq.FindAll(metrics, htmlq.Match("", "metric-value"))
		if len(values) >= 2 {
			d.HIndex = htmlq.Text(values[0])
			d.Documents = htmlq.Text(values[1])
		}
	}

	for _, item := range htmlq.FindAll(doc, htmlq.Match("", "ar-list-item")) {
		year, err := strconv.Atoi(htmlq.Text(htmlq.FindFirst(item, htmlq.Match("", "ar-year"))))
		if err != nil {
			continue
		}
		count, err := strconv.Atoi(htmlq.Text(htmlq.FindFirst(item, htmlq.Match("", "ar-pub"))))
		if err != nil {
			continue
		}
		if d.YearlyPublications == nil {
			d.YearlyPublications = map[int]int{}
		}
		d.YearlyPublications[year] = count
	}
	return d
}

func containsAny(s string, terms []string) bool {
	s = strings.ToLower(s)
	for _, t := range terms {
		if t != "" && strings.Contains(s, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

func resolve(base *url.URL, href string) string {
	if href == "" {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
