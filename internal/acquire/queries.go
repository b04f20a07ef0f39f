// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package acquire

import "strings"

// BuildQueries returns the configured queries when any are set. Otherwise it
// derives, for each target affiliation, the bare name plus "dosen" and
// "lecturer" variants. Blank and repeated queries are dropped, keeping the
// first occurrence.
func BuildQueries(queries, targets []string) []string {
	var out []string
	seen := map[string]bool{}
	add := func(q string) {
		q = strings.Join(strings.Fields(q), " ")
		key := strings.ToLower(q)
		if q == "" || seen[key] {
			return
		}
		seen[key] = true
		out = append(out, q)
	}

	for _, q := range queries {
		add(q)
	}
	if len(out) > 0 {
		return out
	}
	for _, t := range targets {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		add(t)
		add("dosen " + t)
		add("lecturer " + t)
	}
	return out
}
