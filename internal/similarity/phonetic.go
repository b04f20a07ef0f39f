// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import "strings"

// soundexCodes maps A-Z to Soundex digits; '0' marks letters that carry no
// code (vowels, H, W, Y).
const soundexCodes = "01230120022455012623010202"

// TitleKey returns the full-length Soundex key of a title, the same value
// MySQL's SOUNDEX() produces. Only ASCII letters count after folding: the
// first letter is kept, later letters add their digit unless it repeats the
// previous one, and uncoded letters break a run. Keys shorter than four
// characters are padded with zeros. A title with no letters has an empty key.
func TitleKey(title string) string {
	folded := Fold(title)

	var b strings.Builder
	var last byte
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		if c < 'a' || c > 'z' {
			continue
		}
		code := soundexCodes[c-'a']
		if b.Len() == 0 {
			b.WriteByte(c - 'a' + 'A')
			last = code
			continue
		}
		if code == '0' {
			last = 0
			continue
		}
		if code != last {
			b.WriteByte(code)
			last = code
		}
	}

	if b.Len() == 0 {
		return ""
	}
	for b.Len() < 4 {
		b.WriteByte('0')
	}
	return b.String()
}
