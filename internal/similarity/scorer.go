// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package similarity scores how alike two short strings are on a 0-100
// scale. Names, affiliations, and venues are compared after folding, so
// case, accents, and punctuation never affect a score.
//
// Three variants are provided:
//
//   - TokenSort ignores word order.
//   - TokenSet returns 100 when one side's words are a subset of the other's.
//   - Partial finds the best alignment of the shorter string inside the longer.
//
// All scores are floored to integers; a blank input on either side scores 0.
package similarity

import (
	"sort"
	"strings"
)

// Scorer is the set of similarity functions the pipeline depends on.
type Scorer interface {
	TokenSort(a, b string) int
	TokenSet(a, b string) int
	Partial(a, b string) int
}

// Fuzzy is the default Scorer.
type Fuzzy struct{}

var _ Scorer = Fuzzy{}

// TokenSort implements Scorer.
func (Fuzzy) TokenSort(a, b string) int { return TokenSort(a, b) }

// TokenSet implements Scorer.
func (Fuzzy) TokenSet(a, b string) int { return TokenSet(a, b) }

// Partial implements Scorer.
func (Fuzzy) Partial(a, b string) int { return Partial(a, b) }

// Ratio is the normalized Indel similarity of the folded inputs:
// 200 * LCS / (len(a) + len(b)).
func Ratio(a, b string) int {
	fa, fb := Fold(a), Fold(b)
	if fa == "" || fb == "" {
		return 0
	}
	return ratio([]rune(fa), []rune(fb))
}

// TokenSort sorts the words of each side before comparing, so
// "Sunan Kalijaga UIN" and "UIN Sunan Kalijaga" score 100.
func TokenSort(a, b string) int {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	sort.Strings(ta)
	sort.Strings(tb)
	return ratio([]rune(strings.Join(ta, " ")), []rune(strings.Join(tb, " ")))
}

// TokenSet compares the shared words against each side's remainder. When
// the two sides share at least one word and one side has nothing extra,
// the score is 100.
func TokenSet(a, b string) int {
	ta, tb := tokens(a), tokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	setA, setB := toSet(ta), toSet(tb)

	var common, onlyA, onlyB []string
	for w := range setA {
		if setB[w] {
			common = append(common, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range setB {
		if !setA[w] {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(common)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	if len(common) > 0 && (len(onlyA) == 0 || len(onlyB) == 0) {
		return 100
	}

	sect := strings.Join(common, " ")
	combA := strings.TrimSpace(sect + " " + strings.Join(onlyA, " "))
	combB := strings.TrimSpace(sect + " " + strings.Join(onlyB, " "))

	rs, ra, rb := []rune(sect), []rune(combA), []rune(combB)
	best := ratio(ra, rb)
	if len(rs) > 0 {
		best = max(best, ratio(rs, ra), ratio(rs, rb))
	}
	return best
}

// Partial slides the shorter folded string over the longer one, including
// windows that hang off either end, and returns the best ratio found.
func Partial(a, b string) int {
	ra, rb := []rune(Fold(a)), []rune(Fold(b))
	if len(ra) == 0 || len(rb) == 0 {
		return 0
	}
	short, long := ra, rb
	if len(short) > len(long) {
		short, long = long, short
	}
	if len(short) == len(long) {
		return ratio(short, long)
	}

	best := 0
	for start := -(len(short) - 1); start < len(long); start++ {
		lo := max(start, 0)
		hi := min(start+len(short), len(long))
		if s := ratio(short, long[lo:hi]); s > best {
			best = s
			if best == 100 {
				break
			}
		}
	}
	return best
}

func ratio(a, b []rune) int {
	total := len(a) + len(b)
	if total == 0 {
		return 0
	}
	return 200 * lcs(a, b) / total
}

// lcs returns the length of the longest common subsequence of a and b.
func lcs(a, b []rune) int {
	if len(a) < len(b) {
		a, b = b, a
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func toSet(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
