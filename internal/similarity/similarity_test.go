// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFold(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"  UIN   Sunan-Kalijaga ", "uin sunan kalijaga"},
		{"Muhammad Syafi'i", "muhammad syafi i"},
		{"Universitás Católica", "universitas catolica"},
		{"...", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Fold(tt.in), "Fold(%q)", tt.in)
	}
}

func TestRatio_FloorsScore(t *testing.T) {
	// LCS 2 over 6 runes is 66.67.
	assert.Equal(t, 66, Ratio("abc", "abd"))
	assert.Equal(t, 100, Ratio("Kalijaga", "KALIJAGA"))
}

func TestTokenSort_IgnoresOrder(t *testing.T) {
	assert.Equal(t, 100, TokenSort("UIN Sunan Kalijaga", "sunan kalijaga, UIN"))
	assert.Less(t, TokenSort("UIN Sunan Kalijaga", "Universitas Gadjah Mada"), 75)
}

func TestTokenSet_Subset(t *testing.T) {
	assert.Equal(t, 100, TokenSet("Ahmad Rafiq", "Ahmad Rafiq M.Ag"))
	assert.Equal(t, 100, TokenSet("Rafiq, Ahmad", "ahmad rafiq"))
	assert.Less(t, TokenSet("alpha", "beta"), 50)
}

func TestPartial_Containment(t *testing.T) {
	assert.Equal(t, 100, Partial("UIN Sunan Kalijaga", "Jurnal Penelitian UIN Sunan Kalijaga Yogyakarta"))
	assert.Equal(t, 100, Partial("Jurnal Penelitian UIN Sunan Kalijaga Yogyakarta", "UIN Sunan Kalijaga"))
	assert.Less(t, Partial("UIN Sunan Kalijaga", "IEEE Transactions on Computers"), 75)
}

func TestScores_BlankInput(t *testing.T) {
	s := Fuzzy{}
	for _, pair := range [][2]string{{"", "x"}, {"x", ""}, {"", ""}, {"  ", "--"}} {
		assert.Zero(t, s.TokenSort(pair[0], pair[1]))
		assert.Zero(t, s.TokenSet(pair[0], pair[1]))
		assert.Zero(t, s.Partial(pair[0], pair[1]))
		assert.Zero(t, Ratio(pair[0], pair[1]))
	}
}

func TestScores_Symmetric(t *testing.T) {
	pairs := [][2]string{
		{"Fakultas Sains dan Teknologi UIN Sunan Kalijaga", "UIN Sunan Kalijaga Yogyakarta"},
		{"Budi Santoso", "B. Santoso"},
		{"dosen informatika", "lecturer of informatics"},
	}
	for _, p := range pairs {
		assert.Equal(t, TokenSort(p[0], p[1]), TokenSort(p[1], p[0]))
		assert.Equal(t, TokenSet(p[0], p[1]), TokenSet(p[1], p[0]))
		assert.Equal(t, Partial(p[0], p[1]), Partial(p[1], p[0]))
	}
}

func TestScores_InRange(t *testing.T) {
	inputs := []string{"a", "ab", "Sunan Kalijaga", "Kalijaga Sunan Yogyakarta 2021", "ü"}
	for _, a := range inputs {
		for _, b := range inputs {
			for _, s := range []int{TokenSort(a, b), TokenSet(a, b), Partial(a, b)} {
				assert.GreaterOrEqual(t, s, 0)
				assert.LessOrEqual(t, s, 100)
			}
		}
	}
}

func TestTitleKey(t *testing.T) {
	assert.Equal(t, "R163", TitleKey("Robert"))
	assert.Equal(t, "R163", TitleKey("Rupert"))
	assert.Equal(t, "T522", TitleKey("Tymczak"))
	assert.Equal(t, "P236", TitleKey("Pfister"))
	assert.Equal(t, "A100", TitleKey("ab"))
	assert.Equal(t, "", TitleKey(""))
	assert.Equal(t, "", TitleKey("2021 - 42"))
}

func TestTitleKey_CollapsesFormattingVariants(t *testing.T) {
	k := TitleKey("Deep Learning for X")
	assert.Equal(t, k, TitleKey("Deep Learning For X "))
	assert.Equal(t, k, TitleKey("deep-learning: for x"))
	assert.NotEqual(t, k, TitleKey("Graph Neural Networks in Practice"))
}
