// Package match scores title similarity between a proposed event and a
// stored candidate. The store runs only a coarse pre-filter; the score
// computed here is authoritative.
package match

import (
	"strings"

	"golang.org/x/text/cases"
)

// Similarity scores, highest confidence first.
const (
	ScoreExact       = 100
	ScorePhonetic    = 80
	ScoreContainment = 60
	ScoreNone        = 0
)

// Normalize case-folds a title and trims surrounding whitespace so that
// "ART WALK" and "Art Walk " compare equal.
func Normalize(title string) string {
	return cases.Fold().String(strings.TrimSpace(title))
}

// Score returns the title similarity between two titles:
// 100 for normalized equality, 80 for matching soundex codes, 60 when one
// contains the other, 0 otherwise. The score alone does not accept a match;
// the cascade combines it with time and geo agreement.
func Score(a, b string) int {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return ScoreNone
	}

	if na == nb {
		return ScoreExact
	}

	if sa := Soundex(a); sa != "" && sa == Soundex(b) {
		return ScorePhonetic
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		return ScoreContainment
	}

	return ScoreNone
}

var soundexCodes = map[byte]byte{
	'B': '1', 'F': '1', 'P': '1', 'V': '1',
	'C': '2', 'G': '2', 'J': '2', 'K': '2', 'Q': '2', 'S': '2', 'X': '2', 'Z': '2',
	'D': '3', 'T': '3',
	'L': '4',
	'M': '5', 'N': '5',
	'R': '6',
}

// Soundex returns the four-character American Soundex code for s, or the
// empty string if s contains no ASCII letters. Adjacent letters with the
// same code collapse, and H/W do not separate equal codes.
func Soundex(s string) string {
	s = strings.ToUpper(s)

	var first byte

	i := 0
	for ; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			first = c
			break
		}
	}

	if first == 0 {
		return ""
	}

	code := []byte{first}
	prev := soundexCodes[first]

	for i++; i < len(s) && len(code) < 4; i++ {
		c := s[i]
		if c < 'A' || c > 'Z' {
			prev = 0
			continue
		}

		switch c {
		case 'H', 'W':
			// H and W do not reset the previous code.
			continue
		case 'A', 'E', 'I', 'O', 'U', 'Y':
			prev = 0
			continue
		}

		d := soundexCodes[c]
		if d != prev {
			code = append(code, d)
		}

		prev = d
	}

	for len(code) < 4 {
		code = append(code, '0')
	}

	return string(code)
}
