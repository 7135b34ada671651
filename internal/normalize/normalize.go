// Package normalize cleans the categorical text columns of listing exports
// (branch names, makes, models, VINs) so that equal values compare equal.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// mojibakeNBSP is a UTF-8 non-breaking space that was decoded as Latin-1
// and re-encoded somewhere upstream.
const mojibakeNBSP = "\u00c2\u00a0"

// Text composes s to NFC, turns every Unicode space (including NBSP) into
// an ASCII space, drops remaining control characters, collapses runs of
// spaces and trims the result.
func Text(s string) string {
	if s == "" {
		return s
	}
	s = strings.ReplaceAll(s, mojibakeNBSP, " ")

	t := transform.Chain(
		norm.NFC,
		runes.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return ' '
			}
			return r
		}),
		runes.Remove(runes.In(unicode.Cc)),
	)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(out), " ")
}

// VIN normalizes a vehicle identification number: Text, upper-cased, with
// inner spaces removed.
func VIN(s string) string {
	return strings.ToUpper(strings.ReplaceAll(Text(s), " ", ""))
}
