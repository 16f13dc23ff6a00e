// Package lines captures physical lines from extracted text and canonicalizes
// them before segmentation.
package lines

import (
	"regexp"
	"strings"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RawLine is a physical line of extracted text with its ordinal position.
type RawLine struct {
	Ordinal int
	Text    string
}

// NormalizedLine is a RawLine after canonicalization. Text is never empty
// and has no surrounding whitespace.
type NormalizedLine struct {
	Ordinal int
	Text    string
}

// Capture splits text into raw lines. Form feeds count as line breaks.
func Capture(text string) []RawLine {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\f", "\n")
	parts := strings.Split(text, "\n")
	out := make([]RawLine, len(parts))
	for i, p := range parts {
		out[i] = RawLine{Ordinal: i, Text: p}
	}
	return out
}

var (
	spaceRuns = regexp.MustCompile(`\s{2,}`)

	// invisible drops zero-width code points.
	invisible = runes.Remove(runes.Predicate(func(r rune) bool {
		return r >= '\u200b' && r <= '\u200f'
	}))

	// canonical maps space and dash variants to ASCII.
	canonical = runes.Map(func(r rune) rune {
		switch {
		case r == '\u00a0', r == '\u202f', r == '\u2060', r == '\ufeff':
			return ' '
		case r >= '\u2010' && r <= '\u2015', r == '\u2212', r == '\u00ad':
			return '-'
		}
		return r
	})
)

// Normalize canonicalizes one line: NFC composition, space and dash
// variants mapped to ASCII, zero-width characters removed, whitespace runs
// collapsed and trimmed.
func Normalize(s string) string {
	t := transform.Chain(norm.NFC, invisible, canonical)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	out = spaceRuns.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

// NormalizeAll normalizes raw lines and drops the ones left empty.
func NormalizeAll(raw []RawLine) []NormalizedLine {
	out := make([]NormalizedLine, 0, len(raw))
	for _, r := range raw {
		if s := Normalize(r.Text); s != "" {
			out = append(out, NormalizedLine{Ordinal: r.Ordinal, Text: s})
		}
	}
	return out
}

// Texts returns the text of each normalized line.
func Texts(ls []NormalizedLine) []string {
	out := make([]string, len(ls))
	for i, l := range ls {
		out[i] = l.Text
	}
	return out
}
