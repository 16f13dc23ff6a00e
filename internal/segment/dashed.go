package segment

import (
	"regexp"
	"strings"

	"github.com/matsen/refsplit/internal/patterns"
)

var trailingComma = regexp.MustCompile(`,\s*$`)

// authorPrefix returns the text before the first year of s, without a
// trailing comma, or "" when s has no year.
func authorPrefix(s string, p *patterns.Context) string {
	idx, out := p.Years.FirstIndex(s)
	if out != patterns.Matched {
		return ""
	}
	prefix := strings.TrimRight(s[:idx], " ")
	return strings.TrimRight(trailingComma.ReplaceAllString(prefix, ""), " ")
}

// FillDashedAuthors replaces a leading placeholder such as "---." with the
// author prefix of the closest earlier fragment that has one.
func FillDashedAuthors(texts []string, placeholder string, p *patterns.Context) []string {
	out := make([]string, len(texts))
	last := ""
	for i, s := range texts {
		trimmed := strings.TrimLeft(s, " ")
		if placeholder != "" && strings.HasPrefix(trimmed, placeholder) {
			if last != "" {
				out[i] = last + " " + strings.TrimLeft(trimmed[len(placeholder):], " ")
				continue
			}
			out[i] = s
			continue
		}
		if prefix := authorPrefix(trimmed, p); prefix != "" {
			last = prefix
		}
		out[i] = s
	}
	return out
}
