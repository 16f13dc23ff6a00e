package segment

import (
	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/patterns"
)

// NumberingDetection is the outcome of scanning a document for list numbers.
type NumberingDetection struct {
	Style   patterns.NumberStyle
	Bracket int
	Paren   int
	Bare    int
}

// Count returns the number of lines matching the detected style.
func (d NumberingDetection) Count() int {
	switch d.Style {
	case patterns.BracketNumbering:
		return d.Bracket
	case patterns.ParenNumbering:
		return d.Paren
	case patterns.BareNumbering:
		return d.Bare
	}
	return 0
}

// DetectNumbering counts bracket, parenthesized and bare list numbers and
// picks the most frequent style that clears its threshold.
func DetectNumbering(texts []string, p *patterns.Context, cfg config.Style) NumberingDetection {
	var d NumberingDetection
	n := p.Numbering
	for _, s := range texts {
		if n.Bracket.Match(s) == patterns.Matched {
			d.Bracket++
		}
		if n.Paren.Match(s) == patterns.Matched {
			d.Paren++
		}
		if n.Bare.Match(s) == patterns.Matched {
			d.Bare++
		}
	}

	best := 0
	consider := func(style patterns.NumberStyle, count, threshold int) {
		if count >= threshold && count >= cfg.TriggerThreshold() && count > best {
			d.Style, best = style, count
		}
	}
	consider(patterns.BracketNumbering, d.Bracket, cfg.Numbering.Bracket)
	consider(patterns.ParenNumbering, d.Paren, cfg.Numbering.Paren)
	consider(patterns.BareNumbering, d.Bare, cfg.BareThreshold())
	return d
}

// threshold returns the configured minimum count of style.
func threshold(style patterns.NumberStyle, cfg config.Style) int {
	switch style {
	case patterns.BracketNumbering:
		return cfg.Numbering.Bracket
	case patterns.ParenNumbering:
		return cfg.Numbering.Paren
	case patterns.BareNumbering:
		return cfg.BareThreshold()
	}
	return cfg.MaxJoinIterations
}
