package patterns

import (
	"strconv"
	"strings"
)

// NumberStyle is a list-numbering convention.
type NumberStyle int

const (
	NoNumbering NumberStyle = iota
	BracketNumbering
	ParenNumbering
	BareNumbering
)

func (s NumberStyle) String() string {
	switch s {
	case BracketNumbering:
		return "bracket"
	case ParenNumbering:
		return "paren"
	case BareNumbering:
		return "bare"
	default:
		return "none"
	}
}

// Numbering holds the prefix matchers for each numbering style. Each
// matcher captures the number in group 1.
type Numbering struct {
	Bracket Matcher
	Paren   Matcher
	Bare    Matcher

	StripBracket Matcher
	StripParen   Matcher
	StripBare    Matcher
	// StripAny removes any leading list number; used when no style was
	// detected.
	StripAny Matcher
}

func buildNumbering(b *builder) *Numbering {
	return &Numbering{
		Bracket:      b.std("num_bracket", `^\[\s*(\d{1,3})\.??\s*\]`),
		Paren:        b.std("num_paren", `^\(\s*(\d{1,3})\.??\s*\)`),
		Bare:         b.std("num_bare", `^(\d{1,3})\.\s*`),
		StripBracket: b.std("strip_bracket", `^\s*\[\s*\d{1,3}\.??\s*\]\s*`),
		StripParen:   b.std("strip_paren", `^\s*\(\s*\d{1,3}\.??\s*\)\s*`),
		StripBare:    b.std("strip_bare", `^\s*\d{1,3}\.\s*`),
		StripAny:     b.std("strip_any", `^\s*(?:\d+\.\s*|\[\d+\]\s*|\d+\s+)`),
	}
}

// For returns the prefix matcher of style.
func (n *Numbering) For(style NumberStyle) Matcher {
	switch style {
	case BracketNumbering:
		return n.Bracket
	case ParenNumbering:
		return n.Paren
	case BareNumbering:
		return n.Bare
	}
	return nil
}

// Parse splits a numbered line into its number and remaining content.
func (n *Numbering) Parse(style NumberStyle, line string) (num int, rest string, out Outcome) {
	m := n.For(style)
	if m == nil {
		return 0, line, NotMatched
	}
	match, out := m.Find(line)
	if out != Matched {
		return 0, line, out
	}
	num, err := strconv.Atoi(match.Group(1).Text)
	if err != nil {
		return 0, line, NotMatched
	}
	return num, strings.TrimSpace(line[match.End():]), Matched
}

// Strip removes the list-number prefix of style from line. An unknown style
// falls back to removing any leading number.
func (n *Numbering) Strip(style NumberStyle, line string) string {
	var m Matcher
	switch style {
	case BracketNumbering:
		m = n.StripBracket
	case ParenNumbering:
		m = n.StripParen
	case BareNumbering:
		m = n.StripBare
	default:
		m = n.StripAny
	}
	match, out := m.Find(line)
	if out != Matched {
		return line
	}
	return line[match.End():]
}
