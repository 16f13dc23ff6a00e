package patterns

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
)

// Year pattern fragments. Years are bounded to 1750..2030.
const (
	yearNum    = `(?:17[5-9]\d|18\d{2}|19\d{2}|20(?:0\d|1\d|2\d|30))`
	yearSingle = yearNum + `[A-Za-z]?`
	months     = `(?:(?i:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|` +
		`Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)|Oct(?:ober)?|Nov(?:ember)?|` +
		`Dec(?:ember)?|januari|februari|mars|april|maj|juni|juli|augusti|september|` +
		`oktober|november|december))`
	yearDatePart   = `(?:\s*,?\s*` + months + `\s+\d{1,2}(?:st|nd|rd|th)?)?`
	fullDate       = `\d{1,2}\s+` + months + `\s+` + yearNum
	statusTokens   = `(?:(?i:forthcoming|in\s+press|submitted|unpublished|n\.?d\.?|no date|u\.?å\.?)(?:\s*(?:-\s*)?[A-Za-z])?)`
	isoDate        = yearNum + `-(?:0[1-9]|1[0-2])(?:-(?:0[1-9]|[12]\d|3[01]))?`
	doubleBracket  = yearSingle + `\s*\[` + yearSingle + `\]`
	doubleSlash    = yearSingle + `/` + yearSingle
	yearParenInner = `(?:` + doubleBracket + `|` + doubleSlash + `|` + fullDate + `|` +
		yearSingle + yearDatePart + `(?:\s*\[` + yearSingle + `\])?|` + isoDate + `)`
	yearParen = `\((?:` + yearParenInner + `|` + statusTokens + `)\)`

	// bareYear rejects years embedded in longer digit runs and only keeps a
	// trailing period when whitespace follows.
	bareYear = `(?<!\d)[\(\[]?(?:` + isoDate + `|` + yearNum + `)(?:[A-Pa-p])?(?:\.(?=\s)|[,:;])?[\)\]]?(?!\d)`
)

// hyphenLike are the characters that disqualify an adjacent bare year.
const hyphenLike = "-\u00ad\u2010\u2011\u2012\u2013\u2014\u2015\u2212"

var isoDateRe = regexp.MustCompile(`\b\d{4}-\d{2}(?:-\d{2})?\b`)

// Years groups the year-token matchers.
type Years struct {
	Paren      Matcher // anywhere
	ParenEnd   Matcher // at the end of the string
	ParenStart Matcher // at the start of the string
	Bare       Matcher // bare or bracketed year, digit-guarded
	// ParenInner is the raw inner expression, for patterns built elsewhere.
	ParenInner string
}

func buildYears(b *builder) *Years {
	return &Years{
		Paren:      b.std("year_paren", yearParen),
		ParenEnd:   b.std("year_paren_end", yearParen+`\s*[.,;:]?\s*$`),
		ParenStart: b.std("year_paren_start", `^\s*`+yearParen),
		Bare:       b.backtrack("year_bare", bareYear, regexp2.None),
		ParenInner: yearParenInner,
	}
}

// acceptable returns the bare-year matches that are not glued to a hyphen,
// keeping ISO dates regardless.
func (y *Years) acceptable(s string) ([]Match, Outcome) {
	all, out := y.Bare.FindAll(s)
	if out == Unavailable {
		return nil, Unavailable
	}
	var kept []Match
	for _, m := range all {
		before, _ := utf8.DecodeLastRuneInString(s[:m.Start()])
		after, _ := utf8.DecodeRuneInString(s[m.End():])
		if m.Start() > 0 && strings.ContainsRune(hyphenLike, before) ||
			m.End() < len(s) && strings.ContainsRune(hyphenLike, after) {
			if !isoDateRe.MatchString(m.Text()) {
				continue
			}
		}
		kept = append(kept, m)
	}
	return kept, Of(len(kept) > 0)
}

// Found reports whether s contains an acceptable bare or bracketed year.
func (y *Years) Found(s string) Outcome {
	if s == "" {
		return NotMatched
	}
	_, out := y.acceptable(s)
	return out
}

// Contains reports whether s carries a year token. With parenOnly only
// parenthesized years count.
func (y *Years) Contains(s string, parenOnly bool) Outcome {
	if parenOnly {
		return y.Paren.Match(s)
	}
	return Any(y.Paren.Match(s), y.Found(s))
}

// Count returns the number of year tokens in s.
func (y *Years) Count(s string, parenOnly bool) (int, Outcome) {
	paren, out := y.Paren.FindAll(s)
	if out == Unavailable {
		return 0, Unavailable
	}
	if parenOnly {
		return len(paren), Of(len(paren) > 0)
	}
	bare, out := y.acceptable(s)
	if out == Unavailable {
		return 0, Unavailable
	}
	// A parenthesized year is also matched by the bare pattern.
	n := len(bare)
	if len(paren) > n {
		n = len(paren)
	}
	return n, Of(n > 0)
}

// EndsWith reports whether s ends with a year token, ignoring trailing
// punctuation.
func (y *Years) EndsWith(s string, parenOnly bool) Outcome {
	paren := y.ParenEnd.Match(s)
	if parenOnly || paren == Matched {
		return paren
	}
	all, out := y.acceptable(s)
	if out != Matched {
		return out
	}
	last := all[len(all)-1]
	rest := strings.TrimRight(s[last.End():], " .,;:")
	return Of(rest == "")
}

// StartsWith reports whether s begins with a year token.
func (y *Years) StartsWith(s string, parenOnly bool) Outcome {
	paren := y.ParenStart.Match(s)
	if parenOnly || paren == Matched {
		return paren
	}
	all, out := y.acceptable(s)
	if out != Matched {
		return out
	}
	return Of(strings.TrimSpace(s[:all[0].Start()]) == "")
}

// FirstIndex returns the byte offset of the first year token, preferring
// whichever of the parenthesized and bare forms occurs earlier.
func (y *Years) FirstIndex(s string) (int, Outcome) {
	best := -1
	if m, out := y.Paren.Find(s); out == Matched {
		best = m.Start()
	} else if out == Unavailable {
		return -1, Unavailable
	}
	all, out := y.acceptable(s)
	if out == Unavailable {
		return -1, Unavailable
	}
	if len(all) > 0 && (best < 0 || all[0].Start() < best) {
		best = all[0].Start()
	}
	return best, Of(best >= 0)
}
