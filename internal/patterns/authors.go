package patterns

import (
	"regexp"
	"strings"

	"github.com/dlclark/regexp2"
)

// Author-head fragments. upper covers the capitals seen in Nordic and
// continental names.
const (
	upper     = `A-ZÅÄÖÜÉÑÇŞŽŠĐĆČŁÓŚŹŻÁØÍÚÈÆÔ`
	lower     = `a-zåäöüéñçşžšđćčłóśźżáøíúèæô`
	particles = `(?:von|van|der|van\s+der|de|di|av|af|de\s+la|del|dos|da|le|la|du|mac|mc|san|st|bin|ibn|d'|l')`

	surnamePart  = `(?:(?i:` + particles + `)\s+)?[` + upper + `][\w'’\-.]+`
	surnameToken = surnamePart + `(?:(?: {1,3}|-)` + surnamePart + `){0,2}`
	authorSep    = `(?:,\s{0,3}| {1,3})`
	sepComma     = `,\s*`
	initial      = `[` + upper + `](?:\.)?(?=(?:\s|$|[\.,;:\)\(\-&/]))`
	initials     = initial + `(?:(?: {1,3}|[.\-])` + initial + `){0,3}`
	ellipsis     = `(?:\.{3}|\.\s*\.\s*\.)`
	etAl         = `(?:(?i:et\s+al\.?))`
	connector    = `(?: {0,3}, {0,3}| {0,3}; {0,3}| {0,3}& {0,3}| {0,3}(?i:and) {0,3}| {0,3}(?i:och) {0,3}|` +
		` {0,3}, {0,3}& {0,3}| {0,3}, {0,3}(?i:and) {0,3}| {0,3}, {0,3}(?i:och) {0,3})`
	trailer = `(?:` + connector + `(?:` + ellipsis + `|` + etAl + `|` + surnameToken + authorSep + initials + `))*`

	givenName           = `[` + upper + `][` + lower + `]+`
	givenNameToken      = givenName + `(?:(?:-| {1,3})` + givenName + `){0,3}`
	givenNameInitials   = givenNameToken + `(?: {1,3}` + initials + `)?`
	editorTokenExpr     = `(?i)^(?:eds?|red)\.?$`
	initialsParenPrefix = `^\s*(?:[` + upper + `]\.?\s+){1,3}\s*`
)

// Authors groups the author-head matchers. The *Active fields follow the
// full-name detection setting.
type Authors struct {
	Pattern         Matcher // surname, initials and trailing co-authors
	StartLike       Matcher // surname and initials, word boundary after
	StartLikeMulti  Matcher // surname and initials, no boundary
	FullName        Matcher
	FullNameStart   Matcher
	Active          Matcher
	StartLikeActive Matcher

	InitialsParenYear Matcher // "J. A. (2020)" at line start
	InitialsBareYear  Matcher // "J. A. 2020" at line start
	InitialStart      Matcher // a single initial at line start

	EditorToken Matcher

	fullName bool
}

var (
	parenthetical  = regexp.MustCompile(`\(([^()]*)\)`)
	endsInitial    = regexp.MustCompile(`(?:^|[\s,;&.])[` + upper + `]\.?$`)
	anyDigit       = regexp.MustCompile(`\d`)
	punctOnly      = regexp.MustCompile(`^[\s.,:;\-—–&"'()\[\]]*$`)
	looseYear      = regexp.MustCompile(`\b(?:17|18|19|20)\d{2}\b`)
	initialLike    = regexp.MustCompile(`^[A-Za-z](?:\.|\b)`)
	connectorStart = regexp.MustCompile(`^(?:,|&|\band\b)`)
	trailingConj   = regexp.MustCompile(`(?i)(?:&|\band|\boch)$`)
)

func buildAuthors(b *builder, fullName bool) *Authors {
	a := &Authors{
		Pattern:           b.backtrack("author_pattern", `^`+surnameToken+authorSep+initials+trailer+`\b`, regexp2.None),
		StartLike:         b.backtrack("author_start_like", `^`+surnameToken+authorSep+initials+`\b`, regexp2.None),
		StartLikeMulti:    b.backtrack("author_start_like_multi", `^`+surnameToken+authorSep+initials, regexp2.None),
		FullName:          b.backtrack("author_fullname", `^`+surnameToken+sepComma+givenNameInitials+trailer+`\b`, regexp2.None),
		FullNameStart:     b.backtrack("author_fullname_start", `^`+surnameToken+sepComma+givenNameToken, regexp2.None),
		InitialsParenYear: b.std("initials_paren_year", initialsParenPrefix+yearParen),
		InitialsBareYear:  b.std("initials_bare_year", initialsParenPrefix+`[\(\[]?`+yearNum+`\b`),
		InitialStart:      b.backtrack("initial_start", `^\s*`+initial, regexp2.None),
		EditorToken:       b.std("editor_token", editorTokenExpr),
		fullName:          fullName,
	}
	a.Active, a.StartLikeActive = a.Pattern, a.StartLikeMulti
	if fullName {
		a.Active, a.StartLikeActive = a.FullName, a.FullNameStart
	}
	return a
}

// FullNameDetection reports whether the active matchers expect given names.
func (a *Authors) FullNameDetection() bool { return a.fullName }

// IsStrictHead reports whether line opens with a complete author head.
func (a *Authors) IsStrictHead(line string) Outcome {
	return a.Active.Match(line)
}

// StartsLike reports whether line opens like an author head. The matched
// prefix must not contain digits.
func (a *Authors) StartsLike(line string) Outcome {
	m, out := a.StartLikeActive.Find(line)
	if out != Matched {
		return out
	}
	return Of(!anyDigit.MatchString(m.Text()))
}

// EndsWithCommaOrInitial reports whether s ends with a comma or a lone
// initial, the shape of an author list broken before its last initials.
func (a *Authors) EndsWithCommaOrInitial(s string) bool {
	s = strings.TrimRight(s, " ")
	return strings.HasSuffix(s, ",") || endsInitial.MatchString(s)
}

// EndsWithConjunction reports whether s ends with "&", "and" or "och".
func EndsWithConjunction(s string) bool {
	return trailingConj.MatchString(strings.TrimSpace(s))
}

// IsEditorToken reports whether tok (the inside of a parenthetical) names
// an editor.
func (a *Authors) IsEditorToken(tok string) Outcome {
	return a.EditorToken.Match(strings.TrimSpace(tok))
}

// Parentheticals returns the contents of every innermost parenthetical in s
// with their byte spans.
func Parentheticals(s string) []Group {
	var out []Group
	for _, idx := range parenthetical.FindAllStringSubmatchIndex(s, -1) {
		out = append(out, Group{Start: idx[0], End: idx[1], Text: s[idx[2]:idx[3]], OK: true})
	}
	return out
}

// HasDigit reports whether s contains an ASCII digit.
func HasDigit(s string) bool { return anyDigit.MatchString(s) }

// IsPunctuationOnly reports whether s holds nothing but separators.
func IsPunctuationOnly(s string) bool { return punctOnly.MatchString(s) }

// IsAuthorLine reports whether line consists of author names only, with no
// title text and no year. next is the following line, used to judge lines
// that end in a comma before wrapped initials.
func (a *Authors) IsAuthorLine(line, next string, years *Years) Outcome {
	line = strings.TrimSpace(line)
	if line == "" {
		return NotMatched
	}
	if strings.HasPrefix(line, ",") {
		return NotMatched
	}

	if strings.HasSuffix(line, ",") && next != "" {
		start := a.StartLikeActive.Match(line)
		ini := a.InitialStart.Match(next)
		if start == Matched && ini == Matched {
			return Not(years.Found(line))
		}
	}

	m, out := a.Active.Find(line)
	if out == Unavailable {
		return Unavailable
	}
	if out == NotMatched {
		m2, out2 := a.StartLikeActive.Find(line)
		if out2 != Matched {
			return out2
		}
		if m2.End() != len(line) || HasDigit(m2.Text()) {
			return NotMatched
		}
		return Not(years.Found(line))
	}

	prefix := m.Text()
	if HasDigit(prefix) {
		return NotMatched
	}
	after := strings.TrimSpace(line[m.End():])
	if IsPunctuationOnly(after) {
		after = ""
	}
	if after != "" {
		if a.fullName {
			// a full-name head must cover the line
			return NotMatched
		}
		if !initialLike.MatchString(after) && !connectorStart.MatchString(after) {
			return NotMatched
		}
	}
	if looseYear.MatchString(line) {
		return NotMatched
	}
	return Not(years.Found(line))
}
