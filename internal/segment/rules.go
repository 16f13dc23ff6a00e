package segment

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/patterns"
)

// Decision is a rule's verdict about a candidate line.
type Decision int

const (
	// Abstain leaves the decision to later rules.
	Abstain Decision = iota
	// Start opens a new reference.
	Start
	// Continue folds the candidate into the previous fragment.
	Continue
	// SplitAt cuts a fragment in two at Verdict.At.
	SplitAt
)

func (d Decision) String() string {
	switch d {
	case Start:
		return "start"
	case Continue:
		return "continue"
	case SplitAt:
		return "split"
	default:
		return "abstain"
	}
}

// Verdict is the result of one rule.
type Verdict struct {
	Decision Decision
	// At is the byte offset of a split.
	At int
	// Drop merges the candidate's lines without its text.
	Drop bool
	// Number records the list number of a Start.
	Number int
	// Unavailable marks an abstention caused by a pattern that could not
	// answer, as opposed to one that answered no.
	Unavailable bool
}

var (
	abstain     = Verdict{}
	start       = Verdict{Decision: Start}
	continuing  = Verdict{Decision: Continue}
	unavailable = Verdict{Unavailable: true}
)

// Input is what a rule sees: the accumulated previous fragment, the
// candidate line and the line after it.
type Input struct {
	Prev    string
	HasPrev bool
	// PrevNumber is the last list number seen in the previous fragment.
	PrevNumber int
	PrevLines  int

	Line string

	Next    string
	HasNext bool

	P         *patterns.Context
	Cfg       *config.Style
	Numbering patterns.NumberStyle
}

// Rule is a named pure decision function.
type Rule struct {
	Name  string
	Apply func(Input) Verdict
}

// when maps a tri-state outcome to v, abstaining on NotMatched.
func when(o patterns.Outcome, v Verdict) Verdict {
	switch o {
	case patterns.Matched:
		return v
	case patterns.Unavailable:
		return unavailable
	}
	return abstain
}

// GovernmentMarker makes every Prop./SOU/SFS/Ds line a new reference.
var GovernmentMarker = Rule{Name: "government-marker", Apply: func(in Input) Verdict {
	return when(in.P.Government.Marker(in.Line), start)
}}

// NumberedLine consumes list numbering. A numbered line with content opens
// a reference. A bare number one past the previous reference's number is a
// stub and is dropped; any other bare number or unnumbered line continues
// the previous reference.
var NumberedLine = Rule{Name: "numbered-line", Apply: func(in Input) Verdict {
	num, rest, out := in.P.Numbering.Parse(in.Numbering, in.Line)
	switch out {
	case patterns.Unavailable:
		return unavailable
	case patterns.NotMatched:
		if !in.HasPrev {
			return abstain
		}
		return continuing
	}
	if rest != "" || !in.HasPrev {
		return Verdict{Decision: Start, Number: num}
	}
	if in.PrevNumber > 0 && num == in.PrevNumber+1 {
		return Verdict{Decision: Continue, Drop: true, Number: num}
	}
	return continuing
}}

// LeadingYear continues a fragment with a line that opens with a year.
var LeadingYear = Rule{Name: "leading-year", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	return when(in.P.StartsWithYear(in.Line), continuing)
}}

// TrailingYear continues a fragment that ends with a year.
var TrailingYear = Rule{Name: "trailing-year", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	return when(in.P.EndsWithYear(in.Prev), continuing)
}}

// Singleton absorbs whitespace-free tokens that carry a digit or bracket,
// typically pieces of a DOI or URL broken over several lines.
var Singleton = Rule{Name: "singleton", Apply: func(in Input) Verdict {
	if !in.HasPrev || strings.IndexFunc(in.Line, unicode.IsSpace) >= 0 {
		return abstain
	}
	if strings.IndexFunc(in.Line, unicode.IsDigit) >= 0 || strings.ContainsAny(in.Line, "()[]{}/:") {
		return continuing
	}
	return abstain
}}

// WrappedInitials continues a fragment ending in a comma or initial with a
// line of initials followed by the year.
var WrappedInitials = Rule{Name: "wrapped-initials", Apply: func(in Input) Verdict {
	if !in.HasPrev || !in.P.Authors.EndsWithCommaOrInitial(in.Prev) {
		return abstain
	}
	out := in.P.Authors.InitialsParenYear.Match(in.Line)
	if out != patterns.Matched && !in.P.ParenYearsOnly {
		out = patterns.Any(out, in.P.Authors.InitialsBareYear.Match(in.Line))
	}
	return when(out, continuing)
}}

// Conjunction continues a fragment whose author list ends in "&", "and" or
// "och".
var Conjunction = Rule{Name: "conjunction", Apply: func(in Input) Verdict {
	if in.HasPrev && patterns.EndsWithConjunction(in.Prev) {
		return continuing
	}
	return abstain
}}

// AmpersandStart continues an author line with a line opening with "&".
var AmpersandStart = Rule{Name: "ampersand-start", Apply: func(in Input) Verdict {
	if !in.HasPrev || !strings.HasPrefix(in.Line, "&") {
		return abstain
	}
	return when(in.P.Authors.StartsLike(in.Prev), continuing)
}}

// EditorOnly continues a fragment with a yearless line whose first
// parenthetical is an editor token, such as "(Eds.), Handbook of ...".
var EditorOnly = Rule{Name: "editor-only", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	parens := patterns.Parentheticals(in.Line)
	if len(parens) == 0 {
		return abstain
	}
	year := in.P.HasYear(in.Line)
	if year != patterns.NotMatched {
		return declined(year)
	}
	return when(in.P.Authors.IsEditorToken(parens[0].Text), continuing)
}}

// EditorTrailing continues a fragment whose last parenthetical is an editor
// token followed only by punctuation, unless the candidate is itself a
// complete author head.
var EditorTrailing = Rule{Name: "editor-trailing", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	parens := patterns.Parentheticals(in.Prev)
	if len(parens) == 0 {
		return abstain
	}
	last := parens[len(parens)-1]
	if !patterns.IsPunctuationOnly(in.Prev[last.End:]) {
		return abstain
	}
	ed := in.P.Authors.IsEditorToken(last.Text)
	if ed != patterns.Matched {
		return declined(ed)
	}
	year := in.P.HasYear(in.Line)
	if year != patterns.NotMatched {
		return declined(year)
	}
	head := in.P.Authors.IsStrictHead(in.Line)
	switch head {
	case patterns.Matched:
		return start
	case patterns.Unavailable:
		return unavailable
	}
	return continuing
}}

// AuthorHead continues a yearless, digit-free author line with the line
// after it.
var AuthorHead = Rule{Name: "author-head", Apply: func(in Input) Verdict {
	if !in.HasPrev || patterns.HasDigit(in.Prev) || whitespaceCount(in.Prev) < 2 {
		return abstain
	}
	year := in.P.HasYear(in.Prev)
	if year != patterns.NotMatched {
		return declined(year)
	}
	a := in.P.Authors
	return when(patterns.Any(
		a.Pattern.Match(in.Prev),
		a.StartsLike(in.Prev),
		patterns.Of(isCommaList(in.Prev)),
	), continuing)
}}

// DefaultJoin folds every yearless line into the previous fragment. When
// bare years are accepted, a line that opens with an author head but is not
// an author-only line starts a new reference instead.
var DefaultJoin = Rule{Name: "default-join", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	year := in.P.HasYear(in.Line)
	if year != patterns.NotMatched {
		return declined(year)
	}
	if !in.P.ParenYearsOnly {
		a := in.P.Authors
		if a.StartsLike(in.Line) == patterns.Matched &&
			a.IsAuthorLine(in.Line, in.Next, in.P.Years) == patterns.NotMatched {
			return start
		}
	}
	return continuing
}}

// AuthorCollapse folds consecutive author-only lines together.
var AuthorCollapse = Rule{Name: "author-collapse", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	a := in.P.Authors
	prev := a.IsAuthorLine(in.Prev, in.Line, in.P.Years)
	if prev != patterns.Matched {
		return declined(prev)
	}
	return when(a.IsAuthorLine(in.Line, in.Next, in.P.Years), continuing)
}}

// YearTerminated keeps appending lines to a fragment until it holds a year,
// for layouts that close each reference with its year.
var YearTerminated = Rule{Name: "year-terminated", Apply: func(in Input) Verdict {
	if !in.HasPrev || in.PrevLines > in.Cfg.MaxAppend {
		return abstain
	}
	return when(patterns.Not(in.P.Years.Found(in.Prev)), continuing)
}}

// ShortFragment folds fragments with at most ShortFragmentMaxSpaces spaces
// into the previous one, unless they open with an author head.
var ShortFragment = Rule{Name: "short-fragment", Apply: func(in Input) Verdict {
	if !in.HasPrev || strings.Count(in.Line, " ") > in.Cfg.ShortFragmentMaxSpaces {
		return abstain
	}
	if in.P.Authors.StartsLike(in.Line) == patterns.Matched {
		return abstain
	}
	return continuing
}}

var urlPrefixSuffixes = []string{"https://www.", "https://", "doi.org/", "doi.org", "doi.", "www.", "doi:"}

// URLPrefixJoin continues a fragment that ends in a dangling URL or DOI
// prefix with the rest of the address on the next line.
var URLPrefixJoin = Rule{Name: "url-prefix-join", Apply: func(in Input) Verdict {
	if !in.HasPrev {
		return abstain
	}
	prev := strings.ToLower(strings.TrimRight(in.Prev, " "))
	matched := false
	for _, suf := range urlPrefixSuffixes {
		if strings.HasSuffix(prev, suf) {
			matched = true
			break
		}
	}
	if !matched || strings.HasPrefix(in.Line, "(") || strings.HasPrefix(in.Line, "[") {
		return abstain
	}
	if in.P.Authors.IsAuthorLine(in.Line, in.Next, in.P.Years) == patterns.Matched {
		return abstain
	}
	return continuing
}}

var (
	trailerShape  = regexp.MustCompile(`^(.*\]\.)\s+(.+)$`)
	accessedShape = regexp.MustCompile(`(?i)^(.*?\[accessed(?: on)? \d{4}-\d{2}-\d{2}\]\.?)\s+(.+)$`)
)

// TrailerSplit splits "<text>]. <author head> ..." when the fragment holds
// at least TrailerMinYears years.
var TrailerSplit = Rule{Name: "trailer-split", Apply: func(in Input) Verdict {
	n, out := in.P.Years.Count(in.Line, in.P.ParenYearsOnly)
	if out == patterns.Unavailable {
		return unavailable
	}
	if n < in.Cfg.TrailerMinYears {
		return abstain
	}
	return splitBefore(in, trailerShape)
}}

// AccessedSplit splits after an "[accessed on YYYY-MM-DD]" note that is
// followed by a new author head.
var AccessedSplit = Rule{Name: "accessed-split", Apply: func(in Input) Verdict {
	return splitBefore(in, accessedShape)
}}

func splitBefore(in Input, shape *regexp.Regexp) Verdict {
	idx := shape.FindStringSubmatchIndex(in.Line)
	if idx == nil {
		return abstain
	}
	rhs := in.Line[idx[4]:idx[5]]
	return when(in.P.Authors.StartsLike(rhs), Verdict{Decision: SplitAt, At: idx[4]})
}

// declined abstains, flagging the abstention when o could not be computed.
func declined(o patterns.Outcome) Verdict {
	if o == patterns.Unavailable {
		return unavailable
	}
	return abstain
}

func whitespaceCount(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsSpace(r) {
			n++
		}
	}
	return n
}

func isCommaList(s string) bool {
	s = strings.TrimRight(s, " ")
	return strings.HasSuffix(s, ",") && strings.Count(s, ",") >= 2
}
