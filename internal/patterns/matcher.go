// Package patterns builds the compiled matchers shared by every segmentation
// pass. A Context is built once per run and passed explicitly to the rules.
package patterns

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/dlclark/regexp2"
)

// Outcome is the tri-state result of a heuristic check. The zero value is
// Unavailable so an unset result never reads as a confident answer.
type Outcome int

const (
	Unavailable Outcome = iota
	NotMatched
	Matched
)

// IsMatch reports whether the heuristic confidently matched.
func (o Outcome) IsMatch() bool { return o == Matched }

// Known reports whether the heuristic produced an answer at all.
func (o Outcome) Known() bool { return o != Unavailable }

func (o Outcome) String() string {
	switch o {
	case Matched:
		return "matched"
	case NotMatched:
		return "not-matched"
	default:
		return "unavailable"
	}
}

// Of converts a boolean into a known Outcome.
func Of(ok bool) Outcome {
	if ok {
		return Matched
	}
	return NotMatched
}

// Not negates a known outcome and leaves Unavailable alone.
func Not(o Outcome) Outcome {
	switch o {
	case Matched:
		return NotMatched
	case NotMatched:
		return Matched
	}
	return Unavailable
}

// Any combines outcomes: Matched if any matched, Unavailable if none matched
// and at least one was unavailable.
func Any(outs ...Outcome) Outcome {
	res := NotMatched
	for _, o := range outs {
		if o == Matched {
			return Matched
		}
		if o == Unavailable {
			res = Unavailable
		}
	}
	return res
}

// Group is one capture group of a match. Offsets are byte offsets into the
// searched string.
type Group struct {
	Start, End int
	Text       string
	OK         bool
}

// Match is a single regular-expression match. Groups[0] is the whole match.
type Match struct {
	Groups []Group
}

// Start returns the byte offset of the whole match.
func (m Match) Start() int { return m.Groups[0].Start }

// End returns the byte offset just past the whole match.
func (m Match) End() int { return m.Groups[0].End }

// Text returns the matched text.
func (m Match) Text() string { return m.Groups[0].Text }

// Group returns capture group i, or an empty group when out of range.
func (m Match) Group(i int) Group {
	if i < 0 || i >= len(m.Groups) {
		return Group{}
	}
	return m.Groups[i]
}

// Matcher is a named compiled pattern.
type Matcher interface {
	Name() string
	Match(s string) Outcome
	Find(s string) (Match, Outcome)
	FindAll(s string) ([]Match, Outcome)
}

// ErrUnavailable is wrapped by matchers that failed to build or execute.
var ErrUnavailable = errors.New("pattern unavailable")

type stdMatcher struct {
	name string
	re   *regexp.Regexp
}

func (m *stdMatcher) Name() string { return m.name }

func (m *stdMatcher) Match(s string) Outcome { return Of(m.re.MatchString(s)) }

func (m *stdMatcher) Find(s string) (Match, Outcome) {
	idx := m.re.FindStringSubmatchIndex(s)
	if idx == nil {
		return Match{}, NotMatched
	}
	return stdMatch(s, idx), Matched
}

func (m *stdMatcher) FindAll(s string) ([]Match, Outcome) {
	all := m.re.FindAllStringSubmatchIndex(s, -1)
	if len(all) == 0 {
		return nil, NotMatched
	}
	out := make([]Match, 0, len(all))
	for _, idx := range all {
		out = append(out, stdMatch(s, idx))
	}
	return out, Matched
}

func stdMatch(s string, idx []int) Match {
	groups := make([]Group, len(idx)/2)
	for i := range groups {
		a, b := idx[2*i], idx[2*i+1]
		if a < 0 {
			continue
		}
		groups[i] = Group{Start: a, End: b, Text: s[a:b], OK: true}
	}
	return Match{Groups: groups}
}

// backtrackMatcher wraps regexp2 for patterns that need lookaround.
type backtrackMatcher struct {
	name string
	re   *regexp2.Regexp
}

func (m *backtrackMatcher) Name() string { return m.name }

func (m *backtrackMatcher) Match(s string) Outcome {
	ok, err := m.re.MatchString(s)
	if err != nil {
		return Unavailable
	}
	return Of(ok)
}

func (m *backtrackMatcher) Find(s string) (Match, Outcome) {
	rm, err := m.re.FindStringMatch(s)
	if err != nil {
		return Match{}, Unavailable
	}
	if rm == nil {
		return Match{}, NotMatched
	}
	return convertMatch(rm, byteOffsets(s)), Matched
}

func (m *backtrackMatcher) FindAll(s string) ([]Match, Outcome) {
	offsets := byteOffsets(s)
	var out []Match
	rm, err := m.re.FindStringMatch(s)
	for err == nil && rm != nil {
		out = append(out, convertMatch(rm, offsets))
		rm, err = m.re.FindNextMatch(rm)
	}
	if err != nil {
		return out, Unavailable
	}
	if len(out) == 0 {
		return nil, NotMatched
	}
	return out, Matched
}

// byteOffsets maps rune indices (as reported by regexp2) to byte offsets.
// The slice has one extra entry for the end of the string.
func byteOffsets(s string) []int {
	offsets := make([]int, 0, len(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

func convertMatch(rm *regexp2.Match, offsets []int) Match {
	raw := rm.Groups()
	groups := make([]Group, len(raw))
	for i := range raw {
		g := &raw[i]
		if len(g.Captures) == 0 {
			continue
		}
		start := offsets[g.Index]
		end := offsets[g.Index+g.Length]
		groups[i] = Group{Start: start, End: end, Text: g.String(), OK: true}
	}
	return Match{Groups: groups}
}

type unavailableMatcher struct {
	name string
	err  error
}

func (m *unavailableMatcher) Name() string                      { return m.name }
func (m *unavailableMatcher) Match(string) Outcome              { return Unavailable }
func (m *unavailableMatcher) Find(string) (Match, Outcome)      { return Match{}, Unavailable }
func (m *unavailableMatcher) FindAll(string) ([]Match, Outcome) { return nil, Unavailable }
func (m *unavailableMatcher) Err() error                        { return m.err }

// builder compiles matchers and collects construction failures instead of
// returning them.
type builder struct {
	timeout time.Duration
	errs    []error
}

const defaultMatchTimeout = 250 * time.Millisecond

func (b *builder) std(name, expr string) Matcher {
	re, err := regexp.Compile(expr)
	if err != nil {
		return b.fail(name, err)
	}
	return &stdMatcher{name: name, re: re}
}

func (b *builder) backtrack(name, expr string, opts regexp2.RegexOptions) Matcher {
	re, err := regexp2.Compile(expr, opts)
	if err != nil {
		return b.fail(name, err)
	}
	re.MatchTimeout = b.timeout
	return &backtrackMatcher{name: name, re: re}
}

func (b *builder) fail(name string, err error) Matcher {
	wrapped := fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)
	b.errs = append(b.errs, wrapped)
	return &unavailableMatcher{name: name, err: wrapped}
}

// UnavailableMatcher returns a matcher that never reports a result. It is what the
// builders hand out when a pattern fails to compile.
func UnavailableMatcher(name string, err error) Matcher {
	return &unavailableMatcher{name: name, err: fmt.Errorf("%w: %s: %v", ErrUnavailable, name, err)}
}
