// Package doi finds DOI identifiers inside a reference and rewrites the
// reference so that each distinct identifier appears once, as a canonical
// https://doi.org/ URL, at the end.
package doi

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/matsen/refsplit/internal/patterns"
)

// CanonicalPrefix is prepended to every relocated identifier.
const CanonicalPrefix = "https://doi.org/"

// splitChars are the characters a wrapped identifier can break after.
const splitChars = ".-_"

// trimChars is the punctuation stripped from the end of a captured id.
const trimChars = ".,;()[]"

// Normalizer extracts and relocates DOIs. It is safe for concurrent use.
type Normalizer struct {
	p *patterns.DOI
}

// New returns a Normalizer using the given DOI matchers.
func New(p *patterns.DOI) *Normalizer {
	return &Normalizer{p: p}
}

// scan collects the first unavailable-matcher failure seen while matching.
type scan struct {
	err error
}

func (sc *scan) all(m patterns.Matcher, s string) []patterns.Match {
	ms, out := m.FindAll(s)
	if out == patterns.Unavailable && sc.err == nil {
		sc.err = fmt.Errorf("doi: %s: %w", m.Name(), patterns.ErrUnavailable)
	}
	return ms
}

func (sc *scan) match(m patterns.Matcher, s string) bool {
	out := m.Match(s)
	if out == patterns.Unavailable && sc.err == nil {
		sc.err = fmt.Errorf("doi: %s: %w", m.Name(), patterns.ErrUnavailable)
	}
	return out == patterns.Matched
}

func endsWithSplit(s string) bool {
	return s != "" && strings.ContainsRune(splitChars, rune(s[len(s)-1]))
}

// joinTwo rebuilds an identifier broken across a line wrap. ok is false when
// the first token does not end with a split character.
func joinTwo(first, second string) (string, bool) {
	if !endsWithSplit(first) {
		return "", false
	}
	return strings.TrimRight(strings.Join(strings.Fields(first+second), ""), trimChars), true
}

var (
	dupHTTPPrefix  = regexp.MustCompile(`(?i)(https?://(?:dx\.)?doi\.org/)(?:\s*https?://(?:dx\.)?doi\.org/)+`)
	afterHTTPRun   = regexp.MustCompile(`(?i)(https?://(?:dx\.)?doi\.org/)((?:\s*\S+){1,12})`)
	nameLikeToken  = regexp.MustCompile(`^(?:[A-Z][a-z]+,?|[A-Z]\.?|&|and)$`)
	anyWhitespace  = regexp.MustCompile(`\s+`)
	repeatedColon  = regexp.MustCompile(`(?i)(?:doi:\s*){2,}`)
	colonSpace     = regexp.MustCompile(`(?i)\bdoi:\s+`)
	httpInHTTP     = regexp.MustCompile(`(?i)https?://(?:dx\.)?doi\.org/https?://`)
	spaceBeforePct = regexp.MustCompile(`\s+([.,;:])`)
)

// collapseAfterHTTP glues the tokens following a DOI URL into one token when
// the first of them ends in a split character and the next does not look
// like the start of an author name.
func collapseAfterHTTP(s string) string {
	return afterHTTPRun.ReplaceAllStringFunc(s, func(m string) string {
		sub := afterHTTPRun.FindStringSubmatch(m)
		prefix, rest := sub[1], sub[2]
		toks := strings.Fields(rest)
		if len(toks) == 0 || !endsWithSplit(toks[0]) {
			return m
		}
		if len(toks) > 1 && nameLikeToken.MatchString(strings.Trim(toks[1], trimChars)) {
			return m
		}
		return prefix + strings.TrimRight(anyWhitespace.ReplaceAllString(rest, ""), trimChars)
	})
}

// ExtractIDs returns the valid DOI identifiers in text, without any URL
// prefix, deduplicated in order of first occurrence. Identifiers contained
// in a longer identifier from the same text are dropped.
func (n *Normalizer) ExtractIDs(text string) ([]string, error) {
	if text == "" {
		return nil, nil
	}
	var sc scan
	ref := dupHTTPPrefix.ReplaceAllString(text, "$1")
	ref = collapseAfterHTTP(ref)

	var ids []string
	for _, m := range sc.all(n.p.HTTP, ref) {
		ids = append(ids, strings.TrimRight(m.Group(1).Text, trimChars))
	}
	for _, m := range sc.all(n.p.Colon, ref) {
		part1, part2 := m.Group(1).Text, m.Group(2)
		cid := strings.TrimRight(part1, trimChars)
		if part2.OK {
			if joined, ok := joinTwo(part1, part2.Text); ok {
				cid = joined
			}
		}
		if inner, out := n.p.HTTP.Find(cid); out == patterns.Matched {
			cid = strings.TrimRight(inner.Group(1).Text, trimChars)
		}
		ids = append(ids, cid)
	}
	for _, m := range sc.all(n.p.ID, ref) {
		ids = append(ids, strings.TrimRight(m.Text(), trimChars))
	}
	for _, m := range sc.all(n.p.BrokenTwo, ref) {
		if cid, ok := joinTwo(m.Group(1).Text, m.Group(2).Text); ok {
			ids = append(ids, cid)
		}
	}
	if sc.err != nil {
		return nil, sc.err
	}

	var valid []string
	for _, cid := range ids {
		cid = strings.TrimSpace(cid)
		if strings.HasPrefix(cid, "[") && strings.HasSuffix(cid, "]") {
			cid = strings.TrimSpace(cid[1 : len(cid)-1])
		}
		if cid == "" || slices.Contains(valid, cid) || endsWithSplit(cid) {
			continue
		}
		if !sc.match(n.p.Valid, cid) {
			continue
		}
		valid = append(valid, cid)
	}
	if sc.err != nil {
		return nil, sc.err
	}

	var out []string
	for _, cid := range valid {
		if !slices.ContainsFunc(valid, func(other string) bool {
			return other != cid && strings.Contains(other, cid)
		}) {
			out = append(out, cid)
		}
	}
	return out, nil
}

type span struct{ start, end int }

// MoveToEnd removes every recognized DOI occurrence from ref and appends one
// canonical URL per distinct identifier. A reference without a valid DOI is
// returned unchanged. When a matcher is unavailable ref is returned
// unchanged together with an error wrapping patterns.ErrUnavailable.
func (n *Normalizer) MoveToEnd(ref string) (string, error) {
	text := repeatedColon.ReplaceAllString(ref, "doi:")
	text = colonSpace.ReplaceAllString(text, "doi:")
	text = normalizeFragment(text)
	text = fixBrokenTokens(text)
	text = separateURLs(text)

	var sc scan
	frags := n.splitAtDOIs(text, &sc)
	frags = conservativeReattach(frags)
	frags = n.aggressiveReattach(frags, &sc)
	text = strings.Join(frags, " ")
	if sc.err != nil {
		return ref, sc.err
	}

	ids, err := n.ExtractIDs(text)
	if err != nil {
		return ref, err
	}
	if len(ids) == 0 {
		return ref, nil
	}

	spans := n.spans(text, ids, &sc)
	if sc.err != nil {
		return ref, sc.err
	}
	body := removeSpans(text, spans)
	body = httpInHTTP.ReplaceAllString(body, "https://")
	body = strings.TrimRight(anyWhitespace.ReplaceAllString(strings.TrimSpace(body), " "), ".")
	body, err = n.removeStrayPrefixes(body)
	if err != nil {
		return ref, err
	}
	// Stripping a stray prefix can expose another trailing period.
	body = strings.TrimRight(cleanupDangling(body), ".")

	urls := make([]string, len(ids))
	for i, cid := range ids {
		urls[i] = CanonicalPrefix + cid
	}
	if body == "" {
		return strings.Join(urls, " "), nil
	}
	return body + ". " + strings.Join(urls, " "), nil
}

// spans returns the byte ranges of every DOI occurrence whose identifier is
// in ids.
func (n *Normalizer) spans(text string, ids []string, sc *scan) []span {
	var out []span
	add := func(m patterns.Match, cid string) {
		if slices.Contains(ids, cid) {
			out = append(out, span{m.Start(), m.End()})
		}
	}
	single := func(m patterns.Matcher) {
		for _, x := range sc.all(m, text) {
			add(x, strings.TrimRight(x.Group(1).Text, trimChars))
		}
	}
	tailed := func(m patterns.Matcher) {
		for _, x := range sc.all(m, text) {
			if cid, ok := joinTwo(x.Group(1).Text, x.Group(2).Text); ok {
				add(x, cid)
			}
		}
	}

	single(n.p.HTTP)
	single(n.p.Bare)
	tailed(n.p.HTTPTail)
	tailed(n.p.BareTail)
	for _, x := range sc.all(n.p.Colon, text) {
		part1, part2 := x.Group(1).Text, x.Group(2)
		if !part2.OK {
			add(x, strings.TrimRight(part1, trimChars))
			continue
		}
		if cid, ok := joinTwo(part1, part2.Text); ok {
			add(x, cid)
		}
	}
	for _, x := range sc.all(n.p.ID, text) {
		add(x, strings.TrimRight(x.Text(), trimChars))
	}
	tailed(n.p.BrokenTwo)
	return mergeSpans(out)
}

func mergeSpans(spans []span) []span {
	slices.SortFunc(spans, func(a, b span) int { return a.start - b.start })
	var merged []span
	for _, s := range spans {
		if k := len(merged) - 1; k >= 0 && s.start <= merged[k].end {
			merged[k].end = max(merged[k].end, s.end)
			continue
		}
		merged = append(merged, s)
	}
	return merged
}

func removeSpans(text string, spans []span) string {
	var b strings.Builder
	last := 0
	for _, s := range spans {
		b.WriteString(text[last:s.start])
		b.WriteByte(' ')
		last = s.end
	}
	b.WriteString(text[last:])
	return b.String()
}

var (
	prefixBeforeID = regexp.MustCompile(`(?i)\b(?:doi\.org/|dx\.doi\.org/)\s*(10\.[0-9]{4,9}/)`)
	colonToken     = regexp.MustCompile(`(?i)\bdoi:\s*([^\s)\],;]+)?`)
)

// removeStrayPrefixes drops "doi:" and "doi.org/" tokens that no longer
// precede an identifier.
func (n *Normalizer) removeStrayPrefixes(s string) (string, error) {
	if s == "" {
		return s, nil
	}
	s = prefixBeforeID.ReplaceAllString(s, "$1")

	stray, out := n.p.StrayPrefix.FindAll(s)
	if out == patterns.Unavailable {
		return s, fmt.Errorf("doi: %s: %w", n.p.StrayPrefix.Name(), patterns.ErrUnavailable)
	}
	if len(stray) > 0 {
		spans := make([]span, len(stray))
		for i, m := range stray {
			spans[i] = span{m.Start(), m.End()}
		}
		s = removeSpans(s, spans)
	}

	s = colonToken.ReplaceAllString(s, "$1")
	s = strings.TrimSpace(anyWhitespace.ReplaceAllString(s, " "))
	return spaceBeforePct.ReplaceAllString(s, "$1"), nil
}

var (
	danglingConnector = regexp.MustCompile(`(?i)\b(with|for|in|via)(?:\s+|\s*,\s*)(?:and|&)\s+`)
	danglingAnd       = regexp.MustCompile(`\s+\band\s+([.,;:])`)
)

// cleanupDangling removes connector words left stranded by a removed DOI,
// as in "available with and in the archive".
func cleanupDangling(s string) string {
	if s == "" {
		return s
	}
	s = danglingConnector.ReplaceAllString(s, "$1 ")
	s = danglingAnd.ReplaceAllString(s, " $1")
	s = strings.TrimSpace(anyWhitespace.ReplaceAllString(s, " "))
	return spaceBeforePct.ReplaceAllString(s, "$1")
}
