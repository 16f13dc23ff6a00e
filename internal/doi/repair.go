package doi

import (
	"regexp"
	"strings"
)

var (
	brokenTenAfterURL   = regexp.MustCompile(`(?i)(https?://(?:dx\.)?doi\.org/)\s*1\s+0\.`)
	brokenTenAfterColon = regexp.MustCompile(`(?i)(doi:\s*)1\s+0\.`)
	brokenTen           = regexp.MustCompile(`\b1\s+0\.(\d)`)
	spaceAfterURL       = regexp.MustCompile(`(?i)(https?://(?:dx\.)?doi\.org/)\s+(10\.[0-9]{2,9})`)
	spaceAfterColon     = regexp.MustCompile(`(?i)(doi:)\s+(10\.[0-9]{2,9})`)
	bareIDToken         = regexp.MustCompile(`\b10\.[0-9]{2,9}[^\s)\]\\,;]{0,200}`)
	escapedUnderscore   = regexp.MustCompile(`\{\s*\\?_+\s*\}`)
	spaceAfterSlash     = regexp.MustCompile(`(10\.[0-9]{2,9}/)\s+([A-Za-z0-9\-._/{}]+)`)
)

// prefixMarkers show that an identifier already carries a URL or doi:
// prefix when found shortly before it.
var prefixMarkers = []string{"doi.org", "doi:", "http://", "https://"}

const markerWindow = 30

// normalizeFragment closes whitespace that extraction left inside DOI
// tokens and gives bare identifiers a doi.org/ prefix so that every form
// splits and matches the same way.
func normalizeFragment(s string) string {
	if strings.Contains(strings.ToLower(s), "doi") {
		s = brokenTenAfterURL.ReplaceAllString(s, "${1}10.")
		s = brokenTenAfterColon.ReplaceAllString(s, "${1}10.")
		s = brokenTen.ReplaceAllString(s, "10.$1")
	}
	s = spaceAfterURL.ReplaceAllString(s, "$1$2")
	s = spaceAfterColon.ReplaceAllString(s, "$1$2")
	s = prefixBareIDs(s)
	s = escapedUnderscore.ReplaceAllString(s, "_")
	return spaceAfterSlash.ReplaceAllStringFunc(s, func(m string) string {
		sub := spaceAfterSlash.FindStringSubmatch(m)
		return sub[1] + sub[2]
	})
}

func prefixBareIDs(s string) string {
	var b strings.Builder
	last := 0
	for _, loc := range bareIDToken.FindAllStringIndex(s, -1) {
		pre := strings.ToLower(s[max(0, loc[0]-markerWindow):loc[0]])
		b.WriteString(s[last:loc[0]])
		if !containsAny(pre, prefixMarkers) {
			b.WriteString("doi.org/")
		}
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

var (
	spacedDotOrg  = regexp.MustCompile(`(?i)\bdoi\.\s+org\b`)
	gluedID       = regexp.MustCompile(`(?i)(https?://doi\.org)\s*10\.`)
	gluedTen      = regexp.MustCompile(`(?i)(https?://doi\.org)10([^\d/.]|$)`)
	gluedURLLeft  = regexp.MustCompile(`(?i)([\p{L}\d.,;])(https?://(?:dx\.)?doi\.org/)`)
	gluedURLRight = regexp.MustCompile(`(?i)(doi\.org/10\.\d{4,9}/[^\s)\],;]*?[^\s)\],;.])(https?://)`)
)

// fixBrokenTokens repairs DOI URLs that extraction broke apart or glued to
// their neighbours.
func fixBrokenTokens(s string) string {
	s = spacedDotOrg.ReplaceAllString(s, "doi.org")
	s = gluedID.ReplaceAllString(s, "$1/10.")
	return gluedTen.ReplaceAllString(s, "$1/10$2")
}

// separateURLs puts a space between a DOI URL and text glued to either side
// of it.
func separateURLs(s string) string {
	s = gluedURLLeft.ReplaceAllString(s, "$1 $2")
	return gluedURLRight.ReplaceAllString(s, "$1 $2")
}

// splitAtDOIs cuts text after every DOI or DOI-URL token. Text before a
// token stays in the token's fragment.
func (n *Normalizer) splitAtDOIs(text string, sc *scan) []string {
	var out []string
	rest := text
	for {
		ms := sc.all(n.p.Split, rest)
		if len(ms) == 0 {
			if rest = strings.TrimSpace(rest); rest != "" || len(out) == 0 {
				out = append(out, rest)
			}
			return out
		}
		m := ms[0]
		before := strings.TrimSpace(rest[:m.Start()])
		tok := strings.TrimSpace(m.Text())
		if before != "" {
			tok = before + " " + tok
		}
		out = append(out, tok)
		rest = rest[m.End():]
		if strings.TrimSpace(rest) == "" {
			return out
		}
	}
}

var (
	endsLikePrefix  = regexp.MustCompile(`(?i)(?:doi\.org/?|dx\.doi\.org/?|doi:|https?://)$`)
	startsLikeDOI   = regexp.MustCompile(`(?i)^[\s\W]*(?:10\.[0-9]+|doi\.org|dx\.doi\.org)`)
	leadingPunct    = regexp.MustCompile(`^[\s.:;,\-()\[\]]+`)
	continuationTok = regexp.MustCompile(`^[A-Za-z0-9\-._/]+$`)
	internalDot     = regexp.MustCompile(`\.[A-Za-z0-9]`)
)

// conservativeReattach joins a fragment that ends in an explicit DOI or URL
// prefix with a following fragment that starts like an identifier.
func conservativeReattach(frags []string) []string {
	if len(frags) == 0 {
		return frags
	}
	out := []string{frags[0]}
	for _, cur := range frags[1:] {
		prev := strings.TrimSpace(out[len(out)-1])
		if (endsLikePrefix.MatchString(prev) || strings.HasSuffix(prev, "/")) && startsLikeDOI.MatchString(cur) {
			out[len(out)-1] = strings.TrimRight(out[len(out)-1], " ") + leadingPunct.ReplaceAllString(cur, "")
			continue
		}
		out = append(out, cur)
	}
	return out
}

// aggressiveReattach joins a fragment that opens with a DOI with the next
// fragment when that fragment's first token plausibly continues the
// identifier: it must carry a digit, an underscore or an inner dot.
func (n *Normalizer) aggressiveReattach(frags []string, sc *scan) []string {
	if len(frags) == 0 {
		return frags
	}
	out := []string{frags[0]}
	for _, cur := range frags[1:] {
		prev := strings.TrimSpace(out[len(out)-1])
		if strings.HasSuffix(prev, ",") || strings.HasSuffix(prev, ";") || strings.HasSuffix(prev, ":") ||
			!sc.match(n.p.StartsLikeID, prev) {
			out = append(out, cur)
			continue
		}
		clean := leadingPunct.ReplaceAllString(cur, "")
		fields := strings.Fields(clean)
		if len(fields) == 0 || !continuesID(fields[0]) {
			out = append(out, cur)
			continue
		}
		out[len(out)-1] = strings.TrimRight(out[len(out)-1], " ") + clean
	}
	return out
}

func continuesID(tok string) bool {
	if !continuationTok.MatchString(tok) {
		return false
	}
	if tok == "/" {
		return true
	}
	ok := strings.ContainsAny(tok, "0123456789_") || internalDot.MatchString(tok)
	if strings.HasSuffix(tok, ".") && !strings.ContainsAny(tok, "_/") && strings.Count(tok, ".") < 2 {
		return false
	}
	return ok
}
