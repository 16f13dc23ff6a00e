package section

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/matsen/refsplit/internal/lines"
)

var defaultStopTokens = []string{
	"I", "II", "III",
	"Paper I", "Paper II", "Paper III", "Paper 1", "Paper 2", "Paper 3",
	"Part II", "Part 2",
	"Appendix", "Appendices", "Appendix 1",
	"Paper I-III", "Paper 1-3", "Paper I-IV", "Paper 1-4",
	"Paper I-V", "Paper 1-5", "Paper I-VI", "Paper 1-6",
	"Bilagor", "Bilaga 1",
	"Article I", "Article II", "Article III", "Article 1", "Article 2", "Article 3",
	"Articles I-III", "Articles 1-3", "Articles I-IV", "Articles 1-4",
	"Articles I-V", "Articles 1-5", "Articles I-VI", "Articles 1-6",
	"Articles",
}

// DefaultStopTokens returns the stop-token set with upper-case variants.
func DefaultStopTokens() map[string]bool {
	set := make(map[string]bool, 2*len(defaultStopTokens))
	for _, tok := range defaultStopTokens {
		set[tok] = true
		set[strings.ToUpper(tok)] = true
	}
	return set
}

var (
	hyphenOnlyRe = regexp.MustCompile(`^[\-\x{00AD}\x{2010}-\x{2015}\x{2212}\s]+$`)
	cidMarkerRe  = regexp.MustCompile(`(?i)^\(cid:\s*\d+\)\s*$`)
	uiDateRe     = regexp.MustCompile(`\d{4}/\d{1,2}/\d{1,2}`)
	uiClockRe    = regexp.MustCompile(`\b\d{1,2}:\d{2}\b`)
	uiPageRe     = regexp.MustCompile(`(?i)\bpage\b`)
	uiHashRe     = regexp.MustCompile(`#\d+`)
	integerRe    = regexp.MustCompile(`^\d+$`)
)

// IsHyphenOnly reports whether line holds only dashes and spaces.
func IsHyphenOnly(line string) bool { return hyphenOnlyRe.MatchString(line) }

// IsCIDMarker reports whether line is a bare "(cid:NN)" glyph marker.
func IsCIDMarker(line string) bool { return cidMarkerRe.MatchString(line) }

// IsTimestampLine reports whether line looks like a print-dialog footer
// ("2021/3/4 10:22 ... Page 3 #12").
func IsTimestampLine(line string) bool {
	return uiDateRe.MatchString(line) && uiClockRe.MatchString(line) &&
		uiPageRe.MatchString(line) && uiHashRe.MatchString(line)
}

// IsPageNumber reports whether line is an integer inside the page range.
func IsPageNumber(line string, opts Options) bool {
	if !integerRe.MatchString(line) {
		return false
	}
	n, err := strconv.Atoi(line)
	if err != nil {
		return false
	}
	return opts.PageRange.Contains(n)
}

// IsStopToken reports whether line equals a stop token, with or without a
// trailing period.
func IsStopToken(line string, tokens map[string]bool) bool {
	return tokens[line] || tokens[strings.TrimRight(line, ".")]
}

// FilterReport counts what Filter removed.
type FilterReport struct {
	HyphenOnly  int
	Artifacts   int
	PageNumbers int
	// StopToken is the token that ended the section, if any.
	StopToken string
}

// Filter drops artifact lines and truncates at the first stop token unless
// the section runs to end of file.
func Filter(in []lines.NormalizedLine, opts Options) ([]lines.NormalizedLine, FilterReport) {
	var rep FilterReport
	out := make([]lines.NormalizedLine, 0, len(in))
	for _, l := range in {
		if !opts.RunToEOF && IsStopToken(l.Text, opts.StopTokens) {
			rep.StopToken = l.Text
			break
		}
		switch {
		case IsHyphenOnly(l.Text):
			rep.HyphenOnly++
		case IsCIDMarker(l.Text) || IsTimestampLine(l.Text):
			rep.Artifacts++
		case IsPageNumber(l.Text, opts):
			rep.PageNumbers++
		default:
			out = append(out, l)
		}
	}
	return out, rep
}
