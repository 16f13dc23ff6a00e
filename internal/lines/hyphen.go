package lines

import (
	"strings"
	"unicode/utf8"

	"github.com/matsen/refsplit/internal/patterns"
)

// joinChars are the line-final characters that glue a line to the next.
const joinChars = "-\u00ad\u2010\u2011\u2012\u2013\u2014\u2015\u2212_/"

// JoinReport describes a hyphenation run.
type JoinReport struct {
	Iterations  int
	Joins       int
	CapExceeded bool
}

// JoinHyphenated rejoins words wrapped across lines with a trailing hyphen,
// dash, underscore or slash, without inserting a space. A trailing slash is
// left alone when the next line starts like an author head, since that is
// usually a URL path followed by a new reference. The pass repeats until
// nothing changes or maxIter is reached.
func JoinHyphenated(in []NormalizedLine, startLike func(string) patterns.Outcome, maxIter int) ([]NormalizedLine, JoinReport) {
	cur := make([]NormalizedLine, len(in))
	copy(cur, in)
	var rep JoinReport

	for rep.Iterations < maxIter {
		rep.Iterations++
		next, joined := joinPass(cur, startLike)
		cur = next
		rep.Joins += joined
		if joined == 0 {
			return cur, rep
		}
	}

	// The cap only counts as exceeded if another sweep would still join.
	if _, pending := joinPass(cur, startLike); pending > 0 {
		rep.CapExceeded = true
	}
	return cur, rep
}

// joinPass performs one left-to-right sweep and returns the joined lines
// with the number of joins made.
func joinPass(cur []NormalizedLine, startLike func(string) patterns.Outcome) ([]NormalizedLine, int) {
	next := make([]NormalizedLine, 0, len(cur))
	joined := 0
	for i := 0; i < len(cur); i++ {
		line := cur[i]
		if i+1 < len(cur) && endsWithJoinChar(line.Text) {
			following := cur[i+1].Text
			if strings.HasSuffix(line.Text, "/") && startLike != nil &&
				startLike(following) == patterns.Matched {
				next = append(next, line)
				continue
			}
			line.Text += following
			next = append(next, line)
			i++
			joined++
			continue
		}
		next = append(next, line)
	}
	return next, joined
}

func endsWithJoinChar(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r != utf8.RuneError && strings.ContainsRune(joinChars, r)
}
