// Package section locates the references section in extracted document text
// and removes line-level extraction artifacts from it.
package section

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/matsen/refsplit/internal/config"
)

// ErrMissingHeading is wrapped by MissingHeadingError.
var ErrMissingHeading = errors.New("references heading not found")

// MissingHeadingError is returned when a heading is required and absent.
type MissingHeadingError struct {
	Source string
	Chars  int
}

func (e *MissingHeadingError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("%s: no references heading in %d characters of %s", ErrMissingHeading, e.Chars, e.Source)
	}
	return fmt.Sprintf("%s: no references heading in %d characters of text", ErrMissingHeading, e.Chars)
}

func (e *MissingHeadingError) Unwrap() error { return ErrMissingHeading }

// IsMissingHeading reports whether err is a MissingHeadingError.
func IsMissingHeading(err error) bool {
	var mh *MissingHeadingError
	return errors.As(err, &mh)
}

var (
	headingRe = regexp.MustCompile(`(?im)^[ \t]*(?:(?:[1-9]|1[0-2])\.?[ \t]{0,3})?` +
		`(?:REFERENCES|BIBLIOGRAPHY|REFERENSER|WORKS CITED|REFERENSLISTA|LITTERATUR` +
		`|KÄLL- OCH LITTERATURFÖRTECKNING|KÄLLFÖRTECKNING|LITTERATURFÖRTECKNING|BIBLIOGRAFI)[ \t]*$`)
	allCapsRe = regexp.MustCompile(`(?m)^[ \t]*[A-Z][A-Z \t\-]{5,}[ \t]*$`)
)

// Options controls section slicing and artifact filtering.
type Options struct {
	Source         string
	RequireHeading bool
	RunToEOF       bool
	StopAtAllCaps  bool
	// ContextChars is the number of non-blank characters before the heading
	// kept to recover text that some backends place ahead of it.
	ContextChars int
	PageRange    config.PageRange
	StopTokens   map[string]bool
}

// OptionsFor derives the options of a run that extracted text with backend.
func OptionsFor(cfg config.Style, backend config.Backend, source string) Options {
	opts := Options{
		Source:         source,
		RequireHeading: cfg.RequireHeading,
		RunToEOF:       cfg.RunToEndOfFile,
		StopAtAllCaps:  cfg.StopAtAllCaps,
		PageRange:      cfg.PageNumberRange,
		StopTokens:     DefaultStopTokens(),
	}
	if backend == cfg.ContextBackend {
		opts.ContextChars = cfg.ContextChars
	}
	return opts
}

// Section is the sliced references text.
type Section struct {
	Text         string
	HeadingFound bool
	Heading      string
	// Offset is the byte offset of the heading in the full text, or -1.
	Offset int
}

// Extract slices the references section out of full. Without a heading it
// returns the whole text, or a MissingHeadingError when one is required.
func Extract(full string, opts Options) (Section, error) {
	text := strings.ReplaceAll(full, "\f", "\n")

	loc := headingRe.FindStringIndex(text)
	if loc == nil {
		if opts.RequireHeading {
			return Section{}, &MissingHeadingError{Source: opts.Source, Chars: len(text)}
		}
		return Section{Text: text, Offset: -1}, nil
	}

	sec := Section{
		HeadingFound: true,
		Heading:      strings.TrimSpace(text[loc[0]:loc[1]]),
		Offset:       loc[0],
	}

	body := text[loc[1]:]
	if !opts.RunToEOF && opts.StopAtAllCaps {
		if next := allCapsRe.FindStringIndex(body); next != nil {
			body = body[:next[0]]
		}
	}

	sec.Text = backwardContext(text, loc[0], opts.ContextChars) + body
	return sec, nil
}

// backwardContext returns the text before the heading holding exactly n
// non-blank characters, widened to a line start. It returns "" when n is zero
// or the document does not have that much text before the heading.
func backwardContext(text string, headingStart, n int) string {
	if n <= 0 {
		return ""
	}
	seen := 0
	idx := headingStart
	for idx > 0 && seen < n {
		r, size := utf8.DecodeLastRuneInString(text[:idx])
		idx -= size
		if !unicode.IsSpace(r) {
			seen++
		}
	}
	if seen < n {
		return ""
	}
	if nl := strings.LastIndexByte(text[:idx], '\n'); nl >= 0 {
		idx = nl + 1
	} else {
		idx = 0
	}
	return text[idx:headingStart]
}
