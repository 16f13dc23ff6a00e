// Package emit turns segmented fragments into finalized references and
// writes them out.
package emit

import (
	"regexp"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/matsen/refsplit/internal/doi"
	"github.com/matsen/refsplit/internal/patterns"
	"github.com/matsen/refsplit/internal/reference"
	"github.com/matsen/refsplit/internal/segment"
)

// Options controls finalization.
type Options struct {
	// StripNumbers removes list-number prefixes of style Numbering.
	StripNumbers bool
	Numbering    patterns.NumberStyle
	Source       reference.Source
}

// Finalizer builds references from fragments.
type Finalizer struct {
	p    *patterns.Context
	doi  *doi.Normalizer
	opts Options
	log  *zap.Logger
}

// NewFinalizer returns a Finalizer. A nil logger discards output.
func NewFinalizer(p *patterns.Context, opts Options, log *zap.Logger) *Finalizer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Finalizer{p: p, doi: doi.New(p.DOI), opts: opts, log: log}
}

// Finalize moves DOIs to the end of each fragment, optionally strips the
// list number and repairs diaeresis artifacts, in that order. Fragments
// that end up empty are skipped.
func (f *Finalizer) Finalize(frags []segment.Fragment) []reference.Reference {
	refs := make([]reference.Reference, 0, len(frags))
	for _, frag := range frags {
		text, err := f.doi.MoveToEnd(frag.Text)
		if err != nil {
			f.log.Warn("doi normalization skipped", zap.Int("line", firstLine(frag)), zap.Error(err))
		}
		var ids []string
		if err == nil {
			ids, _ = f.doi.ExtractIDs(text)
		}
		if f.opts.StripNumbers {
			text = StripNumberPrefix(f.p, f.opts.Numbering, text)
		}
		text = FixDiaeresis(strings.TrimSpace(text))
		if text == "" {
			continue
		}
		refs = append(refs, reference.Reference{
			Index:  len(refs) + 1,
			Text:   text,
			DOIs:   ids,
			Number: frag.Number,
			Lines:  append([]int(nil), frag.Lines...),
			Source: f.opts.Source,
		})
	}
	return refs
}

func firstLine(f segment.Fragment) int {
	if len(f.Lines) == 0 {
		return -1
	}
	return f.Lines[0]
}

// StripNumberPrefix removes a leading list number of the given style. With
// no style any leading number is removed.
func StripNumberPrefix(p *patterns.Context, style patterns.NumberStyle, text string) string {
	return strings.TrimLeft(p.Numbering.Strip(style, text), " ")
}

// spacingDiaeresis followed by a vowel is how some extractors render an
// umlaut: "f¨or" for "för".
var spacingDiaeresis = regexp.MustCompile(`\x{00A8}([AaEeIiOoUu])`)

// FixDiaeresis recomposes vowels split from their diaeresis.
func FixDiaeresis(s string) string {
	if !strings.ContainsRune(s, '\u00a8') {
		return s
	}
	return norm.NFC.String(spacingDiaeresis.ReplaceAllString(s, "${1}\u0308"))
}
