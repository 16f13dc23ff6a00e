// Package pipeline runs one source document through extraction, section
// slicing, line preparation, segmentation and finalization.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/debugstore"
	"github.com/matsen/refsplit/internal/emit"
	"github.com/matsen/refsplit/internal/lines"
	"github.com/matsen/refsplit/internal/patterns"
	"github.com/matsen/refsplit/internal/pdf"
	"github.com/matsen/refsplit/internal/reference"
	"github.com/matsen/refsplit/internal/section"
	"github.com/matsen/refsplit/internal/segment"
)

// Input names the document to segment.
type Input struct {
	// Source is a PDF path, a text file path or anything a backend accepts.
	Source string
	// Backend overrides the configured extraction backend hint.
	Backend config.Backend
	// Label prefixes the debug snapshot names of this input.
	Label string
}

// Sink receives debug snapshots.
type Sink interface {
	Write(name, content string) error
	WriteLines(name string, lines []string) error
}

// Result is the outcome of a run.
type Result struct {
	RunID      string
	References []reference.Reference
	Backend    config.Backend
	Section    section.Section
	Filter     section.FilterReport
	Hyphen     lines.JoinReport
	Segment    segment.Result
	// Rerun is set when the document was extracted a second time with the
	// alternate backend because the first one under-served numbering.
	Rerun bool
	// Fallback is set when numbering was abandoned for the author-year
	// passes after the rerun.
	Fallback bool
}

// Runner holds what a run needs besides its input.
type Runner struct {
	cfg    config.Style
	pat    *patterns.Context
	loader *pdf.Loader
	sink   Sink
	log    *zap.Logger
}

// New validates cfg and builds a Runner. A nil logger discards output.
func New(cfg config.Style, log *zap.Logger) (*Runner, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}
	pat := patterns.New(cfg)
	for _, err := range pat.Errors() {
		log.Warn("pattern unavailable", zap.Error(err))
	}
	return &Runner{cfg: cfg, pat: pat, loader: pdf.NewLoader(log), log: log}, nil
}

// WithLoader replaces the extraction loader.
func (r *Runner) WithLoader(l *pdf.Loader) *Runner {
	r.loader = l
	return r
}

// WithSink enables debug snapshots.
func (r *Runner) WithSink(s Sink) *Runner {
	r.sink = s
	return r
}

// Run opens the debug store named by cfg.DebugDir, if any, and runs in.
func Run(ctx context.Context, in Input, cfg config.Style, log *zap.Logger) (Result, error) {
	r, err := New(cfg, log)
	if err != nil {
		return Result{}, err
	}
	defer r.attachStore(cfg.DebugDir)()
	return r.Run(ctx, in)
}

// attachStore opens the debug store in dir as the sink and returns its
// closer. An empty dir or a store that cannot be opened leaves snapshots
// off.
func (r *Runner) attachStore(dir string) func() {
	if dir == "" {
		return func() {}
	}
	store, err := debugstore.Open(dir)
	if err != nil {
		r.log.Warn("debug store disabled", zap.Error(err))
		return func() {}
	}
	r.WithSink(store)
	return func() {
		if err := store.Close(); err != nil {
			r.log.Warn("closing debug store", zap.Error(err))
		}
	}
}

// prepared is a document cut down to the lines the segmenter sees.
type prepared struct {
	doc     pdf.Document
	section section.Section
	filter  section.FilterReport
	hyphen  lines.JoinReport
	lines   []lines.NormalizedLine
}

// Run segments one document. Only a missing heading and a failed
// extraction are returned as errors; everything else is recorded in the
// result's diagnostics.
func (r *Runner) Run(ctx context.Context, in Input) (Result, error) {
	res := Result{RunID: uuid.NewString()}
	log := r.log.With(zap.String("run_id", res.RunID), zap.String("source", in.Source))

	hint := in.Backend
	if hint == "" {
		hint = r.cfg.ExtractionBackendHint
	}

	doc, err := r.loader.Load(ctx, in.Source, hint)
	if err != nil {
		return res, err
	}
	prep, err := r.prepare(doc, in.Label, log)
	if err != nil {
		return res, err
	}
	seg := r.segmenter(in.Label, log).Run(prep.lines)

	if seg.UnderServed && doc.Backend != pdf.PlainText {
		log.Info("numbering under-served, re-extracting",
			zap.String("backend", string(doc.Backend.Alternate())),
			zap.Int("dropped", seg.Dropped))
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if alt, ok := r.rerun(ctx, doc, in.Label, log); ok {
			prep, seg, res.Rerun = alt.prep, alt.seg, true
		}
	}
	if seg.UnderServed {
		log.Info("numbering still under-served, using author-year passes")
		s := r.segmenter(in.Label, log)
		stripped := s.StripNumbers(prep.lines, seg.Numbering.Style)
		seg = s.RunAuthorYear(stripped)
		res.Fallback = true
	}

	res.Backend = prep.doc.Backend
	res.Section, res.Filter, res.Hyphen, res.Segment = prep.section, prep.filter, prep.hyphen, seg

	fin := emit.NewFinalizer(r.pat, emit.Options{
		StripNumbers: r.cfg.StripNumberPrefix && seg.Numbering.Style != patterns.NoNumbering,
		Numbering:    seg.Numbering.Style,
		Source: reference.Source{
			Path:    in.Source,
			Backend: string(res.Backend),
			RunID:   res.RunID,
		},
	}, log)
	res.References = fin.Finalize(seg.Fragments)

	texts := make([]string, len(res.References))
	for i, ref := range res.References {
		texts[i] = ref.Text
	}
	r.snapshot(log, in.Label, "references.txt", texts)

	log.Info("segmented references",
		zap.Int("references", len(res.References)),
		zap.String("backend", string(res.Backend)),
		zap.Int("diagnostics", len(seg.Diagnostics.Errors())))
	return res, nil
}

type rerunResult struct {
	prep prepared
	seg  segment.Result
}

// rerun extracts doc again with the alternate backend. A failure keeps the
// first extraction.
func (r *Runner) rerun(ctx context.Context, doc pdf.Document, label string, log *zap.Logger) (rerunResult, bool) {
	alt, err := r.loader.LoadWith(ctx, doc.Path, doc.Backend.Alternate())
	if err != nil {
		log.Warn("alternate backend failed", zap.Error(err))
		return rerunResult{}, false
	}
	prep, err := r.prepare(alt, label, log)
	if err != nil {
		log.Warn("alternate extraction unusable", zap.Error(err))
		return rerunResult{}, false
	}
	return rerunResult{prep: prep, seg: r.segmenter(label, log).Run(prep.lines)}, true
}

func (r *Runner) prepare(doc pdf.Document, label string, log *zap.Logger) (prepared, error) {
	opts := section.OptionsFor(r.cfg, doc.Backend, doc.Path)
	sec, err := section.Extract(doc.Text, opts)
	if err != nil {
		return prepared{}, err
	}
	log.Debug("references section",
		zap.String("backend", string(doc.Backend)),
		zap.Bool("heading", sec.HeadingFound),
		zap.Int("offset", sec.Offset))
	r.snapshot(log, label, "section.txt", []string{sec.Text})

	filtered, frep := section.Filter(lines.NormalizeAll(lines.Capture(sec.Text)), opts)
	joined, hrep := lines.JoinHyphenated(filtered, r.pat.Authors.StartsLike, r.cfg.MaxHyphenIterations)
	if hrep.CapExceeded {
		log.Warn("iteration cap reached", zap.String("pass", "hyphenation"),
			zap.Int("iterations", hrep.Iterations), zap.Int("cap", r.cfg.MaxHyphenIterations))
	}
	r.snapshot(log, label, "lines.txt", lines.Texts(joined))

	return prepared{doc: doc, section: sec, filter: frep, hyphen: hrep, lines: joined}, nil
}

func (r *Runner) segmenter(label string, log *zap.Logger) *segment.Segmenter {
	s := segment.New(r.cfg, r.pat, log)
	if r.sink != nil {
		s.OnPass = func(pass string, texts []string) {
			r.snapshot(log, label, fmt.Sprintf("pass_%s.txt", pass), texts)
		}
	}
	return s
}

// snapshot writes a debug artifact. Failures are logged and ignored.
func (r *Runner) snapshot(log *zap.Logger, label, name string, texts []string) {
	if r.sink == nil {
		return
	}
	if label != "" {
		name = label + "_" + name
	}
	if err := r.sink.WriteLines(name, texts); err != nil {
		log.Warn("debug snapshot failed", zap.String("name", name), zap.Error(err))
	}
}
