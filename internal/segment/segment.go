// Package segment groups normalized lines into reference fragments.
//
// Each pass sweeps an ordered list of rules over the fragment arena until a
// sweep changes nothing or the pass's iteration cap is reached. Rules are
// pure functions of the previous fragment, the candidate line and the line
// after it; the first rule that does not abstain decides.
package segment

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/lines"
	"github.com/matsen/refsplit/internal/patterns"
)

// Segmenter runs the passes of one style configuration.
type Segmenter struct {
	cfg config.Style
	pat *patterns.Context
	log *zap.Logger
	// OnPass, when set, receives the fragment texts after every pass.
	OnPass func(pass string, texts []string)
}

// New creates a Segmenter. A nil logger discards output.
func New(cfg config.Style, pat *patterns.Context, log *zap.Logger) *Segmenter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Segmenter{cfg: cfg, pat: pat, log: log}
}

// Result is the output of Run.
type Result struct {
	Fragments []Fragment
	Numbering NumberingDetection
	// Dropped counts bare list numbers merged away as stubs.
	Dropped int
	// UnderServed is set when most list numbers arrived as bare stubs,
	// which means the extraction backend separated numbers from their
	// entries.
	UnderServed bool
	Diagnostics Diagnostics
}

// Texts returns the fragment texts.
func (r Result) Texts() []string {
	out := make([]string, len(r.Fragments))
	for i, f := range r.Fragments {
		out[i] = f.Text
	}
	return out
}

// Run segments ls according to the configured style family. A numbered
// configuration whose document shows no numbering falls back to the
// author-year passes.
func (s *Segmenter) Run(ls []lines.NormalizedLine) Result {
	if s.cfg.StyleFamily == config.Numbered {
		det := DetectNumbering(lines.Texts(ls), s.pat, s.cfg)
		s.log.Debug("numbering detection",
			zap.Stringer("style", det.Style),
			zap.Int("bracket", det.Bracket),
			zap.Int("paren", det.Paren),
			zap.Int("bare", det.Bare))
		if det.Style != patterns.NoNumbering {
			return s.runNumbered(ls, det)
		}
		s.log.Info("no list numbering detected, using author-year passes")
	}
	return s.RunAuthorYear(ls)
}

func (s *Segmenter) runNumbered(ls []lines.NormalizedLine, det NumberingDetection) Result {
	a := NewArena(ls)
	res := Result{Numbering: det}
	for _, p := range NumberedPasses(det.Style, s.cfg) {
		rep := s.runPass(a, p, det.Style)
		res.Dropped += rep.Dropped
		res.Diagnostics.Passes = append(res.Diagnostics.Passes, rep)
	}
	if n := det.Count(); n > 0 {
		ratio := float64(res.Dropped) / float64(n)
		res.UnderServed = ratio > s.cfg.StubRatio
		s.log.Debug("numbered pass", zap.Int("dropped", res.Dropped), zap.Int("numbered", n),
			zap.Float64("ratio", ratio))
	}
	res.Fragments = s.finish(a)
	return res
}

// RunAuthorYear segments ls with the author-year passes of the configured
// sub-layout.
func (s *Segmenter) RunAuthorYear(ls []lines.NormalizedLine) Result {
	a := NewArena(ls)
	var res Result
	for _, p := range AuthorYearPasses(s.cfg) {
		rep := s.runPass(a, p, patterns.NoNumbering)
		res.Diagnostics.Passes = append(res.Diagnostics.Passes, rep)
	}
	res.Fragments = s.finish(a)
	return res
}

// StripNumbers removes list-number prefixes from ls, for re-running a
// numbered document through the author-year passes.
func (s *Segmenter) StripNumbers(ls []lines.NormalizedLine, style patterns.NumberStyle) []lines.NormalizedLine {
	out := make([]lines.NormalizedLine, 0, len(ls))
	for _, l := range ls {
		text := s.pat.Numbering.Strip(style, l.Text)
		if text == "" {
			continue
		}
		out = append(out, lines.NormalizedLine{Ordinal: l.Ordinal, Text: text})
	}
	return out
}

// Apply runs a single pass over an arena; used to re-check convergence.
func (s *Segmenter) Apply(a *Arena, p Pass) PassReport {
	return s.runPass(a, p, patterns.NoNumbering)
}

func (s *Segmenter) finish(a *Arena) []Fragment {
	if s.cfg.DashPlaceholder != "" {
		filled := FillDashedAuthors(a.Texts(), s.cfg.DashPlaceholder, s.pat)
		for i := range a.frags {
			a.frags[i].Text = filled[i]
		}
	}
	return a.Fragments()
}

// runPass sweeps p over a to a fixed point. A panic inside a rule restores
// the arena to its state before the pass.
func (s *Segmenter) runPass(a *Arena, p Pass, style patterns.NumberStyle) (rep PassReport) {
	rep.Name = p.Name
	before := a.snapshot()

	defer func() {
		if r := recover(); r != nil {
			a.restore(before)
			rep.RolledBack = true
			rep.Err = &UnavailableError{Pass: p.Name, Cause: fmt.Errorf("%v", r)}
			s.log.Warn("pass failed, buffer restored", zap.String("pass", p.Name), zap.Error(rep.Err))
		}
		if s.OnPass != nil {
			s.OnPass(p.Name, a.Texts())
		}
	}()

	cfg := s.cfg
	for rep.Iterations < p.Cap {
		rep.Iterations++
		var changed int
		if p.Split {
			changed = a.splitSweep(func(f *Fragment) Verdict {
				in := Input{Line: f.Text, P: s.pat, Cfg: &cfg, Numbering: style}
				return s.decide(p.Rules, in, &rep)
			})
		} else {
			changed = a.sweep(func(prev, cur, next *Fragment) Verdict {
				in := Input{Line: cur.Text, P: s.pat, Cfg: &cfg, Numbering: style}
				if prev != nil {
					in.Prev, in.HasPrev, in.PrevNumber, in.PrevLines = prev.Text, true, prev.seen, len(prev.Lines)
				}
				if next != nil {
					in.Next, in.HasNext = next.Text, true
				}
				v := s.decide(p.Rules, in, &rep)
				if v.Decision == Continue && v.Drop {
					rep.Dropped++
				}
				return v
			})
		}
		if changed == 0 {
			rep.Converged = true
			break
		}
		rep.Changes += changed
	}

	switch {
	case !rep.Converged:
		rep.Err = &IterationCapError{Pass: p.Name, Cap: p.Cap}
		s.log.Warn("iteration cap reached", zap.String("pass", p.Name),
			zap.Int("iterations", rep.Iterations), zap.Int("cap", p.Cap))
	case rep.Declined > 0:
		rep.Err = &UnavailableError{Pass: p.Name,
			Cause: fmt.Errorf("%d decisions declined", rep.Declined)}
		s.log.Warn("heuristic unavailable", zap.String("pass", p.Name), zap.Int("declined", rep.Declined))
	}
	return rep
}

func (s *Segmenter) decide(rules []Rule, in Input, rep *PassReport) Verdict {
	for _, r := range rules {
		v := r.Apply(in)
		if v.Unavailable {
			rep.Declined++
		}
		if v.Decision != Abstain {
			return v
		}
	}
	return start
}
