package patterns

import (
	"github.com/matsen/refsplit/internal/config"
)

// Context is the set of matchers for one run. It is read-only after New.
type Context struct {
	Years      *Years
	Authors    *Authors
	Government *Government
	Numbering  *Numbering
	DOI        *DOI

	// ParenYearsOnly restricts year checks to parenthesized years.
	ParenYearsOnly bool

	errs []error
}

// New builds every matcher for cfg. It never fails: a pattern that cannot be
// compiled is replaced by a matcher that always reports Unavailable, and the
// failure is listed by Errors.
func New(cfg config.Style) *Context {
	b := &builder{timeout: defaultMatchTimeout}
	ctx := &Context{
		Years:          buildYears(b),
		Authors:        buildAuthors(b, cfg.FullNameDetection),
		Government:     buildGovernment(b),
		Numbering:      buildNumbering(b),
		DOI:            buildDOI(b),
		ParenYearsOnly: cfg.ParenYearsOnly,
	}
	ctx.errs = b.errs
	return ctx
}

// Errors returns the construction failures, if any.
func (c *Context) Errors() []error { return c.errs }

// HasYear reports whether s carries a year acceptable to the run.
func (c *Context) HasYear(s string) Outcome {
	return c.Years.Contains(s, c.ParenYearsOnly)
}

// EndsWithYear reports whether s ends with a year acceptable to the run.
func (c *Context) EndsWithYear(s string) Outcome {
	return c.Years.EndsWith(s, c.ParenYearsOnly)
}

// StartsWithYear reports whether s begins with a parenthesized or bare year.
// Bare years count here even in parenthesized-only runs, because a year
// wrapped onto its own line is never a new reference.
func (c *Context) StartsWithYear(s string) Outcome {
	return c.Years.StartsWith(s, false)
}
