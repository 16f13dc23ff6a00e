package segment

import (
	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/patterns"
)

// Pass is a set of rules swept over the arena until nothing changes or Cap
// sweeps have run. Merge passes always consult GovernmentMarker first.
type Pass struct {
	Name  string
	Rules []Rule
	Cap   int
	Split bool
}

func mergePass(name string, cap int, rules ...Rule) Pass {
	return Pass{Name: name, Rules: append([]Rule{GovernmentMarker}, rules...), Cap: cap}
}

func splitPass(name string, cap int, rule Rule) Pass {
	return Pass{Name: name, Rules: []Rule{rule}, Cap: cap, Split: true}
}

// NumberedPasses is the rule set for a numbered list of the given style.
// The cap is the style's detection threshold.
func NumberedPasses(style patterns.NumberStyle, cfg config.Style) []Pass {
	return []Pass{mergePass("numbered", threshold(style, cfg), NumberedLine)}
}

// AuthorYearPasses returns the ordered passes for the configured sub-layout.
func AuthorYearPasses(cfg config.Style) []Pass {
	join, editor, trailer := cfg.MaxJoinIterations, cfg.MaxEditorIterations, cfg.MaxTrailerIterations

	if cfg.SubLayout == config.YearAtEnd {
		return []Pass{
			mergePass("author-collapse", join, AuthorCollapse),
			mergePass("leading-year", join, LeadingYear),
			mergePass("singleton", join, Singleton),
			mergePass("conjunction", join, Conjunction, AmpersandStart),
			mergePass("editor", editor, EditorOnly, EditorTrailing),
			mergePass("year-terminated", join, YearTerminated),
			mergePass("default-join", join, DefaultJoin),
			mergePass("url-prefix-join", join, URLPrefixJoin),
			mergePass("short-fragment", join, ShortFragment),
			splitPass("accessed-split", trailer, AccessedSplit),
			splitPass("trailer-split", trailer, TrailerSplit),
		}
	}

	return []Pass{
		mergePass("leading-year", join, LeadingYear),
		mergePass("trailing-year", join, TrailingYear),
		mergePass("singleton", join, Singleton),
		mergePass("wrapped-initials", join, WrappedInitials),
		mergePass("conjunction", join, Conjunction, AmpersandStart),
		mergePass("editor", editor, EditorOnly, EditorTrailing),
		mergePass("author-head", join, AuthorHead),
		mergePass("default-join", join, DefaultJoin),
		mergePass("url-prefix-join", join, URLPrefixJoin),
		splitPass("trailer-split", trailer, TrailerSplit),
	}
}

// DefaultJoinPass is the catch-all join on its own.
func DefaultJoinPass(cfg config.Style) Pass {
	return mergePass("default-join", cfg.MaxJoinIterations, DefaultJoin)
}
