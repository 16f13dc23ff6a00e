package segment

import (
	"strings"

	"github.com/matsen/refsplit/internal/lines"
)

// Fragment is a reference candidate: one or more source lines joined by a
// single space.
type Fragment struct {
	Text string
	// Lines holds the ordinals of the source lines folded into the fragment.
	Lines []int
	// Number is the list number the fragment opened with, or 0.
	Number int

	// seen is the last list number folded into the fragment.
	seen int
}

// Arena is an index-addressable buffer of fragments. Merges compact the
// buffer in place; splits insert after the split fragment.
type Arena struct {
	frags []Fragment
}

// NewArena seeds an arena with one fragment per line.
func NewArena(ls []lines.NormalizedLine) *Arena {
	frags := make([]Fragment, len(ls))
	for i, l := range ls {
		frags[i] = Fragment{Text: l.Text, Lines: []int{l.Ordinal}}
	}
	return &Arena{frags: frags}
}

// FromTexts seeds an arena from bare strings, numbering them from zero.
func FromTexts(texts []string) *Arena {
	ls := make([]lines.NormalizedLine, 0, len(texts))
	for i, s := range texts {
		if s = strings.TrimSpace(s); s != "" {
			ls = append(ls, lines.NormalizedLine{Ordinal: i, Text: s})
		}
	}
	return NewArena(ls)
}

// Len returns the number of fragments.
func (a *Arena) Len() int { return len(a.frags) }

// Texts returns the current fragment texts.
func (a *Arena) Texts() []string {
	out := make([]string, len(a.frags))
	for i, f := range a.frags {
		out[i] = f.Text
	}
	return out
}

// Fragments returns a copy of the fragments.
func (a *Arena) Fragments() []Fragment {
	return a.snapshot()
}

func (a *Arena) snapshot() []Fragment {
	out := make([]Fragment, len(a.frags))
	for i, f := range a.frags {
		f.Lines = append([]int(nil), f.Lines...)
		out[i] = f
	}
	return out
}

func (a *Arena) restore(frags []Fragment) {
	a.frags = frags
}

// absorb appends src to dst. With drop set only the line ordinals move.
func absorb(dst *Fragment, src Fragment, drop bool) {
	if !drop {
		dst.Text = strings.TrimRight(dst.Text, " ") + " " + strings.TrimLeft(src.Text, " ")
	}
	dst.Lines = append(dst.Lines[:len(dst.Lines):len(dst.Lines)], src.Lines...)
}

// sweep walks the fragments once, asking decide whether each fragment
// continues the one before it. Continuations are folded into the previous
// fragment in place. It returns the number of merges.
func (a *Arena) sweep(decide func(prev, cur, next *Fragment) Verdict) int {
	merges := 0
	w := 0
	for r := 0; r < len(a.frags); r++ {
		cur := a.frags[r]
		var next *Fragment
		if r+1 < len(a.frags) {
			next = &a.frags[r+1]
		}
		if w > 0 {
			v := decide(&a.frags[w-1], &cur, next)
			if v.Decision == Continue {
				absorb(&a.frags[w-1], cur, v.Drop)
				if v.Number > 0 {
					a.frags[w-1].seen = v.Number
				}
				merges++
				continue
			}
			if v.Number > 0 {
				cur.Number, cur.seen = v.Number, v.Number
			}
		} else if v := decide(nil, &cur, next); v.Number > 0 {
			cur.Number, cur.seen = v.Number, v.Number
		}
		a.frags[w] = cur
		w++
	}
	clear(a.frags[w:])
	a.frags = a.frags[:w]
	return merges
}

// splitSweep asks decide for a split offset inside each fragment and splits
// where one is returned. Both halves keep the fragment's line ordinals.
func (a *Arena) splitSweep(decide func(f *Fragment) Verdict) int {
	var out []Fragment
	splits := 0
	for i := range a.frags {
		f := a.frags[i]
		v := decide(&f)
		if v.Decision != SplitAt || v.At <= 0 || v.At >= len(f.Text) {
			if out != nil {
				out = append(out, f)
			}
			continue
		}
		if out == nil {
			out = make([]Fragment, 0, len(a.frags)+1)
			out = append(out, a.frags[:i]...)
		}
		left := strings.TrimSpace(f.Text[:v.At])
		right := strings.TrimSpace(f.Text[v.At:])
		if left == "" || right == "" {
			out = append(out, f)
			continue
		}
		out = append(out,
			Fragment{Text: left, Lines: append([]int(nil), f.Lines...), Number: f.Number},
			Fragment{Text: right, Lines: append([]int(nil), f.Lines...)},
		)
		splits++
	}
	if out != nil {
		a.frags = out
	}
	return splits
}
