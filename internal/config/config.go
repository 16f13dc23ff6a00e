// Package config holds the style configuration that drives a segmentation run.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StyleFamily selects the segmentation rule set.
type StyleFamily string

const (
	Numbered   StyleFamily = "numbered"
	AuthorYear StyleFamily = "authorYear"
)

// SubLayout distinguishes author-year references by where the year sits.
type SubLayout string

const (
	YearAtEnd        SubLayout = "yearAtEnd"
	YearAfterAuthors SubLayout = "yearAfterAuthors"
)

// Backend names an extraction backend.
type Backend string

const (
	// BackendA extracts page by page with github.com/ledongthuc/pdf.
	BackendA Backend = "backendA"
	// BackendB extracts through code.sajari.com/docconv/v2.
	BackendB Backend = "backendB"
)

// Alternate returns the other backend.
func (b Backend) Alternate() Backend {
	if b == BackendA {
		return BackendB
	}
	return BackendA
}

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// PageRange bounds the integers treated as stray page numbers.
type PageRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Contains reports whether n lies within the range, inclusive.
func (r PageRange) Contains(n int) bool {
	return n >= r.Min && n <= r.Max
}

// NumberingThresholds are the minimum counts for a numbering style to be
// selected. Bare numbering needs more evidence when the section runs to EOF.
type NumberingThresholds struct {
	Bracket  int `yaml:"bracket"`
	Paren    int `yaml:"paren"`
	Bare     int `yaml:"bare"`
	BareEOF  int `yaml:"bare_eof"`
	Trigger  int `yaml:"trigger"`
	TriggerE int `yaml:"trigger_eof"`
}

// Style is the immutable configuration for one run. It is passed by value.
type Style struct {
	StyleFamily       StyleFamily `yaml:"style_family"`
	SubLayout         SubLayout   `yaml:"sub_layout"`
	FullNameDetection bool        `yaml:"full_name_detection"`
	ParenYearsOnly    bool        `yaml:"paren_years_only"`
	StripNumberPrefix bool        `yaml:"strip_number_prefix"`
	RunToEndOfFile    bool        `yaml:"run_to_end_of_file"`
	RequireHeading    bool        `yaml:"require_heading"`
	StopAtAllCaps     bool        `yaml:"stop_at_all_caps"`

	MaxJoinIterations    int `yaml:"max_join_iterations"`
	MaxEditorIterations  int `yaml:"max_editor_iterations"`
	MaxHyphenIterations  int `yaml:"max_hyphen_iterations"`
	MaxTrailerIterations int `yaml:"max_trailer_iterations"`
	MaxAppend            int `yaml:"max_append"`

	PageNumberRange        PageRange           `yaml:"page_number_range"`
	Numbering              NumberingThresholds `yaml:"numbering"`
	StubRatio              float64             `yaml:"stub_ratio"`
	ShortFragmentMaxSpaces int                 `yaml:"short_fragment_max_spaces"`
	TrailerMinYears        int                 `yaml:"trailer_min_years"`

	ExtractionBackendHint Backend `yaml:"extraction_backend"`
	ContextBackend        Backend `yaml:"context_backend"`
	ContextChars          int     `yaml:"context_chars"`

	DashPlaceholder string `yaml:"dash_placeholder,omitempty"`
	DebugDir        string `yaml:"debug_dir,omitempty"`
	LogLevel        string `yaml:"log_level,omitempty"`
}

// Default returns the configuration used when nothing else is specified.
func Default() Style {
	return Style{
		StyleFamily:          AuthorYear,
		SubLayout:            YearAfterAuthors,
		ParenYearsOnly:       true,
		RequireHeading:       true,
		MaxJoinIterations:    10,
		MaxEditorIterations:  3,
		MaxHyphenIterations:  8,
		MaxTrailerIterations: 10,
		MaxAppend:            25,
		PageNumberRange:      PageRange{Min: 50, Max: 400},
		Numbering: NumberingThresholds{
			Bracket:  15,
			Paren:    15,
			Bare:     10,
			BareEOF:  30,
			Trigger:  10,
			TriggerE: 30,
		},
		StubRatio:              0.5,
		ShortFragmentMaxSpaces: 2,
		TrailerMinYears:        2,
		ExtractionBackendHint:  BackendA,
		ContextBackend:         BackendA,
		ContextChars:           2000,
		LogLevel:               "info",
	}
}

// FromRefType applies a reference-type code to s. The codes are APA, A, B, C,
// D and N (numbered).
func (s Style) FromRefType(code string) (Style, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "APA", "":
		s.StyleFamily, s.SubLayout, s.ParenYearsOnly, s.FullNameDetection = AuthorYear, YearAfterAuthors, true, false
	case "A":
		s.StyleFamily, s.SubLayout, s.ParenYearsOnly, s.FullNameDetection = AuthorYear, YearAtEnd, false, false
	case "B":
		s.StyleFamily, s.SubLayout, s.ParenYearsOnly, s.FullNameDetection = AuthorYear, YearAfterAuthors, false, false
	case "C":
		s.StyleFamily, s.SubLayout, s.ParenYearsOnly, s.FullNameDetection = AuthorYear, YearAtEnd, false, true
	case "D":
		s.StyleFamily, s.SubLayout, s.ParenYearsOnly, s.FullNameDetection = AuthorYear, YearAfterAuthors, false, true
	case "N":
		s.StyleFamily = Numbered
	default:
		return s, fmt.Errorf("%w: unknown reference type %q (valid: APA, A, B, C, D, N)", ErrInvalid, code)
	}
	return s, nil
}

// Validate checks enum values, caps and ranges.
func (s Style) Validate() error {
	switch s.StyleFamily {
	case Numbered, AuthorYear:
	default:
		return fmt.Errorf("%w: style_family %q", ErrInvalid, s.StyleFamily)
	}
	switch s.SubLayout {
	case YearAtEnd, YearAfterAuthors:
	default:
		return fmt.Errorf("%w: sub_layout %q", ErrInvalid, s.SubLayout)
	}
	for _, b := range []Backend{s.ExtractionBackendHint, s.ContextBackend} {
		if b != BackendA && b != BackendB {
			return fmt.Errorf("%w: backend %q", ErrInvalid, b)
		}
	}
	caps := map[string]int{
		"max_join_iterations":    s.MaxJoinIterations,
		"max_editor_iterations":  s.MaxEditorIterations,
		"max_hyphen_iterations":  s.MaxHyphenIterations,
		"max_trailer_iterations": s.MaxTrailerIterations,
		"max_append":             s.MaxAppend,
	}
	for name, v := range caps {
		if v < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalid, name, v)
		}
	}
	if s.PageNumberRange.Min > s.PageNumberRange.Max {
		return fmt.Errorf("%w: page_number_range min %d > max %d", ErrInvalid,
			s.PageNumberRange.Min, s.PageNumberRange.Max)
	}
	if s.StubRatio < 0 || s.StubRatio > 1 {
		return fmt.Errorf("%w: stub_ratio %v outside [0,1]", ErrInvalid, s.StubRatio)
	}
	if s.ShortFragmentMaxSpaces < 0 || s.ContextChars < 0 || s.TrailerMinYears < 0 {
		return fmt.Errorf("%w: negative tunable", ErrInvalid)
	}
	return nil
}

// BareThreshold returns the bare-numbering threshold for the run mode.
func (s Style) BareThreshold() int {
	if s.RunToEndOfFile {
		return s.Numbering.BareEOF
	}
	return s.Numbering.Bare
}

// TriggerThreshold returns the minimum count of numbered lines needed before
// any numbering style is considered.
func (s Style) TriggerThreshold() int {
	if s.RunToEndOfFile {
		return s.Numbering.TriggerE
	}
	return s.Numbering.Trigger
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}

	return filepath.Join(home, path[1:])
}
