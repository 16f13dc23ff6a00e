package section

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/lines"
)

func defaultOptions() Options {
	return OptionsFor(config.Default(), config.BackendB, "test.pdf")
}

func TestExtract_FindsHeading(t *testing.T) {
	full := "Intro text\n\nConclusion.\n\nReferences\nSmith, J. (2020). Title.\nDoe, A. (2019). Other.\n"
	sec, err := Extract(full, defaultOptions())
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !sec.HeadingFound {
		t.Fatal("HeadingFound = false")
	}
	if sec.Heading != "References" {
		t.Errorf("Heading = %q, want References", sec.Heading)
	}
	if strings.Contains(sec.Text, "Conclusion") {
		t.Errorf("section text includes body: %q", sec.Text)
	}
	if !strings.HasPrefix(strings.TrimSpace(sec.Text), "Smith, J.") {
		t.Errorf("section text = %q, want to start at first reference", sec.Text)
	}
}

func TestExtract_Multilingual(t *testing.T) {
	tests := []string{
		"3. Referenser",
		"KÄLLFÖRTECKNING",
		"Litteraturförteckning",
		"  12 Bibliography  ",
		"Works Cited",
	}

	for _, heading := range tests {
		t.Run(heading, func(t *testing.T) {
			full := "Body\n" + heading + "\nEntry one.\n"
			sec, err := Extract(full, defaultOptions())
			if err != nil {
				t.Fatalf("Extract() error = %v", err)
			}
			if strings.TrimSpace(sec.Text) != "Entry one." {
				t.Errorf("Text = %q, want %q", sec.Text, "Entry one.")
			}
		})
	}
}

func TestExtract_HeadingMustBeWholeLine(t *testing.T) {
	full := "See the references below for details\nSmith, J. (2020).\n"
	_, err := Extract(full, defaultOptions())
	if !IsMissingHeading(err) {
		t.Errorf("Extract() error = %v, want MissingHeadingError", err)
	}
}

func TestExtract_MissingHeading(t *testing.T) {
	full := "no heading at all\nSmith, J. (2020)."

	_, err := Extract(full, defaultOptions())
	if !errors.Is(err, ErrMissingHeading) {
		t.Fatalf("Extract() error = %v, want ErrMissingHeading", err)
	}
	if !strings.Contains(err.Error(), "test.pdf") {
		t.Errorf("error %q should name the source", err.Error())
	}

	opts := defaultOptions()
	opts.RequireHeading = false
	sec, err := Extract(full, opts)
	if err != nil {
		t.Fatalf("Extract() without required heading error = %v", err)
	}
	if sec.Text != full || sec.HeadingFound {
		t.Errorf("Extract() = %+v, want whole text", sec)
	}
}

func TestExtract_StopAtAllCaps(t *testing.T) {
	full := "REFERENCES\nSmith, J. (2020). Title.\nACKNOWLEDGEMENTS\nThanks.\n"
	opts := defaultOptions()
	opts.StopAtAllCaps = true

	sec, err := Extract(full, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(sec.Text, "Thanks") {
		t.Errorf("Text = %q, should stop at ALL-CAPS heading", sec.Text)
	}

	opts.RunToEOF = true
	sec, err = Extract(full, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(sec.Text, "Thanks") {
		t.Errorf("Text = %q, should run to EOF", sec.Text)
	}
}

func TestExtract_BackwardContext(t *testing.T) {
	full := "lost line one\nlost two\nReferences\nSmith, J. (2020).\n"
	opts := defaultOptions()
	opts.ContextChars = 5

	sec, err := Extract(full, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.HasPrefix(sec.Text, "lost two\n") {
		t.Errorf("Text = %q, want to start with the preceding line", sec.Text)
	}

	opts.ContextChars = 500
	sec, err = Extract(full, opts)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if strings.Contains(sec.Text, "lost") {
		t.Errorf("Text = %q, insufficient context should be skipped", sec.Text)
	}
}

func TestOptionsFor_ContextOnlyForContextBackend(t *testing.T) {
	cfg := config.Default()
	if got := OptionsFor(cfg, cfg.ContextBackend, "").ContextChars; got != cfg.ContextChars {
		t.Errorf("ContextChars = %d, want %d", got, cfg.ContextChars)
	}
	if got := OptionsFor(cfg, cfg.ContextBackend.Alternate(), "").ContextChars; got != 0 {
		t.Errorf("ContextChars for other backend = %d, want 0", got)
	}
}

func TestArtifactPredicates(t *testing.T) {
	opts := defaultOptions()
	tests := []struct {
		name string
		fn   func(string) bool
		in   string
		want bool
	}{
		{"hyphen only", IsHyphenOnly, "- - -", true},
		{"hyphen text", IsHyphenOnly, "-a-", false},
		{"cid", IsCIDMarker, "(cid:12)", true},
		{"cid inline", IsCIDMarker, "text (cid:12)", false},
		{"timestamp", IsTimestampLine, "2021/3/14 10:22 Viewer page 3 #12", true},
		{"timestamp without hash", IsTimestampLine, "2021/3/14 10:22 page 3", false},
		{"page in range", func(s string) bool { return IsPageNumber(s, opts) }, "123", true},
		{"page below range", func(s string) bool { return IsPageNumber(s, opts) }, "12", false},
		{"page with text", func(s string) bool { return IsPageNumber(s, opts) }, "123 a", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.fn(tt.in); got != tt.want {
				t.Errorf("%s(%q) = %v, want %v", tt.name, tt.in, got, tt.want)
			}
		})
	}
}

func TestFilter(t *testing.T) {
	in := []lines.NormalizedLine{
		{Ordinal: 0, Text: "Smith, J. (2020). Title."},
		{Ordinal: 1, Text: "---"},
		{Ordinal: 2, Text: "(cid:3)"},
		{Ordinal: 3, Text: "214"},
		{Ordinal: 4, Text: "Doe, A. (2019). Other."},
		{Ordinal: 5, Text: "Paper I."},
		{Ordinal: 6, Text: "Appendix text that is not a reference"},
	}

	got, rep := Filter(in, defaultOptions())
	want := []string{"Smith, J. (2020). Title.", "Doe, A. (2019). Other."}
	if diff := cmp.Diff(want, lines.Texts(got)); diff != "" {
		t.Errorf("Filter() mismatch (-want +got):\n%s", diff)
	}
	if rep.StopToken != "Paper I." {
		t.Errorf("StopToken = %q, want %q", rep.StopToken, "Paper I.")
	}
	if rep.HyphenOnly != 1 || rep.Artifacts != 1 || rep.PageNumbers != 1 {
		t.Errorf("report = %+v", rep)
	}

	opts := defaultOptions()
	opts.RunToEOF = true
	got, _ = Filter(in, opts)
	if len(got) != 4 {
		t.Errorf("Filter() until EOF kept %d lines, want 4", len(got))
	}
}

func TestDefaultStopTokensHaveUpperCase(t *testing.T) {
	set := DefaultStopTokens()
	for _, tok := range []string{"Paper II", "PAPER II", "BILAGA 1", "Articles"} {
		if !set[tok] {
			t.Errorf("stop tokens missing %q", tok)
		}
	}
}
