package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/doi"
	"github.com/matsen/refsplit/internal/patterns"
	"github.com/matsen/refsplit/internal/pdf"
	"github.com/matsen/refsplit/internal/section"
)

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid config", fmt.Errorf("flag: %w", config.ErrInvalid), ExitConfigError},
		{"config file", fmt.Errorf("%w: parsing config", errConfigFile), ExitConfigError},
		{"missing heading", &section.MissingHeadingError{Chars: 10}, ExitDataError},
		{"extraction", &pdf.ExtractionBackendError{Path: "a.pdf"}, ExitDataError},
		{"other", errors.New("boom"), ExitError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exitCodeFor(tt.err); got != tt.want {
				t.Errorf("exitCodeFor() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReadLines(t *testing.T) {
	got, err := readLines(strings.NewReader("first\n\n  second  \n"))
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("readLines() mismatch (-want +got):\n%s", diff)
	}
}

func TestNormalizeAll(t *testing.T) {
	n := doi.New(patterns.New(config.Default()).DOI)
	in := []string{"Title. doi: 10.1000/abc.def", "No identifier."}

	got, err := normalizeAll(n, in, true)
	if err != nil {
		t.Fatal(err)
	}
	want := []DOIResult{
		{Input: in[0], Output: "Title. https://doi.org/10.1000/abc.def", DOIs: []string{"10.1000/abc.def"}},
		{Input: in[1], Output: "No identifier.", DOIs: []string{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("normalizeAll() mismatch (-want +got):\n%s", diff)
	}

	ids, err := normalizeAll(n, in[:1], false)
	if err != nil {
		t.Fatal(err)
	}
	if ids[0].Output != "" || !cmp.Equal(ids[0].DOIs, []string{"10.1000/abc.def"}) {
		t.Errorf("ids only = %+v", ids[0])
	}
}

func TestApplyStyleFlags(t *testing.T) {
	cmd := &cobra.Command{}
	bindRunFlags(cmd.Flags())
	if err := cmd.Flags().Parse([]string{"--ref-type", "N", "--no-heading", "--fill-dashed", "---."}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runRefType, runNoHeading, runFillDashed = "", false, "" })

	cfg, err := applyStyleFlags(cmd, config.Default())
	if err != nil {
		t.Fatalf("applyStyleFlags() error = %v", err)
	}
	if cfg.StyleFamily != config.Numbered || cfg.RequireHeading || cfg.DashPlaceholder != "---." {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.ExtractionBackendHint != config.BackendA {
		t.Errorf("backend changed without flag: %s", cfg.ExtractionBackendHint)
	}

	bad := &cobra.Command{}
	bindRunFlags(bad.Flags())
	if err := bad.Flags().Parse([]string{"--backend", "backendZ"}); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { runBackend = "" })
	if _, err := applyStyleFlags(bad, config.Default()); !errors.Is(err, config.ErrInvalid) {
		t.Errorf("err = %v, want ErrInvalid", err)
	}
}

func TestBatchLabels(t *testing.T) {
	got := batchLabels([]string{"a/paper.pdf", "b/paper.pdf", "notes.txt", "c/paper.PDF"})
	want := []string{"paper", "paper_2", "notes", "paper_3"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("batchLabels() mismatch (-want +got):\n%s", diff)
	}
}
