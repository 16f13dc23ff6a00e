package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
}

func TestDefaultTunables(t *testing.T) {
	cfg := Default()
	if cfg.MaxJoinIterations != 10 {
		t.Errorf("MaxJoinIterations = %d, want 10", cfg.MaxJoinIterations)
	}
	if cfg.MaxEditorIterations != 3 {
		t.Errorf("MaxEditorIterations = %d, want 3", cfg.MaxEditorIterations)
	}
	if cfg.MaxHyphenIterations != 8 {
		t.Errorf("MaxHyphenIterations = %d, want 8", cfg.MaxHyphenIterations)
	}
	if cfg.PageNumberRange != (PageRange{Min: 50, Max: 400}) {
		t.Errorf("PageNumberRange = %+v, want 50..400", cfg.PageNumberRange)
	}
	if cfg.ShortFragmentMaxSpaces != 2 {
		t.Errorf("ShortFragmentMaxSpaces = %d, want 2", cfg.ShortFragmentMaxSpaces)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Style)
	}{
		{"unknown family", func(s *Style) { s.StyleFamily = "chicago" }},
		{"unknown layout", func(s *Style) { s.SubLayout = "middle" }},
		{"unknown backend", func(s *Style) { s.ExtractionBackendHint = "backendC" }},
		{"zero join cap", func(s *Style) { s.MaxJoinIterations = 0 }},
		{"inverted pages", func(s *Style) { s.PageNumberRange = PageRange{Min: 10, Max: 5} }},
		{"stub ratio", func(s *Style) { s.StubRatio = 1.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() error = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestFromRefType(t *testing.T) {
	tests := []struct {
		code      string
		family    StyleFamily
		layout    SubLayout
		fullName  bool
		parenOnly bool
	}{
		{"APA", AuthorYear, YearAfterAuthors, false, true},
		{"a", AuthorYear, YearAtEnd, false, false},
		{"B", AuthorYear, YearAfterAuthors, false, false},
		{"C", AuthorYear, YearAtEnd, true, false},
		{"D", AuthorYear, YearAfterAuthors, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			cfg, err := Default().FromRefType(tt.code)
			if err != nil {
				t.Fatalf("FromRefType(%q) error = %v", tt.code, err)
			}
			if cfg.StyleFamily != tt.family || cfg.SubLayout != tt.layout {
				t.Errorf("FromRefType(%q) = %s/%s, want %s/%s", tt.code,
					cfg.StyleFamily, cfg.SubLayout, tt.family, tt.layout)
			}
			if cfg.FullNameDetection != tt.fullName {
				t.Errorf("FullNameDetection = %v, want %v", cfg.FullNameDetection, tt.fullName)
			}
			if cfg.ParenYearsOnly != tt.parenOnly {
				t.Errorf("ParenYearsOnly = %v, want %v", cfg.ParenYearsOnly, tt.parenOnly)
			}
		})
	}

	cfg, err := Default().FromRefType("N")
	if err != nil || cfg.StyleFamily != Numbered {
		t.Errorf("FromRefType(N) = %s, %v; want numbered", cfg.StyleFamily, err)
	}
	if _, err := Default().FromRefType("X"); !errors.Is(err, ErrInvalid) {
		t.Errorf("FromRefType(X) error = %v, want ErrInvalid", err)
	}
}

func TestThresholdsFollowRunMode(t *testing.T) {
	cfg := Default()
	if got := cfg.BareThreshold(); got != 10 {
		t.Errorf("BareThreshold() = %d, want 10", got)
	}
	cfg.RunToEndOfFile = true
	if got := cfg.BareThreshold(); got != 30 {
		t.Errorf("BareThreshold() until EOF = %d, want 30", got)
	}
	if got := cfg.TriggerThreshold(); got != 30 {
		t.Errorf("TriggerThreshold() until EOF = %d, want 30", got)
	}
}

func TestPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	want := "/custom/config/refsplit/config.yml"
	if got := Path(); got != want {
		t.Errorf("Path() = %q, want %q", got, want)
	}
}

func TestLoad_MissingDefaultFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.MaxJoinIterations != Default().MaxJoinIterations {
		t.Errorf("MaxJoinIterations = %d, want default", cfg.MaxJoinIterations)
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yml")); err == nil {
		t.Error("Load() expected error for missing explicit file")
	}
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	content := `style_family: numbered
strip_number_prefix: true
max_join_iterations: 4
page_number_range:
  min: 1
  max: 20
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.StyleFamily != Numbered {
		t.Errorf("StyleFamily = %q, want numbered", cfg.StyleFamily)
	}
	if !cfg.StripNumberPrefix {
		t.Error("StripNumberPrefix = false, want true")
	}
	if cfg.MaxJoinIterations != 4 {
		t.Errorf("MaxJoinIterations = %d, want 4", cfg.MaxJoinIterations)
	}
	if cfg.PageNumberRange != (PageRange{Min: 1, Max: 20}) {
		t.Errorf("PageNumberRange = %+v", cfg.PageNumberRange)
	}
	// Untouched keys keep their defaults.
	if cfg.MaxEditorIterations != 3 {
		t.Errorf("MaxEditorIterations = %d, want 3", cfg.MaxEditorIterations)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"REFSPLIT_REF_TYPE":      "A",
		"REFSPLIT_MAX_ITER":      "7",
		"REFSPLIT_UNTIL_EOF":     "true",
		"REFSPLIT_BACKEND":       "backendB",
		"REFSPLIT_LOG_LEVEL":     "debug",
		"REFSPLIT_STRIP_NUMBERS": "1",
	}
	cfg, err := Default().ApplyEnv(func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("ApplyEnv() error = %v", err)
	}
	if cfg.SubLayout != YearAtEnd {
		t.Errorf("SubLayout = %q, want yearAtEnd", cfg.SubLayout)
	}
	if cfg.MaxJoinIterations != 7 {
		t.Errorf("MaxJoinIterations = %d, want 7", cfg.MaxJoinIterations)
	}
	if !cfg.RunToEndOfFile || !cfg.StripNumberPrefix {
		t.Error("boolean overrides not applied")
	}
	if cfg.ExtractionBackendHint != BackendB {
		t.Errorf("ExtractionBackendHint = %q, want backendB", cfg.ExtractionBackendHint)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyEnv_BadInteger(t *testing.T) {
	env := map[string]string{"REFSPLIT_MAX_ITER": "ten"}
	_, err := Default().ApplyEnv(func(k string) string { return env[k] })
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("ApplyEnv() error = %v, want ErrInvalid", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got := ExpandPath("~/debug"); got != filepath.Join(home, "debug") {
		t.Errorf("ExpandPath(~/debug) = %q", got)
	}
	if got := ExpandPath("/abs"); got != "/abs" {
		t.Errorf("ExpandPath(/abs) = %q, want /abs", got)
	}
}
