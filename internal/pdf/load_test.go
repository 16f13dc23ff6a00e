package pdf

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/matsen/refsplit/internal/config"
)

type fakeBackend struct {
	name  config.Backend
	text  string
	err   error
	calls int
}

func (f *fakeBackend) Name() config.Backend { return f.name }

func (f *fakeBackend) Extract(ctx context.Context, path string) (string, error) {
	f.calls++
	return f.text, f.err
}

func TestLoadPrefersHint(t *testing.T) {
	a := &fakeBackend{name: config.BackendA, text: "from a"}
	b := &fakeBackend{name: config.BackendB, text: "from b"}
	l := NewLoader(nil).WithBackend(a).WithBackend(b)

	doc, err := l.Load(context.Background(), "paper.pdf", config.BackendB)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Text != "from b" || doc.Backend != config.BackendB {
		t.Errorf("Load() = %+v", doc)
	}
	if a.calls != 0 {
		t.Errorf("backendA called %d times", a.calls)
	}
}

func TestLoadFallsBack(t *testing.T) {
	a := &fakeBackend{name: config.BackendA, err: ErrNoText}
	b := &fakeBackend{name: config.BackendB, text: "from b"}
	l := NewLoader(nil).WithBackend(a).WithBackend(b)

	doc, err := l.Load(context.Background(), "paper.pdf", config.BackendA)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Backend != config.BackendB {
		t.Errorf("Backend = %s, want backendB", doc.Backend)
	}
}

func TestLoadFallbackIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	a := &fakeBackend{name: config.BackendA, err: ErrNoText}
	b := &fakeBackend{name: config.BackendB, text: "from b"}
	l := NewLoader(zap.New(core)).WithBackend(a).WithBackend(b)

	if _, err := l.Load(context.Background(), "paper.pdf", config.BackendA); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	entries := logs.FilterMessage("extraction backend failed").All()
	if len(entries) != 1 {
		t.Fatalf("got %d warnings, want 1", len(entries))
	}
	if got := entries[0].ContextMap()["backend"]; got != "backendA" {
		t.Errorf("backend field = %v, want backendA", got)
	}
}

func TestLoadBothFail(t *testing.T) {
	a := &fakeBackend{name: config.BackendA, err: errors.New("broken xref")}
	b := &fakeBackend{name: config.BackendB, err: ErrNoText}
	l := NewLoader(nil).WithBackend(a).WithBackend(b)

	_, err := l.Load(context.Background(), "paper.pdf", config.BackendA)
	if !IsExtractionError(err) || !errors.Is(err, ErrExtraction) {
		t.Fatalf("err = %v, want ExtractionBackendError", err)
	}
	for _, want := range []string{"backendA: broken xref", "backendB: no readable text"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q missing %q", err, want)
		}
	}
}

func TestLoadPlainText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "refs.TXT")
	if err := os.WriteFile(path, []byte("References\nSmith, J. (2020).\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	a := &fakeBackend{name: config.BackendA}
	l := NewLoader(nil).WithBackend(a)

	doc, err := l.Load(context.Background(), path, config.BackendA)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if doc.Backend != PlainText || !strings.HasPrefix(doc.Text, "References") {
		t.Errorf("Load() = %+v", doc)
	}
	if a.calls != 0 {
		t.Error("backend used for text input")
	}

	_, err = l.Load(context.Background(), filepath.Join(t.TempDir(), "missing.txt"), config.BackendA)
	if !IsExtractionError(err) {
		t.Errorf("missing text file: err = %v", err)
	}
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	a := &fakeBackend{name: config.BackendA, err: context.Canceled}
	l := NewLoader(nil).WithBackend(a)

	if _, err := l.Load(ctx, "paper.pdf", config.BackendA); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestRealBackendsRejectMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.pdf")
	if _, err := (PageText{}).Extract(context.Background(), missing); err == nil {
		t.Error("PageText.Extract() on missing file succeeded")
	}
	if _, err := (Converter{}).Extract(context.Background(), missing); err == nil {
		t.Error("Converter.Extract() on missing file succeeded")
	}
}

func TestLoadWithUnknownBackend(t *testing.T) {
	if _, err := NewLoader(nil).LoadWith(context.Background(), "x.pdf", "backendZ"); err == nil {
		t.Error("LoadWith() with unknown backend succeeded")
	}
}
