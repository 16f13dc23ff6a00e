package debugstore

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "debug"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPathForAssignsSequence(t *testing.T) {
	s := openTestStore(t)

	first, err := s.PathFor("section.txt")
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.PathFor("lines.txt")
	if err != nil {
		t.Fatal(err)
	}
	again, err := s.PathFor("nested/section.txt")
	if err != nil {
		t.Fatal(err)
	}

	if filepath.Base(first) != "001_section.txt" || filepath.Base(second) != "002_lines.txt" {
		t.Errorf("got %s, %s", filepath.Base(first), filepath.Base(second))
	}
	if again != first {
		t.Errorf("PathFor() reassigned section.txt: %s != %s", again, first)
	}
}

func TestPathForAvoidsExistingFiles(t *testing.T) {
	s := openTestStore(t)
	if err := os.WriteFile(filepath.Join(s.Dir(), "001_a.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := s.PathFor("a.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(p); got != "001_01_a.txt" {
		t.Errorf("PathFor() = %s, want 001_01_a.txt", got)
	}
}

func TestWriteAndReopen(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "debug")
	s, err := Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.WriteLines("pass.txt", []string{"one", "two"}); err != nil {
		t.Fatalf("WriteLines() error = %v", err)
	}
	s.Close()

	data, err := os.ReadFile(filepath.Join(dir, "001_pass.txt"))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "one\ntwo\n" {
		t.Errorf("content = %q", data)
	}

	s, err = Open(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	p, err := s.PathFor("next.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(p); got != "002_next.txt" {
		t.Errorf("counter not persisted: %s", got)
	}
}

func TestReset(t *testing.T) {
	s := openTestStore(t)
	for _, n := range []string{"a.txt", "b.txt"} {
		if err := s.Write(n, "content"); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Reset(); err != nil {
		t.Fatalf("Reset() error = %v", err)
	}

	names, err := s.Names()
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 0 {
		t.Errorf("Names() after reset = %v", names)
	}
	entries, _ := os.ReadDir(s.Dir())
	for _, e := range entries {
		if !strings.HasPrefix(e.Name(), IndexFile) {
			t.Errorf("file %s left after reset", e.Name())
		}
	}

	p, err := s.PathFor("c.txt")
	if err != nil {
		t.Fatal(err)
	}
	if got := filepath.Base(p); got != "001_c.txt" {
		t.Errorf("counter not reset: %s", got)
	}
}

func TestConcurrentPathFor(t *testing.T) {
	s := openTestStore(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.PathFor("shared.txt"); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	names, err := s.Names()
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]string{"001_shared.txt"}, names); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}

func TestOpenEmptyDir(t *testing.T) {
	if _, err := Open(""); err == nil {
		t.Error("Open(\"\") succeeded")
	}
}
