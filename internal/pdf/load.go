package pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/matsen/refsplit/internal/config"
)

// PlainText is the backend name recorded for text inputs.
const PlainText config.Backend = "text"

// textExts are read directly instead of through a backend.
var textExts = map[string]bool{".txt": true, ".text": true}

// ErrExtraction is wrapped by ExtractionBackendError.
var ErrExtraction = errors.New("text extraction failed")

// ExtractionBackendError is returned when no backend produced text.
type ExtractionBackendError struct {
	Path     string
	Attempts map[config.Backend]error
}

func (e *ExtractionBackendError) Error() string {
	parts := make([]string, 0, len(e.Attempts))
	for _, b := range []config.Backend{config.BackendA, config.BackendB, PlainText} {
		if err, ok := e.Attempts[b]; ok {
			parts = append(parts, fmt.Sprintf("%s: %v", b, err))
		}
	}
	return fmt.Sprintf("%s for %s (%s)", ErrExtraction, e.Path, strings.Join(parts, "; "))
}

func (e *ExtractionBackendError) Unwrap() error { return ErrExtraction }

// IsExtractionError reports whether err is an ExtractionBackendError.
func IsExtractionError(err error) bool {
	var ee *ExtractionBackendError
	return errors.As(err, &ee)
}

// Document is extracted text and the backend that produced it.
type Document struct {
	Path    string
	Text    string
	Backend config.Backend
}

// Loader chooses a backend for each input.
type Loader struct {
	backends map[config.Backend]Backend
	log      *zap.Logger
}

// NewLoader returns a Loader with the page-text and docconv backends. A nil
// logger discards output.
func NewLoader(log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		backends: map[config.Backend]Backend{
			config.BackendA: PageText{},
			config.BackendB: Converter{},
		},
		log: log,
	}
}

// WithBackend replaces the backend registered under b.Name().
func (l *Loader) WithBackend(b Backend) *Loader {
	l.backends[b.Name()] = b
	return l
}

// IsText reports whether path is read as plain text.
func IsText(path string) bool {
	return textExts[strings.ToLower(filepath.Ext(path))]
}

// Load extracts path with the preferred backend, falling back to the other
// one when it fails. Plain-text inputs are read as they are.
func (l *Loader) Load(ctx context.Context, path string, prefer config.Backend) (Document, error) {
	if IsText(path) {
		data, err := os.ReadFile(path)
		if err != nil {
			return Document{}, &ExtractionBackendError{Path: path, Attempts: map[config.Backend]error{PlainText: err}}
		}
		return Document{Path: path, Text: string(data), Backend: PlainText}, nil
	}

	attempts := map[config.Backend]error{}
	for _, name := range []config.Backend{prefer, prefer.Alternate()} {
		doc, err := l.LoadWith(ctx, path, name)
		if err == nil {
			return doc, nil
		}
		if ctx.Err() != nil {
			return Document{}, ctx.Err()
		}
		attempts[name] = err
		l.log.Warn("extraction backend failed", zap.String("backend", string(name)),
			zap.String("path", path), zap.Error(err))
	}
	return Document{}, &ExtractionBackendError{Path: path, Attempts: attempts}
}

// LoadWith extracts path with one backend only.
func (l *Loader) LoadWith(ctx context.Context, path string, name config.Backend) (Document, error) {
	b, ok := l.backends[name]
	if !ok {
		return Document{}, fmt.Errorf("unknown backend %q", name)
	}
	text, err := b.Extract(ctx, path)
	if err != nil {
		return Document{}, err
	}
	l.log.Debug("extracted text", zap.String("backend", string(name)), zap.Int("chars", len(text)))
	return Document{Path: path, Text: text, Backend: name}, nil
}
