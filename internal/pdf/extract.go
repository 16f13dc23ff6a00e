// Package pdf extracts plain text from PDF documents through one of two
// backends and loads plain-text inputs directly.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"code.sajari.com/docconv/v2"
	"github.com/ledongthuc/pdf"

	"github.com/matsen/refsplit/internal/config"
)

// Backend extracts the text of a document.
type Backend interface {
	Name() config.Backend
	Extract(ctx context.Context, path string) (string, error)
}

// ErrNoText is returned by a backend that produced only whitespace.
var ErrNoText = errors.New("no readable text")

// PageText extracts text page by page with github.com/ledongthuc/pdf.
type PageText struct {
	// MaxPages limits extraction to the first pages; zero means all.
	MaxPages int
}

// Name implements Backend.
func (PageText) Name() config.Backend { return config.BackendA }

// Extract implements Backend. Pages that fail to decode are skipped.
func (b PageText) Extract(ctx context.Context, path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	maxPages := b.MaxPages
	if maxPages <= 0 || maxPages > r.NumPage() {
		maxPages = r.NumPage()
	}

	var builder strings.Builder
	for i := 1; i <= maxPages; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}

	if strings.TrimSpace(builder.String()) == "" {
		return "", ErrNoText
	}
	return builder.String(), nil
}

// Converter extracts text with code.sajari.com/docconv/v2.
type Converter struct{}

// Name implements Backend.
func (Converter) Name() config.Backend { return config.BackendB }

// Extract implements Backend.
func (Converter) Extract(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	response, err := docconv.ConvertPath(path)
	if err != nil {
		return "", fmt.Errorf("converting %s: %w", path, err)
	}
	if strings.TrimSpace(response.Body) == "" {
		return "", ErrNoText
	}
	return response.Body, nil
}
