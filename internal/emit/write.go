package emit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/matsen/refsplit/internal/reference"
)

// Format is an output format.
type Format string

const (
	FormatText  Format = "text"
	FormatJSONL Format = "jsonl"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSONL:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q (want text or jsonl)", s)
}

// MaxJSONLLineCapacity is the largest JSONL line ReadJSONL accepts.
const MaxJSONLLineCapacity = 1024 * 1024

// WriteText writes one reference text per line.
func WriteText(w io.Writer, refs []reference.Reference) error {
	bw := bufio.NewWriter(w)
	for i, ref := range refs {
		if _, err := bw.WriteString(ref.Text + "\n"); err != nil {
			return fmt.Errorf("writing reference %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteJSONL writes one JSON object per reference.
func WriteJSONL(w io.Writer, refs []reference.Reference) error {
	bw := bufio.NewWriter(w)
	for i, ref := range refs {
		data, err := json.Marshal(ref)
		if err != nil {
			return fmt.Errorf("encoding reference %d: %w", i, err)
		}
		if _, err := bw.Write(data); err != nil {
			return fmt.Errorf("writing reference %d: %w", i, err)
		}
		if err := bw.WriteByte('\n'); err != nil {
			return fmt.Errorf("writing newline: %w", err)
		}
	}
	return bw.Flush()
}

// Write writes refs to w in the given format.
func Write(w io.Writer, refs []reference.Reference, format Format) error {
	if format == FormatJSONL {
		return WriteJSONL(w, refs)
	}
	return WriteText(w, refs)
}

// WriteFile writes refs to path, replacing existing content.
func WriteFile(path string, refs []reference.Reference, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	if err := Write(f, refs, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadJSONL reads references written by WriteJSONL.
func ReadJSONL(r io.Reader) ([]reference.Reference, error) {
	var refs []reference.Reference
	scanner := bufio.NewScanner(r)
	buf := make([]byte, MaxJSONLLineCapacity)
	scanner.Buffer(buf, MaxJSONLLineCapacity)

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ref reference.Reference
		if err := json.Unmarshal(line, &ref); err != nil {
			return nil, fmt.Errorf("parsing line %d: %w", lineNum, err)
		}
		refs = append(refs, ref)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading references: %w", err)
	}
	return refs, nil
}
