package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refsplit/internal/emit"
	"github.com/matsen/refsplit/internal/pipeline"
)

var (
	batchOutDir string
	batchJobs   int
)

func init() {
	f := batchCmd.Flags()
	bindStyleFlags(f)
	f.StringVar(&runFormat, "format", "text", "Reference format: text or jsonl")
	f.StringVar(&batchOutDir, "out-dir", ".", "Directory for the reference files")
	f.IntVarP(&batchJobs, "jobs", "j", 4, "Documents processed at once")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <source>...",
	Short: "Split the references of several documents",
	Long: `Split the references of several documents, writing one reference file
per document into --out-dir. A document that fails does not stop the others.

Examples:
  refsplit batch papers/*.pdf --out-dir refs
  refsplit batch a.pdf b.pdf --ref-type N --format jsonl -j 2`,
	Args: cobra.MinimumNArgs(1),
	RunE: runBatch,
}

// BatchItemResponse is one document of the batch response.
type BatchItemResponse struct {
	Source string `json:"source"`
	Output string `json:"output,omitempty"`
	RunID  string `json:"run_id,omitempty"`
	Count  int    `json:"count"`
	Error  string `json:"error,omitempty"`
	Code   int    `json:"code"`
}

// batchLabels returns a distinct label per source, derived from its base
// name without extension.
func batchLabels(sources []string) []string {
	seen := make(map[string]int)
	labels := make([]string, len(sources))
	for i, src := range sources {
		base := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
		seen[base]++
		if n := seen[base]; n > 1 {
			base = fmt.Sprintf("%s_%d", base, n)
		}
		labels[i] = base
	}
	return labels
}

func formatExt(f emit.Format) string {
	if f == emit.FormatJSONL {
		return ".jsonl"
	}
	return ".txt"
}

func runBatch(cmd *cobra.Command, args []string) error {
	format, err := emit.ParseFormat(runFormat)
	if err != nil {
		return err
	}
	cfg, err := loadStyle()
	if err != nil {
		return err
	}
	if cfg, err = applyStyleFlags(cmd, cfg); err != nil {
		return err
	}
	if err := os.MkdirAll(batchOutDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	labels := batchLabels(args)
	inputs := make([]pipeline.Input, len(args))
	for i, src := range args {
		inputs[i] = pipeline.Input{Source: src, Label: labels[i]}
	}
	items, err := pipeline.RunBatch(ctx, inputs, cfg, log, batchJobs)
	if err != nil {
		return err
	}

	resp := make([]BatchItemResponse, len(items))
	worst := ExitSuccess
	for i, item := range items {
		r := BatchItemResponse{Source: item.Input.Source, RunID: item.Result.RunID}
		if item.Err == nil {
			out := filepath.Join(batchOutDir, labels[i]+formatExt(format))
			if werr := emit.WriteFile(out, item.Result.References, format); werr != nil {
				item.Err = werr
			} else {
				r.Output, r.Count = out, len(item.Result.References)
			}
		}
		if item.Err != nil {
			r.Error, r.Code = item.Err.Error(), exitCodeFor(item.Err)
			if r.Code > worst {
				worst = r.Code
			}
		}
		resp[i] = r
	}

	if humanOutput {
		for _, r := range resp {
			if r.Error != "" {
				outputHuman("%s: error: %s\n", r.Source, r.Error)
				continue
			}
			outputHuman("%s: %d references -> %s\n", r.Source, r.Count, r.Output)
		}
	} else if err := outputJSON(resp); err != nil {
		return err
	}
	if worst != ExitSuccess {
		os.Exit(worst)
	}
	return nil
}
