package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/emit"
	"github.com/matsen/refsplit/internal/pipeline"
)

var (
	runRefType      string
	runBackend      string
	runUntilEOF     bool
	runStripNumbers bool
	runNoHeading    bool
	runOutput       string
	runFormat       string
	runFillDashed   string
	runDebugDir     string
)

func init() {
	bindRunFlags(runCmd.Flags())
	rootCmd.AddCommand(runCmd)
}

func bindRunFlags(f *pflag.FlagSet) {
	bindStyleFlags(f)
	f.StringVarP(&runOutput, "output", "o", "", "Write references to this file")
	f.StringVar(&runFormat, "format", "text", "Reference format for --output and --human: text or jsonl")
}

// bindStyleFlags binds the flags that override the configuration.
func bindStyleFlags(f *pflag.FlagSet) {
	f.StringVar(&runRefType, "ref-type", "", "Reference type: APA, A, B, C, D or N (numbered)")
	f.StringVar(&runBackend, "backend", "", "Preferred extraction backend (backendA, backendB)")
	f.BoolVar(&runUntilEOF, "until-eof", false, "Treat everything after the heading as references")
	f.BoolVar(&runStripNumbers, "strip-numbers", false, "Remove list numbers from numbered references")
	f.BoolVar(&runNoHeading, "no-heading", false, "Use the whole text when no references heading is found")
	f.StringVar(&runFillDashed, "fill-dashed", "", "Placeholder that repeats the previous authors (e.g. ---.)")
	f.StringVar(&runDebugDir, "debug-dir", "", "Write intermediate snapshots to this directory")
}

var runCmd = &cobra.Command{
	Use:   "run <source>",
	Short: "Split the references of a PDF or text file",
	Long: `Split the references section of a document into one entry per reference.

Examples:
  refsplit run paper.pdf
  refsplit run paper.pdf --ref-type N --strip-numbers
  refsplit run refs.txt --no-heading --human
  refsplit run paper.pdf -o refs.jsonl --format jsonl`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

// applyStyleFlags overlays the flags the user set on cfg.
func applyStyleFlags(cmd *cobra.Command, cfg config.Style) (config.Style, error) {
	f := cmd.Flags()
	if f.Changed("ref-type") {
		var err error
		if cfg, err = cfg.FromRefType(runRefType); err != nil {
			return cfg, err
		}
	}
	if f.Changed("backend") {
		cfg.ExtractionBackendHint = config.Backend(runBackend)
	}
	if f.Changed("until-eof") {
		cfg.RunToEndOfFile = runUntilEOF
	}
	if f.Changed("strip-numbers") {
		cfg.StripNumberPrefix = runStripNumbers
	}
	if f.Changed("no-heading") {
		cfg.RequireHeading = !runNoHeading
	}
	if f.Changed("fill-dashed") {
		cfg.DashPlaceholder = runFillDashed
	}
	if f.Changed("debug-dir") {
		cfg.DebugDir = config.ExpandPath(runDebugDir)
	}
	return cfg, cfg.Validate()
}

func runRun(cmd *cobra.Command, args []string) error {
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

	log, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	res, err := pipeline.Run(ctx, pipeline.Input{Source: args[0]}, cfg, log)
	if err != nil {
		return err
	}
	for _, d := range res.Segment.Diagnostics.Errors() {
		log.Debug("diagnostic", zap.Error(d))
	}

	if runOutput != "" {
		if err := emit.WriteFile(runOutput, res.References, format); err != nil {
			return err
		}
	}

	if humanOutput {
		if runOutput != "" {
			outputHuman("wrote %d references to %s\n", len(res.References), runOutput)
			return nil
		}
		return emit.Write(os.Stdout, res.References, format)
	}

	resp := RunResponse{
		RunID:     res.RunID,
		Source:    args[0],
		Backend:   string(res.Backend),
		Numbering: res.Segment.Numbering.Style.String(),
		Count:     len(res.References),
		Output:    runOutput,
		Rerun:     res.Rerun,
		Fallback:  res.Fallback,
	}
	for _, d := range res.Segment.Diagnostics.Errors() {
		resp.Diagnostics = append(resp.Diagnostics, d.Error())
	}
	if runOutput == "" {
		resp.References = res.References
	}
	return outputJSON(resp)
}
