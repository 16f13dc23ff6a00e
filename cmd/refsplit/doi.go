package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matsen/refsplit/internal/config"
	"github.com/matsen/refsplit/internal/doi"
	"github.com/matsen/refsplit/internal/patterns"
)

func init() {
	doiCmd.AddCommand(doiIDsCmd)
	rootCmd.AddCommand(doiCmd)
}

var doiCmd = &cobra.Command{
	Use:   "doi [text...]",
	Short: "Move DOIs to the end of reference text",
	Long: `Normalize the DOIs in each argument, or in each line of stdin when no
arguments are given, and move them to the end in https://doi.org/ form.

Examples:
  refsplit doi "Title. doi: 10.1000/abc.def"
  pdftotext paper.pdf - | refsplit doi --human`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDOI(args, true)
	},
}

var doiIDsCmd = &cobra.Command{
	Use:   "ids [text...]",
	Short: "Print the DOI identifiers found in text",
	Args:  cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDOI(args, false)
	},
}

func runDOI(args []string, move bool) error {
	inputs := args
	if len(inputs) == 0 {
		if stdinIsTerminal() {
			return fmt.Errorf("no text given")
		}
		var err error
		if inputs, err = readLines(os.Stdin); err != nil {
			return err
		}
	}

	n := doi.New(patterns.New(config.Default()).DOI)
	results, err := normalizeAll(n, inputs, move)
	if err != nil {
		return err
	}

	if !humanOutput {
		return outputJSON(results)
	}
	for _, r := range results {
		if move {
			fmt.Println(r.Output)
			continue
		}
		for _, id := range r.DOIs {
			fmt.Println(id)
		}
	}
	return nil
}

// normalizeAll runs the normalizer over each input. Without move only the
// identifiers are collected.
func normalizeAll(n *doi.Normalizer, inputs []string, move bool) ([]DOIResult, error) {
	results := make([]DOIResult, 0, len(inputs))
	for _, in := range inputs {
		r := DOIResult{Input: in}
		text := in
		if move {
			out, err := n.MoveToEnd(in)
			if err != nil {
				return nil, err
			}
			r.Output, text = out, out
		}
		ids, err := n.ExtractIDs(text)
		if err != nil {
			return nil, err
		}
		r.DOIs = ids
		if r.DOIs == nil {
			r.DOIs = []string{}
		}
		results = append(results, r)
	}
	return results, nil
}

// readLines returns the non-blank lines of r.
func readLines(r io.Reader) ([]string, error) {
	var out []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			out = append(out, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading input: %w", err)
	}
	return out, nil
}
