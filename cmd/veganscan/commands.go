package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/veganscan/backend/internal/domain"
	"github.com/veganscan/backend/internal/infrastructure/reference"
	"github.com/veganscan/backend/internal/logging"
	"github.com/veganscan/backend/internal/usecase"
)

// usageError marks invalid flags or arguments
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

// analyzeOptions holds the flags of the analyze command
type analyzeOptions struct {
	file      string
	hints     string
	reference string
	output    string
	threshold float64
	verbose   bool
}

// newRootCmd builds the command tree. A fresh tree per call keeps tests independent.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "veganscan",
		Short:         "Classify food ingredient lists as vegan, non-vegan or uncertain",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return usageError{err.Error()}
	})

	root.AddCommand(newAnalyzeCmd())
	root.AddCommand(newReferenceCmd())
	return root
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze [ingredient...]",
		Short: "Analyze an ingredient list",
		Long: `Analyze an ingredient list and print the product verdict.

Ingredients are given as arguments or read one per line from --file ("-" for stdin).
Hints are an optional JSON object keyed by ingredient name:

  {"Lecitin": {"isVegan": "uncertain", "confidence": 0.6}}`,
		Example: `  veganscan analyze Mjölk Socker Salt
  veganscan analyze --file ingredients.txt --output json
  veganscan analyze Havremjölk --reference reference.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, opts, args)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "read ingredients from a file, one per line")
	cmd.Flags().StringVar(&opts.hints, "hints", "", "JSON file with per-ingredient hints")
	cmd.Flags().StringVar(&opts.reference, "reference", "", "YAML reference dataset (default: built-in)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "text", "output format: text or json")
	cmd.Flags().Float64Var(&opts.threshold, "threshold", usecase.DefaultMatchThreshold, "fuzzy match acceptance threshold")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "log progress to stderr")
	return cmd
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, args []string) error {
	if opts.output != "text" && opts.output != "json" {
		return usageError{fmt.Sprintf("unknown output format %q (want text or json)", opts.output)}
	}
	if opts.threshold <= 0 || opts.threshold > 1 {
		return usageError{fmt.Sprintf("threshold must be in (0, 1], got %v", opts.threshold)}
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger := logging.New(cmd.ErrOrStderr(), level, "text")

	ingredients := append([]string{}, args...)
	if opts.file != "" {
		fromFile, err := readIngredients(cmd.InOrStdin(), opts.file)
		if err != nil {
			return err
		}
		ingredients = append(ingredients, fromFile...)
	}
	if len(ingredients) == 0 {
		return usageError{"no ingredients given (pass them as arguments or use --file)"}
	}

	hints, err := readHints(opts.hints)
	if err != nil {
		return err
	}

	lists, err := reference.LoadOrDefault(opts.reference)
	if err != nil {
		return err
	}
	ref, err := usecase.NewReferenceData(lists)
	if err != nil {
		return err
	}
	logger.Debug("reference data loaded", "source", opts.reference, "hints", len(hints))

	engine := usecase.NewEngine(ref, usecase.EngineConfig{MatchThreshold: opts.threshold})
	verdict := engine.Analyze(domain.AnalyzeRequest{Ingredients: ingredients, Hints: hints})
	logger.Debug("analysis complete", "ingredients", len(ingredients), "status", verdict.Status(), "confidence", verdict.Confidence)

	if opts.output == "json" {
		return writeJSON(cmd.OutOrStdout(), verdict)
	}
	return writeVerdictText(cmd.OutOrStdout(), verdict)
}

func newReferenceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reference",
		Short: "Inspect reference datasets",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate <file>",
		Short: "Validate a YAML reference dataset and print its set sizes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lists, err := reference.Load(args[0])
			if err != nil {
				return err
			}
			ref, err := usecase.NewReferenceData(lists)
			if err != nil {
				return err
			}
			return writeReferenceSummary(cmd.OutOrStdout(), args[0], ref, lists)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the built-in reference dataset as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeYAML(cmd.OutOrStdout(), reference.Default())
		},
	})

	return cmd
}

// readIngredients reads one ingredient per line, skipping blanks and # comments
func readIngredients(stdin io.Reader, path string) ([]string, error) {
	var r io.Reader = stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading ingredients: %w", err)
		}
		defer f.Close()
		r = f
	}

	var out []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading ingredients: %w", err)
	}
	return out, nil
}

// readHints loads a JSON hint file. Malformed individual hints are dropped.
func readHints(path string) (map[string]domain.Hint, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading hints: %w", err)
	}
	var raw map[string]domain.RawHint
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: hints file: %v", domain.ErrInvalidRequest, err)
	}
	return domain.ParseHints(raw), nil
}
