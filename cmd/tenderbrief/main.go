// Package main implements the tenderbrief CLI for summarizing tender
// documents without running the HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/dgallion1/tenderbrief/internal/config"
	"github.com/dgallion1/tenderbrief/internal/heuristic"
	"github.com/dgallion1/tenderbrief/internal/parser"
	"github.com/dgallion1/tenderbrief/internal/remote"
	"github.com/dgallion1/tenderbrief/internal/summarizer"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "tenderbrief",
		Short: "Summarize procurement and tender documents",
		Long: `tenderbrief extracts deadlines, amounts, eligibility mentions and contacts
from tender documents and prints a structured summary for procurement officials.`,
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newSummarizeCmd())
	root.AddCommand(newRulesCmd())
	return root
}

func newSummarizeCmd() *cobra.Command {
	var (
		mode    string
		symbols []string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "summarize [file|-]",
		Short: "Summarize a document file or stdin",
		Long: `Summarize a document file or stdin.

Files are parsed by extension (.txt .md .csv .html .pdf .docx); stdin is read
as plain text.

Examples:
  # Heuristic summary of a PDF notice
  tenderbrief summarize notice.pdf

  # From stdin
  cat notice.txt | tenderbrief summarize -

  # Through OpenRouter (needs OPENROUTER_API_KEY)
  tenderbrief summarize --mode api notice.docx`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := summarizer.ParseMode(mode)
			if err != nil {
				return err
			}

			text, err := readInput(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}

			cfg := config.Load()
			if len(symbols) == 0 {
				symbols = cfg.CurrencySymbols
			}
			logOut := io.Discard
			if verbose {
				logOut = cmd.ErrOrStderr()
			}
			log := slog.New(slog.NewTextHandler(logOut, nil))

			llm := remote.NewClient(remote.Config{
				APIKey:    cfg.OpenRouterAPIKey,
				Model:     cfg.OpenRouterModel,
				BaseURL:   cfg.OpenRouterBaseURL,
				Timeout:   cfg.OpenRouterTimeout,
				RateLimit: cfg.OpenRouterRateLimit,
			}, log)
			defer llm.Close()

			svc := summarizer.New(
				heuristic.New(heuristic.WithCurrencySymbols(symbols...)),
				llm,
				summarizer.Options{
					DefaultMode:    summarizer.ModeMock,
					MaxInputBytes:  cfg.MaxInputBytes,
					FallbackToMock: cfg.FallbackToMock,
				},
				log,
			)

			result, err := svc.Summarize(cmd.Context(), summarizer.Request{Text: text, Mode: m})
			if err != nil {
				return fmt.Errorf("summarize: %w", err)
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
	cmd.Flags().StringVar(&mode, "mode", "mock", "summarization mode: mock or api")
	cmd.Flags().StringSliceVar(&symbols, "currency", nil, "currency symbols for the money rule (default from CURRENCY_SYMBOLS)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log to stderr")
	return cmd
}

func newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the heuristic detectors in evaluation order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for i, name := range heuristic.New().RuleNames() {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, name)
			}
			return nil
		},
	}
}

// readInput returns the text of the named file, or stdin for "-" or no
// argument.
func readInput(stdin io.Reader, args []string) (string, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read from stdin: %w", err)
		}
		return strings.TrimPrefix(string(data), "\ufeff"), nil
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if !parser.IsSupportedExtension(path) {
		return "", fmt.Errorf("unsupported file type: %s", path)
	}
	p, err := parser.ForFile(path, parser.Options{PDFFallbackPdftotext: config.Load().PDFFallbackPdftotext})
	if err != nil {
		return "", err
	}
	doc, err := p.Parse(bytes.NewReader(data), path)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", path, err)
	}
	return doc.Text(), nil
}
