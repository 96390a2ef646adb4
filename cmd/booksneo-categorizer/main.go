// Package main provides the booksneo-categorizer CLI: categorize enriches
// a CSV of bank transactions with accounting categories, extract recovers
// transaction rows from raw statement text.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/Parzival048/booksneo-categorizer/internal/categorizer"
	"github.com/Parzival048/booksneo-categorizer/internal/config"
	"github.com/Parzival048/booksneo-categorizer/internal/extractor"
	"github.com/Parzival048/booksneo-categorizer/internal/gemini"
	"github.com/Parzival048/booksneo-categorizer/internal/logging"
	"github.com/Parzival048/booksneo-categorizer/internal/models"
	"github.com/Parzival048/booksneo-categorizer/internal/taxonomy"
)

var (
	inputFile  string
	outputFile string
)

// inputRow keeps the money columns as strings so empty cells and
// thousands-separator formats survive the CSV decoder.
type inputRow struct {
	Date        string `csv:"date"`
	Description string `csv:"description"`
	Debit       string `csv:"debit"`
	Credit      string `csv:"credit"`
}

func main() {
	// A missing .env is fine; the environment may carry the key directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.NewLogrusAdapter(cfg.Log.Level, cfg.Log.Format)

	rootCmd := &cobra.Command{
		Use:   "booksneo-categorizer",
		Short: "Categorize bank transactions with rules and the Gemini model",
		Long: `booksneo-categorizer assigns accounting categories, subcategories and
ledger suggestions to bank-statement transactions. It always works offline
with deterministic keyword rules; with GEMINI_API_KEY set it additionally
runs a batched model pass and keeps the higher-confidence suggestion.`,
	}

	categorizeCmd := &cobra.Command{
		Use:   "categorize",
		Short: "Enrich a transaction CSV with category suggestions",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCategorize(cmd, cfg, logger)
		},
	}
	categorizeCmd.Flags().StringVarP(&inputFile, "input", "i", "", "input CSV with date,description,debit,credit columns")
	categorizeCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV (defaults to stdout)")
	_ = categorizeCmd.MarkFlagRequired("input")

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract transaction rows from raw statement text",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExtract(cmd, cfg, logger)
		},
	}
	extractCmd.Flags().StringVarP(&inputFile, "input", "i", "", "text file with raw statement content")
	extractCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output CSV (defaults to stdout)")
	_ = extractCmd.MarkFlagRequired("input")

	rootCmd.AddCommand(categorizeCmd, extractCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCategorize(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}

	var rows []inputRow
	if err := gocsv.UnmarshalBytes(data, &rows); err != nil {
		return fmt.Errorf("parsing %s: %w", inputFile, err)
	}

	txns := make([]models.Transaction, len(rows))
	for i, row := range rows {
		txns[i] = models.Transaction{
			Date:        row.Date,
			Description: row.Description,
			Debit:       models.ParseAmount(row.Debit),
			Credit:      models.ParseAmount(row.Credit),
		}
	}

	customRules, err := taxonomy.LoadKeywordRules(cfg.Rules.File)
	if err != nil {
		logger.WithError(err).Warn("ignoring custom rules file")
	}
	rules := categorizer.NewRuleClassifier(customRules, logger)

	var model *categorizer.ModelClassifier
	if cfg.Enabled() {
		client := gemini.NewClient(cfg.AI.APIKey, cfg.AI.Model, logger)
		model = categorizer.NewModelClassifier(client, time.Duration(cfg.AI.TimeoutSeconds)*time.Second, logger)
	} else {
		logger.Info("no API key configured, using rules only")
	}

	pipeline := categorizer.New(rules, model, logger)
	results := pipeline.Categorize(cmd.Context(), txns)

	return writeCSV(results)
}

func runExtract(cmd *cobra.Command, cfg *config.Config, logger logging.Logger) error {
	data, err := os.ReadFile(inputFile)
	if err != nil {
		return fmt.Errorf("reading %s: %w", inputFile, err)
	}

	var completer extractor.Completer
	if cfg.Enabled() {
		completer = gemini.NewClient(cfg.AI.APIKey, cfg.AI.Model, logger)
	} else {
		logger.Info("no API key configured, extraction returns no records")
	}

	ext := extractor.New(completer, time.Duration(cfg.AI.ExtractTimeoutSeconds)*time.Second, logger)
	records := ext.Extract(cmd.Context(), string(data))

	return writeCSV(records)
}

func writeCSV(v interface{}) error {
	out := os.Stdout
	if outputFile != "" {
		f, err := os.Create(outputFile)
		if err != nil {
			return fmt.Errorf("creating %s: %w", outputFile, err)
		}
		defer f.Close()
		out = f
	}
	if err := gocsv.Marshal(v, out); err != nil {
		return fmt.Errorf("writing CSV: %w", err)
	}
	return nil
}
