package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/ledgerline/statement-parser/internal/api"
	"github.com/ledgerline/statement-parser/internal/config"
	"github.com/ledgerline/statement-parser/internal/extractor"
	"github.com/ledgerline/statement-parser/internal/logger"
	"github.com/ledgerline/statement-parser/internal/models"
	"github.com/ledgerline/statement-parser/internal/parser"
	"github.com/ledgerline/statement-parser/internal/writer"
)

func main() {
	formatFlag := flag.String("format", "csv", "Output format: csv, xlsx, json")
	outputFlag := flag.String("o", "", "Output file path (default stdout; required for xlsx)")
	serveFlag := flag.Bool("serve", false, "Run the HTTP API instead of converting files")
	addrFlag := flag.String("addr", ":8080", "Listen address for -serve")
	configFlag := flag.String("config", "", "Path to a YAML config override")
	maxPagesFlag := flag.Int("max-pages", 0, "Override the page scan cutoff (0 keeps the default)")
	verboseFlag := flag.Bool("v", false, "Enable debug logging")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `RBC Statement Parser

Converts RBC chequing statement PDFs into categorized transactions.

Usage:
  statement-parser [flags] <input.pdf> [input2.pdf ...]
  statement-parser -serve [-addr :8080]

Flags:
`)
		flag.PrintDefaults()
	}

	flag.Parse()

	// A .env file is optional; missing is fine.
	_ = godotenv.Load()

	log := logger.New(*verboseFlag)

	cfg, err := loadConfig(*configFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if *maxPagesFlag > 0 {
		cfg.PageScanLimit = *maxPagesFlag
	}

	if *serveFlag {
		app := api.NewApp(cfg, log)
		log.Info().Str("addr", *addrFlag).Msg("starting server")
		if err := app.Listen(*addrFlag); err != nil {
			log.Fatal().Err(err).Msg("server stopped")
		}
		return
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	format := strings.ToLower(*formatFlag)
	switch format {
	case "csv", "xlsx", "json":
	default:
		log.Fatal().Str("format", *formatFlag).Msg("unknown output format")
	}
	if format == "xlsx" && *outputFlag == "" {
		log.Fatal().Msg("xlsx output requires -o")
	}

	var stmts []*models.Statement
	for _, path := range flag.Args() {
		stmt, err := parseFile(path, cfg, log)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("failed to parse statement")
			continue
		}
		log.Info().Str("file", path).Str("period", stmt.Period).
			Int("transactions", len(stmt.Transactions)).Msg("parsed statement")
		stmts = append(stmts, stmt)
	}

	if len(stmts) == 0 {
		os.Exit(1)
	}

	if err := writeOutput(format, *outputFlag, stmts); err != nil {
		log.Fatal().Err(err).Msg("failed to write output")
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.FromEnv()
}

func parseFile(path string, cfg *config.Config, log zerolog.Logger) (*models.Statement, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("expected a .pdf file: %s", path)
	}

	doc, err := extractor.Open(path)
	if err != nil {
		return nil, err
	}

	p, err := parser.New(models.LayoutRBC, cfg, log)
	if err != nil {
		return nil, err
	}
	return p.Parse(doc)
}

func writeOutput(format, path string, stmts []*models.Statement) error {
	out := io.Writer(os.Stdout)
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %q: %w", path, err)
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "csv":
		w := &writer.CSVWriter{IncludeHeader: true}
		return w.Write(out, combined(stmts))
	case "xlsx":
		w := &writer.ExcelWriter{}
		return w.Write(out, combined(stmts).Transactions)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(stmts)
	}
	return fmt.Errorf("unknown format %q", format)
}

// combined flattens all parsed statements into one, sorted chronologically.
// The period label is kept only when a single statement was parsed; each
// transaction still carries its own statement period.
func combined(stmts []*models.Statement) *models.Statement {
	if len(stmts) == 1 {
		return stmts[0]
	}

	merged := &models.Statement{Layout: models.LayoutRBC}
	for _, s := range stmts {
		merged.Transactions = append(merged.Transactions, s.Transactions...)
	}
	sort.SliceStable(merged.Transactions, func(i, j int) bool {
		return merged.Transactions[i].Date.Before(merged.Transactions[j].Date.Time)
	})
	return merged
}
