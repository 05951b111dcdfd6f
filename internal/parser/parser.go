package parser

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/ledgerline/statement-parser/internal/config"
	"github.com/ledgerline/statement-parser/internal/extractor"
	"github.com/ledgerline/statement-parser/internal/models"
)

// Parser turns one PDF statement into a list of transactions.
type Parser interface {
	// Parse processes the whole document in a single pass. Only a document
	// that cannot be read at all returns an error; page- and row-level
	// problems degrade to a smaller transaction list.
	Parse(doc *extractor.Document) (*models.Statement, error)
	// LayoutName returns the human-readable statement layout name.
	LayoutName() string
}

// New returns the parser for the given statement layout.
func New(layout models.LayoutType, cfg *config.Config, log zerolog.Logger) (Parser, error) {
	switch layout {
	case models.LayoutRBC:
		return newRBC(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported statement layout: %q", layout)
	}
}

// RBC parses the RBC Advantage Banking chequing layout:
//
//	Date | Description | Withdrawals ($) | Deposits ($) | Balance ($)
//
// Dates appear as "10Dec" tokens on the first row of each day only, and a
// transaction's merchant name wraps onto a second physical line. All state
// lives in the per-call pipeline, so one RBC value may parse statements
// concurrently.
type RBC struct {
	cfg          *config.Config
	log          zerolog.Logger
	cat          *Categorizer
	merchantOnly map[string]bool
}

func newRBC(cfg *config.Config, log zerolog.Logger) *RBC {
	merchantOnly := make(map[string]bool, len(cfg.MerchantOnlyFirstWords))
	for _, w := range cfg.MerchantOnlyFirstWords {
		merchantOnly[w] = true
	}
	return &RBC{
		cfg:          cfg,
		log:          log,
		cat:          NewCategorizer(cfg.Categories),
		merchantOnly: merchantOnly,
	}
}

func (p *RBC) LayoutName() string { return "RBC Advantage Banking" }

// Parse runs the full pipeline: period detection once, table extraction per
// page in order, then merge, date fill, and assembly over all pages' rows.
// Page order matters because the open-record merge and date forward-fill
// carry state across page boundaries.
func (p *RBC) Parse(doc *extractor.Document) (*models.Statement, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}

	years, period := p.detectPeriod(doc.PageText(1))

	var rows []tableRow
	for pageNum := 1; pageNum <= doc.PageCount(); pageNum++ {
		if pageNum >= p.cfg.PageScanLimit {
			break // later pages of this layout are boilerplate
		}
		page, err := doc.Page(pageNum)
		if err != nil {
			p.log.Debug().Err(err).Int("page", pageNum).Msg("skipping unreadable page")
			continue
		}
		rows = append(rows, p.extractPageRows(page, pageNum)...)
	}

	transactions := p.parsePipeline(rows, years, period)

	p.log.Info().Int("transactions", len(transactions)).Str("period", period).
		Str("file", doc.Name()).Msg("parsed statement")

	return &models.Statement{
		Layout:       models.LayoutRBC,
		Period:       period,
		Source:       doc.Name(),
		Transactions: transactions,
	}, nil
}

// parsePipeline runs merge, date resolution, and assembly over raw table
// rows. Split out from Parse so the row-level pipeline is testable without
// a PDF document.
func (p *RBC) parsePipeline(rows []tableRow, years YearMap, period string) []models.Transaction {
	merged := p.mergeRows(rows)
	dates := p.fillDates(merged, years)
	return p.assemble(merged, dates, period)
}
