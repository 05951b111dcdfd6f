package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CategoryRule maps a spending category to the keywords that select it.
// Rules are evaluated in order and the first match wins; a rule with no
// keywords matches everything and terminates the scan.
type CategoryRule struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// Config holds every tunable of the statement parser: the vocabularies and
// geometry constants of the supported layout plus the category rule table.
// A Config is immutable after Load; the parser takes it by pointer and never
// writes through it.
type Config struct {
	// FallbackSeparators are the column x-positions used when the header row
	// cannot be located on a page. Verified against real statements: the same
	// on every page of this layout.
	FallbackSeparators []float64 `yaml:"fallback_separators"`

	// FooterMarkers end the transaction table. Matched lowercase with spaces
	// stripped, substring match.
	FooterMarkers []string `yaml:"footer_markers"`

	// SkipRowTexts are non-transaction rows (header remnants, boilerplate).
	SkipRowTexts []string `yaml:"skip_row_texts"`

	// TransactionTypeStarts are description prefixes that always open a new
	// transaction.
	TransactionTypeStarts []string `yaml:"transaction_type_starts"`

	// MerchantOnlyFirstWords never start a transaction; they only ever appear
	// on a wrapped merchant line.
	MerchantOnlyFirstWords []string `yaml:"merchant_only_first_words"`

	// DepositDescriptions and WithdrawalDescriptions decide direction when
	// neither amount column is populated.
	DepositDescriptions    []string `yaml:"deposit_descriptions"`
	WithdrawalDescriptions []string `yaml:"withdrawal_descriptions"`

	// Categories is the ordered rule table. The terminal catch-all rule has
	// no keywords and must come last.
	Categories []CategoryRule `yaml:"categories"`

	// PageScanLimit stops table extraction at this page number; later pages
	// of this layout carry only boilerplate.
	PageScanLimit int `yaml:"page_scan_limit"`

	// HeaderBandQuantum is the vertical bucket size (points) used to group
	// words into lines when hunting for the header row.
	HeaderBandQuantum float64 `yaml:"header_band_quantum"`

	// RowJoinTolerance is the vertical distance (points) within which words
	// belong to the same table row.
	RowJoinTolerance float64 `yaml:"row_join_tolerance"`

	// DateHeaderMaxX rejects "Date" tokens that sit too far right to be the
	// first column header.
	DateHeaderMaxX float64 `yaml:"date_header_max_x"`
}

// Default returns the compiled-in configuration for the RBC Advantage
// Banking chequing layout.
func Default() *Config {
	return &Config{
		FallbackSeparators: []float64{0, 55, 290, 390, 480, 620},
		FooterMarkers: []string{
			"importantinformation", "important", "protectyour", "closingbalance",
			"closing", "stayinformed", "pleasecheck", "registeredtrade",
		},
		SkipRowTexts: []string{
			"opening balance", "closing balance", "openingbalance",
			"closingbalance", "date", "description",
		},
		TransactionTypeStarts: []string{
			"payroll", "e-transfer", "online", "investment", "visa",
			"contactless", "to find", "online transfer",
		},
		MerchantOnlyFirstWords: []string{
			"uber", "lyft", "walmart", "wal-mart", "amzn", "amazon", "shoppers",
			"massine", "thana", "africa", "geeland", "apple", "audible", "presto",
			"immigration", "vivianna", "the", "sp", "le", "rbcrewards",
			"momentive", "chimoneyws", "precious", "sabita", "mfh", "olivia",
			"tabitha", "chigo_e", "chimnomso", "mrsayo", "mrsama",
		},
		DepositDescriptions: []string{
			"payroll deposit",
			"e-transfer - autodeposit",
			"autodeposit",
			"visa debit authorization expired",
			"visa debit auth reversal expired",
			"visa debit refund",
			"visa debit reversal",
		},
		WithdrawalDescriptions: []string{
			"e-transfer sent",
			"investment ws",
			"to find & save",
			"to find and save",
			"contactless interac purchase",
			"visa debit purchase",
		},
		Categories: []CategoryRule{
			{Name: "Income", Keywords: []string{"payroll deposit", "payrolldeposit"}},
			{Name: "Investments", Keywords: []string{"ws investments", "wealthsimple"}},
			{Name: "Savings", Keywords: []string{"find & save", "find and save"}},
			{Name: "Rent", Keywords: []string{"sabita", "landlord"}},
			{Name: "Groceries", Keywords: []string{
				"walmart", "wal-mart", "thana market", "africa world",
				"geeland", "massine",
			}},
			{Name: "Rideshare", Keywords: []string{"uber", "lyft"}},
			{Name: "Subscriptions", Keywords: []string{
				"apple.com/bill", "audible", "amazon prime", "wix",
			}},
			{Name: "Shopping", Keywords: []string{
				"amazon", "amzn", "uniqlo", "dollarama", "sp torras", "sp quad lock",
			}},
			{Name: "Food & Dining", Keywords: []string{
				"le poke", "naija jollo", "cake shop", "tabitha",
			}},
			{Name: "Entertainment", Keywords: []string{"niagara skywheel", "skywheel"}},
			{Name: "Health & Beauty", Keywords: []string{
				"vivianna skin", "shoppers drug", "shoppers",
			}},
			{Name: "Transit", Keywords: []string{"presto"}},
			{Name: "Government / Fees", Keywords: []string{"immigration"}},
			{Name: "Transfers Out", Keywords: []string{"e-transfer sent", "chimoney"}},
			{Name: "Transfers In", Keywords: []string{"e-transfer - autodeposit", "autodeposit"}},
			{Name: "Refunds", Keywords: []string{
				"visa debit refund", "auth reversal", "visa debit reversal",
				"reversal expired",
			}},
			{Name: "Other"}, // catch-all, keep last
		},
		PageScanLimit:     5,
		HeaderBandQuantum: 2,
		RowJoinTolerance:  3,
		DateHeaderMaxX:    60,
	}
}

// Load reads a YAML override file on top of the defaults. Fields absent from
// the file keep their default values; fields present replace them wholesale.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.check(); err != nil {
		return nil, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// EnvVar names the environment variable pointing at an override file.
const EnvVar = "STATEMENT_PARSER_CONFIG"

// FromEnv loads the file named by STATEMENT_PARSER_CONFIG, or the defaults
// when the variable is unset.
func FromEnv() (*Config, error) {
	path := os.Getenv(EnvVar)
	if path == "" {
		return Default(), nil
	}
	return Load(path)
}

func (c *Config) check() error {
	if len(c.FallbackSeparators) < 6 {
		return fmt.Errorf("need at least 6 fallback separators, got %d", len(c.FallbackSeparators))
	}
	if c.PageScanLimit < 1 {
		return fmt.Errorf("page_scan_limit must be positive, got %d", c.PageScanLimit)
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("category rule table is empty")
	}
	last := c.Categories[len(c.Categories)-1]
	if len(last.Keywords) != 0 {
		return fmt.Errorf("last category rule %q must be the keywordless catch-all", last.Name)
	}
	return nil
}
