package parser

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ledgerline/statement-parser/internal/models"
)

// assemble turns dated logical records into finished transactions. Records
// that fail validation are dropped with a log event, never an error; output
// preserves input order and any global re-sort belongs to the caller.
func (p *RBC) assemble(rows []logicalRow, dates []*models.Date, period string) []models.Transaction {
	transactions := make([]models.Transaction, 0, len(rows))

	for i, row := range rows {
		date := dates[i]
		if date == nil {
			p.log.Warn().Str("desc", row.desc).Int("page", row.page).
				Msg("dropping row with no resolvable date")
			continue
		}

		direction := p.resolveDirection(row.desc, row.withdrawal, row.deposit)
		rawAmount := row.withdrawal
		if direction == models.Deposit {
			rawAmount = row.deposit
		}

		amount, ok := parseAmount(rawAmount)
		if !ok {
			p.log.Warn().Str("desc", row.desc).Str("withdrawal", row.withdrawal).
				Str("deposit", row.deposit).Stringer("date", date).Int("page", row.page).
				Msg("dropping row with no parsable amount")
			continue
		}
		if !amount.IsPositive() {
			p.log.Warn().Str("desc", row.desc).Str("amount", amount.String()).
				Msg("dropping row with non-positive amount")
			continue
		}

		typeLine, merchant := splitDescription(row.desc)

		// Balance is optional; unparsable text means absent, not a drop.
		var balance *decimal.Decimal
		if b, ok := parseAmount(row.balance); ok {
			balance = &b
		} else if row.balance != "" {
			p.log.Debug().Str("balance", row.balance).Str("desc", row.desc).
				Msg("ignoring unparsable balance")
		}

		transactions = append(transactions, models.Transaction{
			Date:        *date,
			Description: row.desc,
			TypeLine:    typeLine,
			Merchant:    merchant,
			Direction:   direction,
			Amount:      amount,
			Balance:     balance,
			Category:    p.cat.Categorize(row.desc, direction),
			Period:      period,
		})
	}

	return transactions
}

// resolveDirection reads direction from which amount column is populated.
// Both populated resolves to Withdrawal, and so does a total miss after the
// keyword vocabularies; both defaults are deliberate layout policy, logged
// rather than silently applied.
func (p *RBC) resolveDirection(desc, withdrawal, deposit string) models.Direction {
	hasW := withdrawal != ""
	hasD := deposit != ""

	switch {
	case hasW && !hasD:
		return models.Withdrawal
	case hasD && !hasW:
		return models.Deposit
	case hasW && hasD:
		p.log.Warn().Str("desc", desc).
			Msg("both amount columns populated, treating as withdrawal")
		return models.Withdrawal
	}

	lower := strings.ToLower(desc)
	if containsAny(lower, p.cfg.DepositDescriptions) {
		return models.Deposit
	}
	if containsAny(lower, p.cfg.WithdrawalDescriptions) {
		return models.Withdrawal
	}

	p.log.Warn().Str("desc", desc).
		Msg("direction undeterminable, defaulting to withdrawal")
	return models.Withdrawal
}

// splitDescription separates a merged description into the type line and
// the merchant line. Merchant is empty for single-line transactions.
func splitDescription(desc string) (typeLine, merchant string) {
	if before, after, found := strings.Cut(desc, descJoin); found {
		return strings.TrimSpace(before), strings.TrimSpace(after)
	}
	return strings.TrimSpace(desc), ""
}
