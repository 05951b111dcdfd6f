package parser

import "strings"

// tableRow is one row as geometrically extracted from a page, before any
// merging. Cells follow the column order of the layout.
type tableRow struct {
	date       string
	desc       string
	withdrawal string
	deposit    string
	balance    string
	page       int
}

// logicalRow is a merged transaction candidate. A two-line transaction
// (type line plus wrapped merchant line) carries both segments in desc,
// joined by descJoin.
type logicalRow struct {
	date       string
	desc       string
	withdrawal string
	deposit    string
	balance    string
	page       int
}

// descJoin marks the boundary between the type line and the merchant line
// inside a merged description. The assembler splits on it.
const descJoin = " — "

// mergeRows folds fragmented table rows into logical transaction records.
// The row extractor emits one row per text line, so a wrapped transaction
// arrives as two consecutive rows; this is a two-state machine over "no open
// record" and "one open record": a row that starts a transaction closes the
// open record, everything else folds into it.
func (p *RBC) mergeRows(rows []tableRow) []logicalRow {
	var merged []logicalRow
	var open *logicalRow

	closeOpen := func() {
		if open != nil {
			merged = append(merged, *open)
			open = nil
		}
	}

	for _, r := range rows {
		date := collapseSpace(r.date)
		desc := collapseSpace(r.desc)
		withdrawal := collapseSpace(r.withdrawal)
		deposit := collapseSpace(r.deposit)
		balance := collapseSpace(r.balance)

		if p.isSkipRow(date, desc) {
			continue
		}

		// Stray serials and barcode fragments land in the date column;
		// anything that isn't a day+month token is noise.
		if date != "" && !isDateToken(date) {
			date = ""
		}

		// Tight column packing sometimes leaves the amount glued to the end
		// of the description cell. Recover it into the proper column.
		if desc != "" && withdrawal == "" && deposit == "" {
			if m := trailingAmountPattern.FindStringSubmatch(desc); m != nil {
				desc = strings.TrimSpace(m[1])
				if containsAny(strings.ToLower(desc), p.cfg.DepositDescriptions) {
					deposit = m[2]
				} else {
					withdrawal = m[2]
				}
			}
		}

		// A lone balance value continues the open record; it never starts
		// or closes one.
		if balance != "" && date == "" && desc == "" && withdrawal == "" && deposit == "" {
			if open != nil && open.balance == "" && amountOnlyPattern.MatchString(balance) {
				open.balance = balance
			}
			continue
		}

		if date == "" && desc == "" && withdrawal == "" && deposit == "" && balance == "" {
			continue
		}

		if p.startsTransaction(date, desc, withdrawal, deposit) {
			closeOpen()
			open = &logicalRow{
				date:       date,
				desc:       desc,
				withdrawal: withdrawal,
				deposit:    deposit,
				balance:    balance,
				page:       r.page,
			}
			continue
		}

		// Continuation line, usually the wrapped merchant name. Values are
		// adopted only into fields the open record doesn't have yet.
		if open == nil {
			p.log.Debug().Str("desc", desc).Int("page", r.page).
				Msg("continuation row with no open record")
			continue
		}
		if desc != "" {
			if open.desc != "" {
				open.desc += descJoin + desc
			} else {
				open.desc = desc
			}
		}
		if withdrawal != "" && open.withdrawal == "" {
			open.withdrawal = withdrawal
		}
		if deposit != "" && open.deposit == "" {
			open.deposit = deposit
		}
		if balance != "" && open.balance == "" {
			open.balance = balance
		}
	}

	closeOpen()
	return merged
}

// isSkipRow filters blank rows, header remnants, and table boilerplate.
// Header leftovers ("date", "description") must fill the whole cell;
// balance boilerplate matches as a substring since amounts ride along.
func (p *RBC) isSkipRow(date, desc string) bool {
	dateL := strings.ToLower(strings.TrimSpace(date))
	descL := strings.ToLower(strings.TrimSpace(desc))
	combined := strings.TrimSpace(dateL + " " + descL)
	if combined == "" {
		return true
	}

	for _, skip := range p.cfg.SkipRowTexts {
		if dateL == skip || descL == skip {
			return true
		}
		if strings.Contains(skip, "balance") && strings.Contains(combined, skip) {
			return true
		}
	}

	return strings.Contains(combined, "withdrawals") ||
		(strings.Contains(combined, "date") && strings.Contains(combined, "description"))
}

// startsTransaction decides whether a row opens a new logical record: a
// valid date token, a known transaction-type prefix, or an amount whose
// description doesn't begin with a merchant-only word.
func (p *RBC) startsTransaction(date, desc, withdrawal, deposit string) bool {
	if isDateToken(date) {
		return true
	}

	lower := strings.ToLower(strings.TrimSpace(desc))
	if startsWithAny(lower, p.cfg.TransactionTypeStarts) {
		return true
	}

	if (withdrawal != "" || deposit != "") && lower != "" {
		first := strings.Fields(lower)[0]
		if !p.merchantOnly[first] {
			return true
		}
	}

	return false
}
