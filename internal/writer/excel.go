package writer

import (
	"fmt"
	"io"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/ledgerline/statement-parser/internal/models"
)

// Workbook styling constants.
const (
	headerFillColor = "1F3864"
	rowFillOdd      = "FFFFFF"
	rowFillEven     = "DCE6F1"
	withdrawalColor = "C00000" // dark red
	depositColor    = "375623" // dark green

	currencyFmt = "$#,##0.00"
	dateFmt     = "DD-MMM-YYYY"
)

// ExcelWriter writes transactions to a formatted two-sheet workbook:
// "Transactions" lists every transaction, "Summary by Category" totals them
// per category with a terminal TOTAL row.
type ExcelWriter struct{}

// Write renders the workbook to the given writer.
func (w *ExcelWriter) Write(out io.Writer, txns []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	st, err := buildStyles(f)
	if err != nil {
		return fmt.Errorf("failed to build workbook styles: %w", err)
	}

	if err := writeTransactionsSheet(f, st, txns); err != nil {
		return fmt.Errorf("failed to write transactions sheet: %w", err)
	}
	if err := writeSummarySheet(f, st, txns); err != nil {
		return fmt.Errorf("failed to write summary sheet: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// styles holds the style IDs used across both sheets, indexed by row parity
// where the fill alternates.
type styles struct {
	header      int
	text        [2]int // left-aligned text
	center      [2]int
	date        [2]int
	amountOut   [2]int // currency, withdrawal red
	amountIn    [2]int // currency, deposit green
	balance     [2]int
	grandLabel  int
	grandMoney  int
	grandCenter int
}

func buildStyles(f *excelize.File) (*styles, error) {
	st := &styles{}
	var err error

	fill := func(color string) excelize.Fill {
		return excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
	}
	curFmt := currencyFmt
	dtFmt := dateFmt

	st.header, err = f.NewStyle(&excelize.Style{
		Fill:      fill(headerFillColor),
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	// Indexed by row%2: even row numbers take the shaded fill.
	for i, rowFill := range []string{rowFillEven, rowFillOdd} {
		if st.text[i], err = f.NewStyle(&excelize.Style{
			Fill:      fill(rowFill),
			Alignment: &excelize.Alignment{Horizontal: "left"},
		}); err != nil {
			return nil, err
		}
		if st.center[i], err = f.NewStyle(&excelize.Style{
			Fill:      fill(rowFill),
			Alignment: &excelize.Alignment{Horizontal: "center"},
		}); err != nil {
			return nil, err
		}
		if st.date[i], err = f.NewStyle(&excelize.Style{
			Fill:         fill(rowFill),
			Alignment:    &excelize.Alignment{Horizontal: "center"},
			CustomNumFmt: &dtFmt,
		}); err != nil {
			return nil, err
		}
		if st.amountOut[i], err = f.NewStyle(&excelize.Style{
			Fill:         fill(rowFill),
			Font:         &excelize.Font{Color: withdrawalColor},
			Alignment:    &excelize.Alignment{Horizontal: "right"},
			CustomNumFmt: &curFmt,
		}); err != nil {
			return nil, err
		}
		if st.amountIn[i], err = f.NewStyle(&excelize.Style{
			Fill:         fill(rowFill),
			Font:         &excelize.Font{Color: depositColor},
			Alignment:    &excelize.Alignment{Horizontal: "right"},
			CustomNumFmt: &curFmt,
		}); err != nil {
			return nil, err
		}
		if st.balance[i], err = f.NewStyle(&excelize.Style{
			Fill:         fill(rowFill),
			Alignment:    &excelize.Alignment{Horizontal: "right"},
			CustomNumFmt: &curFmt,
		}); err != nil {
			return nil, err
		}
	}

	grandFont := &excelize.Font{Bold: true, Color: "FFFFFF"}
	if st.grandLabel, err = f.NewStyle(&excelize.Style{
		Fill:      fill(headerFillColor),
		Font:      grandFont,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}
	if st.grandMoney, err = f.NewStyle(&excelize.Style{
		Fill:         fill(headerFillColor),
		Font:         grandFont,
		Alignment:    &excelize.Alignment{Horizontal: "right"},
		CustomNumFmt: &curFmt,
	}); err != nil {
		return nil, err
	}
	if st.grandCenter, err = f.NewStyle(&excelize.Style{
		Fill:      fill(headerFillColor),
		Font:      grandFont,
		Alignment: &excelize.Alignment{Horizontal: "center"},
	}); err != nil {
		return nil, err
	}

	return st, nil
}

func writeTransactionsSheet(f *excelize.File, st *styles, txns []models.Transaction) error {
	const sheet = "Transactions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}

	headers := []string{"Date", "Type", "Amount", "Category", "Description", "Merchant", "Statement Period", "Balance"}
	widths := []float64{14, 14, 14, 24, 58, 32, 26, 14}

	for i, h := range headers {
		col := string(rune('A' + i))
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return err
		}
	}
	if err := f.SetRowHeight(sheet, 1, 22); err != nil {
		return err
	}
	if err := freezeHeaderRow(f, sheet); err != nil {
		return err
	}
	if err := f.AutoFilter(sheet, "A1:H1", nil); err != nil {
		return err
	}

	for i, t := range txns {
		row := i + 2
		parity := row % 2 // 0 = even fill
		amountStyle := st.amountOut[parity]
		if t.Direction == models.Deposit {
			amountStyle = st.amountIn[parity]
		}

		cells := []struct {
			value any
			style int
		}{
			{t.Date.Time, st.date[parity]},
			{string(t.Direction), st.center[parity]},
			{t.Amount.InexactFloat64(), amountStyle},
			{t.Category, st.text[parity]},
			{t.Description, st.text[parity]},
			{t.Merchant, st.text[parity]},
			{t.Period, st.center[parity]},
			{nil, st.balance[parity]},
		}
		if t.Balance != nil {
			cells[7].value = t.Balance.InexactFloat64()
		}

		for col, c := range cells {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			if c.value != nil {
				if err := f.SetCellValue(sheet, cell, c.value); err != nil {
					return err
				}
			}
			if err := f.SetCellStyle(sheet, cell, cell, c.style); err != nil {
				return err
			}
		}
	}

	return nil
}

type categoryTotals struct {
	name        string
	withdrawals decimal.Decimal
	deposits    decimal.Decimal
	count       int
}

func writeSummarySheet(f *excelize.File, st *styles, txns []models.Transaction) error {
	const sheet = "Summary by Category"
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	headers := []string{"Category", "Total Withdrawals", "Total Deposits", "Net", "# Transactions"}
	widths := []float64{26, 22, 22, 22, 18}

	for i, h := range headers {
		col := string(rune('A' + i))
		cell := col + "1"
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return err
		}
		if err := f.SetColWidth(sheet, col, col, widths[i]); err != nil {
			return err
		}
	}
	if err := f.SetRowHeight(sheet, 1, 22); err != nil {
		return err
	}
	if err := freezeHeaderRow(f, sheet); err != nil {
		return err
	}

	byName := make(map[string]*categoryTotals)
	for _, t := range txns {
		entry, ok := byName[t.Category]
		if !ok {
			entry = &categoryTotals{name: t.Category}
			byName[t.Category] = entry
		}
		entry.count++
		if t.Direction == models.Withdrawal {
			entry.withdrawals = entry.withdrawals.Add(t.Amount)
		} else {
			entry.deposits = entry.deposits.Add(t.Amount)
		}
	}

	cats := make([]*categoryTotals, 0, len(byName))
	for _, c := range byName {
		cats = append(cats, c)
	}
	// Largest spend first; name as tie-break keeps output deterministic.
	sort.Slice(cats, func(a, b int) bool {
		if cmp := cats[a].withdrawals.Cmp(cats[b].withdrawals); cmp != 0 {
			return cmp > 0
		}
		return cats[a].name < cats[b].name
	})

	var totalW, totalD decimal.Decimal
	totalCount := 0

	for i, c := range cats {
		row := i + 2
		parity := row % 2
		net := c.deposits.Sub(c.withdrawals)
		netStyle := st.amountIn[parity]
		if net.IsNegative() {
			netStyle = st.amountOut[parity]
		}

		cells := []struct {
			value any
			style int
		}{
			{c.name, st.text[parity]},
			{c.withdrawals.InexactFloat64(), st.amountOut[parity]},
			{c.deposits.InexactFloat64(), st.amountIn[parity]},
			{net.InexactFloat64(), netStyle},
			{c.count, st.center[parity]},
		}
		for col, cl := range cells {
			cell := fmt.Sprintf("%c%d", 'A'+col, row)
			if err := f.SetCellValue(sheet, cell, cl.value); err != nil {
				return err
			}
			if err := f.SetCellStyle(sheet, cell, cell, cl.style); err != nil {
				return err
			}
		}

		totalW = totalW.Add(c.withdrawals)
		totalD = totalD.Add(c.deposits)
		totalCount += c.count
	}

	row := len(cats) + 2
	totals := []struct {
		value any
		style int
	}{
		{"TOTAL", st.grandLabel},
		{totalW.InexactFloat64(), st.grandMoney},
		{totalD.InexactFloat64(), st.grandMoney},
		{totalD.Sub(totalW).InexactFloat64(), st.grandMoney},
		{totalCount, st.grandCenter},
	}
	for col, c := range totals {
		cell := fmt.Sprintf("%c%d", 'A'+col, row)
		if err := f.SetCellValue(sheet, cell, c.value); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, c.style); err != nil {
			return err
		}
	}

	return nil
}

func freezeHeaderRow(f *excelize.File, sheet string) error {
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
