package writer

import (
	"bytes"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestExcelWriter_Write(t *testing.T) {
	stmt := sampleStatement()

	var buf bytes.Buffer
	w := &ExcelWriter{}
	if err := w.Write(&buf, stmt.Transactions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) != 2 || sheets[0] != "Transactions" || sheets[1] != "Summary by Category" {
		t.Fatalf("unexpected sheet list: %v", sheets)
	}

	checks := []struct {
		sheet, cell, want string
	}{
		{"Transactions", "A1", "Date"},
		{"Transactions", "B1", "Type"},
		{"Transactions", "H1", "Balance"},
		{"Transactions", "B2", "Withdrawal"},
		{"Transactions", "D2", "Restaurants & Dining"},
		{"Transactions", "F2", "TIM HORTONS"},
		{"Transactions", "B3", "Deposit"},
		{"Transactions", "E3", "Payroll Deposit"},
	}
	for _, c := range checks {
		got, err := f.GetCellValue(c.sheet, c.cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s!%s): %v", c.sheet, c.cell, err)
		}
		if got != c.want {
			t.Errorf("%s!%s: got %q, want %q", c.sheet, c.cell, got, c.want)
		}
	}

	// Nil balance renders as an empty cell.
	if got, _ := f.GetCellValue("Transactions", "H3"); got != "" {
		t.Errorf("expected empty balance cell, got %q", got)
	}
}

func TestExcelWriter_RowStriping(t *testing.T) {
	stmt := sampleStatement()

	var buf bytes.Buffer
	w := &ExcelWriter{}
	if err := w.Write(&buf, stmt.Transactions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	fillOf := func(cell string) string {
		t.Helper()
		styleID, err := f.GetCellStyle("Transactions", cell)
		if err != nil {
			t.Fatalf("GetCellStyle(%s): %v", cell, err)
		}
		style, err := f.GetStyle(styleID)
		if err != nil {
			t.Fatalf("GetStyle(%d): %v", styleID, err)
		}
		if len(style.Fill.Color) == 0 {
			return ""
		}
		return strings.ToUpper(style.Fill.Color[0])
	}

	// Even row numbers take the shaded fill, odd ones stay white.
	if got := fillOf("D2"); !strings.HasSuffix(got, rowFillEven) {
		t.Errorf("row 2 fill: got %q, want %q", got, rowFillEven)
	}
	if got := fillOf("D3"); !strings.HasSuffix(got, rowFillOdd) {
		t.Errorf("row 3 fill: got %q, want %q", got, rowFillOdd)
	}
}

func TestExcelWriter_SummaryTotals(t *testing.T) {
	stmt := sampleStatement()

	var buf bytes.Buffer
	w := &ExcelWriter{}
	if err := w.Write(&buf, stmt.Transactions); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	const sheet = "Summary by Category"

	// Restaurants has the only withdrawal so it sorts first.
	if got, _ := f.GetCellValue(sheet, "A2"); got != "Restaurants & Dining" {
		t.Errorf("A2: got %q, want %q", got, "Restaurants & Dining")
	}
	if got, _ := f.GetCellValue(sheet, "A3"); got != "Income" {
		t.Errorf("A3: got %q, want %q", got, "Income")
	}
	if got, _ := f.GetCellValue(sheet, "A4"); got != "TOTAL" {
		t.Errorf("A4: got %q, want %q", got, "TOTAL")
	}
	if got, _ := f.GetCellValue(sheet, "E4"); got != "2" {
		t.Errorf("E4 total count: got %q, want %q", got, "2")
	}
}

func TestExcelWriter_EmptyTransactions(t *testing.T) {
	var buf bytes.Buffer
	w := &ExcelWriter{}
	if err := w.Write(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("failed to reopen workbook: %v", err)
	}
	defer f.Close()

	if got, _ := f.GetCellValue("Summary by Category", "A2"); got != "TOTAL" {
		t.Errorf("expected TOTAL row directly under header, got %q", got)
	}
}
