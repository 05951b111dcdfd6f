package extractor

import (
	"reflect"
	"testing"
)

// Separators matching the statement layout: date | desc | withdrawal |
// deposit | balance.
var testSeps = []float64{0, 55, 290, 390, 480, 612}

func TestExtractRowsAssignsColumnsByLeftEdge(t *testing.T) {
	page := NewPage(612, 792, []Word{
		{Text: "10Dec", X: 20, Top: 100},
		{Text: "Visa", X: 60, Top: 100},
		{Text: "Debit", X: 90, Top: 100},
		{Text: "42.50", X: 300, Top: 100},
		{Text: "1,200.00", X: 500, Top: 100},
	})

	rows := ExtractRows(page, testSeps, RowOptions{JoinTolerance: 3})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}

	want := []string{"10Dec", "Visa Debit", "42.50", "", "1,200.00"}
	if !reflect.DeepEqual(rows[0], want) {
		t.Errorf("row: got %v, want %v", rows[0], want)
	}
}

func TestExtractRowsSplitsByVerticalDistance(t *testing.T) {
	page := NewPage(612, 792, []Word{
		{Text: "Visa", X: 60, Top: 100},
		{Text: "UBER", X: 60, Top: 112}, // next text line, beyond tolerance
	})

	rows := ExtractRows(page, testSeps, RowOptions{JoinTolerance: 3})
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0][1] != "Visa" || rows[1][1] != "UBER" {
		t.Errorf("rows split wrong: %v", rows)
	}
}

func TestExtractRowsExtendsSeparatorsToPageWidth(t *testing.T) {
	// Last separator at 480 leaves the balance column open to the right
	// edge; words past 480 must still land in a cell.
	page := NewPage(612, 792, []Word{
		{Text: "1,200.00", X: 500, Top: 100},
	})

	rows := ExtractRows(page, []float64{0, 55, 290, 390, 480}, RowOptions{})
	if len(rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rows))
	}
	if got := rows[0][len(rows[0])-1]; got != "1,200.00" {
		t.Errorf("balance cell: got %q, want %q", got, "1,200.00")
	}
}

func TestExtractRowsEmptyPage(t *testing.T) {
	page := NewPage(612, 792, nil)
	if rows := ExtractRows(page, testSeps, RowOptions{}); rows != nil {
		t.Errorf("expected nil rows for empty page, got %v", rows)
	}
}
