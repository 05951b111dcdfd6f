package parser

import (
	"testing"
	"time"

	"github.com/ledgerline/statement-parser/internal/models"
)

func TestResolveDateToken(t *testing.T) {
	years := YearMap{"Dec": 2025, "Jan": 2026}

	tests := []struct {
		input string
		want  models.Date
		ok    bool
	}{
		{"10Dec", models.NewDate(2025, time.December, 10), true},
		{"5 Jan", models.NewDate(2026, time.January, 5), true},
		{"10Mar", models.Date{}, false}, // month not in the year map
		{"31Feb", models.Date{}, false}, // year map has no Feb anyway
		{"garbage", models.Date{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := resolveDateToken(tt.input, years)
			if ok != tt.ok {
				t.Fatalf("ok: got %v, want %v", ok, tt.ok)
			}
			if ok && !got.Equal(tt.want.Time) {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestResolveDateTokenRejectsImpossibleDay(t *testing.T) {
	years := YearMap{"Feb": 2026}
	if _, ok := resolveDateToken("31Feb", years); ok {
		t.Error("31 Feb should not resolve")
	}
}

func TestFillDatesForwardFill(t *testing.T) {
	p := testParser(t)
	years := YearMap{"Dec": 2025, "Jan": 2026}

	rows := []logicalRow{
		{date: "10Dec", desc: "Payroll Deposit"},
		{desc: "Visa Debit Purchase"},            // inherits 10 Dec
		{date: "serial-junk", desc: "Online"},    // noise, still inherits
		{date: "2Jan", desc: "e-Transfer Sent"},  // year rolls over
		{desc: "Contactless Interac purchase"},   // inherits 2 Jan
	}

	dates := p.fillDates(rows, years)
	if len(dates) != len(rows) {
		t.Fatalf("got %d dates, want %d", len(dates), len(rows))
	}

	want := []models.Date{
		models.NewDate(2025, time.December, 10),
		models.NewDate(2025, time.December, 10),
		models.NewDate(2025, time.December, 10),
		models.NewDate(2026, time.January, 2),
		models.NewDate(2026, time.January, 2),
	}
	for i, d := range dates {
		if d == nil {
			t.Fatalf("dates[%d] is nil", i)
		}
		if !d.Equal(want[i].Time) {
			t.Errorf("dates[%d]: got %s, want %s", i, d, want[i])
		}
	}

	// Monotonicity: resolved dates never go backwards for in-order input.
	for i := 1; i < len(dates); i++ {
		if dates[i].Before(dates[i-1].Time) {
			t.Errorf("dates[%d] %s precedes dates[%d] %s", i, dates[i], i-1, dates[i-1])
		}
	}
}

func TestFillDatesBeforeFirstDate(t *testing.T) {
	p := testParser(t)
	years := YearMap{"Dec": 2025}

	rows := []logicalRow{
		{desc: "orphan continuation"},
		{date: "10Dec", desc: "Payroll Deposit"},
	}

	dates := p.fillDates(rows, years)
	if dates[0] != nil {
		t.Errorf("record before any date should be unresolved, got %s", dates[0])
	}
	if dates[1] == nil {
		t.Error("dated record should resolve")
	}
}
