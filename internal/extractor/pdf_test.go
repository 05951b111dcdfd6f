package extractor

import (
	"strings"
	"testing"

	"github.com/ledongthuc/pdf"
)

func TestBuildWordsMergesGlyphRuns(t *testing.T) {
	// "Date" as four glyphs with tight spacing, then "Description" far right,
	// on the same line. Font size 10 means gaps under 3pt merge.
	const pageHeight = 792.0
	texts := []pdf.Text{
		{S: "D", X: 40, Y: 700, W: 7, FontSize: 10},
		{S: "a", X: 47.5, Y: 700, W: 6, FontSize: 10},
		{S: "t", X: 54, Y: 700, W: 4, FontSize: 10},
		{S: "e", X: 58.5, Y: 700, W: 6, FontSize: 10},
		{S: "Desc", X: 290, Y: 700, W: 28, FontSize: 10},
	}

	words := buildWords(texts, pageHeight)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2: %+v", len(words), words)
	}
	if words[0].Text != "Date" {
		t.Errorf("words[0].Text: got %q, want %q", words[0].Text, "Date")
	}
	if words[0].X != 40 {
		t.Errorf("words[0].X: got %v, want 40", words[0].X)
	}
	if words[0].Top != pageHeight-700 {
		t.Errorf("words[0].Top: got %v, want %v", words[0].Top, pageHeight-700)
	}
	if words[1].Text != "Desc" {
		t.Errorf("words[1].Text: got %q, want %q", words[1].Text, "Desc")
	}
}

func TestBuildWordsOrdersBandsTopDown(t *testing.T) {
	// Y is bottom-up in the library, so the larger Y comes first in reading
	// order.
	texts := []pdf.Text{
		{S: "lower", X: 40, Y: 500, W: 30, FontSize: 10},
		{S: "upper", X: 40, Y: 700, W: 30, FontSize: 10},
	}

	words := buildWords(texts, 792)
	if len(words) != 2 {
		t.Fatalf("got %d words, want 2", len(words))
	}
	if words[0].Text != "upper" || words[1].Text != "lower" {
		t.Errorf("reading order wrong: %q then %q", words[0].Text, words[1].Text)
	}
	if words[0].Top >= words[1].Top {
		t.Errorf("Top not increasing down the page: %v then %v", words[0].Top, words[1].Top)
	}
}

func TestPageText(t *testing.T) {
	page := NewPage(612, 792, []Word{
		{Text: "From", X: 40, Top: 92},
		{Text: "December", X: 70, Top: 92},
		{Text: "Date", X: 40, Top: 200},
		{Text: "Description", X: 290, Top: 200},
	})

	got := page.Text()
	want := "From December\nDate Description"
	if got != want {
		t.Errorf("Text: got %q, want %q", got, want)
	}
}

func TestPageCrop(t *testing.T) {
	page := NewPage(612, 792, []Word{
		{Text: "header", X: 40, Top: 50},
		{Text: "inside", X: 40, Top: 300},
		{Text: "footer", X: 40, Top: 700},
	})

	cropped := page.Crop(Box{X0: 0, Top: 200, X1: 612, Bottom: 600})
	words := cropped.Words()
	if len(words) != 1 || words[0].Text != "inside" {
		t.Errorf("Crop kept %+v, want only 'inside'", words)
	}
	if cropped.Width != page.Width {
		t.Errorf("Crop changed page width: %v", cropped.Width)
	}
}

func TestIsReadableText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		valid bool
	}{
		{"statement header", "From December 10, 2025 to January 9, 2026 Date Description Withdrawals Deposits Balance", true},
		{"too short", "Date", false},
		{"garbage", strings.Repeat("þÿ°±", 40), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isReadableText(tt.text); got != tt.valid {
				t.Errorf("isReadableText: got %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestOpenBytesRejectsGarbage(t *testing.T) {
	if _, err := OpenBytes([]byte("not a pdf at all"), "bad.pdf"); err == nil {
		t.Error("expected error for non-PDF bytes")
	}
	if _, err := OpenBytes(nil, "empty.pdf"); err == nil {
		t.Error("expected error for empty input")
	}
}
