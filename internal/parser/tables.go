package parser

import (
	"math"
	"sort"
	"strings"

	"github.com/ledgerline/statement-parser/internal/extractor"
)

// extractPageRows finds the transaction table on one page and returns its
// raw rows. A page without a detectable header (trailing boilerplate pages)
// contributes nothing; that is policy, not an error.
func (p *RBC) extractPageRows(page *extractor.Page, pageNum int) []tableRow {
	bounds, ok := p.findTableBounds(page)
	if !ok {
		p.log.Debug().Int("page", pageNum).Msg("no transaction table on page")
		return nil
	}

	separators := p.findColumnSeparators(page)
	cropped := page.Crop(bounds)

	rows := extractor.ExtractRows(cropped, separators, extractor.RowOptions{
		JoinTolerance: p.cfg.RowJoinTolerance,
	})
	if len(rows) == 0 {
		p.log.Debug().Int("page", pageNum).Msg("table region yielded no rows")
		return nil
	}

	out := make([]tableRow, 0, len(rows))
	for _, cells := range rows {
		// Normalize to the five layout columns; the extractor can return
		// fewer when trailing columns are empty.
		for len(cells) < 5 {
			cells = append(cells, "")
		}
		out = append(out, tableRow{
			date:       cells[0],
			desc:       cells[1],
			withdrawal: cells[2],
			deposit:    cells[3],
			balance:    cells[4],
			page:       pageNum,
		})
	}
	return out
}

// findTableBounds locates the table's vertical extent: the header band
// containing a "Date" token together with a "Description" or "Withdrawal"
// token marks the top, and the first footer-marker word below it marks the
// bottom (else the page bottom).
func (p *RBC) findTableBounds(page *extractor.Page) (extractor.Box, bool) {
	header, ok := p.findHeaderBand(page)
	if !ok {
		return extractor.Box{}, false
	}

	top := header[0].Top
	for _, w := range header {
		if w.Top < top {
			top = w.Top
		}
	}

	bottom := page.Height
	words := append([]extractor.Word(nil), page.Words()...)
	sort.SliceStable(words, func(a, b int) bool { return words[a].Top < words[b].Top })
	for _, w := range words {
		if w.Top <= top {
			continue
		}
		text := strings.ReplaceAll(strings.ToLower(w.Text), " ", "")
		if containsAny(text, p.cfg.FooterMarkers) {
			bottom = w.Top
			break
		}
	}

	return extractor.Box{X0: 0, Top: top, X1: page.Width, Bottom: bottom}, true
}

// findColumnSeparators reads the left x-edge of every header token as a
// column boundary. Any missing token means the page drifted from the known
// layout and the fixed separators take over.
func (p *RBC) findColumnSeparators(page *extractor.Page) []float64 {
	header, ok := p.findHeaderBand(page)
	if !ok {
		return p.cfg.FallbackSeparators
	}

	var dateX, descX, withX, depX, balX *float64
	for i := range header {
		w := header[i]
		switch {
		case strings.Contains(w.Text, "Date") && w.X < p.cfg.DateHeaderMaxX:
			dateX = &header[i].X
		case strings.Contains(w.Text, "Description"):
			descX = &header[i].X
		case strings.Contains(w.Text, "Withdrawal"):
			withX = &header[i].X
		// The "Deposits" column header, not the "e-Transfer Deposit"
		// qualifier that can share the band.
		case strings.Contains(w.Text, "Deposit") && !strings.Contains(w.Text, "e-Transfer"):
			depX = &header[i].X
		case strings.Contains(w.Text, "Balance"):
			balX = &header[i].X
		}
	}

	if dateX == nil || descX == nil || withX == nil || depX == nil || balX == nil {
		p.log.Debug().Msg("partial header detection, using fixed separators")
		return p.cfg.FallbackSeparators
	}

	seps := []float64{0, *dateX, *descX, *withX, *depX, *balX, page.Width}
	sort.Float64s(seps)
	return seps
}

// findHeaderBand groups the page's words into quantized horizontal bands
// and returns the first band that looks like the table header.
func (p *RBC) findHeaderBand(page *extractor.Page) ([]extractor.Word, bool) {
	quantum := p.cfg.HeaderBandQuantum
	if quantum <= 0 {
		quantum = 2
	}

	bands := make(map[float64][]extractor.Word)
	for _, w := range page.Words() {
		key := math.Round(w.Top/quantum) * quantum
		bands[key] = append(bands[key], w)
	}

	keys := make([]float64, 0, len(bands))
	for k := range bands {
		keys = append(keys, k)
	}
	sort.Float64s(keys)

	for _, k := range keys {
		band := bands[k]
		hasDate, hasBody := false, false
		for _, w := range band {
			if strings.Contains(w.Text, "Date") {
				hasDate = true
			}
			if strings.Contains(w.Text, "Withdrawal") || strings.Contains(w.Text, "Description") {
				hasBody = true
			}
		}
		if hasDate && hasBody {
			return band, true
		}
	}
	return nil, false
}
