package extractor

import "strings"

// RowOptions tunes table row extraction. The source documents draw no grid
// lines, so rows come from text-line adjacency and tolerances stay generous.
type RowOptions struct {
	// JoinTolerance is the vertical distance within which words belong to
	// the same table row.
	JoinTolerance float64
}

// ExtractRows slices a page into table rows using explicit column
// separators. Words are grouped into rows by vertical proximity, assigned to
// the column whose separator interval contains their left edge, and joined
// left to right within each cell. Every row has len(verticalLines)-1 cells;
// empty cells are empty strings.
func ExtractRows(p *Page, verticalLines []float64, opt RowOptions) [][]string {
	if len(verticalLines) < 2 || len(p.words) == 0 {
		return nil
	}

	seps := make([]float64, len(verticalLines))
	copy(seps, verticalLines)
	// Separators must span the full page width or rightmost cells get lost.
	if seps[len(seps)-1] < p.Width-1 {
		seps = append(seps, p.Width)
	}

	tol := opt.JoinTolerance
	if tol <= 0 {
		tol = rowBandTolerance
	}

	var rows [][]string
	words := p.words // already in reading order
	for start := 0; start < len(words); {
		end := start + 1
		for end < len(words) && words[end].Top-words[start].Top <= tol {
			end++
		}
		rows = append(rows, buildRow(words[start:end], seps))
		start = end
	}
	return rows
}

func buildRow(words []Word, seps []float64) []string {
	cells := make([]string, len(seps)-1)
	for _, w := range words {
		col := columnFor(w.X, seps)
		if col < 0 {
			continue
		}
		if cells[col] == "" {
			cells[col] = w.Text
		} else {
			cells[col] += " " + w.Text
		}
	}
	for i, c := range cells {
		cells[i] = strings.TrimSpace(c)
	}
	return cells
}

func columnFor(x float64, seps []float64) int {
	for i := len(seps) - 2; i >= 0; i-- {
		if x >= seps[i] && x < seps[i+1] {
			return i
		}
	}
	return -1
}
