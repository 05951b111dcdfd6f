package parser

import (
	"strconv"
	"strings"

	"github.com/ledgerline/statement-parser/internal/models"
)

// fillDates resolves a calendar date for each merged record, forward-filling
// from the nearest preceding dated record. Dates appear only on the first
// row of each day in this layout, so most records inherit. A record before
// any dated record resolves to nil and is excluded downstream.
func (p *RBC) fillDates(rows []logicalRow, years YearMap) []*models.Date {
	resolved := make([]*models.Date, 0, len(rows))
	var last *models.Date

	for _, row := range rows {
		if row.date != "" {
			if d, ok := resolveDateToken(row.date, years); ok {
				last = &d
			} else {
				p.log.Warn().Str("date", row.date).Int("page", row.page).
					Msg("invalid date token")
			}
		}
		resolved = append(resolved, last)
	}

	return resolved
}

// resolveDateToken turns "10Dec" into a calendar date using the year map.
// Fails closed when the month is absent from the map or the day does not
// exist in that month.
func resolveDateToken(raw string, years YearMap) (models.Date, bool) {
	m := dateTokenPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return models.Date{}, false
	}

	day, _ := strconv.Atoi(m[1])
	abbrev := monthAbbrev(m[2])

	year, ok := years[abbrev]
	if !ok {
		return models.Date{}, false
	}
	month, ok := monthIndex[abbrev]
	if !ok {
		return models.Date{}, false
	}

	d := models.NewDate(year, month, day)
	// time.Date normalizes overflow (31 Feb becomes 2-3 Mar); reject that.
	if d.Day() != day || d.Month() != month {
		return models.Date{}, false
	}
	return d, true
}
