package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// YearMap assigns a year to each three-letter month abbreviation appearing
// in one statement's period.
type YearMap map[string]int

var monthIndex = map[string]time.Month{
	"Jan": time.January, "Feb": time.February, "Mar": time.March,
	"Apr": time.April, "May": time.May, "Jun": time.June,
	"Jul": time.July, "Aug": time.August, "Sep": time.September,
	"Oct": time.October, "Nov": time.November, "Dec": time.December,
}

// periodPattern matches the statement header, e.g.
// "From December 10, 2025 to January 9, 2026".
var periodPattern = regexp.MustCompile(
	`(?i)From\s+([A-Za-z]+)\s*\d+,\s*(\d{4})\s+to\s+([A-Za-z]+)\s*\d+,\s*(\d{4})`)

// detectPeriod reads page-one text and recovers the statement's covered
// range: a YearMap over the (at most two) months it names and a display
// label. When the header cannot be found, every month maps to the current
// year so the pipeline stays total; the label flags the miss.
func (p *RBC) detectPeriod(pageText string) (YearMap, string) {
	if m := periodPattern.FindStringSubmatch(pageText); m != nil {
		startMonth := monthAbbrev(m[1])
		endMonth := monthAbbrev(m[3])
		startYear, _ := strconv.Atoi(m[2])
		endYear, _ := strconv.Atoi(m[4])

		if _, ok := monthIndex[startMonth]; ok {
			if _, ok := monthIndex[endMonth]; ok {
				years := YearMap{startMonth: startYear, endMonth: endYear}
				label := fmt.Sprintf("%s %d – %s %d", startMonth, startYear, endMonth, endYear)
				p.log.Info().Str("period", label).Msg("detected statement period")
				return years, label
			}
		}
	}

	currentYear := time.Now().Year()
	p.log.Warn().Int("fallback_year", currentYear).Msg("statement period not detected")

	years := make(YearMap, len(monthIndex))
	for abbrev := range monthIndex {
		years[abbrev] = currentYear
	}
	return years, fmt.Sprintf("Unknown %d", currentYear)
}

// monthAbbrev normalizes a month word to its capitalized three-letter form.
func monthAbbrev(s string) string {
	if len(s) < 3 {
		return ""
	}
	s = s[:3]
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
