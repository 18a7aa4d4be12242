package listing

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/octabyte/alumni-portal/models"
)

// AllYears selects every year in a Summary.
const AllYears = "all"

type YearRow struct {
	Year string
	models.EmploymentStat
}

type Summary struct {
	// Years lists every year the API reported, for the year selector.
	Years    []string
	Rows     []YearRow
	Total    int
	Employed int
	// Rate is the employment percentage over the selected years, rounded
	// half away from zero.
	Rate int64
}

// Summarize aggregates stats over year, or over every year for AllYears or
// "". An unknown year yields an empty selection.
func Summarize(stats models.EmploymentStats, year string) Summary {
	years := make([]string, 0, len(stats))
	for y := range stats {
		if y == "null" {
			continue
		}
		years = append(years, y)
	}
	sort.Strings(years)

	selected := years
	if year != "" && year != AllYears {
		selected = nil
		if _, ok := stats[year]; ok && year != "null" {
			selected = []string{year}
		}
	}

	summary := Summary{Years: years, Rows: make([]YearRow, 0, len(selected))}
	for _, y := range selected {
		stat := stats[y]
		summary.Rows = append(summary.Rows, YearRow{Year: y, EmploymentStat: stat})
		summary.Total += stat.Total
		summary.Employed += stat.Employed
	}

	if summary.Total > 0 {
		summary.Rate = decimal.NewFromInt(int64(summary.Employed)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(summary.Total))).
			Round(0).
			IntPart()
	}
	return summary
}
