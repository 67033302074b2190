// FilePath: internal/analytics/monthly.go
package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
)

// Dashboard month labels, pt-BR.
var monthLabels = [12]string{"Jan", "Fev", "Mar", "Abr", "Mai", "Jun", "Jul", "Ago", "Set", "Out", "Nov", "Dez"}

// MonthlySeries builds the 12-row month × year matrix of monthly means.
// A monthly mean averages the daily means of that month so uneven sampling
// density does not skew it. The year window comes from, in order of
// precedence: an explicit year list, an explicit [start, end] range, or
// the trailing lastYears window ending in the current year. Months without
// data carry nil cells.
func (s *Service) MonthlySeries(ctx context.Context, siloID string, sensorType models.SensorType, years []int, start, end time.Time, lastYears, limit int) (models.MonthlyMatrix, error) {
	matrix := models.MonthlyMatrix{Years: []int{}, Rows: []models.MonthlyRow{}}
	if limit <= 0 {
		limit = s.cfg.MonthlyLimit
	}

	switch {
	case len(years) > 0:
		years = dedupSortYears(years)
		start = startOfYear(years[0])
		end = endOfYear(years[len(years)-1])
	case !start.IsZero() && !end.IsZero():
		years = yearRange(start.Year(), end.Year())
	default:
		if lastYears <= 0 {
			lastYears = 3
		}
		thisYear := s.now().Year()
		years = yearRange(thisYear-lastYears+1, thisYear)
		start = startOfYear(years[0])
		end = endOfYear(years[len(years)-1])
	}
	matrix.Years = years

	series, err := s.History(ctx, siloID, sensorType, start, end, limit)
	if err != nil {
		return matrix, err
	}

	// Daily means first, then the month mean over them.
	dailySums := make(map[time.Time]float64)
	dailyCounts := make(map[time.Time]int)
	for _, p := range series.Points {
		day := p.T.UTC().Truncate(24 * time.Hour)
		dailySums[day] += p.V
		dailyCounts[day]++
	}

	type yearMonth struct {
		year  int
		month time.Month
	}
	monthSums := make(map[yearMonth]float64)
	monthCounts := make(map[yearMonth]int)
	for day, sum := range dailySums {
		key := yearMonth{day.Year(), day.Month()}
		monthSums[key] += sum / float64(dailyCounts[day])
		monthCounts[key]++
	}

	rows := make([]models.MonthlyRow, 0, 12)
	for m := time.January; m <= time.December; m++ {
		row := models.MonthlyRow{
			Month: int(m),
			Label: monthLabels[m-1],
			Cells: make(map[int]*float64, len(years)),
		}
		for _, y := range years {
			key := yearMonth{y, m}
			if count := monthCounts[key]; count > 0 {
				v := round2(monthSums[key] / float64(count))
				row.Cells[y] = &v
			} else {
				row.Cells[y] = nil
			}
		}
		rows = append(rows, row)
	}
	matrix.Rows = rows
	return matrix, nil
}

func dedupSortYears(years []int) []int {
	seen := make(map[int]bool, len(years))
	out := make([]int, 0, len(years))
	for _, y := range years {
		if !seen[y] {
			seen[y] = true
			out = append(out, y)
		}
	}
	sort.Ints(out)
	return out
}

func yearRange(from, to int) []int {
	if to < from {
		from, to = to, from
	}
	out := make([]int, 0, to-from+1)
	for y := from; y <= to; y++ {
		out = append(out, y)
	}
	return out
}

func startOfYear(y int) time.Time {
	return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
}

func endOfYear(y int) time.Time {
	return time.Date(y, time.December, 31, 23, 59, 59, 0, time.UTC)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
