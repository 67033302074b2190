// FilePath: internal/analytics/compare.go
package analytics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/relvacode/iso8601"

	"github.com/edsonsantana1/agrosilo/internal/errors"
	"github.com/edsonsantana1/agrosilo/internal/models"
)

// CompareDates overlays ±windowH hours around each requested date on one
// shared relative-hour axis so different harvest days can be compared
// bin-for-bin. Dates that fail to parse are skipped rather than failing
// the whole request. An optional weekday (Sunday = 0) restricts which
// samples enter the bins.
func (s *Service) CompareDates(ctx context.Context, siloID string, sensorType models.SensorType, dates []string, gran models.AlignGran, windowH int, weekday *int, limit int) (models.AlignedSeries, error) {
	if limit <= 0 {
		limit = s.cfg.CompareLimit
	}
	step := gran.Step()
	axis := relAxis(windowH, step)

	out := models.AlignedSeries{
		SensorType: sensorType,
		RelHours:   axisHours(axis),
		Series:     []models.AlignedValues{},
	}

	for _, raw := range dates {
		center, err := parseDate(strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		values, err := s.alignWindow(ctx, siloID, sensorType, center, step, windowH, weekday, limit)
		if err != nil {
			return out, err
		}
		out.Series = append(out.Series, models.AlignedValues{Label: raw, Values: values})
	}
	return out, nil
}

// SeasonalParams selects the anchor and shaping of a seasonal profile.
type SeasonalParams struct {
	Month, Day       int
	FromYear, ToYear int
	Gran             models.AlignGran
	WindowH          int
	SmoothWindow     int
	WithBand         bool
	Limit            int
}

// SeasonalProfile overlays the same calendar anchor (month, day) across a
// range of years, adds the cross-year mean per bin and, when requested, a
// ±1 sample standard deviation band. Years where the anchor does not
// exist (Feb 29 off leap years) are skipped.
func (s *Service) SeasonalProfile(ctx context.Context, siloID string, sensorType models.SensorType, p SeasonalParams) (models.SeasonalProfile, error) {
	step := p.Gran.Step()
	axis := relAxis(p.WindowH, step)

	profile := models.SeasonalProfile{
		SensorType: sensorType,
		Month:      p.Month,
		Day:        p.Day,
		RelHours:   axisHours(axis),
		Series:     []models.AlignedValues{},
		Mean:       make([]*float64, len(axis)),
	}

	if p.Month < 1 || p.Month > 12 || p.Day < 1 || p.Day > 31 {
		return profile, errors.NewValidationError(fmt.Sprintf("invalid seasonal anchor %02d-%02d", p.Month, p.Day), nil)
	}
	if p.ToYear < p.FromYear {
		return profile, errors.NewValidationError("from_year must not exceed to_year", nil)
	}
	limit := p.Limit
	if limit <= 0 {
		limit = s.cfg.CompareLimit
	}

	perYear := make([][]*float64, 0, p.ToYear-p.FromYear+1)
	for year := p.FromYear; year <= p.ToYear; year++ {
		anchor := time.Date(year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
		if int(anchor.Month()) != p.Month || anchor.Day() != p.Day {
			continue
		}
		values, err := s.alignWindow(ctx, siloID, sensorType, anchor, step, p.WindowH, nil, limit)
		if err != nil {
			return profile, err
		}
		if p.SmoothWindow > 1 {
			values = smoothTrailing(values, p.SmoothWindow)
		}
		profile.Series = append(profile.Series, models.AlignedValues{Label: anchor.Format("2006-01-02"), Values: values})
		perYear = append(perYear, values)
	}

	var lower, upper []*float64
	if p.WithBand {
		lower = make([]*float64, len(axis))
		upper = make([]*float64, len(axis))
	}
	for i := range axis {
		var vals []float64
		for _, yearValues := range perYear {
			if yearValues[i] != nil {
				vals = append(vals, *yearValues[i])
			}
		}
		if len(vals) == 0 {
			continue
		}
		mean := meanOf(vals)
		m := round2(mean)
		profile.Mean[i] = &m
		if p.WithBand {
			sd := sampleStdDev(vals, mean)
			lo := round2(mean - sd)
			hi := round2(mean + sd)
			lower[i] = &lo
			upper[i] = &hi
		}
	}
	if p.WithBand {
		profile.Band = &models.SeasonalBand{Lower: lower, Upper: upper}
	}
	return profile, nil
}

// alignWindow fetches ±windowH hours around center and floor-bins each
// sample onto the relative axis, averaging samples that share a bin.
// Bins no sample fell into stay nil.
func (s *Service) alignWindow(ctx context.Context, siloID string, sensorType models.SensorType, center time.Time, step time.Duration, windowH int, weekday *int, limit int) ([]*float64, error) {
	half := time.Duration(windowH) * time.Hour
	series, err := s.History(ctx, siloID, sensorType, center.Add(-half), center.Add(half), limit)
	if err != nil {
		return nil, err
	}

	axis := relAxis(windowH, step)
	values := make([]*float64, len(axis))
	if len(series.Points) == 0 {
		return values, nil
	}

	sums := make(map[time.Duration]float64)
	counts := make(map[time.Duration]int)
	for _, p := range series.Points {
		if weekday != nil && int(p.T.UTC().Weekday()) != *weekday {
			continue
		}
		bin := floorBin(p.T.Sub(center), step)
		sums[bin] += p.V
		counts[bin]++
	}
	for i, offset := range axis {
		if c := counts[offset]; c > 0 {
			v := round2(sums[offset] / float64(c))
			values[i] = &v
		}
	}
	return values, nil
}

// relAxis spans -windowH..+windowH hours in step-sized bins, center
// included.
func relAxis(windowH int, step time.Duration) []time.Duration {
	half := time.Duration(windowH) * time.Hour
	n := int(half / step)
	axis := make([]time.Duration, 0, 2*n+1)
	for i := -n; i <= n; i++ {
		axis = append(axis, time.Duration(i)*step)
	}
	return axis
}

func axisHours(axis []time.Duration) []float64 {
	hours := make([]float64, len(axis))
	for i, d := range axis {
		hours[i] = d.Hours()
	}
	return hours
}

// floorBin snaps a relative offset to the start of its bin, flooring
// toward negative infinity so pre-center samples land in the bin they
// belong to instead of rounding toward the center.
func floorBin(rel, step time.Duration) time.Duration {
	q := rel / step
	if rel%step != 0 && rel < 0 {
		q--
	}
	return q * step
}

// smoothTrailing applies a trailing moving average over the non-nil values
// inside the window. Empty bins stay nil; smoothing never invents data.
func smoothTrailing(values []*float64, window int) []*float64 {
	out := make([]*float64, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		sum := 0.0
		n := 0
		for j := i - window + 1; j <= i; j++ {
			if j < 0 || values[j] == nil {
				continue
			}
			sum += *values[j]
			n++
		}
		m := round2(sum / float64(n))
		out[i] = &m
	}
	return out
}

// parseDate accepts full ISO 8601 timestamps or bare YYYY-MM-DD dates.
func parseDate(raw string) (time.Time, error) {
	if t, err := iso8601.ParseString(raw); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
