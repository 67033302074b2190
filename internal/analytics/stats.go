// FilePath: internal/analytics/stats.go
package analytics

import (
	"math"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
)

// basicStats computes descriptive statistics over the raw values.
// Zero values means a zeroed result, never a panic.
func basicStats(values []float64) models.SummaryStats {
	n := len(values)
	if n == 0 {
		return models.SummaryStats{}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	mean := meanOf(values)
	return models.SummaryStats{
		N:      n,
		Min:    sorted[0],
		Mean:   mean,
		Median: median(sorted),
		P95:    percentile(sorted, 95),
		Max:    sorted[n-1],
		StdDev: sampleStdDev(values, mean),
	}
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev is the n-1 normalized standard deviation, 0 when fewer
// than two values exist.
func sampleStdDev(values []float64, mean float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	variance := 0.0
	for _, v := range values {
		d := v - mean
		variance += d * d
	}
	return math.Sqrt(variance / float64(n-1))
}

// median of an already sorted slice, averaging the middle pair for even n.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// percentile interpolates linearly between closest ranks on an already
// sorted slice. rank = p/100 * (n-1), so percentile(x, 95) over 1..100
// yields 95.05.
func percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(n-1)
	lo := int(math.Floor(rank))
	if lo >= n-1 {
		return sorted[n-1]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// delta24 is the difference between the last value and the first value at
// or after last.t - 24h. Series spanning less than 24 hours have no
// meaningful trailing delta and yield nil. Points must be ascending.
func delta24(points []models.Point) *float64 {
	if len(points) == 0 {
		return nil
	}
	last := points[len(points)-1]
	if last.T.Sub(points[0].T) < 24*time.Hour {
		return nil
	}
	ref := last.T.Add(-24 * time.Hour)
	for _, p := range points {
		if !p.T.Before(ref) {
			d := last.V - p.V
			return &d
		}
	}
	return nil
}

// bandsTimeWeighted attributes each inter-sample interval to the band of
// the interval's starting value (step-hold). Fewer than two points carry
// no duration. Negative intervals from clock corrections clamp to zero.
func (s *Service) bandsTimeWeighted(sensorType models.SensorType, points []models.Point) models.BandBreakdown {
	var bands models.BandBreakdown
	if len(points) < 2 {
		return bands
	}
	for i := 1; i < len(points); i++ {
		prev := points[i-1]
		dtMS := points[i].T.Sub(prev.T).Milliseconds()
		if dtMS < 0 {
			dtMS = 0
		}
		switch s.policy.ClassifyBand(sensorType, prev.V) {
		case models.BandNormal:
			bands.NormalMS += dtMS
		case models.BandCaution:
			bands.CautionMS += dtMS
		case models.BandWarning:
			bands.WarningMS += dtMS
		case models.BandCritical:
			bands.CriticalMS += dtMS
		}
	}
	return bands
}
