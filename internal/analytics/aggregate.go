// FilePath: internal/analytics/aggregate.go
package analytics

import (
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
)

// Aggregate resamples a series into fixed UTC-aligned buckets carrying
// mean, min, max and count. Buckets without samples are omitted, not
// zero-filled. A maWindow > 1 adds a trailing moving average over bucket
// means with partial windows at the head; smaller windows disable it.
func (s *Service) Aggregate(series models.Series, gran models.Granularity, maWindow int) models.AggregateSeries {
	out := models.AggregateSeries{
		SensorType: series.SensorType,
		Gran:       gran,
		Buckets:    []models.AggregateBucket{},
	}
	if len(series.Points) == 0 {
		return out
	}

	width := gran.Duration()
	points := sortedCopy(series.Points)

	var buckets []models.AggregateBucket
	var cur *models.AggregateBucket
	var sum float64
	flush := func() {
		if cur == nil {
			return
		}
		cur.Avg = sum / float64(cur.Count)
		buckets = append(buckets, *cur)
		cur = nil
	}
	for _, p := range points {
		start := p.T.UTC().Truncate(width)
		if cur == nil || !start.Equal(cur.T) {
			flush()
			cur = &models.AggregateBucket{T: start, Min: p.V, Max: p.V}
			sum = 0
		}
		if p.V < cur.Min {
			cur.Min = p.V
		}
		if p.V > cur.Max {
			cur.Max = p.V
		}
		sum += p.V
		cur.Count++
	}
	flush()

	if maWindow > 1 {
		window := maWindow
		if max := s.cfg.MAWindowMax; max > 0 && window > max {
			window = max
		}
		var winSum float64
		for i := range buckets {
			winSum += buckets[i].Avg
			if i >= window {
				winSum -= buckets[i-window].Avg
			}
			span := i + 1
			if span > window {
				span = window
			}
			ma := winSum / float64(span)
			buckets[i].MA = &ma
		}
	}

	out.Buckets = buckets
	return out
}

func sortedCopy(points []models.Point) []models.Point {
	cp := append([]models.Point(nil), points...)
	sort.SliceStable(cp, func(i, j int) bool { return cp[i].T.Before(cp[j].T) })
	return cp
}

// resampleMeans buckets points into fixed steps and returns the per-bucket
// mean keyed by UTC bucket start.
func resampleMeans(points []models.Point, step time.Duration) map[time.Time]float64 {
	sums := make(map[time.Time]float64)
	counts := make(map[time.Time]int)
	for _, p := range points {
		bucket := p.T.UTC().Truncate(step)
		sums[bucket] += p.V
		counts[bucket]++
	}
	means := make(map[time.Time]float64, len(sums))
	for t, sum := range sums {
		means[t] = sum / float64(counts[t])
	}
	return means
}
