// FilePath: internal/analytics/scatter.go
package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/models"
)

const scatterStep = 5 * time.Minute

// Scatter pairs temperature (x) against humidity (y) for the correlation
// view. Each side is independently resampled to 5-minute means, then the
// two are inner-joined on bucket start: only instants where both types
// reported survive.
func (s *Service) Scatter(ctx context.Context, siloID string, start, end time.Time, limit int) (models.ScatterSeries, error) {
	out := models.ScatterSeries{Pairs: []models.ScatterPoint{}}
	if limit <= 0 {
		limit = s.cfg.ScatterLimit
	}

	temp, err := s.History(ctx, siloID, models.Temperature, start, end, limit)
	if err != nil {
		return out, err
	}
	hum, err := s.History(ctx, siloID, models.Humidity, start, end, limit)
	if err != nil {
		return out, err
	}
	if len(temp.Points) == 0 || len(hum.Points) == 0 {
		return out, nil
	}

	tempMeans := resampleMeans(temp.Points, scatterStep)
	humMeans := resampleMeans(hum.Points, scatterStep)

	joined := make([]time.Time, 0, len(tempMeans))
	for t := range tempMeans {
		if _, ok := humMeans[t]; ok {
			joined = append(joined, t)
		}
	}
	sort.Slice(joined, func(i, j int) bool { return joined[i].Before(joined[j]) })

	for _, t := range joined {
		out.Pairs = append(out.Pairs, models.ScatterPoint{X: tempMeans[t], Y: humMeans[t], T: t})
	}
	return out, nil
}
