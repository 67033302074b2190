// FilePath: internal/analytics/analytics.go

// Package analytics is the read-side engine over the measurement store:
// history slices, descriptive statistics, band exposure, resampled
// aggregation, correlation pairs and the year-over-year comparisons.
// Absence of data is never an error here; empty inputs yield empty
// results and the HTTP layer decides what absence means.
package analytics

import (
	"context"
	"time"

	"github.com/edsonsantana1/agrosilo/internal/config"
	"github.com/edsonsantana1/agrosilo/internal/models"
	"github.com/edsonsantana1/agrosilo/internal/policy"
	"github.com/edsonsantana1/agrosilo/internal/repository"
)

// Service answers analysis queries for one measurement store.
type Service struct {
	sensors  repository.SensorRepository
	readings repository.ReadingRepository
	policy   *policy.Policy
	cfg      config.AnalyticsConfig
	now      func() time.Time
}

// New wires the analysis service.
func New(sensors repository.SensorRepository, readings repository.ReadingRepository, pol *policy.Policy, cfg config.AnalyticsConfig) *Service {
	return &Service{
		sensors:  sensors,
		readings: readings,
		policy:   pol,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// History returns the ascending (t, v) sequence of one sensor type within
// the optional [start, end] window. A silo without sensors of that type
// yields an empty series.
func (s *Service) History(ctx context.Context, siloID string, sensorType models.SensorType, start, end time.Time, limit int) (models.Series, error) {
	series := models.Series{SensorType: sensorType, Points: []models.Point{}}
	if limit <= 0 {
		limit = s.cfg.HistoryLimit
	}

	ids, err := s.sensors.IDsBySiloAndType(ctx, siloID, sensorType)
	if err != nil {
		return series, err
	}
	if len(ids) == 0 {
		return series, nil
	}

	points, err := s.readings.FetchPoints(ctx, ids, start, end, limit)
	if err != nil {
		return series, err
	}
	series.Points = points
	return series, nil
}

// Summarize condenses a series into descriptive statistics, time-weighted
// band exposure, the last point and the 24h delta. An empty series has no
// summary and returns nil.
func (s *Service) Summarize(series models.Series) *models.AnalysisSummary {
	points := series.Points
	if len(points) == 0 {
		return nil
	}

	values := make([]float64, len(points))
	for i, p := range points {
		values[i] = p.V
	}

	return &models.AnalysisSummary{
		Stats:   basicStats(values),
		Bands:   s.bandsTimeWeighted(series.SensorType, points),
		Last:    points[len(points)-1],
		Delta24: delta24(points),
	}
}
